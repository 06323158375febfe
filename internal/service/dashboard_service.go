package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"voxadmin/internal/audit"
	apperrors "voxadmin/internal/errors"
	"voxadmin/internal/middleware"
	"voxadmin/internal/model"
	"voxadmin/internal/repository"
)

// DashboardSummary aggregates across the agents a user may see.
type DashboardSummary struct {
	Agents     []model.Agent                 `json:"agents"`
	Aggregates *repository.SessionAggregates `json:"aggregates"`
}

// SessionPage is one page of a session listing.
type SessionPage struct {
	Sessions []model.Session `json:"sessions"`
	Total    int64           `json:"total"`
}

// ConversationPage is one page of a conversation listing.
type ConversationPage struct {
	Conversations []model.Conversation `json:"conversations"`
	Total         int64                `json:"total"`
}

// DashboardService serves the authenticated user surface. Agent-level
// capability checks happen in the agent authorization middleware; list
// scoping happens here via the accessible-agent resolver.
type DashboardService interface {
	Summary(ctx context.Context, user *model.User) (*DashboardSummary, error)
	AgentDetail(ctx context.Context, user *model.User, agentID uuid.UUID) (*model.Agent, error)
	Sessions(ctx context.Context, agentID uuid.UUID, limit, offset int) (*SessionPage, error)
	SessionDetail(ctx context.Context, agentID, sessionID uuid.UUID) (*model.Session, error)
	SessionLog(ctx context.Context, agentID, sessionID uuid.UUID) (model.JSONMap, error)
	Conversations(ctx context.Context, agentID uuid.UUID, limit, offset int) (*ConversationPage, error)
	ConversationDetail(ctx context.Context, agentID, conversationID uuid.UUID) (*model.Conversation, error)
	ExportSessions(ctx context.Context, user *model.User, agentID uuid.UUID, meta audit.RequestMeta) ([]model.Session, error)
	MarkConversation(ctx context.Context, user *model.User, agentID, conversationID uuid.UUID, status model.ReviewStatus) (*model.Conversation, error)
}

type dashboardService struct {
	agents        repository.AgentRepository
	sessions      repository.SessionRepository
	conversations repository.ConversationRepository
	assignments   repository.AssignmentRepository
	access        *middleware.AgentAccess
	recorder      Auditor
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	agents repository.AgentRepository,
	sessions repository.SessionRepository,
	conversations repository.ConversationRepository,
	assignments repository.AssignmentRepository,
	access *middleware.AgentAccess,
	recorder Auditor,
) DashboardService {
	return &dashboardService{
		agents:        agents,
		sessions:      sessions,
		conversations: conversations,
		assignments:   assignments,
		access:        access,
		recorder:      recorder,
	}
}

// Summary lists the user's accessible agents with session aggregates. The
// resolver's "all agents" sentinel switches between an unscoped and a scoped
// query.
func (s *dashboardService) Summary(ctx context.Context, user *model.User) (*DashboardSummary, error) {
	ids, all, err := s.access.AccessibleAgentIDs(ctx, user)
	if err != nil {
		return nil, err
	}

	var agents []model.Agent
	var aggregates *repository.SessionAggregates
	if all {
		if agents, err = s.agents.List(ctx); err != nil {
			return nil, err
		}
		if aggregates, err = s.sessions.AggregatesAll(ctx); err != nil {
			return nil, err
		}
	} else {
		if agents, err = s.agents.FindByIDs(ctx, ids); err != nil {
			return nil, err
		}
		if aggregates, err = s.sessions.Aggregates(ctx, ids); err != nil {
			return nil, err
		}
	}
	if agents == nil {
		agents = []model.Agent{}
	}
	return &DashboardSummary{Agents: agents, Aggregates: aggregates}, nil
}

func (s *dashboardService) AgentDetail(ctx context.Context, user *model.User, agentID uuid.UUID) (*model.Agent, error) {
	if _, err := s.access.Resolve(ctx, user, agentID); err != nil {
		return nil, err
	}
	return s.agents.FindByID(ctx, agentID)
}

func (s *dashboardService) Sessions(ctx context.Context, agentID uuid.UUID, limit, offset int) (*SessionPage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	sessions, total, err := s.sessions.ListByAgent(ctx, agentID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &SessionPage{Sessions: sessions, Total: total}, nil
}

func (s *dashboardService) SessionDetail(ctx context.Context, agentID, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.AgentID != agentID {
		return nil, gorm.ErrRecordNotFound
	}
	return session, nil
}

// SessionLog returns the telephony metadata blob of a session, gated by the
// view_logs capability at the route.
func (s *dashboardService) SessionLog(ctx context.Context, agentID, sessionID uuid.UUID) (model.JSONMap, error) {
	session, err := s.SessionDetail(ctx, agentID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Metadata == nil {
		return model.JSONMap{}, nil
	}
	return session.Metadata, nil
}

func (s *dashboardService) Conversations(ctx context.Context, agentID uuid.UUID, limit, offset int) (*ConversationPage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	conversations, total, err := s.conversations.ListByAgent(ctx, agentID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ConversationPage{Conversations: conversations, Total: total}, nil
}

func (s *dashboardService) ConversationDetail(ctx context.Context, agentID, conversationID uuid.UUID) (*model.Conversation, error) {
	conversation, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation.AgentID != agentID {
		return nil, gorm.ErrRecordNotFound
	}
	return conversation, nil
}

// ExportSessions returns the full session list for download. The export is
// a sensitive read, so it is audited.
func (s *dashboardService) ExportSessions(ctx context.Context, user *model.User, agentID uuid.UUID, meta audit.RequestMeta) ([]model.Session, error) {
	sessions, _, err := s.sessions.ListByAgent(ctx, agentID, 10000, 0)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(audit.Event{
		ActorID:      &user.ID,
		Action:       audit.ActionExportData,
		ResourceType: "agent",
		ResourceID:   agentID.String(),
		Request:      meta,
		Metadata:     model.JSONMap{"sessions": len(sessions)},
	})
	return sessions, nil
}

// MarkConversation sets the review status. It requires the independently
// gated can_mark flag on the caller's assignment; admins may always mark.
func (s *dashboardService) MarkConversation(ctx context.Context, user *model.User, agentID, conversationID uuid.UUID, status model.ReviewStatus) (*model.Conversation, error) {
	switch status {
	case model.ReviewStatusPending, model.ReviewStatusReviewed, model.ReviewStatusFlagged:
	default:
		return nil, apperrors.Validation(fmt.Sprintf("unknown review status %q", status))
	}

	if user.Role != model.RoleAdmin {
		assignment, err := s.assignments.FindByUserAndAgent(ctx, user.ID, agentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.Forbidden(middleware.NoAgentAccessMessage)
			}
			return nil, err
		}
		if !assignment.CanMark {
			return nil, apperrors.Forbidden("missing permission: can_mark")
		}
	}

	conversation, err := s.ConversationDetail(ctx, agentID, conversationID)
	if err != nil {
		return nil, err
	}

	now := nowUTC()
	if err := s.conversations.UpdateReview(ctx, conversation.ID, map[string]any{
		"review_status": status,
		"reviewed_by":   user.ID,
		"reviewed_at":   now,
	}); err != nil {
		return nil, err
	}
	return s.conversations.FindByID(ctx, conversation.ID)
}

func nowUTC() time.Time { return time.Now().UTC() }
