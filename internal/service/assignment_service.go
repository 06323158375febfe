package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"voxadmin/internal/audit"
	"voxadmin/internal/model"
	"voxadmin/internal/repository"
)

var (
	// ErrAgentAlreadyAssigned is returned when the (user, agent) pair exists.
	ErrAgentAlreadyAssigned = errors.New("Agent already assigned to this user")
	// ErrMarkToggleForbidden is returned when the actor may not flip can_mark.
	ErrMarkToggleForbidden = errors.New("not authorized to change mark permission")
)

// AssignmentFlags is a partial patch of the four general capability flags.
// Nil fields are left unchanged. CanMark is deliberately absent: it has its
// own gated toggle.
type AssignmentFlags struct {
	CanViewSessions      *bool
	CanViewLogs          *bool
	CanViewConversations *bool
	CanExportData        *bool
}

// CreateAssignmentInput describes one assignment to create.
type CreateAssignmentInput struct {
	AgentID uuid.UUID
	Flags   AssignmentFlags
}

// BulkItemError reports one failed element of a bulk create.
type BulkItemError struct {
	AgentID uuid.UUID `json:"agent_id"`
	Error   string    `json:"error"`
}

// BulkCreateResult distinguishes successes from per-item failures. One bad
// entry never aborts the batch.
type BulkCreateResult struct {
	Created []model.UserAgentAssignment `json:"created"`
	Errors  []BulkItemError             `json:"errors"`
}

// AssignmentService manages user-agent assignments and their capability flags.
type AssignmentService interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.UserAgentAssignment, error)
	Create(ctx context.Context, actor *model.User, userID uuid.UUID, in CreateAssignmentInput, meta audit.RequestMeta) (*model.UserAgentAssignment, error)
	Update(ctx context.Context, actor *model.User, userID, agentID uuid.UUID, flags AssignmentFlags, meta audit.RequestMeta) (*model.UserAgentAssignment, error)
	Delete(ctx context.Context, actor *model.User, userID, agentID uuid.UUID, meta audit.RequestMeta) error
	BulkCreate(ctx context.Context, actor *model.User, userID uuid.UUID, items []CreateAssignmentInput, meta audit.RequestMeta) (*BulkCreateResult, error)
	ToggleMark(ctx context.Context, actor *model.User, userID, agentID uuid.UUID, canMark bool, meta audit.RequestMeta) (*model.UserAgentAssignment, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	agents      repository.AgentRepository
	users       repository.UserRepository
	recorder    Auditor
}

// NewAssignmentService creates a new assignment service.
func NewAssignmentService(
	assignments repository.AssignmentRepository,
	agents repository.AgentRepository,
	users repository.UserRepository,
	recorder Auditor,
) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		agents:      agents,
		users:       users,
		recorder:    recorder,
	}
}

func (s *assignmentService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.UserAgentAssignment, error) {
	return s.assignments.ListByUser(ctx, userID)
}

// Create adds an assignment. A duplicate (user, agent) pair is a reported
// conflict, never a crash, and leaves the original row unchanged.
func (s *assignmentService) Create(ctx context.Context, actor *model.User, userID uuid.UUID, in CreateAssignmentInput, meta audit.RequestMeta) (*model.UserAgentAssignment, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}
	if _, err := s.agents.FindByID(ctx, in.AgentID); err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}
	if _, err := s.assignments.FindByUserAndAgent(ctx, userID, in.AgentID); err == nil {
		return nil, ErrAgentAlreadyAssigned
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	assignment := &model.UserAgentAssignment{
		UserID:               userID,
		AgentID:              in.AgentID,
		CanViewSessions:      boolOr(in.Flags.CanViewSessions, true),
		CanViewLogs:          boolOr(in.Flags.CanViewLogs, false),
		CanViewConversations: boolOr(in.Flags.CanViewConversations, true),
		CanExportData:        boolOr(in.Flags.CanExportData, false),
		// CanMark always starts false; it is granted only via ToggleMark.
		AssignedBy: &actor.ID,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAgentAlreadyAssigned
		}
		return nil, err
	}

	s.recorder.Record(audit.Event{
		ActorID:      &actor.ID,
		Action:       audit.ActionAssignmentCreate,
		ResourceType: "assignment",
		ResourceID:   assignment.ID.String(),
		Request:      meta,
		Metadata:     model.JSONMap{"user_id": userID.String(), "agent_id": in.AgentID.String()},
	})
	return assignment, nil
}

// Update patches only the provided flags.
func (s *assignmentService) Update(ctx context.Context, actor *model.User, userID, agentID uuid.UUID, flags AssignmentFlags, meta audit.RequestMeta) (*model.UserAgentAssignment, error) {
	assignment, err := s.assignments.FindByUserAndAgent(ctx, userID, agentID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if flags.CanViewSessions != nil {
		fields["can_view_sessions"] = *flags.CanViewSessions
	}
	if flags.CanViewLogs != nil {
		fields["can_view_logs"] = *flags.CanViewLogs
	}
	if flags.CanViewConversations != nil {
		fields["can_view_conversations"] = *flags.CanViewConversations
	}
	if flags.CanExportData != nil {
		fields["can_export_data"] = *flags.CanExportData
	}
	if len(fields) > 0 {
		if err := s.assignments.Update(ctx, assignment.ID, fields); err != nil {
			return nil, err
		}
	}

	s.recorder.Record(audit.Event{
		ActorID:      &actor.ID,
		Action:       audit.ActionAssignmentUpdate,
		ResourceType: "assignment",
		ResourceID:   assignment.ID.String(),
		Request:      meta,
		Metadata:     auditFields(fields),
	})
	return s.assignments.FindByID(ctx, assignment.ID)
}

func (s *assignmentService) Delete(ctx context.Context, actor *model.User, userID, agentID uuid.UUID, meta audit.RequestMeta) error {
	assignment, err := s.assignments.FindByUserAndAgent(ctx, userID, agentID)
	if err != nil {
		return err
	}
	if err := s.assignments.Delete(ctx, assignment.ID); err != nil {
		return err
	}

	s.recorder.Record(audit.Event{
		ActorID:      &actor.ID,
		Action:       audit.ActionAssignmentDelete,
		ResourceType: "assignment",
		ResourceID:   assignment.ID.String(),
		Request:      meta,
		Metadata:     model.JSONMap{"user_id": userID.String(), "agent_id": agentID.String()},
	})
	return nil
}

// BulkCreate processes each element independently, collecting per-item
// errors so one bad entry does not abort the batch.
func (s *assignmentService) BulkCreate(ctx context.Context, actor *model.User, userID uuid.UUID, items []CreateAssignmentInput, meta audit.RequestMeta) (*BulkCreateResult, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}

	result := &BulkCreateResult{
		Created: []model.UserAgentAssignment{},
		Errors:  []BulkItemError{},
	}
	for _, item := range items {
		created, err := s.Create(ctx, actor, userID, item, meta)
		if err != nil {
			result.Errors = append(result.Errors, BulkItemError{AgentID: item.AgentID, Error: err.Error()})
			continue
		}
		result.Created = append(result.Created, *created)
	}
	return result, nil
}

// ToggleMark flips the independently-gated can_mark flag with
// find-or-create-then-update semantics. The gate is narrower than general
// agent authorization: only an admin, or a manager who themself holds an
// assignment for the agent, may flip it.
func (s *assignmentService) ToggleMark(ctx context.Context, actor *model.User, userID, agentID uuid.UUID, canMark bool, meta audit.RequestMeta) (*model.UserAgentAssignment, error) {
	if err := s.authorizeMarkToggle(ctx, actor, agentID); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}
	if _, err := s.agents.FindByID(ctx, agentID); err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}

	assignment, err := s.assignments.FindByUserAndAgent(ctx, userID, agentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		assignment = &model.UserAgentAssignment{
			UserID:     userID,
			AgentID:    agentID,
			AssignedBy: &actor.ID,
		}
		if err := s.assignments.Create(ctx, assignment); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if err := s.assignments.Update(ctx, assignment.ID, map[string]any{"can_mark": canMark}); err != nil {
		return nil, err
	}

	s.recorder.Record(audit.Event{
		ActorID:      &actor.ID,
		Action:       audit.ActionMarkToggle,
		ResourceType: "assignment",
		ResourceID:   assignment.ID.String(),
		Request:      meta,
		Metadata:     model.JSONMap{"user_id": userID.String(), "agent_id": agentID.String(), "can_mark": canMark},
	})
	return s.assignments.FindByID(ctx, assignment.ID)
}

func (s *assignmentService) authorizeMarkToggle(ctx context.Context, actor *model.User, agentID uuid.UUID) error {
	if actor.Role == model.RoleAdmin {
		return nil
	}
	if actor.Role == model.RoleManager {
		if _, err := s.assignments.FindByUserAndAgent(ctx, actor.ID, agentID); err == nil {
			return nil
		}
	}
	return ErrMarkToggleForbidden
}

func boolOr(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}
