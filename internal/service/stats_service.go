package service

import (
	"context"

	"github.com/google/uuid"

	"voxadmin/internal/model"
	"voxadmin/internal/repository"
)

// AdminStats are the admin dashboard totals.
type AdminStats struct {
	Users             int64  `json:"users"`
	Agents            int64  `json:"agents"`
	Sessions          int64  `json:"sessions"`
	Conversations     int64  `json:"conversations"`
	TotalDurationSecs int64  `json:"total_duration_secs"`
	TotalCost         string `json:"total_cost"`
}

// AuditPage is one page of the audit-log listing.
type AuditPage struct {
	Entries []model.AuditLog `json:"entries"`
	Total   int64            `json:"total"`
}

// StatsService serves admin statistics and the audit-log query surface.
type StatsService interface {
	Stats(ctx context.Context) (*AdminStats, error)
	AuditLogs(ctx context.Context, actorID *uuid.UUID, action, resourceType string, limit, offset int) (*AuditPage, error)
}

type statsService struct {
	users         repository.UserRepository
	agents        repository.AgentRepository
	sessions      repository.SessionRepository
	conversations repository.ConversationRepository
	audit         repository.AuditRepository
}

// NewStatsService creates a new stats service.
func NewStatsService(
	users repository.UserRepository,
	agents repository.AgentRepository,
	sessions repository.SessionRepository,
	conversations repository.ConversationRepository,
	audit repository.AuditRepository,
) StatsService {
	return &statsService{
		users:         users,
		agents:        agents,
		sessions:      sessions,
		conversations: conversations,
		audit:         audit,
	}
}

func (s *statsService) Stats(ctx context.Context) (*AdminStats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	agents, err := s.agents.Count(ctx)
	if err != nil {
		return nil, err
	}
	conversations, err := s.conversations.Count(ctx)
	if err != nil {
		return nil, err
	}
	agg, err := s.sessions.AggregatesAll(ctx)
	if err != nil {
		return nil, err
	}
	return &AdminStats{
		Users:             users,
		Agents:            agents,
		Sessions:          agg.Count,
		Conversations:     conversations,
		TotalDurationSecs: agg.DurationSecs,
		TotalCost:         agg.TotalCost.String(),
	}, nil
}

func (s *statsService) AuditLogs(ctx context.Context, actorID *uuid.UUID, action, resourceType string, limit, offset int) (*AuditPage, error) {
	entries, total, err := s.audit.Query(ctx, repository.AuditQuery{
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, err
	}
	return &AuditPage{Entries: entries, Total: total}, nil
}
