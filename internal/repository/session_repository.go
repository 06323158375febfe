package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"voxadmin/internal/model"
)

// SessionAggregates summarizes sessions over a set of agents.
type SessionAggregates struct {
	Count        int64           `json:"count"`
	DurationSecs int64           `json:"duration_secs"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// SessionRepository defines session persistence operations.
type SessionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]model.Session, int64, error)
	IDsByAgent(ctx context.Context, agentID uuid.UUID) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByAgent(ctx context.Context, agentID uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	Aggregates(ctx context.Context, agentIDs []uuid.UUID) (*SessionAggregates, error)
	AggregatesAll(ctx context.Context) (*SessionAggregates, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var session model.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) ListByAgent(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]model.Session, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&model.Session{}).Where("agent_id = ?", agentID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var sessions []model.Session
	if err := q.Order("started_at DESC").Limit(limit).Offset(offset).Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (r *sessionRepository) IDsByAgent(ctx context.Context, agentID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("agent_id = ?", agentID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Session{}).Error
}

func (r *sessionRepository) DeleteByAgent(ctx context.Context, agentID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("agent_id = ?", agentID).Delete(&model.Session{}).Error
}

func (r *sessionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Session{}).Count(&count).Error
	return count, err
}

type sessionAggRow struct {
	Count        int64
	DurationSecs int64
	TotalCost    decimal.Decimal
}

// Aggregates summarizes sessions belonging to the given agents. An empty
// slice yields zero aggregates, matching an empty accessible-agent set.
func (r *sessionRepository) Aggregates(ctx context.Context, agentIDs []uuid.UUID) (*SessionAggregates, error) {
	if len(agentIDs) == 0 {
		return &SessionAggregates{TotalCost: decimal.Zero}, nil
	}
	var row sessionAggRow
	err := r.db.WithContext(ctx).Model(&model.Session{}).
		Select("COUNT(*) AS count, COALESCE(SUM(duration_secs),0) AS duration_secs, COALESCE(SUM(cost),0) AS total_cost").
		Where("agent_id IN ?", agentIDs).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &SessionAggregates{Count: row.Count, DurationSecs: row.DurationSecs, TotalCost: row.TotalCost}, nil
}

// AggregatesAll summarizes every session, used for the admin (all agents)
// sentinel.
func (r *sessionRepository) AggregatesAll(ctx context.Context) (*SessionAggregates, error) {
	var row sessionAggRow
	err := r.db.WithContext(ctx).Model(&model.Session{}).
		Select("COUNT(*) AS count, COALESCE(SUM(duration_secs),0) AS duration_secs, COALESCE(SUM(cost),0) AS total_cost").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &SessionAggregates{Count: row.Count, DurationSecs: row.DurationSecs, TotalCost: row.TotalCost}, nil
}
