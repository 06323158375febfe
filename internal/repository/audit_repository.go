package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"voxadmin/internal/model"
)

// AuditQuery filters an audit-log listing. Zero values mean "no filter".
type AuditQuery struct {
	ActorID      *uuid.UUID
	Action       string
	ResourceType string
	Limit        int
	Offset       int
}

// AuditRepository persists audit log rows. The log is append-only: there is
// deliberately no update or delete operation.
type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	Query(ctx context.Context, q AuditQuery) ([]model.AuditLog, int64, error)
	DetachActor(ctx context.Context, actorID uuid.UUID) error
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit log repository.
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) Query(ctx context.Context, q AuditQuery) ([]model.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if q.ActorID != nil {
		query = query.Where("actor_id = ?", *q.ActorID)
	}
	if q.Action != "" {
		query = query.Where("action = ?", q.Action)
	}
	if q.ResourceType != "" {
		query = query.Where("resource_type = ?", q.ResourceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var entries []model.AuditLog
	if err := query.Order("created_at DESC").Limit(limit).Offset(q.Offset).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// DetachActor nulls the actor reference on a deleted user's rows so the log
// itself survives user deletion.
func (r *auditRepository) DetachActor(ctx context.Context, actorID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.AuditLog{}).
		Where("actor_id = ?", actorID).
		Update("actor_id", nil).Error
}
