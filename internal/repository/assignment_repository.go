package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"voxadmin/internal/model"
)

// AssignmentRepository defines user-agent assignment persistence operations.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.UserAgentAssignment) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.UserAgentAssignment, error)
	FindByUserAndAgent(ctx context.Context, userID, agentID uuid.UUID) (*model.UserAgentAssignment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.UserAgentAssignment, error)
	AgentIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CountByAgent(ctx context.Context, agentID uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *model.UserAgentAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.UserAgentAssignment{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *assignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.UserAgentAssignment{}).Error
}

func (r *assignmentRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserAgentAssignment{}).Error
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.UserAgentAssignment, error) {
	var assignment model.UserAgentAssignment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindByUserAndAgent(ctx context.Context, userID, agentID uuid.UUID) (*model.UserAgentAssignment, error) {
	var assignment model.UserAgentAssignment
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND agent_id = ?", userID, agentID).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.UserAgentAssignment, error) {
	var assignments []model.UserAgentAssignment
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("assigned_at DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) AgentIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.UserAgentAssignment{}).
		Where("user_id = ?", userID).
		Pluck("agent_id", &ids).Error
	return ids, err
}

func (r *assignmentRepository) CountByAgent(ctx context.Context, agentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserAgentAssignment{}).
		Where("agent_id = ?", agentID).Count(&count).Error
	return count, err
}

func (r *assignmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserAgentAssignment{}).Count(&count).Error
	return count, err
}
