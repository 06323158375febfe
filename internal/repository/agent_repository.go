package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"voxadmin/internal/model"
)

// AgentRepository defines agent persistence operations.
type AgentRepository interface {
	List(ctx context.Context) ([]model.Agent, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Agent, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Agent, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type agentRepository struct {
	db *gorm.DB
}

// NewAgentRepository creates a new agent repository.
func NewAgentRepository(db *gorm.DB) AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) List(ctx context.Context) ([]model.Agent, error) {
	var agents []model.Agent
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

func (r *agentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Agent, error) {
	var agent model.Agent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Agent, error) {
	// Non-nil even when empty so callers serialize [] rather than null.
	agents := []model.Agent{}
	if len(ids) == 0 {
		return agents, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

func (r *agentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Agent{}).Error
}

func (r *agentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Agent{}).Count(&count).Error
	return count, err
}
