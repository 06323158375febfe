package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"voxadmin/internal/model"
)

// ConversationRepository defines conversation persistence operations.
type ConversationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Conversation, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]model.Conversation, int64, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Conversation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySessions(ctx context.Context, sessionIDs []uuid.UUID) error
	UpdateSummary(ctx context.Context, id uuid.UUID, summary, language string) error
	UpdateReview(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Count(ctx context.Context) (int64, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new conversation repository.
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *conversationRepository) ListByAgent(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]model.Conversation, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&model.Conversation{}).Where("agent_id = ?", agentID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var conversations []model.Conversation
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&conversations).Error; err != nil {
		return nil, 0, err
	}
	return conversations, total, nil
}

func (r *conversationRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Conversation, error) {
	var conversations []model.Conversation
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).
		Order("created_at ASC").Find(&conversations).Error; err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *conversationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Conversation{}).Error
}

func (r *conversationRepository) DeleteBySessions(ctx context.Context, sessionIDs []uuid.UUID) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("session_id IN ?", sessionIDs).Delete(&model.Conversation{}).Error
}

func (r *conversationRepository) UpdateSummary(ctx context.Context, id uuid.UUID, summary, language string) error {
	fields := map[string]any{"summary": summary}
	if language != "" {
		fields["summary_language"] = language
	}
	return r.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *conversationRepository) UpdateReview(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *conversationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Conversation{}).Count(&count).Error
	return count, err
}
