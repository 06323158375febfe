package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"voxadmin/internal/model"
)

// ResetTokenRepository defines password-reset token persistence operations.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *model.PasswordResetToken) error
	FindByToken(ctx context.Context, token string) (*model.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type resetTokenRepository struct {
	db *gorm.DB
}

// NewResetTokenRepository creates a new reset token repository.
func NewResetTokenRepository(db *gorm.DB) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

func (r *resetTokenRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *resetTokenRepository) FindByToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	var resetToken model.PasswordResetToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&resetToken).Error; err != nil {
		return nil, err
	}
	return &resetToken, nil
}

func (r *resetTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.PasswordResetToken{}).
		Where("id = ?", id).
		Update("used", true).Error
}

func (r *resetTokenRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.PasswordResetToken{}).Error
}
