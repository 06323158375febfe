package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetToken is a single-use, time-expiring token bound to a user.
type PasswordResetToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Token     string    `json:"-" gorm:"uniqueIndex;size:64;not null"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Used      bool      `json:"used" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (t *PasswordResetToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ValidAt reports whether the token may still be consumed at the given time.
func (t *PasswordResetToken) ValidAt(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
