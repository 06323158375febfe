package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog is an immutable append-only record of who did what to what
// resource. The application never updates or deletes rows.
type AuditLog struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	ActorID      *uuid.UUID `json:"actor_id,omitempty" gorm:"type:char(36);index"`
	Action       string     `json:"action" gorm:"size:64;not null;index"`
	ResourceType string     `json:"resource_type,omitempty" gorm:"size:32;index"`
	ResourceID   string     `json:"resource_id,omitempty" gorm:"size:64;index"`
	IP           string     `json:"ip,omitempty" gorm:"size:45"`
	UserAgent    string     `json:"user_agent,omitempty" gorm:"size:512"`
	Metadata     JSONMap    `json:"metadata,omitempty" gorm:"type:json"`
	CreatedAt    time.Time  `json:"created_at" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
