package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SessionStatus represents the status of a voice session.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusFailed     SessionStatus = "failed"
)

// Session represents one phone/voice interaction tied to an agent. Metadata
// may embed telephony provider call identifiers.
type Session struct {
	ID           uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	AgentID      uuid.UUID       `json:"agent_id" gorm:"type:char(36);not null;index"`
	StartedAt    time.Time       `json:"started_at" gorm:"not null;index"`
	EndedAt      *time.Time      `json:"ended_at,omitempty"`
	Status       SessionStatus   `json:"status" gorm:"type:varchar(20);not null;default:'in_progress';index"`
	DurationSecs int64           `json:"duration_secs" gorm:"default:0"`
	Cost         decimal.Decimal `json:"cost" gorm:"type:decimal(12,4);not null;default:0"`
	CallerNumber string          `json:"caller_number,omitempty" gorm:"size:32"`
	Metadata     JSONMap         `json:"metadata,omitempty" gorm:"type:json"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Relations
	Agent Agent `json:"-" gorm:"foreignKey:AgentID"`
}

// BeforeCreate sets UUID before creating the record.
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
