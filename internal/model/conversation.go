package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewStatus represents the review workflow state of a conversation.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusReviewed ReviewStatus = "reviewed"
	ReviewStatusFlagged  ReviewStatus = "flagged"
)

// Turn is a single question/answer exchange within a conversation.
type Turn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// TurnList is the JSON column holding a conversation's turns.
type TurnList []Turn

// Value implements driver.Valuer.
func (t TurnList) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner.
func (t *TurnList) Scan(src any) error {
	if src == nil {
		*t = TurnList{}
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		if s, isStr := src.(string); isStr {
			data = []byte(s)
		} else {
			return errors.New("unsupported type for TurnList")
		}
	}
	if len(data) == 0 {
		*t = TurnList{}
		return nil
	}
	return json.Unmarshal(data, t)
}

// Conversation holds the question/answer turns of a session.
type Conversation struct {
	ID              uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	SessionID       uuid.UUID    `json:"session_id" gorm:"type:char(36);not null;index"`
	AgentID         uuid.UUID    `json:"agent_id" gorm:"type:char(36);not null;index"`
	Turns           TurnList     `json:"turns" gorm:"type:json"`
	Summary         string       `json:"summary,omitempty" gorm:"type:text"`
	SummaryLanguage string       `json:"summary_language,omitempty" gorm:"size:16"`
	ReviewStatus    ReviewStatus `json:"review_status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewedBy      *uuid.UUID   `json:"reviewed_by,omitempty" gorm:"type:char(36)"`
	ReviewedAt      *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	// Relations
	Session Session `json:"-" gorm:"foreignKey:SessionID"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
