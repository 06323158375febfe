package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AgentStatus represents the deployment status of a voice agent.
type AgentStatus string

const (
	AgentStatusActive   AgentStatus = "active"
	AgentStatusPaused   AgentStatus = "paused"
	AgentStatusArchived AgentStatus = "archived"
)

// Agent identifies a voice-agent deployment. The aggregate counters are
// denormalized and refreshed by the external sync process.
type Agent struct {
	ID                uuid.UUID   `json:"id" gorm:"type:char(36);primaryKey"`
	Name              string      `json:"name" gorm:"size:255;not null;index"`
	Description       string      `json:"description,omitempty" gorm:"type:text"`
	Region            string      `json:"region" gorm:"size:64;index"`
	Status            AgentStatus `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	MinInstances      int         `json:"min_instances" gorm:"default:0"`
	MaxInstances      int         `json:"max_instances" gorm:"default:1"`
	Greeting          string      `json:"greeting,omitempty" gorm:"type:text"`
	SessionCount      int64       `json:"session_count" gorm:"default:0"`
	TotalDurationSecs int64       `json:"total_duration_secs" gorm:"default:0"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (a *Agent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
