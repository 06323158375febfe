package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserAgentAssignment relates a user to an agent with granular capability
// flags. The (user, agent) pair is unique. CanMark is gated separately from
// the four general flags and always defaults to false.
type UserAgentAssignment struct {
	ID                   uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	UserID               uuid.UUID  `json:"user_id" gorm:"type:char(36);not null;uniqueIndex:idx_user_agent"`
	AgentID              uuid.UUID  `json:"agent_id" gorm:"type:char(36);not null;uniqueIndex:idx_user_agent"`
	CanViewSessions      bool       `json:"can_view_sessions" gorm:"default:true"`
	CanViewLogs          bool       `json:"can_view_logs" gorm:"default:false"`
	CanViewConversations bool       `json:"can_view_conversations" gorm:"default:true"`
	CanExportData        bool       `json:"can_export_data" gorm:"default:false"`
	CanMark              bool       `json:"can_mark" gorm:"default:false"`
	AssignedBy           *uuid.UUID `json:"assigned_by,omitempty" gorm:"type:char(36)"`
	AssignedAt           time.Time  `json:"assigned_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	// Relations
	User  User  `json:"-" gorm:"foreignKey:UserID"`
	Agent Agent `json:"-" gorm:"foreignKey:AgentID"`
}

// BeforeCreate sets UUID and the assignment timestamp.
func (a *UserAgentAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now().UTC()
	}
	return nil
}
