package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enumerates user roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// SubscriptionTier enumerates subscription levels.
type SubscriptionTier string

const (
	TierFree       SubscriptionTier = "free"
	TierPro        SubscriptionTier = "pro"
	TierEnterprise SubscriptionTier = "enterprise"
)

// Valid reports whether the tier is a known value.
func (t SubscriptionTier) Valid() bool {
	switch t {
	case TierFree, TierPro, TierEnterprise:
		return true
	}
	return false
}

// User represents a dashboard account.
type User struct {
	ID                 uuid.UUID        `json:"id" gorm:"type:char(36);primaryKey"`
	Email              string           `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash       string           `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Name               string           `json:"name" gorm:"size:255"`
	Role               Role             `json:"role" gorm:"type:varchar(20);not null;default:'user';index"`
	SubscriptionTier   SubscriptionTier `json:"subscription_tier" gorm:"type:varchar(20);not null;default:'free'"`
	IsActive           bool             `json:"is_active" gorm:"default:true;index"`
	MustChangePassword bool             `json:"must_change_password" gorm:"default:false"`
	LastLoginAt        *time.Time       `json:"last_login_at,omitempty"`
	CreatedBy          *uuid.UUID       `json:"created_by,omitempty" gorm:"type:char(36)"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// BeforeCreate sets UUID and normalizes email before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Sanitized returns a copy safe to attach to request context and responses.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
