package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExcludedItemType enumerates the entity kinds a tombstone may cover.
type ExcludedItemType string

const (
	ExcludedAgent        ExcludedItemType = "agent"
	ExcludedSession      ExcludedItemType = "session"
	ExcludedConversation ExcludedItemType = "conversation"
)

// Valid reports whether the type is a known value.
func (t ExcludedItemType) Valid() bool {
	switch t {
	case ExcludedAgent, ExcludedSession, ExcludedConversation:
		return true
	}
	return false
}

// ExcludedItem is a tombstone suppressing resurrection of a deleted entity
// by the external sync process. Unique on (item type, item id).
type ExcludedItem struct {
	ID         uuid.UUID        `json:"id" gorm:"type:char(36);primaryKey"`
	ItemType   ExcludedItemType `json:"item_type" gorm:"type:varchar(20);not null;uniqueIndex:idx_type_item"`
	ItemID     uuid.UUID        `json:"item_id" gorm:"type:char(36);not null;uniqueIndex:idx_type_item"`
	ExcludedBy *uuid.UUID       `json:"excluded_by,omitempty" gorm:"type:char(36)"`
	Reason     string           `json:"reason,omitempty" gorm:"type:text"`
	CreatedAt  time.Time        `json:"created_at" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (e *ExcludedItem) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
