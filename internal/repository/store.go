package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store aggregates every repository over one *gorm.DB handle. Multi-step
// destructive operations run through WithTransaction so partial failure
// cannot leave orphaned rows or missing tombstones.
type Store struct {
	Users         UserRepository
	Agents        AgentRepository
	Sessions      SessionRepository
	Conversations ConversationRepository
	Assignments   AssignmentRepository
	Audit         AuditRepository
	ResetTokens   ResetTokenRepository
	Excluded      ExcludedRepository

	db *gorm.DB
}

// NewStore builds a Store over the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		Users:         NewUserRepository(db),
		Agents:        NewAgentRepository(db),
		Sessions:      NewSessionRepository(db),
		Conversations: NewConversationRepository(db),
		Assignments:   NewAssignmentRepository(db),
		Audit:         NewAuditRepository(db),
		ResetTokens:   NewResetTokenRepository(db),
		Excluded:      NewExcludedRepository(db),
	}
}

// NewStoreWithDB builds a Store that can open transactions.
func NewStoreWithDB(db *gorm.DB) *Store {
	s := NewStore(db)
	s.db = db
	return s
}

// WithTransaction executes fn within a database transaction. The Store
// passed to fn is bound to the transaction handle; commit or rollback is
// guaranteed on every exit path.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx *Store) error) error {
	if s.db == nil {
		// Already transaction-bound or constructed for tests.
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
