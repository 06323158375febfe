package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"voxadmin/internal/audit"
	"voxadmin/internal/model"
	"voxadmin/internal/repository"
)

// DataAdminService handles destructive deletes with tombstoning, summary
// edits, and the exclusion ledger.
type DataAdminService interface {
	DeleteSession(ctx context.Context, actor *model.User, sessionID uuid.UUID, reason string, meta audit.RequestMeta) error
	DeleteConversation(ctx context.Context, actor *model.User, conversationID uuid.UUID, reason string, meta audit.RequestMeta) error
	DeleteAgent(ctx context.Context, actor *model.User, agentID uuid.UUID, reason string, meta audit.RequestMeta) error
	EditSummary(ctx context.Context, actor *model.User, conversationID uuid.UUID, summary, language string, meta audit.RequestMeta) (*model.Conversation, error)
	ListExcluded(ctx context.Context) ([]model.ExcludedItem, error)
	Restore(ctx context.Context, actor *model.User, itemType model.ExcludedItemType, itemID uuid.UUID, meta audit.RequestMeta) error
}

type dataAdminService struct {
	store    *repository.Store
	recorder Auditor
}

// NewDataAdminService creates a new data-admin service.
func NewDataAdminService(store *repository.Store, recorder Auditor) DataAdminService {
	return &dataAdminService{store: store, recorder: recorder}
}

// DeleteSession removes a session and its conversations, writing a session
// tombstone in the same transaction. Re-requesting the delete is idempotent
// in effect: FindOrCreate never duplicates the tombstone.
func (s *dataAdminService) DeleteSession(ctx context.Context, actor *model.User, sessionID uuid.UUID, reason string, meta audit.RequestMeta) error {
	if _, err := s.store.Sessions.FindByID(ctx, sessionID); err != nil {
		return err
	}

	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if _, _, err := tx.Excluded.FindOrCreate(ctx, &model.ExcludedItem{
			ItemType:   model.ExcludedSession,
			ItemID:     sessionID,
			ExcludedBy: &actor.ID,
			Reason:     reason,
		}); err != nil {
			return err
		}
		if err := tx.Conversations.DeleteBySessions(ctx, []uuid.UUID{sessionID}); err != nil {
			return err
		}
		return tx.Sessions.Delete(ctx, sessionID)
	})
	if err != nil {
		return err
	}

	s.recorder.Record(audit.Event{
		ActorID:      &actor.ID,
		Action:       audit.ActionSessionDelete,
		ResourceType: "session",
		ResourceID:   sessionID.String(),
		Request:      meta,
		Metadata:     model.JSONMap{"reason": reason},
	})
	return nil
}

// DeleteConversation removes one conversation with its tombstone.
func (s *dataAdminService) DeleteConversation(ctx context.Context, actor *model.User, conversationID uuid.UUID, reason string, meta audit.RequestMeta) error {
	if _, err := s.store.Conversations.FindByID(ctx, conversationID); err != nil {
		return err
	}

	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if _, _, err := tx.Excluded.FindOrCreate(ctx, &model.ExcludedItem{
			ItemType:   model.ExcludedConversation,
			ItemID:     conversationID,
			ExcludedBy: &actor.ID,
			Reason:     reason,
		}); err != nil {
			return err
		}
		return tx.Conversations.Delete(ctx, conversationID)
	})
	if err != nil {
		return err
	}

	s.recorder.Record(audit.Event{
		ActorID:      &actor.ID,
		Action:       audit.ActionConversationDelete,
		ResourceType: "conversation",
		ResourceID:   conversationID.String(),
		Request:      meta,
		Metadata:     model.JSONMap{"reason": reason},
	})
	return nil
}

// DeleteAgent cascades: every session the agent owned is tombstoned
// (deduplicated against pre-existing session tombstones), the sessions'
// conversations and the sessions themselves are removed, then the agent row
// and its tombstone. The full sequence runs in one transaction, so a
// partial failure cannot leave sessions deleted without tombstones for the
// external sync to resurrect.
func (s *dataAdminService) DeleteAgent(ctx context.Context, actor *model.User, agentID uuid.UUID, reason string, meta audit.RequestMeta) error {
	if _, err := s.store.Agents.FindByID(ctx, agentID); err != nil {
		return err
	}

	var sessionCount int
	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		sessionIDs, err := tx.Sessions.IDsByAgent(ctx, agentID)
		if err != nil {
			return err
		}
		sessionCount = len(sessionIDs)

		for _, sessionID := range sessionIDs {
			if _, _, err := tx.Excluded.FindOrCreate(ctx, &model.ExcludedItem{
				ItemType:   model.ExcludedSession,
				ItemID:     sessionID,
				ExcludedBy: &actor.ID,
				Reason:     reason,
			}); err != nil {
				return err
			}
		}
		if _, _, err := tx.Excluded.FindOrCreate(ctx, &model.ExcludedItem{
			ItemType:   model.ExcludedAgent,
			ItemID:     agentID,
			ExcludedBy: &actor.ID,
			Reason:     reason,
		}); err != nil {
			return err
		}

		if err := tx.Conversations.DeleteBySessions(ctx, sessionIDs); err != nil {
			return err
		}
		if err := tx.Sessions.DeleteByAgent(ctx, agentID); err != nil {
			return err
		}
		return tx.Agents.Delete(ctx, agentID)
	})
	if err != nil {
		return err
	}

	s.recorder.Record(audit.Event{
		ActorID:      &actor.ID,
		Action:       audit.ActionAgentDelete,
		ResourceType: "agent",
		ResourceID:   agentID.String(),
		Request:      meta,
		Metadata:     model.JSONMap{"reason": reason, "sessions": sessionCount},
	})
	return nil
}

// EditSummary updates a conversation's generated summary.
func (s *dataAdminService) EditSummary(ctx context.Context, actor *model.User, conversationID uuid.UUID, summary, language string, meta audit.RequestMeta) (*model.Conversation, error) {
	if _, err := s.store.Conversations.FindByID(ctx, conversationID); err != nil {
		return nil, err
	}
	if err := s.store.Conversations.UpdateSummary(ctx, conversationID, summary, language); err != nil {
		return nil, err
	}

	s.recorder.Record(audit.Event{
		ActorID:      &actor.ID,
		Action:       audit.ActionSummaryEdit,
		ResourceType: "conversation",
		ResourceID:   conversationID.String(),
		Request:      meta,
	})
	return s.store.Conversations.FindByID(ctx, conversationID)
}

// ListExcluded returns every tombstone, most recent first.
func (s *dataAdminService) ListExcluded(ctx context.Context) ([]model.ExcludedItem, error) {
	return s.store.Excluded.List(ctx)
}

// Restore deletes a tombstone so the external sync may recreate the item on
// its next cycle.
func (s *dataAdminService) Restore(ctx context.Context, actor *model.User, itemType model.ExcludedItemType, itemID uuid.UUID, meta audit.RequestMeta) error {
	affected, err := s.store.Excluded.DeleteByTypeAndID(ctx, itemType, itemID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return gorm.ErrRecordNotFound
	}

	s.recorder.Record(audit.Event{
		ActorID:      &actor.ID,
		Action:       audit.ActionExclusionRestore,
		ResourceType: string(itemType),
		ResourceID:   itemID.String(),
		Request:      meta,
	})
	return nil
}
