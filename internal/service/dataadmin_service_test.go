package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"voxadmin/internal/audit"
	"voxadmin/internal/model"
	"voxadmin/internal/repository"
)

func newMockStore() (*repository.Store, *MockAgentRepository, *MockSessionRepository, *MockConversationRepository, *MockExcludedRepository) {
	agents := new(MockAgentRepository)
	sessions := new(MockSessionRepository)
	conversations := new(MockConversationRepository)
	excluded := new(MockExcludedRepository)
	store := &repository.Store{
		Agents:        agents,
		Sessions:      sessions,
		Conversations: conversations,
		Excluded:      excluded,
	}
	return store, agents, sessions, conversations, excluded
}

func TestDataAdminService_DeleteSession(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleAdmin}
	sessionID := uuid.New()

	t.Run("writes the tombstone before deleting", func(t *testing.T) {
		store, _, sessions, conversations, excluded := newMockStore()
		sessions.On("FindByID", mock.Anything, sessionID).Return(&model.Session{ID: sessionID}, nil)
		excluded.On("FindOrCreate", mock.Anything, mock.MatchedBy(func(item *model.ExcludedItem) bool {
			return item.ItemType == model.ExcludedSession && item.ItemID == sessionID && item.Reason == "spam"
		})).Return(&model.ExcludedItem{ItemType: model.ExcludedSession, ItemID: sessionID}, true, nil)
		conversations.On("DeleteBySessions", mock.Anything, []uuid.UUID{sessionID}).Return(nil)
		sessions.On("Delete", mock.Anything, sessionID).Return(nil)
		auditor := &recordingAuditor{}

		service := NewDataAdminService(store, auditor)
		err := service.DeleteSession(context.Background(), actor, sessionID, "spam", audit.RequestMeta{})

		assert.NoError(t, err)
		events := auditor.Events()
		assert.Len(t, events, 1)
		assert.Equal(t, audit.ActionSessionDelete, events[0].Action)
		sessions.AssertExpectations(t)
		excluded.AssertExpectations(t)
		conversations.AssertExpectations(t)
	})

	t.Run("pre-existing tombstone does not abort the delete", func(t *testing.T) {
		store, _, sessions, conversations, excluded := newMockStore()
		sessions.On("FindByID", mock.Anything, sessionID).Return(&model.Session{ID: sessionID}, nil)
		excluded.On("FindOrCreate", mock.Anything, mock.Anything).
			Return(&model.ExcludedItem{ItemType: model.ExcludedSession, ItemID: sessionID}, false, nil)
		conversations.On("DeleteBySessions", mock.Anything, []uuid.UUID{sessionID}).Return(nil)
		sessions.On("Delete", mock.Anything, sessionID).Return(nil)

		service := NewDataAdminService(store, &recordingAuditor{})
		err := service.DeleteSession(context.Background(), actor, sessionID, "", audit.RequestMeta{})

		assert.NoError(t, err)
		sessions.AssertExpectations(t)
	})

	t.Run("unknown session", func(t *testing.T) {
		store, _, sessions, _, excluded := newMockStore()
		sessions.On("FindByID", mock.Anything, sessionID).Return(nil, gorm.ErrRecordNotFound)

		service := NewDataAdminService(store, &recordingAuditor{})
		err := service.DeleteSession(context.Background(), actor, sessionID, "", audit.RequestMeta{})

		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		excluded.AssertNotCalled(t, "FindOrCreate")
	})
}

func TestDataAdminService_DeleteAgent_Cascade(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleAdmin}
	agentID := uuid.New()
	sessionIDs := []uuid.UUID{uuid.New(), uuid.New()}

	store, agents, sessions, conversations, excluded := newMockStore()
	agents.On("FindByID", mock.Anything, agentID).Return(&model.Agent{ID: agentID}, nil)
	sessions.On("IDsByAgent", mock.Anything, agentID).Return(sessionIDs, nil)
	for _, id := range sessionIDs {
		sessionID := id
		excluded.On("FindOrCreate", mock.Anything, mock.MatchedBy(func(item *model.ExcludedItem) bool {
			return item.ItemType == model.ExcludedSession && item.ItemID == sessionID
		})).Return(&model.ExcludedItem{ItemType: model.ExcludedSession, ItemID: sessionID}, true, nil)
	}
	excluded.On("FindOrCreate", mock.Anything, mock.MatchedBy(func(item *model.ExcludedItem) bool {
		return item.ItemType == model.ExcludedAgent && item.ItemID == agentID
	})).Return(&model.ExcludedItem{ItemType: model.ExcludedAgent, ItemID: agentID}, true, nil)
	conversations.On("DeleteBySessions", mock.Anything, sessionIDs).Return(nil)
	sessions.On("DeleteByAgent", mock.Anything, agentID).Return(nil)
	agents.On("Delete", mock.Anything, agentID).Return(nil)
	auditor := &recordingAuditor{}

	service := NewDataAdminService(store, auditor)
	err := service.DeleteAgent(context.Background(), actor, agentID, "decommissioned", audit.RequestMeta{})

	assert.NoError(t, err)
	events := auditor.Events()
	assert.Len(t, events, 1)
	assert.Equal(t, audit.ActionAgentDelete, events[0].Action)
	assert.Equal(t, 2, events[0].Metadata["sessions"])
	agents.AssertExpectations(t)
	sessions.AssertExpectations(t)
	conversations.AssertExpectations(t)
	excluded.AssertExpectations(t)
}

func TestDataAdminService_Restore(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleAdmin}
	itemID := uuid.New()

	t.Run("removes the tombstone", func(t *testing.T) {
		store, _, _, _, excluded := newMockStore()
		excluded.On("DeleteByTypeAndID", mock.Anything, model.ExcludedSession, itemID).Return(int64(1), nil)
		auditor := &recordingAuditor{}

		service := NewDataAdminService(store, auditor)
		err := service.Restore(context.Background(), actor, model.ExcludedSession, itemID, audit.RequestMeta{})

		assert.NoError(t, err)
		events := auditor.Events()
		assert.Len(t, events, 1)
		assert.Equal(t, audit.ActionExclusionRestore, events[0].Action)
	})

	t.Run("absent tombstone is not found", func(t *testing.T) {
		store, _, _, _, excluded := newMockStore()
		excluded.On("DeleteByTypeAndID", mock.Anything, model.ExcludedAgent, itemID).Return(int64(0), nil)
		auditor := &recordingAuditor{}

		service := NewDataAdminService(store, auditor)
		err := service.Restore(context.Background(), actor, model.ExcludedAgent, itemID, audit.RequestMeta{})

		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.Empty(t, auditor.Events())
	})
}
