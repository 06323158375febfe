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

func TestUserAdminService_Create(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleAdmin}

	t.Run("taken email is a conflict", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{Email: "taken@example.com"}, nil)
		store := &repository.Store{Users: mockUsers}

		service := NewUserAdminService(store, &recordingMailer{}, &recordingAuditor{})
		result, err := service.Create(context.Background(), actor, CreateUserInput{Email: "taken@example.com"}, audit.RequestMeta{})

		assert.Equal(t, ErrEmailTaken, err)
		assert.Nil(t, result)
	})

	t.Run("welcome email sent hides the temp password", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
		mockUsers.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "new@example.com" && u.MustChangePassword && u.IsActive && u.CreatedBy != nil
		})).Return(nil)
		store := &repository.Store{Users: mockUsers}
		mailer := &recordingMailer{}
		auditor := &recordingAuditor{}

		service := NewUserAdminService(store, mailer, auditor)
		result, err := service.Create(context.Background(), actor, CreateUserInput{
			Email: "new@example.com",
			Name:  "New User",
			Role:  model.RoleManager,
			Tier:  model.TierPro,
		}, audit.RequestMeta{})

		assert.NoError(t, err)
		assert.True(t, result.EmailSent)
		assert.Empty(t, result.TempPassword)
		assert.Empty(t, result.User.PasswordHash)
		assert.Equal(t, model.RoleManager, result.User.Role)
		assert.Len(t, mailer.welcomes, 1)
		events := auditor.Events()
		assert.Len(t, events, 1)
		assert.Equal(t, audit.ActionUserCreate, events[0].Action)
	})

	t.Run("email failure surfaces the temp password", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
		mockUsers.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
		store := &repository.Store{Users: mockUsers}

		service := NewUserAdminService(store, &recordingMailer{failing: true}, &recordingAuditor{})
		result, err := service.Create(context.Background(), actor, CreateUserInput{Email: "new@example.com"}, audit.RequestMeta{})

		assert.NoError(t, err)
		assert.False(t, result.EmailSent)
		assert.NotEmpty(t, result.TempPassword)
	})

	t.Run("unknown role falls back to user", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
		mockUsers.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Role == model.RoleUser && u.SubscriptionTier == model.TierFree
		})).Return(nil)
		store := &repository.Store{Users: mockUsers}

		service := NewUserAdminService(store, &recordingMailer{}, &recordingAuditor{})
		result, err := service.Create(context.Background(), actor, CreateUserInput{
			Email: "new@example.com",
			Role:  model.Role("superuser"),
			Tier:  model.SubscriptionTier("platinum"),
		}, audit.RequestMeta{})

		assert.NoError(t, err)
		assert.Equal(t, model.RoleUser, result.User.Role)
		mockUsers.AssertExpectations(t)
	})
}

func TestUserAdminService_Update_SelfDemotion(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleAdmin}
	mockUsers := new(MockUserRepository)
	mockUsers.On("FindByID", mock.Anything, actor.ID).Return(&model.User{ID: actor.ID, Role: model.RoleAdmin}, nil)
	store := &repository.Store{Users: mockUsers}

	service := NewUserAdminService(store, &recordingMailer{}, &recordingAuditor{})
	newRole := model.RoleUser
	updated, err := service.Update(context.Background(), actor, actor.ID, UpdateUserInput{Role: &newRole}, audit.RequestMeta{})

	assert.Equal(t, ErrSelfDemotion, err)
	assert.Nil(t, updated)
	mockUsers.AssertNotCalled(t, "UpdateFields")
}

func TestUserAdminService_Delete(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleAdmin}

	t.Run("self-deletion is refused", func(t *testing.T) {
		service := NewUserAdminService(&repository.Store{}, &recordingMailer{}, &recordingAuditor{})

		err := service.Delete(context.Background(), actor, actor.ID, audit.RequestMeta{})

		assert.Equal(t, ErrSelfDeletion, err)
	})

	t.Run("cascades assignments and reset tokens, detaches audit actor", func(t *testing.T) {
		targetID := uuid.New()
		mockUsers := new(MockUserRepository)
		mockAssignments := new(MockAssignmentRepository)
		mockResetTokens := new(MockResetTokenRepository)
		mockAudit := new(MockAuditRepository)

		mockUsers.On("FindByID", mock.Anything, targetID).Return(&model.User{ID: targetID}, nil)
		mockAssignments.On("DeleteByUser", mock.Anything, targetID).Return(nil)
		mockResetTokens.On("DeleteByUser", mock.Anything, targetID).Return(nil)
		mockAudit.On("DetachActor", mock.Anything, targetID).Return(nil)
		mockUsers.On("Delete", mock.Anything, targetID).Return(nil)

		store := &repository.Store{
			Users:       mockUsers,
			Assignments: mockAssignments,
			ResetTokens: mockResetTokens,
			Audit:       mockAudit,
		}
		auditor := &recordingAuditor{}

		service := NewUserAdminService(store, &recordingMailer{}, auditor)
		err := service.Delete(context.Background(), actor, targetID, audit.RequestMeta{})

		assert.NoError(t, err)
		events := auditor.Events()
		assert.Len(t, events, 1)
		assert.Equal(t, audit.ActionUserDelete, events[0].Action)
		mockUsers.AssertExpectations(t)
		mockAssignments.AssertExpectations(t)
		mockResetTokens.AssertExpectations(t)
		mockAudit.AssertExpectations(t)
	})
}

func TestUserAdminService_ResetUserPassword(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleAdmin}
	targetID := uuid.New()

	mockUsers := new(MockUserRepository)
	mockUsers.On("FindByID", mock.Anything, targetID).Return(&model.User{
		ID: targetID, Email: "user@example.com", Name: "User",
	}, nil)
	mockUsers.On("UpdateFields", mock.Anything, targetID, mock.MatchedBy(func(fields map[string]any) bool {
		return fields["must_change_password"] == true
	})).Return(nil)
	store := &repository.Store{Users: mockUsers}
	mailer := &recordingMailer{}

	service := NewUserAdminService(store, mailer, &recordingAuditor{})
	result, err := service.ResetUserPassword(context.Background(), actor, targetID, audit.RequestMeta{})

	assert.NoError(t, err)
	assert.True(t, result.EmailSent)
	assert.Empty(t, result.TempPassword)
	assert.Len(t, mailer.welcomes, 1)
	mockUsers.AssertExpectations(t)
}
