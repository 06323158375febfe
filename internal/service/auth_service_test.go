package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"voxadmin/internal/audit"
	"voxadmin/internal/auth"
	"voxadmin/internal/model"
	"voxadmin/internal/repository"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAuthService_Login(t *testing.T) {
	hash, _ := auth.HashPassword("Secret123")

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "user@example.com",
			password: "Secret123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(&model.User{
					ID:           uuid.New(),
					Email:        "user@example.com",
					PasswordHash: hash,
					Role:         model.RoleUser,
					IsActive:     true,
				}, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, "user@example.com", model.RoleUser, mock.Anything).Return(nil)
				mRepo.On("TouchLastLogin", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: "Secret123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "user@example.com",
			password: "Wrong123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(&model.User{
					ID:           uuid.New(),
					Email:        "user@example.com",
					PasswordHash: hash,
					IsActive:     true,
				}, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "deactivated account with correct credentials",
			email:    "user@example.com",
			password: "Secret123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(&model.User{
					ID:           uuid.New(),
					Email:        "user@example.com",
					PasswordHash: hash,
					IsActive:     false,
				}, nil)
			},
			expectedError: ErrAccountDeactivated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockTokenStore)
			auditor := &recordingAuditor{}

			service := NewAuthService(
				&repository.Store{Users: mockRepo, ResetTokens: new(MockResetTokenRepository)},
				newTestJWTService(), mockTokenStore,
				&recordingMailer{}, auditor, time.Hour, "http://localhost:3000")

			accessToken, refreshToken, user, err := service.Login(context.Background(), tt.email, tt.password, audit.RequestMeta{})

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
				assert.Nil(t, user)
				assert.Empty(t, auditor.Events())
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.Empty(t, user.PasswordHash)
				assert.NotNil(t, user.LastLoginAt)
				events := auditor.Events()
				assert.Len(t, events, 1)
				assert.Equal(t, audit.ActionLogin, events[0].Action)
			}

			mockRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_ForgotPassword(t *testing.T) {
	t.Run("unknown email is silently accepted", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
		mailer := &recordingMailer{}

		service := NewAuthService(
			&repository.Store{Users: mockRepo, ResetTokens: new(MockResetTokenRepository)},
			newTestJWTService(), new(MockTokenStore),
			mailer, &recordingAuditor{}, time.Hour, "http://localhost:3000")

		sent, err := service.ForgotPassword(context.Background(), "notfound@example.com")

		assert.NoError(t, err)
		assert.False(t, sent)
		assert.Empty(t, mailer.resetLinks)
	})

	t.Run("known email gets a reset link", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockResetTokenRepository)
		userID := uuid.New()
		mockRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(&model.User{
			ID: userID, Email: "user@example.com", IsActive: true,
		}, nil)
		mockTokens.On("Create", mock.Anything, mock.AnythingOfType("*model.PasswordResetToken")).Return(nil)
		mailer := &recordingMailer{}

		service := NewAuthService(
			&repository.Store{Users: mockRepo, ResetTokens: mockTokens},
			newTestJWTService(), new(MockTokenStore),
			mailer, &recordingAuditor{}, time.Hour, "http://localhost:3000")

		sent, err := service.ForgotPassword(context.Background(), "user@example.com")

		assert.NoError(t, err)
		assert.True(t, sent)
		assert.Len(t, mailer.resetLinks, 1)
		assert.Contains(t, mailer.resetLinks[0], "http://localhost:3000/reset-password?token=")
		mockTokens.AssertExpectations(t)
	})

	t.Run("mail failure is reported without an error", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokens := new(MockResetTokenRepository)
		mockRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(&model.User{
			ID: uuid.New(), Email: "user@example.com", IsActive: true,
		}, nil)
		mockTokens.On("Create", mock.Anything, mock.AnythingOfType("*model.PasswordResetToken")).Return(nil)

		service := NewAuthService(
			&repository.Store{Users: mockRepo, ResetTokens: mockTokens},
			newTestJWTService(), new(MockTokenStore),
			&recordingMailer{failing: true}, &recordingAuditor{}, time.Hour, "http://localhost:3000")

		sent, err := service.ForgotPassword(context.Background(), "user@example.com")

		assert.NoError(t, err)
		assert.False(t, sent)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	newService := func(tokens *MockResetTokenRepository, users *MockUserRepository) AuthService {
		return NewAuthService(
			&repository.Store{Users: users, ResetTokens: tokens},
			newTestJWTService(), new(MockTokenStore),
			&recordingMailer{}, &recordingAuditor{}, time.Hour, "http://localhost:3000")
	}

	t.Run("weak password reports violations before touching the token", func(t *testing.T) {
		mockTokens := new(MockResetTokenRepository)
		service := newService(mockTokens, new(MockUserRepository))

		err := service.ResetPassword(context.Background(), "some-token", "weak")

		assert.ErrorIs(t, err, ErrWeakPassword)
		var weak *WeakPasswordError
		assert.ErrorAs(t, err, &weak)
		assert.NotEmpty(t, weak.Violations)
		mockTokens.AssertNotCalled(t, "FindByToken")
	})

	t.Run("unknown token", func(t *testing.T) {
		mockTokens := new(MockResetTokenRepository)
		mockTokens.On("FindByToken", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)
		service := newService(mockTokens, new(MockUserRepository))

		err := service.ResetPassword(context.Background(), "missing", "Secret123")

		assert.Equal(t, ErrInvalidResetToken, err)
	})

	t.Run("already used token is rejected", func(t *testing.T) {
		mockTokens := new(MockResetTokenRepository)
		mockTokens.On("FindByToken", mock.Anything, "used-token").Return(&model.PasswordResetToken{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			Used:      true,
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		}, nil)
		service := newService(mockTokens, new(MockUserRepository))

		err := service.ResetPassword(context.Background(), "used-token", "Secret123")

		assert.Equal(t, ErrInvalidResetToken, err)
		mockTokens.AssertNotCalled(t, "MarkUsed")
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		mockTokens := new(MockResetTokenRepository)
		mockTokens.On("FindByToken", mock.Anything, "stale-token").Return(&model.PasswordResetToken{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			ExpiresAt: time.Now().UTC().Add(-time.Minute),
		}, nil)
		service := newService(mockTokens, new(MockUserRepository))

		err := service.ResetPassword(context.Background(), "stale-token", "Secret123")

		assert.Equal(t, ErrInvalidResetToken, err)
	})

	t.Run("valid token updates the password and is consumed", func(t *testing.T) {
		mockTokens := new(MockResetTokenRepository)
		mockUsers := new(MockUserRepository)
		tokenID := uuid.New()
		userID := uuid.New()
		mockTokens.On("FindByToken", mock.Anything, "good-token").Return(&model.PasswordResetToken{
			ID:        tokenID,
			UserID:    userID,
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		}, nil)
		mockUsers.On("UpdateFields", mock.Anything, userID, mock.MatchedBy(func(fields map[string]any) bool {
			return fields["must_change_password"] == false && fields["password_hash"] != ""
		})).Return(nil)
		mockTokens.On("MarkUsed", mock.Anything, tokenID).Return(nil)
		service := newService(mockTokens, mockUsers)

		err := service.ResetPassword(context.Background(), "good-token", "Secret123")

		assert.NoError(t, err)
		mockTokens.AssertExpectations(t)
		mockUsers.AssertExpectations(t)
	})

	t.Run("failed token consumption aborts the reset", func(t *testing.T) {
		mockTokens := new(MockResetTokenRepository)
		mockUsers := new(MockUserRepository)
		tokenID := uuid.New()
		userID := uuid.New()
		mockTokens.On("FindByToken", mock.Anything, "good-token").Return(&model.PasswordResetToken{
			ID:        tokenID,
			UserID:    userID,
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		}, nil)
		mockUsers.On("UpdateFields", mock.Anything, userID, mock.Anything).Return(nil)
		mockTokens.On("MarkUsed", mock.Anything, tokenID).Return(gorm.ErrInvalidDB)
		auditor := &recordingAuditor{}
		service := NewAuthService(
			&repository.Store{Users: mockUsers, ResetTokens: mockTokens},
			newTestJWTService(), new(MockTokenStore),
			&recordingMailer{}, auditor, time.Hour, "http://localhost:3000")

		err := service.ResetPassword(context.Background(), "good-token", "Secret123")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "consume reset token")
		assert.Empty(t, auditor.Events())
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	t.Run("garbage token", func(t *testing.T) {
		service := NewAuthService(
			&repository.Store{Users: new(MockUserRepository), ResetTokens: new(MockResetTokenRepository)},
			newTestJWTService(), new(MockTokenStore),
			&recordingMailer{}, &recordingAuditor{}, time.Hour, "http://localhost:3000")

		accessToken, err := service.RefreshToken(context.Background(), "garbage")

		assert.Equal(t, ErrInvalidRefreshToken, err)
		assert.Empty(t, accessToken)
	})

	t.Run("revoked refresh token is rejected", func(t *testing.T) {
		jwtService := newTestJWTService()
		userID := uuid.New()
		tokenID, refreshToken, err := jwtService.GenerateRefreshToken(userID, "user@example.com", model.RoleUser)
		assert.NoError(t, err)

		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(uuid.Nil, "", model.Role(""), gorm.ErrRecordNotFound)

		service := NewAuthService(
			&repository.Store{Users: new(MockUserRepository), ResetTokens: new(MockResetTokenRepository)},
			jwtService, mockTokenStore,
			&recordingMailer{}, &recordingAuditor{}, time.Hour, "http://localhost:3000")

		accessToken, err := service.RefreshToken(context.Background(), refreshToken)

		assert.Equal(t, ErrInvalidRefreshToken, err)
		assert.Empty(t, accessToken)
	})

	t.Run("stored refresh token yields a new access token", func(t *testing.T) {
		jwtService := newTestJWTService()
		userID := uuid.New()
		tokenID, refreshToken, err := jwtService.GenerateRefreshToken(userID, "user@example.com", model.RoleManager)
		assert.NoError(t, err)

		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(userID, "user@example.com", model.RoleManager, nil)

		service := NewAuthService(
			&repository.Store{Users: new(MockUserRepository), ResetTokens: new(MockResetTokenRepository)},
			jwtService, mockTokenStore,
			&recordingMailer{}, &recordingAuditor{}, time.Hour, "http://localhost:3000")

		accessToken, err := service.RefreshToken(context.Background(), refreshToken)

		assert.NoError(t, err)
		assert.NotEmpty(t, accessToken)

		claims, err := jwtService.ValidateToken(accessToken)
		assert.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, model.RoleManager, claims.Role)
	})
}
