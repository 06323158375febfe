package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"voxadmin/internal/audit"
	"voxadmin/internal/auth"
	"voxadmin/internal/model"
	"voxadmin/internal/repository"
)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountDeactivated is returned when a deactivated account presents
	// correct credentials.
	ErrAccountDeactivated = errors.New("account is deactivated")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrInvalidResetToken is returned when a reset token is unknown, used, or expired.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	// ErrWeakPassword is returned when a password fails the strength rules.
	ErrWeakPassword = errors.New("password does not meet strength requirements")
)

// WeakPasswordError carries the violated strength rules.
type WeakPasswordError struct {
	Violations []string
}

func (e *WeakPasswordError) Error() string { return ErrWeakPassword.Error() }

func (e *WeakPasswordError) Unwrap() error { return ErrWeakPassword }

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, email, password string, meta audit.RequestMeta) (accessToken, refreshToken string, user *model.User, err error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, userID *model.User, accessTokenID, refreshToken string, meta audit.RequestMeta) error
	ForgotPassword(ctx context.Context, email string) (emailSent bool, err error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, user *model.User, currentPassword, newPassword string, meta audit.RequestMeta) error
}

type authService struct {
	store       *repository.Store
	jwtService  *auth.JWTService
	tokenStore  auth.TokenStoreInterface
	mailer      MailSender
	recorder    Auditor
	resetTTL    time.Duration
	frontendURL string
}

// MailSender is the slice of the mailer the auth service needs.
type MailSender interface {
	SendPasswordReset(to, resetLink string) error
}

// Auditor is the recording surface of the audit writer.
type Auditor interface {
	Record(ev audit.Event)
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store *repository.Store,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	mailer MailSender,
	recorder Auditor,
	resetTTL time.Duration,
	frontendURL string,
) AuthService {
	return &authService{
		store:       store,
		jwtService:  jwtService,
		tokenStore:  tokenStore,
		mailer:      mailer,
		recorder:    recorder,
		resetTTL:    resetTTL,
		frontendURL: frontendURL,
	}
}

// Login authenticates a user and returns an access/refresh token pair.
// Deactivated accounts are rejected even with correct credentials.
func (s *authService) Login(ctx context.Context, email, password string, meta audit.RequestMeta) (string, string, *model.User, error) {
	user, err := s.store.Users.FindByEmail(ctx, email)
	if err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", "", nil, ErrAccountDeactivated
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Email, user.Role, s.jwtService.RefreshTTL()); err != nil {
		return "", "", nil, fmt.Errorf("store refresh token: %w", err)
	}

	now := time.Now().UTC()
	_ = s.store.Users.TouchLastLogin(ctx, user.ID, now)
	user.LastLoginAt = &now

	s.recorder.Record(audit.Event{
		ActorID: &user.ID,
		Action:  audit.ActionLogin,
		Request: meta,
	})

	sanitized := user.Sanitized()
	return accessToken, refreshToken, &sanitized, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return "", ErrInvalidRefreshToken
	}

	storedUserID, storedEmail, storedRole, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}
	if storedUserID != claims.UserID || storedEmail != claims.Email {
		return "", ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(storedUserID, storedEmail, storedRole)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout blacklists the presented access token and drops the refresh token.
func (s *authService) Logout(ctx context.Context, user *model.User, accessTokenID, refreshToken string, meta audit.RequestMeta) error {
	if accessTokenID != "" {
		_ = s.tokenStore.BlacklistAccessToken(ctx, accessTokenID, s.jwtService.AccessTTL())
	}
	if refreshToken != "" {
		if tokenID, err := s.jwtService.ExtractTokenID(refreshToken); err == nil {
			_ = s.tokenStore.DeleteRefreshToken(ctx, tokenID)
		}
	}
	s.recorder.Record(audit.Event{
		ActorID: &user.ID,
		Action:  audit.ActionLogout,
		Request: meta,
	})
	return nil
}

// ForgotPassword issues a reset token and mails a reset link. Unknown
// addresses are silently accepted so the endpoint cannot be used for
// account enumeration.
func (s *authService) ForgotPassword(ctx context.Context, email string) (bool, error) {
	user, err := s.store.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		return false, fmt.Errorf("generate reset token: %w", err)
	}

	resetToken := &model.PasswordResetToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(s.resetTTL),
	}
	if err := s.store.ResetTokens.Create(ctx, resetToken); err != nil {
		return false, fmt.Errorf("store reset token: %w", err)
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)
	if err := s.mailer.SendPasswordReset(user.Email, resetLink); err != nil {
		return false, nil
	}
	return true, nil
}

// ResetPassword consumes a reset token and sets a new password. A token is
// valid only when unused and before expiry; consumption is one-shot.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if violations := auth.ValidatePasswordStrength(newPassword); len(violations) > 0 {
		return &WeakPasswordError{Violations: violations}
	}

	resetToken, err := s.store.ResetTokens.FindByToken(ctx, token)
	if err != nil {
		return ErrInvalidResetToken
	}
	if !resetToken.ValidAt(time.Now().UTC()) {
		return ErrInvalidResetToken
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// Setting the password and consuming the token either both happen or
	// neither does; a live token after a successful change would be reusable.
	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.UpdateFields(ctx, resetToken.UserID, map[string]any{
			"password_hash":        hash,
			"must_change_password": false,
		}); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if err := tx.ResetTokens.MarkUsed(ctx, resetToken.ID); err != nil {
			return fmt.Errorf("consume reset token: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.recorder.Record(audit.Event{
		ActorID:      &resetToken.UserID,
		Action:       audit.ActionPasswordReset,
		ResourceType: "user",
		ResourceID:   resetToken.UserID.String(),
	})
	return nil
}

// ChangePassword verifies the current password and sets a new one, clearing
// the forced-change flag.
func (s *authService) ChangePassword(ctx context.Context, user *model.User, currentPassword, newPassword string, meta audit.RequestMeta) error {
	stored, err := s.store.Users.FindByID(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(stored.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}
	if violations := auth.ValidatePasswordStrength(newPassword); len(violations) > 0 {
		return &WeakPasswordError{Violations: violations}
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.Users.UpdateFields(ctx, user.ID, map[string]any{
		"password_hash":        hash,
		"must_change_password": false,
	}); err != nil {
		return err
	}

	s.recorder.Record(audit.Event{
		ActorID: &user.ID,
		Action:  audit.ActionPasswordChange,
		Request: meta,
	})
	return nil
}
