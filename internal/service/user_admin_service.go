package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"voxadmin/internal/audit"
	"voxadmin/internal/auth"
	"voxadmin/internal/model"
	"voxadmin/internal/repository"
)

var (
	// ErrEmailTaken is returned when creating a user with an existing email.
	ErrEmailTaken = errors.New("user with this email already exists")
	// ErrSelfDeletion is returned when an admin tries to delete themself.
	ErrSelfDeletion = errors.New("you cannot delete your own account")
	// ErrSelfDemotion is returned when an admin tries to change their own role.
	ErrSelfDemotion = errors.New("you cannot change your own role")
	// ErrInvalidInput is returned for malformed enum values and the like.
	ErrInvalidInput = errors.New("invalid input")
)

// CreateUserInput describes an admin-created account.
type CreateUserInput struct {
	Email string
	Name  string
	Role  model.Role
	Tier  model.SubscriptionTier
}

// UpdateUserInput is a partial patch: nil fields are left unchanged.
type UpdateUserInput struct {
	Name     *string
	Role     *model.Role
	Tier     *model.SubscriptionTier
	IsActive *bool
}

// CreateUserResult reports the created user plus the welcome-email outcome.
type CreateUserResult struct {
	User      *model.User
	EmailSent bool
	// TempPassword is surfaced to the admin only when email delivery failed.
	TempPassword string
}

// WelcomeSender is the slice of the mailer the admin service needs.
type WelcomeSender interface {
	SendWelcome(to, name, tempPassword string) error
}

// UserAdminService handles admin user management.
type UserAdminService interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, actor *model.User, in CreateUserInput, meta audit.RequestMeta) (*CreateUserResult, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, in UpdateUserInput, meta audit.RequestMeta) (*model.User, error)
	Delete(ctx context.Context, actor *model.User, id uuid.UUID, meta audit.RequestMeta) error
	ResetUserPassword(ctx context.Context, actor *model.User, id uuid.UUID, meta audit.RequestMeta) (*CreateUserResult, error)
}

type userAdminService struct {
	store    *repository.Store
	mailer   WelcomeSender
	recorder Auditor
}

// NewUserAdminService creates a new admin user management service.
func NewUserAdminService(store *repository.Store, mailer WelcomeSender, recorder Auditor) UserAdminService {
	return &userAdminService{store: store, mailer: mailer, recorder: recorder}
}

func (s *userAdminService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return users, nil
}

func (s *userAdminService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.store.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// Create provisions an account with a temporary password and forced change
// on first login. User creation succeeds even when the welcome email fails;
// the outcome is reported in the result.
func (s *userAdminService) Create(ctx context.Context, actor *model.User, in CreateUserInput, meta audit.RequestMeta) (*CreateUserResult, error) {
	if _, err := s.store.Users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	tempPassword, err := auth.GenerateTempPassword()
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := in.Role
	if !role.Valid() {
		role = model.RoleUser
	}
	tier := in.Tier
	if !tier.Valid() {
		tier = model.TierFree
	}

	user := &model.User{
		Email:              in.Email,
		PasswordHash:       hash,
		Name:               in.Name,
		Role:               role,
		SubscriptionTier:   tier,
		IsActive:           true,
		MustChangePassword: true,
		CreatedBy:          &actor.ID,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	emailSent := s.mailer.SendWelcome(user.Email, user.Name, tempPassword) == nil

	s.recorder.Record(audit.Event{
		ActorID:      &actor.ID,
		Action:       audit.ActionUserCreate,
		ResourceType: "user",
		ResourceID:   user.ID.String(),
		Request:      meta,
		Metadata:     model.JSONMap{"email": user.Email, "role": string(user.Role)},
	})

	result := &CreateUserResult{User: user, EmailSent: emailSent}
	if !emailSent {
		result.TempPassword = tempPassword
	}
	sanitized := user.Sanitized()
	result.User = &sanitized
	return result, nil
}

// Update patches role/tier/active/name. Admins cannot change their own role.
func (s *userAdminService) Update(ctx context.Context, actor *model.User, id uuid.UUID, in UpdateUserInput, meta audit.RequestMeta) (*model.User, error) {
	user, err := s.store.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *in.Role)
		}
		if id == actor.ID && *in.Role != actor.Role {
			return nil, ErrSelfDemotion
		}
		fields["role"] = *in.Role
	}
	if in.Tier != nil {
		if !in.Tier.Valid() {
			return nil, fmt.Errorf("%w: unknown tier %q", ErrInvalidInput, *in.Tier)
		}
		fields["subscription_tier"] = *in.Tier
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if len(fields) == 0 {
		sanitized := user.Sanitized()
		return &sanitized, nil
	}

	if err := s.store.Users.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	s.recorder.Record(audit.Event{
		ActorID:      &actor.ID,
		Action:       audit.ActionUserUpdate,
		ResourceType: "user",
		ResourceID:   id.String(),
		Request:      meta,
		Metadata:     auditFields(fields),
	})

	updated, err := s.store.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sanitized := updated.Sanitized()
	return &sanitized, nil
}

// Delete removes a user and their owned rows. Assignments and reset tokens
// cascade; audit rows keep the log but drop the actor reference.
func (s *userAdminService) Delete(ctx context.Context, actor *model.User, id uuid.UUID, meta audit.RequestMeta) error {
	if id == actor.ID {
		return ErrSelfDeletion
	}
	if _, err := s.store.Users.FindByID(ctx, id); err != nil {
		return err
	}

	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if err := tx.Assignments.DeleteByUser(ctx, id); err != nil {
			return err
		}
		if err := tx.ResetTokens.DeleteByUser(ctx, id); err != nil {
			return err
		}
		if err := tx.Audit.DetachActor(ctx, id); err != nil {
			return err
		}
		return tx.Users.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.recorder.Record(audit.Event{
		ActorID:      &actor.ID,
		Action:       audit.ActionUserDelete,
		ResourceType: "user",
		ResourceID:   id.String(),
		Request:      meta,
	})
	return nil
}

// ResetUserPassword sets a fresh temporary password and forces a change on
// next login.
func (s *userAdminService) ResetUserPassword(ctx context.Context, actor *model.User, id uuid.UUID, meta audit.RequestMeta) (*CreateUserResult, error) {
	user, err := s.store.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tempPassword, err := auth.GenerateTempPassword()
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.Users.UpdateFields(ctx, id, map[string]any{
		"password_hash":        hash,
		"must_change_password": true,
	}); err != nil {
		return nil, err
	}

	emailSent := s.mailer.SendWelcome(user.Email, user.Name, tempPassword) == nil

	s.recorder.Record(audit.Event{
		ActorID:      &actor.ID,
		Action:       audit.ActionPasswordReset,
		ResourceType: "user",
		ResourceID:   id.String(),
		Request:      meta,
	})

	result := &CreateUserResult{EmailSent: emailSent}
	if !emailSent {
		result.TempPassword = tempPassword
	}
	sanitized := user.Sanitized()
	result.User = &sanitized
	return result, nil
}

func auditFields(fields map[string]any) model.JSONMap {
	out := model.JSONMap{}
	for k, v := range fields {
		out[k] = v
	}
	return out
}
