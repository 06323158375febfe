package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"voxadmin/internal/auth"
	"voxadmin/internal/model"
	"voxadmin/internal/repository"
)

// DefaultAdminEmail is the bootstrap administrator account.
const DefaultAdminEmail = "admin@voxadmin.local"

// SetupStatus reports entity counts for the setup status endpoint.
type SetupStatus struct {
	Users       int64 `json:"users"`
	Admins      int64 `json:"admins"`
	Assignments int64 `json:"assignments"`
}

// SetupService handles schema initialization and bootstrap.
type SetupService interface {
	Init(ctx context.Context, adminPassword string) (created bool, tempPassword string, err error)
	Status(ctx context.Context) (*SetupStatus, error)
}

type setupService struct {
	db          *gorm.DB
	users       repository.UserRepository
	assignments repository.AssignmentRepository
}

// NewSetupService creates a new setup service.
func NewSetupService(db *gorm.DB, users repository.UserRepository, assignments repository.AssignmentRepository) SetupService {
	return &setupService{db: db, users: users, assignments: assignments}
}

// Migrate runs schema migrations for every model. Safe to call repeatedly.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Agent{},
		&model.Session{},
		&model.Conversation{},
		&model.UserAgentAssignment{},
		&model.AuditLog{},
		&model.PasswordResetToken{},
		&model.ExcludedItem{},
	)
}

// Init migrates the schema and creates the default admin if absent. The
// operation is idempotent: re-running it changes nothing. When no password
// is supplied a temporary one is generated and returned so the caller can
// hand it to the operator; it exists nowhere else.
func (s *setupService) Init(ctx context.Context, adminPassword string) (bool, string, error) {
	if s.db != nil {
		if err := Migrate(s.db); err != nil {
			return false, "", fmt.Errorf("migrate schema: %w", err)
		}
	}

	_, err := s.users.FindByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		return false, "", nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, "", fmt.Errorf("check default admin: %w", err)
	}

	tempPassword := ""
	if adminPassword == "" {
		generated, err := auth.GenerateTempPassword()
		if err != nil {
			return false, "", fmt.Errorf("generate admin password: %w", err)
		}
		adminPassword = generated
		tempPassword = generated
	}
	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return false, "", fmt.Errorf("hash admin password: %w", err)
	}

	admin := &model.User{
		Email:              DefaultAdminEmail,
		PasswordHash:       hash,
		Name:               "Default Admin",
		Role:               model.RoleAdmin,
		SubscriptionTier:   model.TierEnterprise,
		IsActive:           true,
		MustChangePassword: true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		// A concurrent init may have created the admin first.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, "", nil
		}
		return false, "", fmt.Errorf("create default admin: %w", err)
	}
	return true, tempPassword, nil
}

// Status returns user/admin/assignment counts.
func (s *setupService) Status(ctx context.Context) (*SetupStatus, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	admins, err := s.users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &SetupStatus{Users: users, Admins: admins, Assignments: assignments}, nil
}
