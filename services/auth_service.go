package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/utils"
)

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	EnsureSuperAdmin(ctx context.Context, email, password string) (bool, error)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, logger *slog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, nil, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrAuthInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

// EnsureSuperAdmin creates the bootstrap super admin when none exists yet.
// It reports whether a user was created.
func (s *authService) EnsureSuperAdmin(ctx context.Context, email, password string) (bool, error) {
	count, err := s.userRepo.CountByRole(ctx, nil, models.RoleSuperAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to count super admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	email = utils.NormalizeEmail(email)
	if !utils.IsValidEmail(email) {
		return false, validationError("bootstrap admin email %q is invalid", email)
	}
	if len(password) < utils.MinPasswordLength {
		return false, validationError("bootstrap admin password must be at least %d characters", utils.MinPasswordLength)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		Email:        email,
		Name:         "Super Admin",
		Role:         models.RoleSuperAdmin,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return false, ErrUserEmailConflict
		}
		return false, fmt.Errorf("failed to create super admin: %w", err)
	}

	s.logger.Info("Bootstrap super admin created", "user_id", user.ID, "email", user.Email)
	return true, nil
}
