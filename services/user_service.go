package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/utils"
)

type UserService interface {
	CreateUser(ctx context.Context, scope models.TenantScope, input CreateUserInput) (*models.User, error)
	GetUserByID(ctx context.Context, scope models.TenantScope, id int) (*models.User, error)
	ListUsers(ctx context.Context, scope models.TenantScope) ([]*models.User, error)
	DeleteUser(ctx context.Context, scope models.TenantScope, id int) error
}

type CreateUserInput struct {
	Email    string          `json:"email"`
	Name     string          `json:"name"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
	TenantID *int            `json:"tenant_id,omitempty"`
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) CreateUser(ctx context.Context, scope models.TenantScope, input CreateUserInput) (*models.User, error) {
	email := utils.NormalizeEmail(input.Email)
	if !utils.IsValidEmail(email) {
		return nil, validationError("email %q is invalid", input.Email)
	}
	name, err := requireName("name", input.Name)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < utils.MinPasswordLength {
		return nil, validationError("password must be at least %d characters", utils.MinPasswordLength)
	}
	if input.Role == "" {
		input.Role = models.RoleUser
	}
	if !input.Role.Valid() {
		return nil, validationError("unknown role %q", input.Role)
	}

	user := &models.User{Email: email, Name: name, Role: input.Role}
	if input.Role == models.RoleSuperAdmin {
		// Супер-админ существует вне тенантов.
		if !scope.IsAll() {
			return nil, ErrForbiddenOperation
		}
		if input.TenantID != nil {
			return nil, validationError("super admins cannot belong to a tenant")
		}
	} else {
		tenantID, err := resolveWriteTenant(scope, input.TenantID)
		if err != nil {
			return nil, err
		}
		user.TenantID = &tenantID
	}

	user.PasswordHash, err = utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrUserEmailConflict
		case errors.Is(err, repositories.ErrUserTenantInvalid):
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, scope models.TenantScope, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	if !userVisible(scope, user) {
		return nil, ErrUserNotFound
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, scope models.TenantScope) ([]*models.User, error) {
	if !scope.Valid() {
		return nil, ErrForbiddenOperation
	}
	users, err := s.userRepo.List(ctx, nil, scope.Filter())
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		u.PasswordHash = ""
	}
	if users == nil {
		return []*models.User{}, nil
	}
	return users, nil
}

func (s *userService) DeleteUser(ctx context.Context, scope models.TenantScope, id int) error {
	user, err := s.GetUserByID(ctx, scope, id)
	if err != nil {
		return err
	}

	if user.Role == models.RoleSuperAdmin {
		count, err := s.userRepo.CountByRole(ctx, nil, models.RoleSuperAdmin)
		if err != nil {
			return fmt.Errorf("failed to count super admins: %w", err)
		}
		if count <= 1 {
			return ErrLastSuperAdmin
		}
	}

	if err := s.userRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}

func userVisible(scope models.TenantScope, user *models.User) bool {
	if scope.IsAll() {
		return true
	}
	return user.TenantID != nil && scope.Allows(*user.TenantID)
}
