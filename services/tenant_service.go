package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

type TenantService interface {
	CreateTenant(ctx context.Context, scope models.TenantScope, input CreateTenantInput) (*models.Tenant, error)
	GetTenantByID(ctx context.Context, scope models.TenantScope, id int) (*models.Tenant, error)
	ListTenants(ctx context.Context, scope models.TenantScope) ([]*models.Tenant, error)
	DeleteTenant(ctx context.Context, scope models.TenantScope, id int) error
}

type CreateTenantInput struct {
	Name string `json:"name"`
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
}

func NewTenantService(tenantRepo repositories.TenantRepository) TenantService {
	return &tenantService{tenantRepo: tenantRepo}
}

func (s *tenantService) CreateTenant(ctx context.Context, scope models.TenantScope, input CreateTenantInput) (*models.Tenant, error) {
	if !scope.IsAll() {
		return nil, ErrForbiddenOperation
	}
	name, err := requireName("name", input.Name)
	if err != nil {
		return nil, err
	}

	tenant := &models.Tenant{Name: name}
	if err := s.tenantRepo.Create(ctx, nil, tenant); err != nil {
		if errors.Is(err, repositories.ErrTenantNameConflict) {
			return nil, ErrTenantNameConflict
		}
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}
	return tenant, nil
}

func (s *tenantService) GetTenantByID(ctx context.Context, scope models.TenantScope, id int) (*models.Tenant, error) {
	if err := checkScope(scope, id, ErrTenantNotFound); err != nil {
		return nil, err
	}
	tenant, err := s.tenantRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by id %d: %w", id, err)
	}
	return tenant, nil
}

func (s *tenantService) ListTenants(ctx context.Context, scope models.TenantScope) ([]*models.Tenant, error) {
	if !scope.Valid() {
		return nil, ErrForbiddenOperation
	}
	tenants, err := s.tenantRepo.List(ctx, nil, scope.Filter())
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	if tenants == nil {
		return []*models.Tenant{}, nil
	}
	return tenants, nil
}

func (s *tenantService) DeleteTenant(ctx context.Context, scope models.TenantScope, id int) error {
	if !scope.IsAll() {
		return ErrForbiddenOperation
	}
	err := s.tenantRepo.Delete(ctx, nil, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTenantNotFound):
		return ErrTenantNotFound
	case errors.Is(err, repositories.ErrTenantInUse):
		return ErrTenantInUse
	}
	return fmt.Errorf("failed to delete tenant %d: %w", id, err)
}
