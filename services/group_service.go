package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

type GroupService interface {
	CreateGroup(ctx context.Context, scope models.TenantScope, input CreateGroupInput) (*models.Group, error)
	GetGroupByID(ctx context.Context, scope models.TenantScope, id int) (*models.Group, error)
	ListGroups(ctx context.Context, scope models.TenantScope) ([]*models.Group, error)
	RenameGroup(ctx context.Context, scope models.TenantScope, id int, input UpdateGroupInput) (*models.Group, error)
	DeleteGroup(ctx context.Context, scope models.TenantScope, id int) error
}

type CreateGroupInput struct {
	Name     string `json:"name"`
	TenantID *int   `json:"tenant_id,omitempty"`
}

type UpdateGroupInput struct {
	Name string `json:"name"`
}

type groupService struct {
	groupRepo repositories.GroupRepository
}

func NewGroupService(groupRepo repositories.GroupRepository) GroupService {
	return &groupService{groupRepo: groupRepo}
}

func mapGroupRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrGroupNotFound):
		return ErrGroupNotFound
	case errors.Is(err, repositories.ErrGroupNameConflict):
		return ErrGroupNameConflict
	case errors.Is(err, repositories.ErrGroupTenantInvalid):
		return ErrTenantNotFound
	case errors.Is(err, repositories.ErrGroupInUse):
		return ErrGroupInUse
	}
	return err
}

func (s *groupService) CreateGroup(ctx context.Context, scope models.TenantScope, input CreateGroupInput) (*models.Group, error) {
	tenantID, err := resolveWriteTenant(scope, input.TenantID)
	if err != nil {
		return nil, err
	}
	name, err := requireName("name", input.Name)
	if err != nil {
		return nil, err
	}

	group := &models.Group{TenantID: tenantID, Name: name}
	if err := s.groupRepo.Create(ctx, nil, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", mapGroupRepoError(err))
	}
	return group, nil
}

func (s *groupService) GetGroupByID(ctx context.Context, scope models.TenantScope, id int) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapGroupRepoError(err)
	}
	if err := checkScope(scope, group.TenantID, ErrGroupNotFound); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *groupService) ListGroups(ctx context.Context, scope models.TenantScope) ([]*models.Group, error) {
	if !scope.Valid() {
		return nil, ErrForbiddenOperation
	}
	groups, err := s.groupRepo.List(ctx, nil, scope.Filter())
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	if groups == nil {
		return []*models.Group{}, nil
	}
	return groups, nil
}

func (s *groupService) RenameGroup(ctx context.Context, scope models.TenantScope, id int, input UpdateGroupInput) (*models.Group, error) {
	group, err := s.GetGroupByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	name, err := requireName("name", input.Name)
	if err != nil {
		return nil, err
	}

	if err := s.groupRepo.UpdateName(ctx, nil, id, name); err != nil {
		return nil, fmt.Errorf("failed to rename group %d: %w", id, mapGroupRepoError(err))
	}
	group.Name = name
	return group, nil
}

func (s *groupService) DeleteGroup(ctx context.Context, scope models.TenantScope, id int) error {
	if _, err := s.GetGroupByID(ctx, scope, id); err != nil {
		return err
	}
	if err := s.groupRepo.Delete(ctx, nil, id); err != nil {
		return mapGroupRepoError(err)
	}
	return nil
}
