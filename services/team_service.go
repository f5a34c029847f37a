package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	database "github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/standings"
)

type TeamService interface {
	CreateTeam(ctx context.Context, scope models.TenantScope, input CreateTeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, scope models.TenantScope, id int) (*models.Team, error)
	ListTeams(ctx context.Context, scope models.TenantScope, groupID *int) ([]*models.Team, error)
	UpdateTeam(ctx context.Context, scope models.TenantScope, id int, input UpdateTeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, scope models.TenantScope, id int) error
}

type CreateTeamInput struct {
	Name     string `json:"name"`
	GroupID  *int   `json:"group_id,omitempty"`
	TenantID *int   `json:"tenant_id,omitempty"`
}

// UpdateTeamInput changes only the fields that are set. Aggregates are never
// accepted from clients.
type UpdateTeamInput struct {
	Name            *string `json:"name,omitempty"`
	GroupID         *int    `json:"group_id,omitempty"`
	RemoveFromGroup bool    `json:"remove_from_group,omitempty"`
}

type teamService struct {
	db           *sql.DB
	teamRepo     repositories.TeamRepository
	groupRepo    repositories.GroupRepository
	playerRepo   repositories.PlayerRepository
	recalculator *standings.Recalculator
	notifier     StandingsNotifier
	logger       *slog.Logger
}

func NewTeamService(
	db *sql.DB,
	teamRepo repositories.TeamRepository,
	groupRepo repositories.GroupRepository,
	playerRepo repositories.PlayerRepository,
	recalculator *standings.Recalculator,
	notifier StandingsNotifier,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		db:           db,
		teamRepo:     teamRepo,
		groupRepo:    groupRepo,
		playerRepo:   playerRepo,
		recalculator: recalculator,
		notifier:     notifierOrNoop(notifier),
		logger:       logger,
	}
}

func mapTeamRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	case errors.Is(err, repositories.ErrTeamGroupInvalid):
		return validationError("group or tenant does not exist")
	}
	return err
}

// groupInTenant loads a group and checks it belongs to tenantID.
func (s *teamService) groupInTenant(ctx context.Context, scope models.TenantScope, groupID, tenantID int) error {
	group, err := s.groupRepo.GetByID(ctx, nil, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to load group %d: %w", groupID, err)
	}
	if err := checkScope(scope, group.TenantID, ErrGroupNotFound); err != nil {
		return err
	}
	if group.TenantID != tenantID {
		return validationError("group %d belongs to another tenant", groupID)
	}
	return nil
}

func (s *teamService) CreateTeam(ctx context.Context, scope models.TenantScope, input CreateTeamInput) (*models.Team, error) {
	name, err := requireName("name", input.Name)
	if err != nil {
		return nil, err
	}

	requested := input.TenantID
	if requested == nil && input.GroupID != nil && scope.IsAll() {
		// Супер-админ может указать только группу; тенант берём из неё.
		group, err := s.groupRepo.GetByID(ctx, nil, *input.GroupID)
		if err != nil {
			return nil, mapGroupRepoError(err)
		}
		requested = &group.TenantID
	}
	tenantID, err := resolveWriteTenant(scope, requested)
	if err != nil {
		return nil, err
	}
	if input.GroupID != nil {
		if err := s.groupInTenant(ctx, scope, *input.GroupID, tenantID); err != nil {
			return nil, err
		}
	}

	team := &models.Team{TenantID: tenantID, GroupID: input.GroupID, Name: name}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", mapTeamRepoError(err))
	}
	return team, nil
}

func (s *teamService) getTeam(ctx context.Context, scope models.TenantScope, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}
	if err := checkScope(scope, team.TenantID, ErrTeamNotFound); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, scope models.TenantScope, id int) (*models.Team, error) {
	team, err := s.getTeam(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	players, err := s.playerRepo.ListByTeam(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of team %d: %w", id, err)
	}
	team.Players = make([]models.Player, 0, len(players))
	for _, p := range players {
		team.Players = append(team.Players, *p)
	}
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context, scope models.TenantScope, groupID *int) ([]*models.Team, error) {
	if !scope.Valid() {
		return nil, ErrForbiddenOperation
	}
	teams, err := s.teamRepo.List(ctx, nil, repositories.TeamFilter{TenantID: scope.Filter(), GroupID: groupID})
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, scope models.TenantScope, id int, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.getTeam(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := requireName("name", *input.Name)
		if err != nil {
			return nil, err
		}
		team.Name = name
	}

	newGroup := team.GroupID
	switch {
	case input.RemoveFromGroup && input.GroupID != nil:
		return nil, validationError("group_id and remove_from_group are mutually exclusive")
	case input.RemoveFromGroup:
		newGroup = nil
	case input.GroupID != nil:
		if err := s.groupInTenant(ctx, scope, *input.GroupID, team.TenantID); err != nil {
			return nil, err
		}
		newGroup = input.GroupID
	}

	if !sameGroup(team.GroupID, newGroup) {
		count, err := s.teamRepo.CountMatches(ctx, nil, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count matches of team %d: %w", id, err)
		}
		if count > 0 {
			return nil, ErrTeamHasMatches
		}
		team.GroupID = newGroup
	}

	if err := s.teamRepo.Update(ctx, nil, team); err != nil {
		return nil, fmt.Errorf("failed to update team %d: %w", id, mapTeamRepoError(err))
	}
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, scope models.TenantScope, id int) error {
	team, err := s.getTeam(ctx, scope, id)
	if err != nil {
		return err
	}

	var opponents []int
	err = database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		opponents, err = s.recalculator.DeleteTeam(ctx, tx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}

	s.logger.Info("Team deleted", "team_id", id, "tenant_id", team.TenantID, "recalculated_opponents", opponents)
	s.notifier.NotifyStandingsUpdated(team.TenantID, opponents)
	return nil
}

func sameGroup(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
