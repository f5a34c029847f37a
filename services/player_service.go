package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

type PlayerService interface {
	CreatePlayer(ctx context.Context, scope models.TenantScope, teamID int, input PlayerInput) (*models.Player, error)
	GetPlayerByID(ctx context.Context, scope models.TenantScope, id int) (*models.Player, error)
	ListPlayersByTeam(ctx context.Context, scope models.TenantScope, teamID int) ([]*models.Player, error)
	UpdatePlayer(ctx context.Context, scope models.TenantScope, id int, input PlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, scope models.TenantScope, id int) error
}

type PlayerInput struct {
	Name        string `json:"name"`
	ShirtNumber *int   `json:"shirt_number,omitempty"`
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	teamRepo   repositories.TeamRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository, teamRepo repositories.TeamRepository) PlayerService {
	return &playerService{playerRepo: playerRepo, teamRepo: teamRepo}
}

func validatePlayerInput(input PlayerInput) (string, error) {
	name, err := requireName("name", input.Name)
	if err != nil {
		return "", err
	}
	if input.ShirtNumber != nil && (*input.ShirtNumber < 0 || *input.ShirtNumber > 999) {
		return "", validationError("shirt_number must be between 0 and 999")
	}
	return name, nil
}

func (s *playerService) teamInScope(ctx context.Context, scope models.TenantScope, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, teamID)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}
	if err := checkScope(scope, team.TenantID, ErrTeamNotFound); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *playerService) CreatePlayer(ctx context.Context, scope models.TenantScope, teamID int, input PlayerInput) (*models.Player, error) {
	team, err := s.teamInScope(ctx, scope, teamID)
	if err != nil {
		return nil, err
	}
	name, err := validatePlayerInput(input)
	if err != nil {
		return nil, err
	}

	player := &models.Player{TenantID: team.TenantID, TeamID: team.ID, Name: name, ShirtNumber: input.ShirtNumber}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerTeamInvalid) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

func (s *playerService) GetPlayerByID(ctx context.Context, scope models.TenantScope, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player by id %d: %w", id, err)
	}
	if err := checkScope(scope, player.TenantID, ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *playerService) ListPlayersByTeam(ctx context.Context, scope models.TenantScope, teamID int) ([]*models.Player, error) {
	if _, err := s.teamInScope(ctx, scope, teamID); err != nil {
		return nil, err
	}
	players, err := s.playerRepo.ListByTeam(ctx, nil, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of team %d: %w", teamID, err)
	}
	return players, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, scope models.TenantScope, id int, input PlayerInput) (*models.Player, error) {
	player, err := s.GetPlayerByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	name, err := validatePlayerInput(input)
	if err != nil {
		return nil, err
	}

	player.Name = name
	player.ShirtNumber = input.ShirtNumber
	if err := s.playerRepo.Update(ctx, nil, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to update player %d: %w", id, err)
	}
	return player, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, scope models.TenantScope, id int) error {
	if _, err := s.GetPlayerByID(ctx, scope, id); err != nil {
		return err
	}
	err := s.playerRepo.Delete(ctx, nil, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayerInUse):
		return ErrPlayerInUse
	}
	return fmt.Errorf("failed to delete player %d: %w", id, err)
}
