package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	database "github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/standings"
)

type EventService interface {
	ListEvents(ctx context.Context, scope models.TenantScope, matchID int) ([]*models.MatchEvent, error)
	AddEvent(ctx context.Context, scope models.TenantScope, matchID int, input AddEventInput) (*models.MatchEvent, error)
	DeleteEvent(ctx context.Context, scope models.TenantScope, eventID int) error
}

// AddEventInput describes one in-match occurrence. TeamID may be omitted; it is
// then taken from the player's team.
type AddEventInput struct {
	PlayerID int              `json:"player_id"`
	TeamID   int              `json:"team_id,omitempty"`
	Type     models.EventType `json:"type"`
	Minute   int              `json:"minute"`
}

type eventService struct {
	db           *sql.DB
	eventRepo    repositories.EventRepository
	matchRepo    repositories.MatchRepository
	playerRepo   repositories.PlayerRepository
	recalculator *standings.Recalculator
	notifier     StandingsNotifier
}

func NewEventService(
	db *sql.DB,
	eventRepo repositories.EventRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	recalculator *standings.Recalculator,
	notifier StandingsNotifier,
) EventService {
	return &eventService{
		db:           db,
		eventRepo:    eventRepo,
		matchRepo:    matchRepo,
		playerRepo:   playerRepo,
		recalculator: recalculator,
		notifier:     notifierOrNoop(notifier),
	}
}

func (s *eventService) matchInScope(ctx context.Context, exec repositories.SQLExecutor, scope models.TenantScope, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, exec, matchID)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	if err := checkScope(scope, match.TenantID, ErrMatchNotFound); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *eventService) ListEvents(ctx context.Context, scope models.TenantScope, matchID int) ([]*models.MatchEvent, error) {
	if _, err := s.matchInScope(ctx, nil, scope, matchID); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events of match %d: %w", matchID, err)
	}
	return events, nil
}

func (s *eventService) AddEvent(ctx context.Context, scope models.TenantScope, matchID int, input AddEventInput) (*models.MatchEvent, error) {
	if input.PlayerID <= 0 {
		return nil, &standings.ValidationError{Field: "player_id", Reason: "is required"}
	}

	var (
		match *models.Match
		event *models.MatchEvent
	)
	err := database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		match, err = s.matchInScope(ctx, tx, scope, matchID)
		if err != nil {
			return err
		}

		player, err := s.playerRepo.GetByID(ctx, tx, input.PlayerID)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return &standings.ValidationError{Field: "player_id", Reason: fmt.Sprintf("player %d does not exist", input.PlayerID)}
			}
			return fmt.Errorf("failed to load player %d: %w", input.PlayerID, err)
		}
		if player.TenantID != match.TenantID {
			return &standings.ValidationError{Field: "player_id", Reason: "player belongs to another tenant"}
		}
		teamID := input.TeamID
		if teamID == 0 {
			teamID = player.TeamID
		}
		if player.TeamID != teamID {
			return &standings.ValidationError{Field: "player_id", Reason: fmt.Sprintf("player %d does not play for team %d", player.ID, teamID)}
		}

		event = &models.MatchEvent{
			TenantID: match.TenantID,
			MatchID:  match.ID,
			TeamID:   teamID,
			PlayerID: player.ID,
			Type:     input.Type,
			Minute:   input.Minute,
		}
		if err := s.recalculator.AddEvent(ctx, tx, match, event); err != nil {
			if errors.Is(err, repositories.ErrEventReferenceInvalid) {
				return &standings.ValidationError{Field: "event", Reason: "references an unknown match, team or player"}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event.Type == models.EventGoal {
		s.notifier.NotifyStandingsUpdated(match.TenantID, []int{match.HomeTeamID, match.AwayTeamID})
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, scope models.TenantScope, eventID int) error {
	var (
		match *models.Match
		event *models.MatchEvent
	)
	err := database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		event, err = s.eventRepo.GetByID(ctx, tx, eventID)
		if err != nil {
			if errors.Is(err, repositories.ErrEventNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("failed to load event %d: %w", eventID, err)
		}
		if err := checkScope(scope, event.TenantID, ErrEventNotFound); err != nil {
			return err
		}

		match, err = s.matchInScope(ctx, tx, scope, event.MatchID)
		if err != nil {
			return err
		}
		return s.recalculator.RemoveEvent(ctx, tx, match, event)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return err
	}

	if event.Type == models.EventGoal {
		s.notifier.NotifyStandingsUpdated(match.TenantID, []int{match.HomeTeamID, match.AwayTeamID})
	}
	return nil
}
