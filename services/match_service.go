package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	database "github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/fixtures"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/standings"
)

var ErrFixturesExist = errors.New("group already has matches scheduled")

type MatchService interface {
	CreateMatch(ctx context.Context, scope models.TenantScope, input CreateMatchInput) (*models.Match, error)
	GetMatchByID(ctx context.Context, scope models.TenantScope, id int) (*models.Match, error)
	ListMatches(ctx context.Context, scope models.TenantScope, filter MatchListFilter) ([]*models.Match, error)
	RescheduleMatch(ctx context.Context, scope models.TenantScope, id int, input RescheduleMatchInput) (*models.Match, error)
	SetScore(ctx context.Context, scope models.TenantScope, id int, input ScoreInput) (*models.Match, error)
	DeleteMatch(ctx context.Context, scope models.TenantScope, id int) error
	GenerateFixtures(ctx context.Context, scope models.TenantScope, groupID int, input GenerateFixturesInput) ([]*models.Match, error)
}

type CreateMatchInput struct {
	GroupID     int       `json:"group_id"`
	HomeTeamID  int       `json:"home_team_id"`
	AwayTeamID  int       `json:"away_team_id"`
	Round       int       `json:"round"`
	ScheduledAt time.Time `json:"scheduled_at"`
	HomeScore   *int      `json:"home_score,omitempty"`
	AwayScore   *int      `json:"away_score,omitempty"`
}

type MatchListFilter struct {
	GroupID *int
	TeamID  *int
	Round   *int
}

type RescheduleMatchInput struct {
	Round       *int       `json:"round,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// ScoreInput sets both scores, or clears both when they are null.
type ScoreInput struct {
	HomeScore *int `json:"home_score"`
	AwayScore *int `json:"away_score"`
}

type GenerateFixturesInput struct {
	Legs              int       `json:"legs"`
	StartAt           time.Time `json:"start_at"`
	RoundIntervalDays int       `json:"round_interval_days,omitempty"`
}

type matchService struct {
	db           *sql.DB
	matchRepo    repositories.MatchRepository
	eventRepo    repositories.EventRepository
	teamRepo     repositories.TeamRepository
	groupRepo    repositories.GroupRepository
	recalculator *standings.Recalculator
	generator    fixtures.Generator
	notifier     StandingsNotifier
	logger       *slog.Logger
	now          func() time.Time
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	eventRepo repositories.EventRepository,
	teamRepo repositories.TeamRepository,
	groupRepo repositories.GroupRepository,
	recalculator *standings.Recalculator,
	notifier StandingsNotifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:           db,
		matchRepo:    matchRepo,
		eventRepo:    eventRepo,
		teamRepo:     teamRepo,
		groupRepo:    groupRepo,
		recalculator: recalculator,
		generator:    fixtures.NewRoundRobinGenerator(),
		notifier:     notifierOrNoop(notifier),
		logger:       logger,
		now:          time.Now,
	}
}

func mapMatchRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchTeamsInvalid):
		return validationError("match references unknown group or teams")
	case errors.Is(err, repositories.ErrMatchScoreInvalid):
		return validationError("scores must not be negative")
	}
	return err
}

// loadMatch reads the match through exec and hides other tenants' matches.
func (s *matchService) loadMatch(ctx context.Context, exec repositories.SQLExecutor, scope models.TenantScope, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, exec, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	if err := checkScope(scope, match.TenantID, ErrMatchNotFound); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *matchService) loadGroup(ctx context.Context, exec repositories.SQLExecutor, scope models.TenantScope, groupID int) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, exec, groupID)
	if err != nil {
		return nil, mapGroupRepoError(err)
	}
	if err := checkScope(scope, group.TenantID, ErrGroupNotFound); err != nil {
		return nil, err
	}
	return group, nil
}

// checkMatchTeams enforces that both sides are distinct teams of the group.
func (s *matchService) checkMatchTeams(ctx context.Context, exec repositories.SQLExecutor, group *models.Group, homeID, awayID int) error {
	if homeID <= 0 || awayID <= 0 {
		return validationError("home_team_id and away_team_id are required")
	}
	if homeID == awayID {
		return &standings.ConflictError{Reason: fmt.Sprintf("team %d cannot play against itself", homeID)}
	}
	for _, teamID := range []int{homeID, awayID} {
		team, err := s.teamRepo.GetByID(ctx, exec, teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return validationError("team %d does not exist", teamID)
			}
			return fmt.Errorf("failed to load team %d: %w", teamID, err)
		}
		if team.TenantID != group.TenantID {
			return validationError("team %d belongs to another tenant", teamID)
		}
		if team.GroupID == nil || *team.GroupID != group.ID {
			return validationError("team %d is not in group %d", teamID, group.ID)
		}
	}
	return nil
}

func (s *matchService) CreateMatch(ctx context.Context, scope models.TenantScope, input CreateMatchInput) (*models.Match, error) {
	if input.ScheduledAt.IsZero() {
		return nil, validationError("scheduled_at is required")
	}
	if input.Round == 0 {
		input.Round = 1
	}
	if input.Round < 0 {
		return nil, validationError("round must be positive")
	}
	if err := standings.ValidateScore(input.HomeScore, input.AwayScore); err != nil {
		return nil, err
	}

	var match *models.Match
	err := database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		group, err := s.loadGroup(ctx, tx, scope, input.GroupID)
		if err != nil {
			return err
		}
		if _, err := resolveWriteTenant(scope, &group.TenantID); err != nil {
			return err
		}
		if err := s.checkMatchTeams(ctx, tx, group, input.HomeTeamID, input.AwayTeamID); err != nil {
			return err
		}

		match = &models.Match{
			TenantID:    group.TenantID,
			GroupID:     group.ID,
			HomeTeamID:  input.HomeTeamID,
			AwayTeamID:  input.AwayTeamID,
			Round:       input.Round,
			ScheduledAt: input.ScheduledAt,
			HomeScore:   input.HomeScore,
			AwayScore:   input.AwayScore,
		}
		if err := s.matchRepo.Create(ctx, tx, match); err != nil {
			return mapMatchRepoError(err)
		}
		if !match.Completed() {
			return nil
		}
		return s.recalculator.ScoreChanged(ctx, tx, match)
	})
	if err != nil {
		return nil, err
	}

	if match.Completed() {
		s.notifier.NotifyStandingsUpdated(match.TenantID, []int{match.HomeTeamID, match.AwayTeamID})
	}
	match.Status = match.DisplayStatus(s.now())
	return match, nil
}

func (s *matchService) GetMatchByID(ctx context.Context, scope models.TenantScope, id int) (*models.Match, error) {
	match, err := s.loadMatch(ctx, nil, scope, id)
	if err != nil {
		return nil, err
	}

	events, err := s.eventRepo.ListByMatch(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list events of match %d: %w", id, err)
	}
	match.Events = make([]models.MatchEvent, 0, len(events))
	for _, e := range events {
		match.Events = append(match.Events, *e)
	}
	match.Status = match.DisplayStatus(s.now())
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, scope models.TenantScope, filter MatchListFilter) ([]*models.Match, error) {
	if !scope.Valid() {
		return nil, ErrForbiddenOperation
	}
	matches, err := s.matchRepo.List(ctx, nil, repositories.MatchFilter{
		TenantID: scope.Filter(),
		GroupID:  filter.GroupID,
		TeamID:   filter.TeamID,
		Round:    filter.Round,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	now := s.now()
	for _, m := range matches {
		m.Status = m.DisplayStatus(now)
	}
	return matches, nil
}

func (s *matchService) RescheduleMatch(ctx context.Context, scope models.TenantScope, id int, input RescheduleMatchInput) (*models.Match, error) {
	match, err := s.loadMatch(ctx, nil, scope, id)
	if err != nil {
		return nil, err
	}
	if input.Round != nil {
		if *input.Round <= 0 {
			return nil, validationError("round must be positive")
		}
		match.Round = *input.Round
	}
	if input.ScheduledAt != nil {
		if input.ScheduledAt.IsZero() {
			return nil, validationError("scheduled_at must not be empty")
		}
		match.ScheduledAt = *input.ScheduledAt
	}

	if err := s.matchRepo.UpdateSchedule(ctx, nil, id, match.Round, match.ScheduledAt); err != nil {
		return nil, fmt.Errorf("failed to reschedule match %d: %w", id, mapMatchRepoError(err))
	}
	match.Status = match.DisplayStatus(s.now())
	return match, nil
}

func (s *matchService) SetScore(ctx context.Context, scope models.TenantScope, id int, input ScoreInput) (*models.Match, error) {
	var match *models.Match
	err := database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		match, err = s.loadMatch(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		return s.recalculator.SetScore(ctx, tx, match, input.HomeScore, input.AwayScore)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyStandingsUpdated(match.TenantID, []int{match.HomeTeamID, match.AwayTeamID})
	match.Status = match.DisplayStatus(s.now())
	return match, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, scope models.TenantScope, id int) error {
	var match *models.Match
	err := database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		match, err = s.loadMatch(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		return s.recalculator.DeleteMatch(ctx, tx, match)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Match deleted", "match_id", id, "tenant_id", match.TenantID)
	if match.Completed() {
		s.notifier.NotifyStandingsUpdated(match.TenantID, []int{match.HomeTeamID, match.AwayTeamID})
	}
	return nil
}

// GenerateFixtures schedules a round-robin for every team currently in the
// group. It refuses to run when the group already has matches.
func (s *matchService) GenerateFixtures(ctx context.Context, scope models.TenantScope, groupID int, input GenerateFixturesInput) ([]*models.Match, error) {
	if input.StartAt.IsZero() {
		return nil, validationError("start_at is required")
	}
	if input.RoundIntervalDays < 0 {
		return nil, validationError("round_interval_days must not be negative")
	}

	var created []*models.Match
	err := database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		group, err := s.loadGroup(ctx, tx, scope, groupID)
		if err != nil {
			return err
		}
		if _, err := resolveWriteTenant(scope, &group.TenantID); err != nil {
			return err
		}

		existing, err := s.matchRepo.List(ctx, tx, repositories.MatchFilter{GroupID: &group.ID})
		if err != nil {
			return fmt.Errorf("failed to list matches of group %d: %w", group.ID, err)
		}
		if len(existing) > 0 {
			return ErrFixturesExist
		}

		teams, err := s.teamRepo.List(ctx, tx, repositories.TeamFilter{TenantID: &group.TenantID, GroupID: &group.ID})
		if err != nil {
			return fmt.Errorf("failed to list teams of group %d: %w", group.ID, err)
		}
		teamIDs := make([]int, 0, len(teams))
		for _, t := range teams {
			teamIDs = append(teamIDs, t.ID)
		}

		generated, err := s.generator.Generate(ctx, fixtures.GenerateParams{
			TeamIDs:       teamIDs,
			Legs:          input.Legs,
			StartAt:       input.StartAt,
			RoundInterval: time.Duration(input.RoundIntervalDays) * 24 * time.Hour,
		})
		if err != nil {
			return validationError("%v", err)
		}

		created = make([]*models.Match, 0, len(generated))
		for _, f := range generated {
			m := &models.Match{
				TenantID:    group.TenantID,
				GroupID:     group.ID,
				HomeTeamID:  f.HomeTeamID,
				AwayTeamID:  f.AwayTeamID,
				Round:       f.Round,
				ScheduledAt: f.ScheduledAt,
			}
			if err := s.matchRepo.Create(ctx, tx, m); err != nil {
				return mapMatchRepoError(err)
			}
			created = append(created, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Fixtures generated", "group_id", groupID, "generator", s.generator.Name(), "matches", len(created))
	now := s.now()
	for _, m := range created {
		m.Status = m.DisplayStatus(now)
	}
	return created, nil
}
