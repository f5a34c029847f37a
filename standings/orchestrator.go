package standings

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

// Store is everything the engine reads and writes. Every call receives the
// caller's executor so the recomputation commits or rolls back together with
// the mutation that triggered it.
type Store interface {
	CompletedMatchesForTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) ([]models.TeamResult, error)
	SetTeamAggregates(ctx context.Context, exec repositories.SQLExecutor, teamID int, agg models.TeamAggregates) error
	TeamAggregates(ctx context.Context, exec repositories.SQLExecutor, teamID int) (models.TeamAggregates, error)
	ListTeamIDsByTenant(ctx context.Context, exec repositories.SQLExecutor, tenantID int) ([]int, error)

	GoalCountsForMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) (models.GoalCounts, error)
	CountGoalEvents(ctx context.Context, exec repositories.SQLExecutor, matchID int) (int, error)
	SetMatchScore(ctx context.Context, exec repositories.SQLExecutor, matchID int, home, away *int) error

	CreateEvent(ctx context.Context, exec repositories.SQLExecutor, event *models.MatchEvent) error
	DeleteEvent(ctx context.Context, exec repositories.SQLExecutor, eventID int) error
	CountRedCards(ctx context.Context, exec repositories.SQLExecutor, matchID, playerID int) (int, error)

	DeleteEventsByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) error
	DeleteMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) error

	OpponentsOfTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) ([]int, error)
	DeleteEventsByTeamMatches(ctx context.Context, exec repositories.SQLExecutor, teamID int) error
	DeleteMatchesByTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) error
	DeletePlayersByTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) error
	DeleteTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) error
}

// TxRunner runs fn inside a fresh transaction that is committed when fn
// returns nil.
type TxRunner func(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error

// Recalculator decides which teams a mutation affects and rewrites their
// aggregates from the full post-mutation match history.
type Recalculator struct {
	store  Store
	logger *slog.Logger
}

func NewRecalculator(store Store, logger *slog.Logger) *Recalculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recalculator{store: store, logger: logger}
}

// RecalculateTeams recomputes the given teams one at a time in ascending id
// order. Duplicates are recomputed once.
func (r *Recalculator) RecalculateTeams(ctx context.Context, exec repositories.SQLExecutor, teamIDs ...int) error {
	for _, teamID := range uniqueSorted(teamIDs) {
		agg, err := r.compute(ctx, exec, teamID)
		if err != nil {
			return err
		}
		if err := r.store.SetTeamAggregates(ctx, exec, teamID, agg); err != nil {
			return fmt.Errorf("failed to store aggregates for team %d: %w", teamID, err)
		}
	}
	return nil
}

func (r *Recalculator) compute(ctx context.Context, exec repositories.SQLExecutor, teamID int) (models.TeamAggregates, error) {
	results, err := r.store.CompletedMatchesForTeam(ctx, exec, teamID)
	if err != nil {
		return models.TeamAggregates{}, fmt.Errorf("failed to load completed matches for team %d: %w", teamID, err)
	}
	return Calculate(teamID, results)
}

// SetScore writes a direct score edit. Once a match has goal events its score
// is owned by the event ledger and direct edits are refused.
func (r *Recalculator) SetScore(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, home, away *int) error {
	if err := ValidateScore(home, away); err != nil {
		return err
	}

	goals, err := r.store.CountGoalEvents(ctx, exec, match.ID)
	if err != nil {
		return fmt.Errorf("failed to count goal events for match %d: %w", match.ID, err)
	}
	if goals > 0 {
		return conflict("score of match %d is derived from its %d goal events", match.ID, goals)
	}

	if err := r.store.SetMatchScore(ctx, exec, match.ID, home, away); err != nil {
		return fmt.Errorf("failed to set score for match %d: %w", match.ID, err)
	}
	match.HomeScore, match.AwayScore = home, away

	return r.ScoreChanged(ctx, exec, match)
}

// ScoreChanged recomputes both sides of a match whose score was written.
func (r *Recalculator) ScoreChanged(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	return r.RecalculateTeams(ctx, exec, match.HomeTeamID, match.AwayTeamID)
}

// DeleteMatch removes the match with its events and recomputes both teams
// without it.
func (r *Recalculator) DeleteMatch(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if err := r.store.DeleteEventsByMatch(ctx, exec, match.ID); err != nil {
		return fmt.Errorf("failed to delete events of match %d: %w", match.ID, err)
	}
	if err := r.store.DeleteMatch(ctx, exec, match.ID); err != nil {
		return fmt.Errorf("failed to delete match %d: %w", match.ID, err)
	}
	return r.RecalculateTeams(ctx, exec, match.HomeTeamID, match.AwayTeamID)
}

// DeleteTeam removes the team with its matches, their events and its players,
// then recomputes every team that had a completed match against it. The
// recomputed opponent ids are returned.
func (r *Recalculator) DeleteTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) ([]int, error) {
	opponents, err := r.store.OpponentsOfTeam(ctx, exec, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list opponents of team %d: %w", teamID, err)
	}

	if err := r.store.DeleteEventsByTeamMatches(ctx, exec, teamID); err != nil {
		return nil, fmt.Errorf("failed to delete match events of team %d: %w", teamID, err)
	}
	if err := r.store.DeleteMatchesByTeam(ctx, exec, teamID); err != nil {
		return nil, fmt.Errorf("failed to delete matches of team %d: %w", teamID, err)
	}
	if err := r.store.DeletePlayersByTeam(ctx, exec, teamID); err != nil {
		return nil, fmt.Errorf("failed to delete players of team %d: %w", teamID, err)
	}
	if err := r.store.DeleteTeam(ctx, exec, teamID); err != nil {
		return nil, fmt.Errorf("failed to delete team %d: %w", teamID, err)
	}

	opponents = uniqueSorted(opponents)
	if err := r.RecalculateTeams(ctx, exec, opponents...); err != nil {
		return nil, err
	}
	return opponents, nil
}

// RecalculateTenant recomputes every team of the tenant, each in its own
// transaction. It stops at the first failure; teams already processed stay
// committed. The number of recomputed teams is returned.
func (r *Recalculator) RecalculateTenant(ctx context.Context, runTx TxRunner, tenantID int) (int, error) {
	var teamIDs []int
	err := runTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		teamIDs, err = r.store.ListTeamIDsByTenant(ctx, exec, tenantID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list teams of tenant %d: %w", tenantID, err)
	}

	done := 0
	for _, teamID := range uniqueSorted(teamIDs) {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		err := runTx(ctx, func(exec repositories.SQLExecutor) error {
			return r.RecalculateTeams(ctx, exec, teamID)
		})
		if err != nil {
			return done, err
		}
		done++
	}

	r.logger.Info("Recalculated tenant standings", "tenant_id", tenantID, "teams", done)
	return done, nil
}

// Audit recomputes a team without writing and reports a ConsistencyError when
// the stored aggregates differ.
func (r *Recalculator) Audit(ctx context.Context, exec repositories.SQLExecutor, teamID int) error {
	stored, err := r.store.TeamAggregates(ctx, exec, teamID)
	if err != nil {
		return fmt.Errorf("failed to load aggregates for team %d: %w", teamID, err)
	}
	expected, err := r.compute(ctx, exec, teamID)
	if err != nil {
		return err
	}
	if stored != expected {
		r.logger.Error("Standings consistency violation", "team_id", teamID, "stored", stored, "expected", expected)
		return &ConsistencyError{TeamID: teamID, Stored: stored, Expected: expected}
	}
	return nil
}

func uniqueSorted(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
