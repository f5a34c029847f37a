package repositories

import (
	"context"

	"github.com/Dosada05/league-system/models"
)

// StandingRepository is the persistence port of the standings engine. It
// composes the entity repositories so every call shares the caller's executor.
type StandingRepository struct {
	teams   TeamRepository
	players PlayerRepository
	matches MatchRepository
	events  EventRepository
}

func NewStandingRepository(teams TeamRepository, players PlayerRepository, matches MatchRepository, events EventRepository) *StandingRepository {
	return &StandingRepository{teams: teams, players: players, matches: matches, events: events}
}

func (r *StandingRepository) CompletedMatchesForTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]models.TeamResult, error) {
	return r.matches.CompletedResultsForTeam(ctx, exec, teamID)
}

// SetTeamAggregates only runs inside a transaction.
func (r *StandingRepository) SetTeamAggregates(ctx context.Context, exec SQLExecutor, teamID int, agg models.TeamAggregates) error {
	return r.teams.SetAggregates(ctx, exec, teamID, agg)
}

func (r *StandingRepository) TeamAggregates(ctx context.Context, exec SQLExecutor, teamID int) (models.TeamAggregates, error) {
	return r.teams.GetAggregates(ctx, exec, teamID)
}

func (r *StandingRepository) ListTeamIDsByTenant(ctx context.Context, exec SQLExecutor, tenantID int) ([]int, error) {
	return r.teams.ListIDsByTenant(ctx, exec, tenantID)
}

func (r *StandingRepository) GoalCountsForMatch(ctx context.Context, exec SQLExecutor, matchID int) (models.GoalCounts, error) {
	return r.events.GoalCounts(ctx, exec, matchID)
}

func (r *StandingRepository) CountGoalEvents(ctx context.Context, exec SQLExecutor, matchID int) (int, error) {
	return r.events.CountByType(ctx, exec, matchID, models.EventGoal)
}

func (r *StandingRepository) SetMatchScore(ctx context.Context, exec SQLExecutor, matchID int, home, away *int) error {
	return r.matches.SetScore(ctx, exec, matchID, home, away)
}

func (r *StandingRepository) CreateEvent(ctx context.Context, exec SQLExecutor, event *models.MatchEvent) error {
	return r.events.Create(ctx, exec, event)
}

func (r *StandingRepository) DeleteEvent(ctx context.Context, exec SQLExecutor, eventID int) error {
	return r.events.Delete(ctx, exec, eventID)
}

func (r *StandingRepository) CountRedCards(ctx context.Context, exec SQLExecutor, matchID, playerID int) (int, error) {
	return r.events.CountForPlayer(ctx, exec, matchID, playerID, models.EventRedCard)
}

func (r *StandingRepository) DeleteEventsByMatch(ctx context.Context, exec SQLExecutor, matchID int) error {
	return r.events.DeleteByMatch(ctx, exec, matchID)
}

func (r *StandingRepository) DeleteMatch(ctx context.Context, exec SQLExecutor, matchID int) error {
	return r.matches.Delete(ctx, exec, matchID)
}

func (r *StandingRepository) OpponentsOfTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]int, error) {
	return r.matches.OpponentsOfTeam(ctx, exec, teamID)
}

func (r *StandingRepository) DeleteEventsByTeamMatches(ctx context.Context, exec SQLExecutor, teamID int) error {
	return r.events.DeleteByTeamMatches(ctx, exec, teamID)
}

func (r *StandingRepository) DeleteMatchesByTeam(ctx context.Context, exec SQLExecutor, teamID int) error {
	return r.matches.DeleteByTeam(ctx, exec, teamID)
}

func (r *StandingRepository) DeletePlayersByTeam(ctx context.Context, exec SQLExecutor, teamID int) error {
	return r.players.DeleteByTeam(ctx, exec, teamID)
}

func (r *StandingRepository) DeleteTeam(ctx context.Context, exec SQLExecutor, teamID int) error {
	return r.teams.Delete(ctx, exec, teamID)
}
