package standings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

func newTestRecalculator(store Store) *Recalculator {
	return NewRecalculator(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func assertAggregates(t *testing.T, store *memStore, teamID int, want models.TeamAggregates) {
	t.Helper()
	if got := store.teams[teamID]; got != want {
		t.Fatalf("team %d aggregates = %+v, want %+v", teamID, got, want)
	}
}

func TestScoreChangedRecomputesBothTeams(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addTeam(1)
	store.addTeam(2)
	match := store.addMatch(10, 1, 2, nil, nil)
	rc := newTestRecalculator(store)

	if err := rc.SetScore(ctx, nil, match, intPtr(2), intPtr(1)); err != nil {
		t.Fatalf("set score: %v", err)
	}
	assertAggregates(t, store, 1, models.TeamAggregates{Points: 3, Wins: 1, GoalsFor: 2, GoalsAgainst: 1})
	assertAggregates(t, store, 2, models.TeamAggregates{Losses: 1, GoalsFor: 1, GoalsAgainst: 2})

	// Correction after completion: 2-1 becomes 2-2.
	if err := rc.SetScore(ctx, nil, match, intPtr(2), intPtr(2)); err != nil {
		t.Fatalf("correct score: %v", err)
	}
	assertAggregates(t, store, 1, models.TeamAggregates{Points: 1, Draws: 1, GoalsFor: 2, GoalsAgainst: 2})
	assertAggregates(t, store, 2, models.TeamAggregates{Points: 1, Draws: 1, GoalsFor: 2, GoalsAgainst: 2})

	if err := rc.SetScore(ctx, nil, match, nil, nil); err != nil {
		t.Fatalf("clear score: %v", err)
	}
	assertAggregates(t, store, 1, models.TeamAggregates{})
	assertAggregates(t, store, 2, models.TeamAggregates{})
}

func TestSetScoreRejectsPartialScore(t *testing.T) {
	store := newMemStore()
	store.addTeam(1)
	store.addTeam(2)
	match := store.addMatch(10, 1, 2, nil, nil)

	err := newTestRecalculator(store).SetScore(context.Background(), nil, match, intPtr(1), nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.matches[10].Completed() {
		t.Fatalf("match must stay pending")
	}
	if len(store.aggregateWrites) != 0 {
		t.Fatalf("no aggregates should be written, got %v", store.aggregateWrites)
	}
}

func TestSetScoreRejectedWhenGoalEventsExist(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addTeam(1)
	store.addTeam(2)
	store.addPlayer(100, 1)
	match := store.addMatch(10, 1, 2, nil, nil)
	rc := newTestRecalculator(store)

	goal := &models.MatchEvent{TenantID: 1, MatchID: 10, TeamID: 1, PlayerID: 100, Type: models.EventGoal, Minute: 12}
	if err := rc.AddEvent(ctx, nil, match, goal); err != nil {
		t.Fatalf("add goal: %v", err)
	}

	err := rc.SetScore(ctx, nil, match, intPtr(0), intPtr(3))
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if *store.matches[10].HomeScore != 1 || *store.matches[10].AwayScore != 0 {
		t.Fatalf("score must remain the projected 1-0")
	}
}

func TestRecalculateTeamsOrderAndDedup(t *testing.T) {
	store := newMemStore()
	for _, id := range []int{1, 2, 3} {
		store.addTeam(id)
	}

	if err := newTestRecalculator(store).RecalculateTeams(context.Background(), nil, 3, 1, 3, 2, 1); err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	want := []int{1, 2, 3}
	if len(store.aggregateWrites) != len(want) {
		t.Fatalf("writes = %v, want %v", store.aggregateWrites, want)
	}
	for i := range want {
		if store.aggregateWrites[i] != want[i] {
			t.Fatalf("writes = %v, want %v", store.aggregateWrites, want)
		}
	}
}

func TestDeleteMatchEqualsNeverCreated(t *testing.T) {
	ctx := context.Background()

	build := func(withExtra bool) *memStore {
		store := newMemStore()
		for _, id := range []int{1, 2, 3} {
			store.addTeam(id)
		}
		store.addMatch(1, 1, 2, intPtr(3), intPtr(0))
		store.addMatch(2, 2, 3, intPtr(1), intPtr(1))
		if withExtra {
			store.addMatch(3, 3, 1, intPtr(4), intPtr(2))
		}
		if err := newTestRecalculator(store).RecalculateTeams(ctx, nil, 1, 2, 3); err != nil {
			t.Fatalf("recalculate: %v", err)
		}
		return store
	}

	withExtra := build(true)
	extra := *withExtra.matches[3]
	if err := newTestRecalculator(withExtra).DeleteMatch(ctx, nil, &extra); err != nil {
		t.Fatalf("delete match: %v", err)
	}

	never := build(false)
	for _, id := range []int{1, 2, 3} {
		if withExtra.teams[id] != never.teams[id] {
			t.Fatalf("team %d: after delete %+v, never created %+v", id, withExtra.teams[id], never.teams[id])
		}
	}
}

func TestDeleteMatchRemovesEvents(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addTeam(1)
	store.addTeam(2)
	store.addPlayer(100, 1)
	match := store.addMatch(10, 1, 2, nil, nil)
	rc := newTestRecalculator(store)

	goal := &models.MatchEvent{TenantID: 1, MatchID: 10, TeamID: 1, PlayerID: 100, Type: models.EventGoal, Minute: 5}
	if err := rc.AddEvent(ctx, nil, match, goal); err != nil {
		t.Fatalf("add goal: %v", err)
	}
	if err := rc.DeleteMatch(ctx, nil, match); err != nil {
		t.Fatalf("delete match: %v", err)
	}
	if len(store.events) != 0 {
		t.Fatalf("expected events to be removed, %d left", len(store.events))
	}
	assertAggregates(t, store, 1, models.TeamAggregates{})
	assertAggregates(t, store, 2, models.TeamAggregates{})
}

func TestDeleteTeamDropsMatchesFromOpponents(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	for _, id := range []int{1, 2, 3, 4} {
		store.addTeam(id)
	}
	store.addPlayer(100, 1)
	store.addMatch(1, 1, 2, intPtr(2), intPtr(0)) // deleted team beats 2
	store.addMatch(2, 3, 1, intPtr(1), intPtr(1)) // draw with 3
	store.addMatch(3, 2, 3, intPtr(0), intPtr(1)) // unrelated
	store.addMatch(4, 1, 4, nil, nil)             // pending against 4
	rc := newTestRecalculator(store)
	if err := rc.RecalculateTeams(ctx, nil, 1, 2, 3, 4); err != nil {
		t.Fatalf("recalculate: %v", err)
	}

	opponents, err := rc.DeleteTeam(ctx, nil, 1)
	if err != nil {
		t.Fatalf("delete team: %v", err)
	}
	if len(opponents) != 2 || opponents[0] != 2 || opponents[1] != 3 {
		t.Fatalf("opponents = %v, want [2 3]", opponents)
	}

	if _, ok := store.teams[1]; ok {
		t.Fatalf("team 1 still present")
	}
	if len(store.players) != 0 {
		t.Fatalf("players of deleted team still present")
	}
	if len(store.matches) != 1 {
		t.Fatalf("expected only the unrelated match to remain, got %d", len(store.matches))
	}
	assertAggregates(t, store, 2, models.TeamAggregates{Losses: 1, GoalsFor: 0, GoalsAgainst: 1})
	assertAggregates(t, store, 3, models.TeamAggregates{Points: 3, Wins: 1, GoalsFor: 1, GoalsAgainst: 0})
	assertAggregates(t, store, 4, models.TeamAggregates{})
}

func TestGoalEventProjection(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addTeam(1)
	store.addTeam(2)
	store.addPlayer(100, 1)
	store.addPlayer(200, 2)
	match := store.addMatch(10, 1, 2, nil, nil)
	rc := newTestRecalculator(store)

	var goalsA []*models.MatchEvent
	for _, minute := range []int{10, 55} {
		e := &models.MatchEvent{TenantID: 1, MatchID: 10, TeamID: 1, PlayerID: 100, Type: models.EventGoal, Minute: minute}
		if err := rc.AddEvent(ctx, nil, match, e); err != nil {
			t.Fatalf("add goal A: %v", err)
		}
		goalsA = append(goalsA, e)
	}
	goalB := &models.MatchEvent{TenantID: 1, MatchID: 10, TeamID: 2, PlayerID: 200, Type: models.EventGoal, Minute: 70}
	if err := rc.AddEvent(ctx, nil, match, goalB); err != nil {
		t.Fatalf("add goal B: %v", err)
	}

	if *match.HomeScore != 2 || *match.AwayScore != 1 {
		t.Fatalf("projected score = %d-%d, want 2-1", *match.HomeScore, *match.AwayScore)
	}
	assertAggregates(t, store, 1, models.TeamAggregates{Points: 3, Wins: 1, GoalsFor: 2, GoalsAgainst: 1})

	if err := rc.RemoveEvent(ctx, nil, match, goalsA[1]); err != nil {
		t.Fatalf("remove goal: %v", err)
	}
	stored := store.matches[10]
	if *stored.HomeScore != 1 || *stored.AwayScore != 1 {
		t.Fatalf("stored score = %d-%d, want 1-1", *stored.HomeScore, *stored.AwayScore)
	}
	assertAggregates(t, store, 1, models.TeamAggregates{Points: 1, Draws: 1, GoalsFor: 1, GoalsAgainst: 1})
	assertAggregates(t, store, 2, models.TeamAggregates{Points: 1, Draws: 1, GoalsFor: 1, GoalsAgainst: 1})
}

func TestCardsDoNotTouchStandings(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addTeam(1)
	store.addTeam(2)
	store.addPlayer(100, 1)
	match := store.addMatch(10, 1, 2, nil, nil)
	rc := newTestRecalculator(store)

	for _, typ := range []models.EventType{models.EventYellowCard, models.EventAssist, models.EventRedCard} {
		e := &models.MatchEvent{TenantID: 1, MatchID: 10, TeamID: 1, PlayerID: 100, Type: typ, Minute: 30}
		if err := rc.AddEvent(ctx, nil, match, e); err != nil {
			t.Fatalf("add %s: %v", typ, err)
		}
	}
	if store.matches[10].Completed() {
		t.Fatalf("non-goal events must not set a score")
	}
	if len(store.aggregateWrites) != 0 {
		t.Fatalf("non-goal events must not recompute standings, got writes %v", store.aggregateWrites)
	}
}

func TestSecondRedCardRejected(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addTeam(1)
	store.addTeam(2)
	store.addPlayer(100, 1)
	match := store.addMatch(10, 1, 2, intPtr(1), intPtr(0))
	rc := newTestRecalculator(store)
	if err := rc.ScoreChanged(ctx, nil, match); err != nil {
		t.Fatalf("score changed: %v", err)
	}

	first := &models.MatchEvent{TenantID: 1, MatchID: 10, TeamID: 1, PlayerID: 100, Type: models.EventRedCard, Minute: 40}
	if err := rc.AddEvent(ctx, nil, match, first); err != nil {
		t.Fatalf("first red card: %v", err)
	}
	eventsBefore := len(store.events)
	aggBefore := store.teams[1]

	second := &models.MatchEvent{TenantID: 1, MatchID: 10, TeamID: 1, PlayerID: 100, Type: models.EventRedCard, Minute: 80}
	err := rc.AddEvent(ctx, nil, match, second)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(store.events) != eventsBefore {
		t.Fatalf("event count changed: %d -> %d", eventsBefore, len(store.events))
	}
	if store.teams[1] != aggBefore {
		t.Fatalf("aggregates changed")
	}
}

type duplicateRedCardStore struct {
	*memStore
}

func (s duplicateRedCardStore) CreateEvent(context.Context, repositories.SQLExecutor, *models.MatchEvent) error {
	return repositories.ErrEventDuplicateRedCard
}

func TestDuplicateRedCardFromStoreIsConflict(t *testing.T) {
	store := newMemStore()
	store.addTeam(1)
	store.addTeam(2)
	match := store.addMatch(10, 1, 2, nil, nil)

	e := &models.MatchEvent{TenantID: 1, MatchID: 10, TeamID: 1, PlayerID: 100, Type: models.EventRedCard, Minute: 3}
	err := newTestRecalculator(duplicateRedCardStore{store}).AddEvent(context.Background(), nil, match, e)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAddEventValidation(t *testing.T) {
	store := newMemStore()
	store.addTeam(1)
	store.addTeam(2)
	match := store.addMatch(10, 1, 2, nil, nil)
	rc := newTestRecalculator(store)

	tests := []struct {
		name  string
		event models.MatchEvent
	}{
		{"unknown type", models.MatchEvent{TenantID: 1, MatchID: 10, TeamID: 1, PlayerID: 1, Type: "offside", Minute: 1}},
		{"minute too high", models.MatchEvent{TenantID: 1, MatchID: 10, TeamID: 1, PlayerID: 1, Type: models.EventGoal, Minute: 121}},
		{"negative minute", models.MatchEvent{TenantID: 1, MatchID: 10, TeamID: 1, PlayerID: 1, Type: models.EventGoal, Minute: -1}},
		{"team not in match", models.MatchEvent{TenantID: 1, MatchID: 10, TeamID: 3, PlayerID: 1, Type: models.EventGoal, Minute: 1}},
		{"other match", models.MatchEvent{TenantID: 1, MatchID: 11, TeamID: 1, PlayerID: 1, Type: models.EventGoal, Minute: 1}},
		{"other tenant", models.MatchEvent{TenantID: 2, MatchID: 10, TeamID: 1, PlayerID: 1, Type: models.EventGoal, Minute: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.event
			if err := rc.AddEvent(context.Background(), nil, match, &e); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(store.events) != 0 {
				t.Fatalf("invalid event was stored")
			}
		})
	}
}

func TestAudit(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addTeam(1)
	store.addTeam(2)
	store.addMatch(10, 1, 2, intPtr(1), intPtr(0))
	rc := newTestRecalculator(store)

	err := rc.Audit(ctx, nil, 1)
	var cerr *ConsistencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConsistencyError before recalculation, got %v", err)
	}
	if cerr.TeamID != 1 || cerr.Expected.Wins != 1 {
		t.Fatalf("unexpected consistency error: %+v", cerr)
	}

	if err := rc.RecalculateTeams(ctx, nil, 1, 2); err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if err := rc.Audit(ctx, nil, 1); err != nil {
		t.Fatalf("audit after recalculation: %v", err)
	}
}

func TestRecalculateTenantUsesOneTransactionPerTeam(t *testing.T) {
	store := newMemStore()
	for _, id := range []int{1, 2, 3} {
		store.addTeam(id)
	}
	store.addMatch(1, 1, 2, intPtr(0), intPtr(2))

	txs := 0
	runTx := func(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
		txs++
		return fn(nil)
	}

	n, err := newTestRecalculator(store).RecalculateTenant(context.Background(), runTx, 1)
	if err != nil {
		t.Fatalf("recalculate tenant: %v", err)
	}
	if n != 3 {
		t.Fatalf("recalculated %d teams, want 3", n)
	}
	// one for listing, one per team
	if txs != 4 {
		t.Fatalf("transactions = %d, want 4", txs)
	}
	assertAggregates(t, store, 2, models.TeamAggregates{Points: 3, Wins: 1, GoalsFor: 2})
}
