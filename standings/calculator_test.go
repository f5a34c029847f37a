package standings

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/Dosada05/league-system/models"
)

func intPtr(v int) *int {
	return &v
}

func TestCalculateWinAndLoss(t *testing.T) {
	a, err := Calculate(1, []models.TeamResult{{MatchID: 10, OpponentID: 2, MyScore: 2, OppScore: 1}})
	if err != nil {
		t.Fatalf("calculate A: %v", err)
	}
	want := models.TeamAggregates{Points: 3, Wins: 1, GoalsFor: 2, GoalsAgainst: 1}
	if a != want {
		t.Fatalf("A = %+v, want %+v", a, want)
	}

	b, err := Calculate(2, []models.TeamResult{{MatchID: 10, OpponentID: 1, MyScore: 1, OppScore: 2}})
	if err != nil {
		t.Fatalf("calculate B: %v", err)
	}
	want = models.TeamAggregates{Losses: 1, GoalsFor: 1, GoalsAgainst: 2}
	if b != want {
		t.Fatalf("B = %+v, want %+v", b, want)
	}
}

func TestCalculateEmptyHistory(t *testing.T) {
	agg, err := Calculate(1, nil)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if agg != (models.TeamAggregates{}) {
		t.Fatalf("expected zero aggregates, got %+v", agg)
	}
}

func TestCalculateRejectsMalformedResults(t *testing.T) {
	tests := []struct {
		name   string
		result models.TeamResult
	}{
		{"negative own score", models.TeamResult{MatchID: 1, OpponentID: 2, MyScore: -1, OppScore: 0}},
		{"negative opponent score", models.TeamResult{MatchID: 1, OpponentID: 2, MyScore: 0, OppScore: -3}},
		{"self opponent", models.TeamResult{MatchID: 1, OpponentID: 1, MyScore: 1, OppScore: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(1, []models.TeamResult{tt.result})
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected errors.Is(err, ErrValidation)")
			}
		})
	}
}

func randomResults(rng *rand.Rand, teamID, n int) []models.TeamResult {
	results := make([]models.TeamResult, n)
	for i := range results {
		opp := rng.Intn(20) + 1
		if opp == teamID {
			opp = teamID + 100
		}
		results[i] = models.TeamResult{MatchID: i + 1, OpponentID: opp, MyScore: rng.Intn(7), OppScore: rng.Intn(7)}
	}
	return results
}

func TestCalculateProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		results := randomResults(rng, 5, rng.Intn(30))

		agg, err := Calculate(5, results)
		if err != nil {
			t.Fatalf("calculate: %v", err)
		}

		if agg.Points != PointsForWin*agg.Wins+PointsForDraw*agg.Draws {
			t.Fatalf("points %d != 3*%d + %d", agg.Points, agg.Wins, agg.Draws)
		}
		if agg.Played() != len(results) {
			t.Fatalf("played %d, want %d", agg.Played(), len(results))
		}

		diff := 0
		for _, r := range results {
			diff += r.MyScore - r.OppScore
		}
		if agg.GoalDifference() != diff {
			t.Fatalf("goal difference %d, want %d", agg.GoalDifference(), diff)
		}

		again, err := Calculate(5, results)
		if err != nil {
			t.Fatalf("calculate again: %v", err)
		}
		if again != agg {
			t.Fatalf("calculation not idempotent: %+v vs %+v", agg, again)
		}
	}
}

func TestResultsFromMatches(t *testing.T) {
	matches := []models.Match{
		{ID: 1, HomeTeamID: 1, AwayTeamID: 2, HomeScore: intPtr(2), AwayScore: intPtr(1)},
		{ID: 2, HomeTeamID: 3, AwayTeamID: 1, HomeScore: intPtr(0), AwayScore: intPtr(4)},
		{ID: 3, HomeTeamID: 1, AwayTeamID: 4},
		{ID: 4, HomeTeamID: 4, AwayTeamID: 1, HomeScore: intPtr(1)},
	}

	results, err := ResultsFromMatches(1, matches)
	if err != nil {
		t.Fatalf("results: %v", err)
	}

	want := []models.TeamResult{
		{MatchID: 1, OpponentID: 2, MyScore: 2, OppScore: 1},
		{MatchID: 2, OpponentID: 3, MyScore: 4, OppScore: 0},
	}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i := range want {
		if results[i] != want[i] {
			t.Fatalf("result %d = %+v, want %+v", i, results[i], want[i])
		}
	}
}

func TestResultsFromMatchesRejectsInvalidMatches(t *testing.T) {
	tests := []struct {
		name  string
		match models.Match
	}{
		{"not a participant", models.Match{ID: 1, HomeTeamID: 2, AwayTeamID: 3, HomeScore: intPtr(1), AwayScore: intPtr(0)}},
		{"self match", models.Match{ID: 1, HomeTeamID: 1, AwayTeamID: 1, HomeScore: intPtr(1), AwayScore: intPtr(0)}},
		{"negative score", models.Match{ID: 1, HomeTeamID: 1, AwayTeamID: 2, HomeScore: intPtr(-1), AwayScore: intPtr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ResultsFromMatches(1, []models.Match{tt.match}); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestValidateScore(t *testing.T) {
	tests := []struct {
		name      string
		home      *int
		away      *int
		wantError bool
	}{
		{"complete", intPtr(2), intPtr(0), false},
		{"cleared", nil, nil, false},
		{"home only", intPtr(1), nil, true},
		{"away only", nil, intPtr(1), true},
		{"negative", intPtr(-1), intPtr(0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScore(tt.home, tt.away)
			if (err != nil) != tt.wantError {
				t.Fatalf("ValidateScore() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}
