package fixtures

import (
	"context"
	"time"
)

// Fixture is one scheduled pairing produced by a generator.
type Fixture struct {
	Round       int       `json:"round"`
	HomeTeamID  int       `json:"home_team_id"`
	AwayTeamID  int       `json:"away_team_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type GenerateParams struct {
	TeamIDs       []int
	Legs          int // 1 = single, 2 = double round-robin
	StartAt       time.Time
	RoundInterval time.Duration
}

type Generator interface {
	Generate(ctx context.Context, params GenerateParams) ([]Fixture, error)

	Name() string
}
