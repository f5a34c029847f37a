package fixtures

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

const DefaultRoundInterval = 7 * 24 * time.Hour

var (
	ErrNotEnoughTeams = errors.New("at least two teams are required")
	ErrDuplicateTeam  = errors.New("team ids must be unique")
	ErrInvalidTeamID  = errors.New("team ids must be positive")
	ErrInvalidLegs    = errors.New("legs must be 1 or 2")
)

// bye marks the idle slot when the number of teams is odd.
const bye = 0

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

// Generate builds a schedule with the circle method: the first team stays
// fixed and the rest rotate one slot per round, so every team meets every
// other team exactly once per leg and plays at most once per round. The second
// leg repeats the first with home and away swapped.
func (g *RoundRobinGenerator) Generate(ctx context.Context, params GenerateParams) ([]Fixture, error) {
	legs := params.Legs
	if legs == 0 {
		legs = 1
	}
	if legs != 1 && legs != 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLegs, legs)
	}
	if len(params.TeamIDs) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughTeams, len(params.TeamIDs))
	}

	slots := make([]int, len(params.TeamIDs))
	copy(slots, params.TeamIDs)
	sort.Ints(slots)
	if slots[0] <= 0 {
		return nil, ErrInvalidTeamID
	}
	for i := 1; i < len(slots); i++ {
		if slots[i] == slots[i-1] {
			return nil, ErrDuplicateTeam
		}
	}
	if len(slots)%2 == 1 {
		slots = append(slots, bye)
	}

	interval := params.RoundInterval
	if interval <= 0 {
		interval = DefaultRoundInterval
	}

	n := len(slots)
	roundsPerLeg := n - 1
	fixtures := make([]Fixture, 0, legs*roundsPerLeg*n/2)

	for r := 0; r < roundsPerLeg; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i := 0; i < n/2; i++ {
			home, away := slots[i], slots[n-1-i]
			if home == bye || away == bye {
				continue
			}
			// Alternate sides so the fixed team is not always at home.
			if (i == 0 && r%2 == 1) || (i > 0 && i%2 == 1) {
				home, away = away, home
			}
			fixtures = append(fixtures, Fixture{
				Round:       r + 1,
				HomeTeamID:  home,
				AwayTeamID:  away,
				ScheduledAt: params.StartAt.Add(time.Duration(r) * interval),
			})
		}
		rotate(slots)
	}

	if legs == 2 {
		first := len(fixtures)
		for _, f := range fixtures[:first] {
			round := f.Round + roundsPerLeg
			fixtures = append(fixtures, Fixture{
				Round:       round,
				HomeTeamID:  f.AwayTeamID,
				AwayTeamID:  f.HomeTeamID,
				ScheduledAt: params.StartAt.Add(time.Duration(round-1) * interval),
			})
		}
	}

	return fixtures, nil
}

// rotate keeps slots[0] in place and moves every other slot one step clockwise.
func rotate(slots []int) {
	last := slots[len(slots)-1]
	copy(slots[2:], slots[1:len(slots)-1])
	slots[1] = last
}
