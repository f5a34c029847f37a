package models

import "time"

type EventType string

const (
	EventGoal       EventType = "goal"
	EventYellowCard EventType = "yellow_card"
	EventRedCard    EventType = "red_card"
	EventAssist     EventType = "assist"
)

const (
	MinEventMinute = 0
	MaxEventMinute = 120
)

func (t EventType) Valid() bool {
	switch t {
	case EventGoal, EventYellowCard, EventRedCard, EventAssist:
		return true
	}
	return false
}

type MatchEvent struct {
	ID        int       `json:"id" db:"id"`
	TenantID  int       `json:"tenant_id" db:"tenant_id"`
	MatchID   int       `json:"match_id" db:"match_id"`
	TeamID    int       `json:"team_id" db:"team_id"`
	PlayerID  int       `json:"player_id" db:"player_id"`
	Type      EventType `json:"type" db:"type"`
	Minute    int       `json:"minute" db:"minute"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
