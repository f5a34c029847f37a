package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
)

// MatchDisplayWindow is how long after kick-off a pending match is shown as in progress.
const MatchDisplayWindow = 2 * time.Hour

type Match struct {
	ID          int       `json:"id" db:"id"`
	TenantID    int       `json:"tenant_id" db:"tenant_id"`
	GroupID     int       `json:"group_id" db:"group_id"`
	HomeTeamID  int       `json:"home_team_id" db:"home_team_id"`
	AwayTeamID  int       `json:"away_team_id" db:"away_team_id"`
	Round       int       `json:"round" db:"round"`
	ScheduledAt time.Time `json:"scheduled_at" db:"scheduled_at"`
	HomeScore   *int      `json:"home_score" db:"home_score"`
	AwayScore   *int      `json:"away_score" db:"away_score"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Status MatchStatus  `json:"status,omitempty" db:"-"`
	Events []MatchEvent `json:"events,omitempty" db:"-"`
}

// Completed reports whether both sides' scores are recorded.
func (m *Match) Completed() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// Involves reports whether the team plays in the match.
func (m *Match) Involves(teamID int) bool {
	return m.HomeTeamID == teamID || m.AwayTeamID == teamID
}

// DisplayStatus derives a status for presentation. It is never persisted and
// plays no part in standings.
func (m *Match) DisplayStatus(now time.Time) MatchStatus {
	if m.Completed() {
		return MatchStatusCompleted
	}
	if !now.Before(m.ScheduledAt) && now.Before(m.ScheduledAt.Add(MatchDisplayWindow)) {
		return MatchStatusInProgress
	}
	return MatchStatusScheduled
}
