package models

// TeamAggregates are the derived league-table statistics of a team.
type TeamAggregates struct {
	Points       int `json:"points" db:"points"`
	Wins         int `json:"wins" db:"wins"`
	Draws        int `json:"draws" db:"draws"`
	Losses       int `json:"losses" db:"losses"`
	GoalsFor     int `json:"goals_for" db:"goals_for"`
	GoalsAgainst int `json:"goals_against" db:"goals_against"`
}

func (a TeamAggregates) Played() int {
	return a.Wins + a.Draws + a.Losses
}

func (a TeamAggregates) GoalDifference() int {
	return a.GoalsFor - a.GoalsAgainst
}

// TeamResult is one completed match seen from a single team's side.
type TeamResult struct {
	MatchID    int `json:"match_id"`
	OpponentID int `json:"opponent_id"`
	MyScore    int `json:"my_score"`
	OppScore   int `json:"opp_score"`
}

// GoalCounts is the number of goal events recorded for each side of a match.
type GoalCounts struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// StandingRow is a single line of a league table.
type StandingRow struct {
	Position       int    `json:"position"`
	TeamID         int    `json:"team_id"`
	TeamName       string `json:"team_name"`
	GroupID        *int   `json:"group_id,omitempty"`
	Played         int    `json:"played"`
	GoalDifference int    `json:"goal_difference"`
	TeamAggregates
}
