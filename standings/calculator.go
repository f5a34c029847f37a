package standings

import (
	"github.com/Dosada05/league-system/models"
)

const (
	PointsForWin  = 3
	PointsForDraw = 1
	PointsForLoss = 0
)

// Calculate derives a team's aggregates from every completed match it played.
// It always works from the full history; there is no incremental mode.
func Calculate(teamID int, results []models.TeamResult) (models.TeamAggregates, error) {
	var agg models.TeamAggregates
	for _, res := range results {
		if res.OpponentID == teamID {
			return models.TeamAggregates{}, invalid("match", "match %d pits team %d against itself", res.MatchID, teamID)
		}
		if res.MyScore < 0 || res.OppScore < 0 {
			return models.TeamAggregates{}, invalid("score", "match %d has a negative score %d-%d", res.MatchID, res.MyScore, res.OppScore)
		}

		agg.GoalsFor += res.MyScore
		agg.GoalsAgainst += res.OppScore

		switch {
		case res.MyScore > res.OppScore:
			agg.Wins++
			agg.Points += PointsForWin
		case res.MyScore == res.OppScore:
			agg.Draws++
			agg.Points += PointsForDraw
		default:
			agg.Losses++
			agg.Points += PointsForLoss
		}
	}
	return agg, nil
}

// ResultsFromMatches projects matches onto teamID's side. Pending matches are
// skipped; matches the team does not play in are rejected.
func ResultsFromMatches(teamID int, matches []models.Match) ([]models.TeamResult, error) {
	results := make([]models.TeamResult, 0, len(matches))
	for i := range matches {
		m := &matches[i]
		if m.HomeTeamID == m.AwayTeamID {
			return nil, invalid("match", "match %d pits team %d against itself", m.ID, m.HomeTeamID)
		}
		if !m.Involves(teamID) {
			return nil, invalid("match", "match %d does not include team %d", m.ID, teamID)
		}
		if !m.Completed() {
			continue
		}
		if err := ValidateScore(m.HomeScore, m.AwayScore); err != nil {
			return nil, err
		}

		res := models.TeamResult{MatchID: m.ID}
		if m.HomeTeamID == teamID {
			res.OpponentID, res.MyScore, res.OppScore = m.AwayTeamID, *m.HomeScore, *m.AwayScore
		} else {
			res.OpponentID, res.MyScore, res.OppScore = m.HomeTeamID, *m.AwayScore, *m.HomeScore
		}
		results = append(results, res)
	}
	return results, nil
}

// ValidateScore accepts a complete non-negative score pair or a cleared one.
func ValidateScore(home, away *int) error {
	if (home == nil) != (away == nil) {
		return invalid("score", "both scores must be set or both cleared")
	}
	if home != nil && (*home < 0 || *away < 0) {
		return invalid("score", "scores must not be negative")
	}
	return nil
}
