package standings

import (
	"context"
	"sort"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

// memStore is an in-memory Store used by the engine tests.
type memStore struct {
	teams   map[int]models.TeamAggregates
	players map[int]int // player id -> team id
	matches map[int]*models.Match
	events  map[int]*models.MatchEvent
	nextID  int

	aggregateWrites []int
}

func newMemStore() *memStore {
	return &memStore{
		teams:   make(map[int]models.TeamAggregates),
		players: make(map[int]int),
		matches: make(map[int]*models.Match),
		events:  make(map[int]*models.MatchEvent),
		nextID:  1000,
	}
}

func (s *memStore) addTeam(id int) {
	s.teams[id] = models.TeamAggregates{}
}

func (s *memStore) addPlayer(id, teamID int) {
	s.players[id] = teamID
}

func (s *memStore) addMatch(id, home, away int, homeScore, awayScore *int) *models.Match {
	m := &models.Match{ID: id, TenantID: 1, GroupID: 1, HomeTeamID: home, AwayTeamID: away, HomeScore: homeScore, AwayScore: awayScore}
	s.matches[id] = m
	copied := *m
	return &copied
}

func (s *memStore) CompletedMatchesForTeam(_ context.Context, _ repositories.SQLExecutor, teamID int) ([]models.TeamResult, error) {
	ids := make([]int, 0, len(s.matches))
	for id := range s.matches {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var matches []models.Match
	for _, id := range ids {
		if m := s.matches[id]; m.Involves(teamID) {
			matches = append(matches, *m)
		}
	}
	return ResultsFromMatches(teamID, matches)
}

func (s *memStore) SetTeamAggregates(_ context.Context, _ repositories.SQLExecutor, teamID int, agg models.TeamAggregates) error {
	if _, ok := s.teams[teamID]; !ok {
		return repositories.ErrTeamNotFound
	}
	s.teams[teamID] = agg
	s.aggregateWrites = append(s.aggregateWrites, teamID)
	return nil
}

func (s *memStore) TeamAggregates(_ context.Context, _ repositories.SQLExecutor, teamID int) (models.TeamAggregates, error) {
	agg, ok := s.teams[teamID]
	if !ok {
		return models.TeamAggregates{}, repositories.ErrTeamNotFound
	}
	return agg, nil
}

func (s *memStore) ListTeamIDsByTenant(_ context.Context, _ repositories.SQLExecutor, _ int) ([]int, error) {
	ids := make([]int, 0, len(s.teams))
	for id := range s.teams {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *memStore) GoalCountsForMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) (models.GoalCounts, error) {
	m := s.matches[matchID]
	var counts models.GoalCounts
	for _, e := range s.events {
		if e.MatchID != matchID || e.Type != models.EventGoal {
			continue
		}
		if e.TeamID == m.HomeTeamID {
			counts.Home++
		} else {
			counts.Away++
		}
	}
	return counts, nil
}

func (s *memStore) CountGoalEvents(_ context.Context, _ repositories.SQLExecutor, matchID int) (int, error) {
	n := 0
	for _, e := range s.events {
		if e.MatchID == matchID && e.Type == models.EventGoal {
			n++
		}
	}
	return n, nil
}

func (s *memStore) SetMatchScore(_ context.Context, _ repositories.SQLExecutor, matchID int, home, away *int) error {
	m, ok := s.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.HomeScore, m.AwayScore = home, away
	return nil
}

func (s *memStore) CreateEvent(_ context.Context, _ repositories.SQLExecutor, event *models.MatchEvent) error {
	s.nextID++
	event.ID = s.nextID
	stored := *event
	s.events[event.ID] = &stored
	return nil
}

func (s *memStore) DeleteEvent(_ context.Context, _ repositories.SQLExecutor, eventID int) error {
	if _, ok := s.events[eventID]; !ok {
		return repositories.ErrEventNotFound
	}
	delete(s.events, eventID)
	return nil
}

func (s *memStore) CountRedCards(_ context.Context, _ repositories.SQLExecutor, matchID, playerID int) (int, error) {
	n := 0
	for _, e := range s.events {
		if e.MatchID == matchID && e.PlayerID == playerID && e.Type == models.EventRedCard {
			n++
		}
	}
	return n, nil
}

func (s *memStore) DeleteEventsByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) error {
	for id, e := range s.events {
		if e.MatchID == matchID {
			delete(s.events, id)
		}
	}
	return nil
}

func (s *memStore) DeleteMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) error {
	if _, ok := s.matches[matchID]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(s.matches, matchID)
	return nil
}

func (s *memStore) OpponentsOfTeam(_ context.Context, _ repositories.SQLExecutor, teamID int) ([]int, error) {
	var ids []int
	for _, m := range s.matches {
		if !m.Completed() || !m.Involves(teamID) {
			continue
		}
		if m.HomeTeamID == teamID {
			ids = append(ids, m.AwayTeamID)
		} else {
			ids = append(ids, m.HomeTeamID)
		}
	}
	return ids, nil
}

func (s *memStore) DeleteEventsByTeamMatches(_ context.Context, _ repositories.SQLExecutor, teamID int) error {
	for id, e := range s.events {
		if m, ok := s.matches[e.MatchID]; ok && m.Involves(teamID) {
			delete(s.events, id)
		}
	}
	return nil
}

func (s *memStore) DeleteMatchesByTeam(_ context.Context, _ repositories.SQLExecutor, teamID int) error {
	for id, m := range s.matches {
		if m.Involves(teamID) {
			delete(s.matches, id)
		}
	}
	return nil
}

func (s *memStore) DeletePlayersByTeam(_ context.Context, _ repositories.SQLExecutor, teamID int) error {
	for id, t := range s.players {
		if t == teamID {
			delete(s.players, id)
		}
	}
	return nil
}

func (s *memStore) DeleteTeam(_ context.Context, _ repositories.SQLExecutor, teamID int) error {
	if _, ok := s.teams[teamID]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(s.teams, teamID)
	return nil
}
