package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	database "github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/standings"
)

type StandingsService interface {
	GetStandings(ctx context.Context, scope models.TenantScope, groupID *int) ([]models.StandingRow, error)
	RecalculateTenant(ctx context.Context, scope models.TenantScope, tenantID *int) (int, error)
	Audit(ctx context.Context, scope models.TenantScope) (*AuditReport, error)
}

type AuditViolation struct {
	TeamID   int                   `json:"team_id"`
	Stored   models.TeamAggregates `json:"stored"`
	Expected models.TeamAggregates `json:"expected"`
}

type AuditReport struct {
	Checked    int              `json:"checked"`
	Violations []AuditViolation `json:"violations"`
}

func (r *AuditReport) Consistent() bool {
	return len(r.Violations) == 0
}

type standingsService struct {
	db           *sql.DB
	teamRepo     repositories.TeamRepository
	recalculator *standings.Recalculator
	notifier     StandingsNotifier
}

func NewStandingsService(db *sql.DB, teamRepo repositories.TeamRepository, recalculator *standings.Recalculator, notifier StandingsNotifier) StandingsService {
	return &standingsService{
		db:           db,
		teamRepo:     teamRepo,
		recalculator: recalculator,
		notifier:     notifierOrNoop(notifier),
	}
}

// GetStandings returns the league table ordered by points, goal difference,
// goals scored and finally name.
func (s *standingsService) GetStandings(ctx context.Context, scope models.TenantScope, groupID *int) ([]models.StandingRow, error) {
	if !scope.Valid() {
		return nil, ErrForbiddenOperation
	}
	teams, err := s.teamRepo.List(ctx, nil, repositories.TeamFilter{TenantID: scope.Filter(), GroupID: groupID})
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for standings: %w", err)
	}
	return BuildTable(teams), nil
}

// BuildTable sorts teams into standing rows with 1-based positions.
func BuildTable(teams []*models.Team) []models.StandingRow {
	rows := make([]models.StandingRow, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, models.StandingRow{
			TeamID:         t.ID,
			TeamName:       t.Name,
			GroupID:        t.GroupID,
			Played:         t.Played(),
			GoalDifference: t.GoalDifference(),
			TeamAggregates: t.TeamAggregates,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case a.Points != b.Points:
			return a.Points > b.Points
		case a.GoalDifference != b.GoalDifference:
			return a.GoalDifference > b.GoalDifference
		case a.GoalsFor != b.GoalsFor:
			return a.GoalsFor > b.GoalsFor
		case !strings.EqualFold(a.TeamName, b.TeamName):
			return strings.ToLower(a.TeamName) < strings.ToLower(b.TeamName)
		}
		return a.TeamID < b.TeamID
	})

	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}

func (s *standingsService) RecalculateTenant(ctx context.Context, scope models.TenantScope, tenantID *int) (int, error) {
	target, err := resolveWriteTenant(scope, tenantID)
	if err != nil {
		return 0, err
	}

	n, err := s.recalculator.RecalculateTenant(ctx, txRunner(s.db), target)
	if n > 0 {
		s.notifier.NotifyStandingsUpdated(target, nil)
	}
	return n, err
}

// Audit compares stored aggregates with a fresh recomputation for every team
// in scope. Mismatches are collected; other failures abort the audit.
func (s *standingsService) Audit(ctx context.Context, scope models.TenantScope) (*AuditReport, error) {
	if !scope.Valid() {
		return nil, ErrForbiddenOperation
	}
	teams, err := s.teamRepo.List(ctx, nil, repositories.TeamFilter{TenantID: scope.Filter()})
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for audit: %w", err)
	}

	report := &AuditReport{Violations: []AuditViolation{}}
	for _, t := range teams {
		teamID := t.ID
		err := database.RunInSnapshot(ctx, s.db, func(tx *sql.Tx) error {
			return s.recalculator.Audit(ctx, tx, teamID)
		})
		report.Checked++
		if err == nil {
			continue
		}
		var cerr *standings.ConsistencyError
		if !errors.As(err, &cerr) {
			return nil, err
		}
		report.Violations = append(report.Violations, AuditViolation{
			TeamID:   cerr.TeamID,
			Stored:   cerr.Stored,
			Expected: cerr.Expected,
		})
	}
	return report, nil
}
