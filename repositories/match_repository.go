package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchTeamsInvalid = errors.New("match group, team or tenant conflict or invalid")
	ErrMatchScoreInvalid = errors.New("match score violates constraints")
	ErrMatchInUse        = errors.New("match is referenced by events")
)

type MatchFilter struct {
	TenantID *int
	GroupID  *int
	TeamID   *int
	Round    *int
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	List(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]*models.Match, error)
	UpdateSchedule(ctx context.Context, exec SQLExecutor, id int, round int, scheduledAt time.Time) error
	SetScore(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore *int) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	DeleteByTeam(ctx context.Context, exec SQLExecutor, teamID int) error
	CompletedResultsForTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]models.TeamResult, error)
	OpponentsOfTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tenant_id, group_id, home_team_id, away_team_id, round, scheduled_at, home_score, away_score, created_at`

func scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID, &m.TenantID, &m.GroupID, &m.HomeTeamID, &m.AwayTeamID,
		&m.Round, timestamp(&m.ScheduledAt), &m.HomeScore, &m.AwayScore, timestamp(&m.CreatedAt),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	switch kind, _ := classifyConstraint(err); kind {
	case constraintForeignKey:
		return ErrMatchTeamsInvalid
	case constraintCheck:
		return ErrMatchScoreInvalid
	}
	return err
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tenant_id, group_id, home_team_id, away_team_id, round, scheduled_at, home_score, away_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	err := executor(r.db, exec).QueryRowContext(ctx, query,
		match.TenantID,
		match.GroupID,
		match.HomeTeamID,
		match.AwayTeamID,
		match.Round,
		match.ScheduledAt.UTC(),
		match.HomeScore,
		match.AwayScore,
	).Scan(&match.ID, timestamp(&match.CreatedAt))
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return scanMatch(executor(r.db, exec).QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) List(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]*models.Match, error) {
	var where whereBuilder
	if filter.TenantID != nil {
		where.add("tenant_id = ?", *filter.TenantID)
	}
	if filter.GroupID != nil {
		where.add("group_id = ?", *filter.GroupID)
	}
	if filter.TeamID != nil {
		where.add("(home_team_id = ? OR away_team_id = ?)", *filter.TeamID)
	}
	if filter.Round != nil {
		where.add("round = ?", *filter.Round)
	}
	query := `SELECT ` + matchColumns + ` FROM matches` + where.String() + ` ORDER BY round ASC, scheduled_at ASC, id ASC`

	rows, err := executor(r.db, exec).QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateSchedule(ctx context.Context, exec SQLExecutor, id int, round int, scheduledAt time.Time) error {
	result, err := executor(r.db, exec).ExecContext(ctx,
		`UPDATE matches SET round = $1, scheduled_at = $2 WHERE id = $3`,
		round, scheduledAt.UTC(), id,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetScore(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore *int) error {
	result, err := executor(r.db, exec).ExecContext(ctx,
		`UPDATE matches SET home_score = $1, away_score = $2 WHERE id = $3`,
		homeScore, awayScore, id,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		if kind, _ := classifyConstraint(err); kind == constraintForeignKey {
			return ErrMatchInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTeam(ctx context.Context, exec SQLExecutor, teamID int) error {
	_, err := executor(r.db, exec).ExecContext(ctx,
		`DELETE FROM matches WHERE home_team_id = $1 OR away_team_id = $1`, teamID,
	)
	if kind, _ := classifyConstraint(err); kind == constraintForeignKey {
		return ErrMatchInUse
	}
	return err
}

// CompletedResultsForTeam lists the team's completed matches within its own
// tenant, each seen from the team's side.
func (r *postgresMatchRepository) CompletedResultsForTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]models.TeamResult, error) {
	query := `
		SELECT m.id,
		       CASE WHEN m.home_team_id = $1 THEN m.away_team_id ELSE m.home_team_id END,
		       CASE WHEN m.home_team_id = $1 THEN m.home_score ELSE m.away_score END,
		       CASE WHEN m.home_team_id = $1 THEN m.away_score ELSE m.home_score END
		FROM matches m
		JOIN teams t ON t.id = $1 AND t.tenant_id = m.tenant_id
		WHERE (m.home_team_id = $1 OR m.away_team_id = $1)
		  AND m.home_score IS NOT NULL
		  AND m.away_score IS NOT NULL
		ORDER BY m.id ASC`

	rows, err := executor(r.db, exec).QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.TeamResult, 0)
	for rows.Next() {
		var res models.TeamResult
		if err := rows.Scan(&res.MatchID, &res.OpponentID, &res.MyScore, &res.OppScore); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// OpponentsOfTeam returns the distinct opponents the team met in completed matches.
func (r *postgresMatchRepository) OpponentsOfTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]int, error) {
	query := `
		SELECT DISTINCT CASE WHEN home_team_id = $1 THEN away_team_id ELSE home_team_id END AS opponent_id
		FROM matches
		WHERE (home_team_id = $1 OR away_team_id = $1)
		  AND home_score IS NOT NULL
		  AND away_score IS NOT NULL
		ORDER BY opponent_id ASC`

	rows, err := executor(r.db, exec).QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
