package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name already exists in tenant")
	ErrTeamGroupInvalid = errors.New("team group or tenant conflict or invalid")
	ErrTeamInUse        = errors.New("team is referenced by other records")
)

type TeamFilter struct {
	TenantID *int
	GroupID  *int
}

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error)
	List(ctx context.Context, exec SQLExecutor, filter TeamFilter) ([]*models.Team, error)
	ListIDsByTenant(ctx context.Context, exec SQLExecutor, tenantID int) ([]int, error)
	Update(ctx context.Context, exec SQLExecutor, team *models.Team) error
	CountMatches(ctx context.Context, exec SQLExecutor, teamID int) (int, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	GetAggregates(ctx context.Context, exec SQLExecutor, id int) (models.TeamAggregates, error)
	SetAggregates(ctx context.Context, exec SQLExecutor, id int, agg models.TeamAggregates) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, tenant_id, group_id, name, points, wins, draws, losses, goals_for, goals_against, created_at`

func scanTeam(row rowScanner) (*models.Team, error) {
	var t models.Team
	err := row.Scan(
		&t.ID, &t.TenantID, &t.GroupID, &t.Name,
		&t.Points, &t.Wins, &t.Draws, &t.Losses, &t.GoalsFor, &t.GoalsAgainst,
		timestamp(&t.CreatedAt),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	switch kind, _ := classifyConstraint(err); kind {
	case constraintUnique:
		return ErrTeamNameConflict
	case constraintForeignKey:
		return ErrTeamGroupInvalid
	}
	return err
}

// Create inserts the team with zeroed aggregates regardless of the values on team.
func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := `
		INSERT INTO teams (tenant_id, group_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := executor(r.db, exec).QueryRowContext(ctx, query, team.TenantID, team.GroupID, team.Name).
		Scan(&team.ID, timestamp(&team.CreatedAt))
	if err != nil {
		return r.handleTeamError(err)
	}
	team.TeamAggregates = models.TeamAggregates{}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return scanTeam(executor(r.db, exec).QueryRowContext(ctx, query, id))
}

func (r *postgresTeamRepository) List(ctx context.Context, exec SQLExecutor, filter TeamFilter) ([]*models.Team, error) {
	var where whereBuilder
	if filter.TenantID != nil {
		where.add("tenant_id = ?", *filter.TenantID)
	}
	if filter.GroupID != nil {
		where.add("group_id = ?", *filter.GroupID)
	}
	query := `SELECT ` + teamColumns + ` FROM teams` + where.String() + ` ORDER BY tenant_id ASC, name ASC`

	rows, err := executor(r.db, exec).QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) ListIDsByTenant(ctx context.Context, exec SQLExecutor, tenantID int) ([]int, error) {
	rows, err := executor(r.db, exec).QueryContext(ctx, `SELECT id FROM teams WHERE tenant_id = $1 ORDER BY id ASC`, tenantID)
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

// Update changes the editable fields (name, group). Aggregates are untouched.
func (r *postgresTeamRepository) Update(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	result, err := executor(r.db, exec).ExecContext(ctx,
		`UPDATE teams SET name = $1, group_id = $2 WHERE id = $3`,
		team.Name, team.GroupID, team.ID,
	)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) CountMatches(ctx context.Context, exec SQLExecutor, teamID int) (int, error) {
	var count int
	err := executor(r.db, exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE home_team_id = $1 OR away_team_id = $1`, teamID,
	).Scan(&count)
	return count, err
}

func (r *postgresTeamRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		if kind, _ := classifyConstraint(err); kind == constraintForeignKey {
			return ErrTeamInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) GetAggregates(ctx context.Context, exec SQLExecutor, id int) (models.TeamAggregates, error) {
	var a models.TeamAggregates
	err := executor(r.db, exec).QueryRowContext(ctx,
		`SELECT points, wins, draws, losses, goals_for, goals_against FROM teams WHERE id = $1`, id,
	).Scan(&a.Points, &a.Wins, &a.Draws, &a.Losses, &a.GoalsFor, &a.GoalsAgainst)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrTeamNotFound
	}
	return a, err
}

// SetAggregates overwrites the derived statistics. It only runs inside a transaction.
func (r *postgresTeamRepository) SetAggregates(ctx context.Context, exec SQLExecutor, id int, agg models.TeamAggregates) error {
	tx, err := requireTx(exec)
	if err != nil {
		return err
	}
	query := `
		UPDATE teams SET
			points = $1, wins = $2, draws = $3, losses = $4, goals_for = $5, goals_against = $6
		WHERE id = $7`
	result, err := tx.ExecContext(ctx, query,
		agg.Points, agg.Wins, agg.Draws, agg.Losses, agg.GoalsFor, agg.GoalsAgainst, id,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
