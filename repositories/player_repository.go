package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerTeamInvalid = errors.New("player team or tenant conflict or invalid")
	ErrPlayerInUse       = errors.New("player is referenced by match events")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error)
	ListByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]*models.Player, error)
	ListByTenant(ctx context.Context, exec SQLExecutor, tenantFilter *int) ([]*models.Player, error)
	Update(ctx context.Context, exec SQLExecutor, player *models.Player) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	DeleteByTeam(ctx context.Context, exec SQLExecutor, teamID int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, tenant_id, team_id, name, shirt_number, created_at`

func scanPlayer(row rowScanner) (*models.Player, error) {
	var p models.Player
	err := row.Scan(&p.ID, &p.TenantID, &p.TeamID, &p.Name, &p.ShirtNumber, timestamp(&p.CreatedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPlayerRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Player, error) {
	rows, err := executor(r.db, exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		INSERT INTO players (tenant_id, team_id, name, shirt_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := executor(r.db, exec).QueryRowContext(ctx, query,
		player.TenantID, player.TeamID, player.Name, player.ShirtNumber,
	).Scan(&player.ID, timestamp(&player.CreatedAt))
	if kind, _ := classifyConstraint(err); kind == constraintForeignKey {
		return ErrPlayerTeamInvalid
	}
	return err
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	return scanPlayer(executor(r.db, exec).QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE team_id = $1 ORDER BY shirt_number ASC, name ASC`
	return r.list(ctx, exec, query, teamID)
}

func (r *postgresPlayerRepository) ListByTenant(ctx context.Context, exec SQLExecutor, tenantFilter *int) ([]*models.Player, error) {
	var where whereBuilder
	if tenantFilter != nil {
		where.add("tenant_id = ?", *tenantFilter)
	}
	query := `SELECT ` + playerColumns + ` FROM players` + where.String() + ` ORDER BY id ASC`
	return r.list(ctx, exec, query, where.args...)
}

func (r *postgresPlayerRepository) Update(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	result, err := executor(r.db, exec).ExecContext(ctx,
		`UPDATE players SET name = $1, shirt_number = $2 WHERE id = $3`,
		player.Name, player.ShirtNumber, player.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		if kind, _ := classifyConstraint(err); kind == constraintForeignKey {
			return ErrPlayerInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) DeleteByTeam(ctx context.Context, exec SQLExecutor, teamID int) error {
	_, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM players WHERE team_id = $1`, teamID)
	if kind, _ := classifyConstraint(err); kind == constraintForeignKey {
		return ErrPlayerInUse
	}
	return err
}
