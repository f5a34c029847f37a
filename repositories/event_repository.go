package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrEventNotFound         = errors.New("match event not found")
	ErrEventReferenceInvalid = errors.New("match event match, team, player or tenant conflict or invalid")
	ErrEventDuplicateRedCard = errors.New("player already has a red card in this match")
)

type EventRepository interface {
	Create(ctx context.Context, exec SQLExecutor, event *models.MatchEvent) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.MatchEvent, error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MatchEvent, error)
	ListByTenant(ctx context.Context, exec SQLExecutor, tenantFilter *int) ([]*models.MatchEvent, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error
	DeleteByTeamMatches(ctx context.Context, exec SQLExecutor, teamID int) error
	CountForPlayer(ctx context.Context, exec SQLExecutor, matchID, playerID int, eventType models.EventType) (int, error)
	CountByType(ctx context.Context, exec SQLExecutor, matchID int, eventType models.EventType) (int, error)
	GoalCounts(ctx context.Context, exec SQLExecutor, matchID int) (models.GoalCounts, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

const eventColumns = `id, tenant_id, match_id, team_id, player_id, type, minute, created_at`

func scanEvent(row rowScanner) (*models.MatchEvent, error) {
	var e models.MatchEvent
	err := row.Scan(&e.ID, &e.TenantID, &e.MatchID, &e.TeamID, &e.PlayerID, &e.Type, &e.Minute, timestamp(&e.CreatedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *postgresEventRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.MatchEvent, error) {
	rows, err := executor(r.db, exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*models.MatchEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *postgresEventRepository) Create(ctx context.Context, exec SQLExecutor, event *models.MatchEvent) error {
	query := `
		INSERT INTO match_events (tenant_id, match_id, team_id, player_id, type, minute)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := executor(r.db, exec).QueryRowContext(ctx, query,
		event.TenantID, event.MatchID, event.TeamID, event.PlayerID, event.Type, event.Minute,
	).Scan(&event.ID, timestamp(&event.CreatedAt))

	switch kind, _ := classifyConstraint(err); kind {
	case constraintUnique:
		return ErrEventDuplicateRedCard
	case constraintForeignKey, constraintCheck:
		return ErrEventReferenceInvalid
	}
	return err
}

func (r *postgresEventRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.MatchEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM match_events WHERE id = $1`
	return scanEvent(executor(r.db, exec).QueryRowContext(ctx, query, id))
}

func (r *postgresEventRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MatchEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM match_events WHERE match_id = $1 ORDER BY minute ASC, id ASC`
	return r.list(ctx, exec, query, matchID)
}

func (r *postgresEventRepository) ListByTenant(ctx context.Context, exec SQLExecutor, tenantFilter *int) ([]*models.MatchEvent, error) {
	var where whereBuilder
	if tenantFilter != nil {
		where.add("tenant_id = ?", *tenantFilter)
	}
	query := `SELECT ` + eventColumns + ` FROM match_events` + where.String() + ` ORDER BY id ASC`
	return r.list(ctx, exec, query, where.args...)
}

func (r *postgresEventRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM match_events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error {
	_, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM match_events WHERE match_id = $1`, matchID)
	return err
}

// DeleteByTeamMatches removes every event of every match the team played.
func (r *postgresEventRepository) DeleteByTeamMatches(ctx context.Context, exec SQLExecutor, teamID int) error {
	query := `
		DELETE FROM match_events
		WHERE match_id IN (SELECT id FROM matches WHERE home_team_id = $1 OR away_team_id = $1)`
	_, err := executor(r.db, exec).ExecContext(ctx, query, teamID)
	return err
}

func (r *postgresEventRepository) CountForPlayer(ctx context.Context, exec SQLExecutor, matchID, playerID int, eventType models.EventType) (int, error) {
	var count int
	err := executor(r.db, exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM match_events WHERE match_id = $1 AND player_id = $2 AND type = $3`,
		matchID, playerID, eventType,
	).Scan(&count)
	return count, err
}

func (r *postgresEventRepository) CountByType(ctx context.Context, exec SQLExecutor, matchID int, eventType models.EventType) (int, error) {
	var count int
	err := executor(r.db, exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM match_events WHERE match_id = $1 AND type = $2`,
		matchID, eventType,
	).Scan(&count)
	return count, err
}

// GoalCounts counts goal events per side of the match.
func (r *postgresEventRepository) GoalCounts(ctx context.Context, exec SQLExecutor, matchID int) (models.GoalCounts, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN e.team_id = m.home_team_id THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN e.team_id = m.away_team_id THEN 1 ELSE 0 END), 0)
		FROM matches m
		LEFT JOIN match_events e ON e.match_id = m.id AND e.type = $1
		WHERE m.id = $2`
	var counts models.GoalCounts
	err := executor(r.db, exec).QueryRowContext(ctx, query, models.EventGoal, matchID).Scan(&counts.Home, &counts.Away)
	return counts, err
}
