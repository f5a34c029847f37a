package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrGroupNameConflict  = errors.New("group name already exists in tenant")
	ErrGroupTenantInvalid = errors.New("group tenant conflict or invalid")
	ErrGroupInUse         = errors.New("group is referenced by teams or matches")
)

type GroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, group *models.Group) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Group, error)
	List(ctx context.Context, exec SQLExecutor, tenantFilter *int) ([]*models.Group, error)
	UpdateName(ctx context.Context, exec SQLExecutor, id int, name string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) handleGroupError(err error) error {
	switch kind, _ := classifyConstraint(err); kind {
	case constraintUnique:
		return ErrGroupNameConflict
	case constraintForeignKey:
		return ErrGroupTenantInvalid
	}
	return err
}

func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, group *models.Group) error {
	query := `INSERT INTO league_groups (tenant_id, name) VALUES ($1, $2) RETURNING id, created_at`
	err := executor(r.db, exec).QueryRowContext(ctx, query, group.TenantID, group.Name).Scan(&group.ID, timestamp(&group.CreatedAt))
	return r.handleGroupError(err)
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Group, error) {
	query := `SELECT id, tenant_id, name, created_at FROM league_groups WHERE id = $1`
	var g models.Group
	err := executor(r.db, exec).QueryRowContext(ctx, query, id).Scan(&g.ID, &g.TenantID, &g.Name, timestamp(&g.CreatedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *postgresGroupRepository) List(ctx context.Context, exec SQLExecutor, tenantFilter *int) ([]*models.Group, error) {
	var where whereBuilder
	if tenantFilter != nil {
		where.add("tenant_id = ?", *tenantFilter)
	}
	query := `SELECT id, tenant_id, name, created_at FROM league_groups` + where.String() + ` ORDER BY tenant_id ASC, name ASC`

	rows, err := executor(r.db, exec).QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.TenantID, &g.Name, timestamp(&g.CreatedAt)); err != nil {
			return nil, err
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

func (r *postgresGroupRepository) UpdateName(ctx context.Context, exec SQLExecutor, id int, name string) error {
	result, err := executor(r.db, exec).ExecContext(ctx, `UPDATE league_groups SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return r.handleGroupError(err)
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresGroupRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM league_groups WHERE id = $1`, id)
	if err != nil {
		if kind, _ := classifyConstraint(err); kind == constraintForeignKey {
			return ErrGroupInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}
