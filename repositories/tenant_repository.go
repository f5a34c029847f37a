package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrTenantNameConflict = errors.New("tenant name already exists")
	ErrTenantInUse        = errors.New("tenant still owns data")
)

type TenantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tenant *models.Tenant) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tenant, error)
	List(ctx context.Context, exec SQLExecutor, tenantFilter *int) ([]*models.Tenant, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTenantRepository struct {
	db *sql.DB
}

func NewPostgresTenantRepository(db *sql.DB) TenantRepository {
	return &postgresTenantRepository{db: db}
}

func (r *postgresTenantRepository) Create(ctx context.Context, exec SQLExecutor, tenant *models.Tenant) error {
	query := `INSERT INTO tenants (name) VALUES ($1) RETURNING id, created_at`
	err := executor(r.db, exec).QueryRowContext(ctx, query, tenant.Name).Scan(&tenant.ID, timestamp(&tenant.CreatedAt))
	if kind, _ := classifyConstraint(err); kind == constraintUnique {
		return ErrTenantNameConflict
	}
	return err
}

func (r *postgresTenantRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tenant, error) {
	query := `SELECT id, name, created_at FROM tenants WHERE id = $1`
	var t models.Tenant
	err := executor(r.db, exec).QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, timestamp(&t.CreatedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTenantRepository) List(ctx context.Context, exec SQLExecutor, tenantFilter *int) ([]*models.Tenant, error) {
	var where whereBuilder
	if tenantFilter != nil {
		where.add("id = ?", *tenantFilter)
	}
	query := `SELECT id, name, created_at FROM tenants` + where.String() + ` ORDER BY id ASC`

	rows, err := executor(r.db, exec).QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := make([]*models.Tenant, 0)
	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(&t.ID, &t.Name, timestamp(&t.CreatedAt)); err != nil {
			return nil, err
		}
		tenants = append(tenants, &t)
	}
	return tenants, rows.Err()
}

func (r *postgresTenantRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		if kind, _ := classifyConstraint(err); kind == constraintForeignKey {
			return ErrTenantInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrTenantNotFound)
}
