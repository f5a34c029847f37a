package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email conflict")
	ErrUserTenantInvalid = errors.New("user tenant conflict or invalid")
)

type UserRepository interface {
	Create(ctx context.Context, exec SQLExecutor, user *models.User) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.User, error)
	GetByEmail(ctx context.Context, exec SQLExecutor, email string) (*models.User, error)
	List(ctx context.Context, exec SQLExecutor, tenantFilter *int) ([]*models.User, error)
	CountByRole(ctx context.Context, exec SQLExecutor, role models.UserRole) (int, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, tenant_id, email, name, role, password_hash, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, timestamp(&u.CreatedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *postgresUserRepository) Create(ctx context.Context, exec SQLExecutor, user *models.User) error {
	query := `
		INSERT INTO users (tenant_id, email, name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	err := executor(r.db, exec).QueryRowContext(ctx, query,
		user.TenantID, user.Email, user.Name, user.Role, user.PasswordHash,
	).Scan(&user.ID, timestamp(&user.CreatedAt))

	switch kind, _ := classifyConstraint(err); kind {
	case constraintUnique:
		return ErrUserEmailConflict
	case constraintForeignKey, constraintCheck:
		return ErrUserTenantInvalid
	}
	return err
}

func (r *postgresUserRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(executor(r.db, exec).QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, exec SQLExecutor, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(executor(r.db, exec).QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

func (r *postgresUserRepository) List(ctx context.Context, exec SQLExecutor, tenantFilter *int) ([]*models.User, error) {
	var where whereBuilder
	if tenantFilter != nil {
		where.add("tenant_id = ?", *tenantFilter)
	}
	query := `SELECT ` + userColumns + ` FROM users` + where.String() + ` ORDER BY id ASC`

	rows, err := executor(r.db, exec).QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *postgresUserRepository) CountByRole(ctx context.Context, exec SQLExecutor, role models.UserRole) (int, error) {
	var count int
	err := executor(r.db, exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&count)
	return count, err
}

func (r *postgresUserRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}
