// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/models"
)

// NewTestDB returns a migrated SQLite database in a temporary directory. It is
// closed when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "league.db")
	conn, err := db.Connect(db.DriverSQLite, dsn, 5*time.Second)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := db.Migrate(conn, db.DriverSQLite); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return conn
}

// InsertTenant creates a tenant directly, bypassing the service layer.
func InsertTenant(t *testing.T, conn *sql.DB, name string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: name}
	err := conn.QueryRowContext(context.Background(),
		`INSERT INTO tenants (name) VALUES ($1) RETURNING id`, name,
	).Scan(&tenant.ID)
	if err != nil {
		t.Fatalf("insert tenant %q: %v", name, err)
	}
	return tenant
}
