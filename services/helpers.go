package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	database "github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/standings"
)

// StandingsNotifier is told about every committed standings change.
type StandingsNotifier interface {
	NotifyStandingsUpdated(tenantID int, teamIDs []int)
}

type noopNotifier struct{}

func (noopNotifier) NotifyStandingsUpdated(int, []int) {}

func notifierOrNoop(n StandingsNotifier) StandingsNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}

func requireName(field, value string) (string, error) {
	name := strings.TrimSpace(value)
	if name == "" {
		return "", validationError("%s is required", field)
	}
	if len(name) > 255 {
		return "", validationError("%s must not exceed 255 characters", field)
	}
	return name, nil
}

// resolveWriteTenant picks the tenant a new record is written to. Tenant
// scoped callers write to their own tenant; super admins must name one.
func resolveWriteTenant(scope models.TenantScope, requested *int) (int, error) {
	if !scope.Valid() {
		return 0, ErrForbiddenOperation
	}
	if own, ok := scope.TenantID(); ok {
		if requested != nil && *requested != own {
			return 0, ErrForbiddenOperation
		}
		return own, nil
	}
	if requested == nil || *requested <= 0 {
		return 0, ErrTenantRequired
	}
	return *requested, nil
}

// checkScope hides records of other tenants behind notFound.
func checkScope(scope models.TenantScope, tenantID int, notFound error) error {
	if !scope.Allows(tenantID) {
		return notFound
	}
	return nil
}

func txRunner(conn *sql.DB) standings.TxRunner {
	return func(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
		return database.RunInTx(ctx, conn, func(tx *sql.Tx) error {
			return fn(tx)
		})
	}
}
