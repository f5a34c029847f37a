package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside a caller's transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var ErrTransactionRequired = errors.New("database transaction is required for this operation")

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func executor(db *sql.DB, exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return db
}

// requireTx returns the transaction behind exec, or ErrTransactionRequired.
func requireTx(exec SQLExecutor) (*sql.Tx, error) {
	tx, ok := exec.(*sql.Tx)
	if !ok || tx == nil {
		return nil, ErrTransactionRequired
	}
	return tx, nil
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

type constraintKind int

const (
	constraintNone constraintKind = iota
	constraintForeignKey
	constraintUnique
	constraintCheck
)

// classifyConstraint recognises constraint violations from both supported
// drivers. name is the constraint name for postgres and the driver message for
// sqlite, which does not report names.
func classifyConstraint(err error) (kind constraintKind, name string) {
	if err == nil {
		return constraintNone, ""
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			return constraintForeignKey, pqErr.Constraint
		case "23505": // unique_violation
			return constraintUnique, pqErr.Constraint
		case "23514": // check_violation
			return constraintCheck, pqErr.Constraint
		}
		return constraintNone, ""
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey:
			return constraintForeignKey, liteErr.Error()
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return constraintUnique, liteErr.Error()
		case sqlite3.ErrConstraintCheck:
			return constraintCheck, liteErr.Error()
		}
	}
	return constraintNone, ""
}

// whereBuilder appends numbered placeholder conditions in argument order.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func (w *whereBuilder) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(w.args))))
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// timestamp scans a time column that SQLite may hand back as text, e.g. for
// RETURNING clauses where the declared column type is not reported.
func timestamp(dst *time.Time) sql.Scanner {
	return &timestampScanner{dst: dst}
}

type timestampScanner struct {
	dst *time.Time
}

func (s *timestampScanner) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*s.dst = v
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	case nil:
		*s.dst = time.Time{}
		return nil
	}
	return fmt.Errorf("unsupported timestamp value of type %T", src)
}

func (s *timestampScanner) parse(value string) error {
	value = strings.TrimSuffix(value, "Z")
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			*s.dst = t
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", value)
}
