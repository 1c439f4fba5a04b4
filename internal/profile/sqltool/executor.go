package sqltool

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"meal_planner_backend/platform/apperr"
	"meal_planner_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// MaxRows caps the rows returned to the model per call.
	MaxRows          = 200
	statementTimeout = 5 * time.Second
)

// Column describes one column of a public table.
type Column struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	NotNull  bool    `json:"notNull"`
	Default  *string `json:"defaultValue,omitempty"`
	Position int     `json:"position"`
}

// Table is a public table and its columns.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Result is the outcome of Execute.
type Result struct {
	Rows      []map[string]any `json:"rows,omitempty"`
	RowCount  int64            `json:"rowcount"`
	Truncated bool             `json:"truncated,omitempty"`
}

// Executor runs guarded statements.
type Executor struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewExecutor creates an executor on pool.
func NewExecutor(pool *pgxpool.Pool, log *logger.Logger) *Executor {
	return &Executor{pool: pool, log: log}
}

// InspectSchema lists the tables and columns of the public schema.
func (e *Executor) InspectSchema(ctx context.Context) ([]Table, error) {
	rows, err := e.pool.Query(ctx, `
		SELECT c.table_name::text, c.column_name::text, c.data_type::text, c.is_nullable = 'NO',
		       c.column_default::text, c.ordinal_position::int
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		WHERE c.table_schema = 'public'
		  AND t.table_type = 'BASE TABLE'
		  AND c.table_name <> 'goose_db_version'
		ORDER BY c.table_name, c.ordinal_position`)
	if err != nil {
		return nil, fmt.Errorf("inspect schema: %w", err)
	}
	defer rows.Close()

	tables := make([]Table, 0)
	for rows.Next() {
		var tableName string
		var col Column
		if err := rows.Scan(&tableName, &col.Name, &col.Type, &col.NotNull, &col.Default, &col.Position); err != nil {
			return nil, fmt.Errorf("inspect schema: %w", err)
		}
		if len(tables) == 0 || tables[len(tables)-1].Name != tableName {
			tables = append(tables, Table{Name: tableName})
		}
		last := &tables[len(tables)-1]
		last.Columns = append(last.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inspect schema: %w", err)
	}
	return tables, nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// scopeTx sets the statement timeout and the app.user_id setting read by the
// row security policies. Both last until the transaction ends.
func scopeTx(ctx context.Context, tx execer, scope Scope) error {
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", statementTimeout.Milliseconds())); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "SELECT set_config('app.user_id', $1, true)", scope.UserID); err != nil {
		return err
	}
	return nil
}

// Execute checks, rewrites and runs one statement inside a transaction with a
// statement timeout. Rows are collected when expectResult is set or the
// statement returns rows by itself.
func (e *Executor) Execute(ctx context.Context, scope Scope, sql, paramsJSON string, expectResult bool) (Result, error) {
	const op = "sqltool.Execute"

	stmt, err := Check(sql)
	if err != nil {
		e.log.WithContext(ctx).Warn("rejected model sql", "error", err)
		return Result{}, err
	}
	if scope.UserID == "" {
		return Result{}, apperr.Unauthorized("user scope is required").WithOp(op)
	}

	args, err := BuildArgs(paramsJSON, scope)
	if err != nil {
		return Result{}, err
	}
	stmt = RewritePlaceholders(stmt)

	var result Result
	err = pgx.BeginFunc(ctx, e.pool, func(tx pgx.Tx) error {
		if err := scopeTx(ctx, tx, scope); err != nil {
			return err
		}

		if expectResult || IsQuery(stmt) {
			rows, err := tx.Query(ctx, stmt, args)
			if err != nil {
				return err
			}
			result, err = collect(rows)
			return err
		}

		tag, err := tx.Exec(ctx, stmt, args)
		if err != nil {
			return err
		}
		result.RowCount = tag.RowsAffected()
		return nil
	})
	if err != nil {
		e.log.WithContext(ctx).DatabaseError("execute_sql", err)
		return Result{}, apperr.Wrap(apperr.KindBadRequest, "sql failed: "+err.Error(), err).WithOp(op)
	}
	return result, nil
}

func collect(rows pgx.Rows) (Result, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := Result{Rows: make([]map[string]any, 0)}
	for rows.Next() {
		if len(result.Rows) == MaxRows {
			result.Truncated = true
			break
		}
		values, err := rows.Values()
		if err != nil {
			return Result{}, err
		}
		row := make(map[string]any, len(values))
		for i, value := range values {
			row[fields[i].Name] = normalizeValue(value)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}
	result.RowCount = int64(len(result.Rows))
	return result, nil
}

// normalizeValue converts driver types into values that encode cleanly as JSON.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case [16]byte:
		return uuid.UUID(v).String()
	case pgtype.Numeric:
		if !v.Valid {
			return nil
		}
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case *big.Int:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339)
	case []byte:
		return string(v)
	default:
		return v
	}
}
