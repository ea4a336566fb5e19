package remote

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"shop-manager/internal/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// sqlStore implements Store directly against a Postgres system of record,
// for deployments that skip the HTTP layer. Column sets come from the
// shared table contract, so no caller-provided identifier ever reaches
// the SQL text.
type sqlStore struct {
	db *sql.DB
}

// NewPostgres connects to a Postgres-backed remote store.
func NewPostgres(dsn string) (Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach remote database: %w", err)
	}
	return &sqlStore{db: db}, nil
}

func (s *sqlStore) Insert(ctx context.Context, table string, row map[string]any) error {
	cols, err := tableColumns(table)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(cols))
	placeholders := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		val, ok := row[col]
		if !ok {
			continue
		}
		names = append(names, col)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
		args = append(args, val)
	}

	// Upsert keeps replayed creates idempotent: the outbox has
	// at-least-once delivery semantics.
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		table,
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
		excludedSet(names),
	)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remote insert %s: %w", table, err)
	}
	return nil
}

func (s *sqlStore) Update(ctx context.Context, table, id string, row map[string]any) error {
	cols, err := tableColumns(table)
	if err != nil {
		return err
	}

	setClauses := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for _, col := range cols {
		if col == "id" {
			continue
		}
		val, ok := row[col]
		if !ok {
			continue
		}
		args = append(args, val)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if len(setClauses) == 0 {
		return nil
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(setClauses, ", "), len(args))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remote update %s: %w", table, err)
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, table, id string) error {
	if _, err := tableColumns(table); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", table)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("remote delete %s: %w", table, err)
	}
	return nil
}

func (s *sqlStore) SelectAll(ctx context.Context, table string) ([]map[string]any, error) {
	cols, err := tableColumns(table)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("remote select %s: %w", table, err)
	}
	defer rows.Close()

	result := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		pointers := make([]any, len(cols))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("remote select %s: scan: %w", table, err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("remote select %s: %w", table, err)
	}
	return result, nil
}

func tableColumns(table string) ([]string, error) {
	cols, ok := domain.TableColumns[table]
	if !ok {
		return nil, fmt.Errorf("unknown remote table: %s", table)
	}
	return cols, nil
}

func excludedSet(names []string) string {
	clauses := make([]string, 0, len(names))
	for _, name := range names {
		if name == "id" {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s = excluded.%s", name, name))
	}
	if len(clauses) == 0 {
		return "id = excluded.id"
	}
	return strings.Join(clauses, ", ")
}
