package db

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const migrationsTable = "public.snagaudit_schema_migrations"

// Migrator applies the embedded *.sql files in lexical order, once each.
type Migrator struct {
	pool   *pgxpool.Pool
	files  fs.FS
	logger logrus.FieldLogger
}

func NewMigrator(pool *pgxpool.Pool, files fs.FS, logger logrus.FieldLogger) *Migrator {
	return &Migrator{pool: pool, files: files, logger: logger}
}

// Run applies pending migrations and returns how many were applied.
func (m *Migrator) Run(ctx context.Context) (int, error) {
	_, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+migrationsTable+` (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return 0, fmt.Errorf("create migrations table: %w", err)
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}

	pending, err := PendingMigrations(m.files, applied)
	if err != nil {
		return 0, err
	}

	for _, filename := range pending {
		content, err := fs.ReadFile(m.files, filename)
		if err != nil {
			return 0, fmt.Errorf("read migration %s: %w", filename, err)
		}

		for i, stmt := range SplitStatements(string(content)) {
			if _, err := m.pool.Exec(ctx, stmt); err != nil {
				return 0, fmt.Errorf("run migration %s (statement %d): %w", filename, i+1, err)
			}
		}

		_, err = m.pool.Exec(ctx,
			`INSERT INTO `+migrationsTable+` (filename) VALUES ($1) ON CONFLICT (filename) DO NOTHING`,
			filename,
		)
		if err != nil {
			return 0, fmt.Errorf("record migration %s: %w", filename, err)
		}

		m.logger.WithField("migration", filename).Info("migration applied")
	}

	return len(pending), nil
}

func (m *Migrator) applied(ctx context.Context) (map[string]bool, error) {
	rows, err := m.pool.Query(ctx, `SELECT filename FROM `+migrationsTable)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, err
		}
		applied[filename] = true
	}

	return applied, rows.Err()
}

// PendingMigrations returns the sorted *.sql files not yet applied.
func PendingMigrations(files fs.FS, applied map[string]bool) ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var pending []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") || applied[name] {
			continue
		}
		pending = append(pending, name)
	}
	sort.Strings(pending)

	return pending, nil
}

// SplitStatements splits a script on trailing semicolons, keeping $$ blocks intact.
func SplitStatements(content string) []string {
	var (
		statements []string
		current    strings.Builder
		dollars    int
	)

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		current.Reset()
		if stmt == "" || stmt == ";" || isCommentOnly(stmt) {
			return
		}
		statements = append(statements, stmt)
	}

	for _, line := range strings.Split(content, "\n") {
		dollars += strings.Count(line, "$$")
		current.WriteString(line)
		current.WriteString("\n")

		trimmed := strings.TrimSpace(line)
		if dollars%2 == 0 && strings.HasSuffix(trimmed, ";") && !strings.HasPrefix(trimmed, "--") {
			flush()
		}
	}
	flush()

	return statements
}

func isCommentOnly(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}
