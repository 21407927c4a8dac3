package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"rps_webapp/internal/domain"
	"rps_webapp/internal/logger"
)

const migrationTable = "schema_migrations"

// Dialect selects placeholder syntax and the migration directory.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) bind(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Migration is one versioned schema step.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// LoadMigrations reads NNNN_name.sql files from dir, sorted by version.
func LoadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var out []Migration
	seen := make(map[int]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("migration %s: missing version prefix", name)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: invalid version %q", name, prefix)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration %s: version %d already used by %s", name, version, prev)
		}
		seen[version] = name

		content, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out = append(out, Migration{Version: version, Name: name, SQL: ExtractUpMigration(string(content))})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// ExtractUpMigration returns the SQL in the -- +migrate Up section.
func ExtractUpMigration(content string) string {
	upIdx := strings.Index(content, "-- +migrate Up")
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, "-- +migrate Down")
	if downIdx == -1 {
		return content[upIdx+len("-- +migrate Up"):]
	}
	return content[upIdx+len("-- +migrate Up") : downIdx]
}

// SplitStatements breaks a migration body into individual statements,
// dropping comment-only lines.
func SplitStatements(body string) []string {
	var kept []string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}

	var stmts []string
	for _, stmt := range strings.Split(strings.Join(kept, "\n"), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// IsAlreadyExistsError reports whether this error indicates idempotent DDL success.
func IsAlreadyExistsError(err error) bool {
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "already exists") || strings.Contains(value, "duplicate column name")
}

func ensureMigrationTable(ctx context.Context, sqlDB *sql.DB) error {
	_, err := sqlDB.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS `+migrationTable+` (
    version INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at BIGINT NOT NULL
)`)
	return err
}

// CurrentVersion returns the highest applied migration version, 0 for a new store.
func CurrentVersion(ctx context.Context, sqlDB *sql.DB) (int, error) {
	if err := ensureMigrationTable(ctx, sqlDB); err != nil {
		return 0, fmt.Errorf("ensure migration table: %w", err)
	}
	var version int
	err := sqlDB.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM `+migrationTable).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// Migrate applies every migration newer than the recorded schema version.
// Each migration runs in its own transaction together with its version row.
// On SQLite, DDL that reports an existing table or column is treated as
// applied; this adopts stores created before versions were recorded.
func Migrate(ctx context.Context, sqlDB *sql.DB, dialect Dialect, migrations []Migration) ([]Migration, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("%w: sql db is required", domain.ErrMigrationFailed)
	}

	current, err := CurrentVersion(ctx, sqlDB)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMigrationFailed, err)
	}

	var applied []Migration
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := applyMigration(ctx, sqlDB, dialect, m); err != nil {
			return applied, fmt.Errorf("%w: %s: %w", domain.ErrMigrationFailed, m.Name, err)
		}
		logger.Info("migration applied", "version", m.Version, "name", m.Name)
		applied = append(applied, m)
	}
	return applied, nil
}

func applyMigration(ctx context.Context, sqlDB *sql.DB, dialect Dialect, m Migration) error {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range SplitStatements(m.SQL) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			if dialect == DialectSQLite && IsAlreadyExistsError(err) {
				logger.Debug("migration statement already applied", "name", m.Name, "error", err)
				continue
			}
			return fmt.Errorf("exec: %w", err)
		}
	}

	insert := fmt.Sprintf(`INSERT INTO %s (version, name, applied_at) VALUES (%s, %s, %s)`,
		migrationTable, dialect.bind(1), dialect.bind(2), dialect.bind(3))
	if _, err := tx.ExecContext(ctx, insert, m.Version, m.Name, time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("record version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
