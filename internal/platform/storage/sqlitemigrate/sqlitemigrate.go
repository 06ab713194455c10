// Package sqlitemigrate applies embedded, ordered SQL migrations to SQLite
// databases and opens the databases ScholarFlow stores share.
package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/scholarflow/internal/platform/logging"
	"go.uber.org/zap"
)

const migrationTable = "schema_migrations"

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

// Migration describes one migration file and whether it has been applied.
type Migration struct {
	Name      string
	Applied   bool
	AppliedAt time.Time
}

// ApplyMigrations executes migrations from migrationRoot at most once per
// file, in lexical order, and returns the names it applied.
func ApplyMigrations(ctx context.Context, sqlDB *sql.DB, migrationFS fs.FS, migrationRoot string) ([]string, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("sql db is required")
	}
	files, err := listMigrations(migrationFS, migrationRoot)
	if err != nil {
		return nil, err
	}
	if err := ensureMigrationTable(ctx, sqlDB); err != nil {
		return nil, err
	}

	var applied []string
	for _, file := range files {
		done, err := isApplied(ctx, sqlDB, file.key)
		if err != nil {
			return applied, fmt.Errorf("check migration %s: %w", file.key, err)
		}
		if done {
			continue
		}

		content, err := fs.ReadFile(migrationFS, file.path)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", file.key, err)
		}
		upSQL := ExtractUpMigration(string(content))
		if strings.TrimSpace(upSQL) == "" {
			continue
		}

		if err := applyOne(ctx, sqlDB, file.key, upSQL); err != nil {
			return applied, err
		}
		logging.FromContext(ctx).Info("applied migration", zap.String("migration", file.key))
		applied = append(applied, file.key)
	}
	return applied, nil
}

// MigrationStatus reports every migration file under migrationRoot with its
// applied state.
func MigrationStatus(ctx context.Context, sqlDB *sql.DB, migrationFS fs.FS, migrationRoot string) ([]Migration, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("sql db is required")
	}
	files, err := listMigrations(migrationFS, migrationRoot)
	if err != nil {
		return nil, err
	}
	if err := ensureMigrationTable(ctx, sqlDB); err != nil {
		return nil, err
	}

	status := make([]Migration, 0, len(files))
	for _, file := range files {
		var appliedAt int64
		row := sqlDB.QueryRowContext(ctx, "SELECT applied_at FROM "+migrationTable+" WHERE name = ?", file.key)
		switch err := row.Scan(&appliedAt); {
		case errors.Is(err, sql.ErrNoRows):
			status = append(status, Migration{Name: file.key})
		case err != nil:
			return nil, fmt.Errorf("check migration %s: %w", file.key, err)
		default:
			status = append(status, Migration{
				Name:      file.key,
				Applied:   true,
				AppliedAt: time.UnixMilli(appliedAt).UTC(),
			})
		}
	}
	return status, nil
}

// ExtractUpMigration returns the SQL in the -- +migrate Up section.
func ExtractUpMigration(content string) string {
	upIdx := strings.Index(content, upMarker)
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, downMarker)
	if downIdx == -1 || downIdx < upIdx {
		return content[upIdx+len(upMarker):]
	}
	return content[upIdx+len(upMarker) : downIdx]
}

// IsAlreadyExistsError reports whether this error indicates idempotent DDL success.
func IsAlreadyExistsError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "already exists") || strings.Contains(value, "duplicate column name")
}

type migrationFile struct {
	key  string
	path string
}

func listMigrations(migrationFS fs.FS, migrationRoot string) ([]migrationFile, error) {
	if migrationFS == nil {
		return nil, fmt.Errorf("migration fs is required")
	}
	root := strings.TrimSpace(migrationRoot)
	if root == "" {
		root = "."
	}

	entries, err := fs.ReadDir(migrationFS, root)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []migrationFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		key := entry.Name()
		if root != "." {
			key = path.Join(root, entry.Name())
		}
		files = append(files, migrationFile{key: key, path: path.Join(root, entry.Name())})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].key < files[j].key })
	return files, nil
}

func ensureMigrationTable(ctx context.Context, sqlDB *sql.DB) error {
	createSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`, migrationTable)
	if _, err := sqlDB.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	return nil
}

func applyOne(ctx context.Context, sqlDB *sql.DB, name, upSQL string) error {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration transaction %s: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, upSQL); err != nil && !IsAlreadyExistsError(err) {
		_ = tx.Rollback()
		return fmt.Errorf("exec migration %s: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("INSERT OR IGNORE INTO %s (name, applied_at) VALUES (?, ?)", migrationTable),
		name,
		time.Now().UTC().UnixMilli(),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}

func isApplied(ctx context.Context, sqlDB *sql.DB, name string) (bool, error) {
	var found int
	row := sqlDB.QueryRowContext(ctx, "SELECT 1 FROM "+migrationTable+" WHERE name = ?", name)
	if err := row.Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
