// Package database keeps the application log in a sqlite file.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	sqlite "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Applied to every new connection.
const connectionPragmas = `
	PRAGMA journal_mode = WAL;
	PRAGMA synchronous = NORMAL;
	PRAGMA busy_timeout = 5000;
	PRAGMA trusted_schema = OFF;
`

var pragmaHook sync.Once

// Database uses one pool for readers and a single connection for writes,
// since sqlite allows only one writer at a time.
type Database struct {
	logger *slog.Logger
	read   *sql.DB
	write  *sql.DB
}

func New(ctx context.Context, file string) (*Database, error) {
	pragmaHook.Do(func() {
		sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, _ string) error {
			_, err := conn.ExecContext(context.Background(), connectionPragmas, nil)
			return err
		})
	})

	read, err := openPool(file, 4)
	if err != nil {
		return nil, err
	}
	write, err := openPool(file, 1)
	if err != nil {
		read.Close()
		return nil, err
	}

	d := &Database{
		logger: slog.Default().With(slog.String("module", "database")),
		read:   read,
		write:  write,
	}
	if err := d.migrate(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("migrating %s: %w", file, err)
	}
	return d, nil
}

func openPool(file string, conns int) (*sql.DB, error) {
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", file, err)
	}
	db.SetMaxOpenConns(conns)
	db.SetConnMaxIdleTime(time.Minute)
	return db, nil
}

func (d *Database) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

func (d *Database) Close() {
	d.read.Close()
	d.write.Close()
}

// migrate applies every migrations/NNN_name.sql newer than the schema version
// stored in PRAGMA user_version, in version order.
func (d *Database) migrate(ctx context.Context) error {
	var current int
	if err := d.write.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}

	for _, name := range names { // Glob returns names sorted
		version, err := migrationVersion(name)
		if err != nil {
			return err
		}
		if version <= current {
			continue
		}
		script, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		if err := d.applyMigration(ctx, version, string(script)); err != nil {
			return err
		}
		d.logger.Debug("schema migrated", slog.Int("version", version))
	}
	return nil
}

func (d *Database) applyMigration(ctx context.Context, version int, script string) error {
	tx, err := d.write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %d: %w", version, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("migration %d: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("migration %d, setting version: %w", version, err)
	}
	return tx.Commit()
}

func migrationVersion(name string) (int, error) {
	base := strings.TrimPrefix(name, "migrations/")
	prefix, _, ok := strings.Cut(base, "_")
	if !ok {
		return 0, fmt.Errorf("migration %s: name must start with NNN_", base)
	}
	v, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("migration %s: %w", base, err)
	}
	return v, nil
}
