package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gocraft/dbr/v2"
	"github.com/gocraft/dbr/v2/dialect"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// Open connects to the configured backend, runs migrations and returns a dbr
// connection whose events are logged through logger. A nil logger discards
// events.
func Open(driver, dsn string, logger *slog.Logger) (*dbr.Connection, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var (
		d       dbr.Dialect
		gooseID string
	)
	switch driver {
	case DriverSQLite:
		d, gooseID = dialect.SQLite3, "sqlite3"
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
		d, gooseID = dialect.PostgreSQL, "postgres"
	default:
		return nil, fmt.Errorf("open db: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	configurePool(db, driver, dsn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := runMigrations(db, gooseID, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &dbr.Connection{
		DB:            db,
		Dialect:       d,
		EventReceiver: NewEventLogger(logger.With("component", "db")),
	}, nil
}

// Migrate applies pending migrations without keeping the connection open.
func Migrate(driver, dsn string) (int64, error) {
	conn, err := Open(driver, dsn, nil)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	return goose.GetDBVersion(conn.DB)
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	pragmas := sqlitePragmas
	if !isMemory(dsn) {
		pragmas += "&_pragma=journal_mode(WAL)"
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + pragmas
	}
	return dsn + "?" + pragmas
}

func isMemory(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func configurePool(db *sql.DB, driver, dsn string) {
	switch {
	case driver == DriverSQLite && isMemory(dsn):
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	case driver == DriverSQLite:
		db.SetMaxOpenConns(4)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
}

func runMigrations(db *sql.DB, gooseDialect, dir string) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations/"+dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}
