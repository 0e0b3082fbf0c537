// Package app opens the database and builds the stores and services that
// both the HTTP server and the command line work against.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gocraft/dbr/v2"

	"github.com/dukerupert/homeeasy/internal/config"
	"github.com/dukerupert/homeeasy/internal/database"
	"github.com/dukerupert/homeeasy/internal/intake"
	"github.com/dukerupert/homeeasy/internal/lock"
	"github.com/dukerupert/homeeasy/internal/roster"
	"github.com/dukerupert/homeeasy/internal/store"
)

// App holds every long-lived component for one process.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Conn   *dbr.Connection
	Locker lock.Locker

	Clients      *store.ClientStore
	Requirements *store.RequirementStore
	Schedules    *store.ScheduleStore
	Dead         *store.DeadStore
	Revenue      *store.RevenueStore

	Roster    *roster.Service
	Validator intake.Validator

	closers []io.Closer
}

// New opens the configured database, running migrations, and connects to
// Redis when an address is configured. Without Redis, per-client write
// locks are held in process.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	var locker lock.Locker = lock.NewMemory()
	closers := []io.Closer{conn}
	if cfg.Redis.Addr != "" {
		rl, err := lock.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			conn.Close()
			return nil, err
		}
		locker = rl
		closers = append(closers, rl)
		logger.Info("using redis locks", "addr", cfg.Redis.Addr)
	}

	return NewWithConn(conn, cfg, locker, logger, closers...), nil
}

// NewWithConn builds an App over an already open connection. closers are
// released by Close in reverse order.
func NewWithConn(conn *dbr.Connection, cfg *config.Config, locker lock.Locker, logger *slog.Logger, closers ...io.Closer) *App {
	if locker == nil {
		locker = lock.NewMemory()
	}
	if logger == nil {
		logger = slog.Default()
	}
	clients := store.NewClientStore(conn)
	return &App{
		Config:       cfg,
		Logger:       logger,
		Conn:         conn,
		Locker:       locker,
		Clients:      clients,
		Requirements: store.NewRequirementStore(conn, locker, logger),
		Schedules:    store.NewScheduleStore(conn, locker),
		Dead:         store.NewDeadStore(conn, locker),
		Revenue:      store.NewRevenueStore(conn),
		Roster:       roster.NewService(clients, cfg.Roster.PageSize),
		Validator:    intake.Validator{RequireTourDate: cfg.Intake.RequireTourDate},
		closers:      closers,
	}
}

// Close releases the database and any Redis connection.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
