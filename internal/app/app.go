package app

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/poofware/housing-service/internal/config"
	"github.com/poofware/housing-service/internal/repositories"
	"github.com/poofware/housing-service/internal/utils"
	"github.com/poofware/housing-service/migrations"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
)

// App holds the process-wide store handles. DB is nil with the memory driver.
type App struct {
	Config *config.Config
	DB     *pgxpool.Pool
	Repos  repositories.Set
}

func NewApp(cfg *config.Config) (*App, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		utils.Logger.Warn("Using the in-memory store; data is lost on restart.")
		return &App{Config: cfg, Repos: repositories.NewMemorySet(repositories.NewMemoryStore())}, nil
	}

	var (
		dbPool  *pgxpool.Pool
		err     error
		backoff = initialBackoff
	)

	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		dbPool, err = newDBPool(ctx, cfg.DBUrl)
		cancel()
		if err == nil {
			utils.Logger.Infof("%s connected to DB on attempt %d", cfg.AppName, i)
			break
		}

		utils.Logger.WithError(err).Warnf(
			"Failed DB connect on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)

		if i == maxRetries {
			return nil, fmt.Errorf("unable to connect after %d attempts: %w", maxRetries, err)
		}
		time.Sleep(backoff)
		backoff *= 2
	}

	if err := applyMigrations(context.Background(), dbPool); err != nil {
		dbPool.Close()
		return nil, err
	}

	return &App{
		Config: cfg,
		DB:     dbPool,
		Repos:  repositories.NewPostgresSet(dbPool),
	}, nil
}

// Ping reports whether the store is reachable.
func (a *App) Ping(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Ping(ctx)
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		utils.Logger.Infof("%s DB connection closed.", a.Config.AppName)
	}
}

func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	return pgxpool.ConnectConfig(ctx, cfg)
}

// applyMigrations runs every embedded schema file in name order. The files
// are written to be re-runnable.
func applyMigrations(ctx context.Context, db *pgxpool.Pool) error {
	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return err
	}
	for _, name := range names {
		sql, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		// no arguments, so pgx uses the simple protocol and multi-statement files work
		if _, err := db.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		utils.Logger.WithField("migration", name).Debug("Applied migration")
	}
	return nil
}
