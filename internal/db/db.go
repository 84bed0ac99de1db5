// Package db opens the Postgres pool behind the material catalog.
package db

import (
    "context"
    "errors"
    "fmt"
    "strconv"
    "time"

    "github.com/jackc/pgx/v5/pgxpool"
    "go.uber.org/zap"
)

// Options tunes the pool. Zero values take the defaults below.
type Options struct {
    URL              string
    MaxConns         int32
    StatementTimeout time.Duration
    ApplicationName  string
}

const (
    defaultMaxConns         = 4
    defaultStatementTimeout = 2 * time.Second
    defaultApplicationName  = "printship-rates"
)

// poolConfig turns Options into a pgxpool config. Density lookups sit on the
// checkout path, so the statement timeout is short and the pool is small.
func poolConfig(opts Options) (*pgxpool.Config, error) {
    if opts.URL == "" {
        return nil, errors.New("DATABASE_URL is not set")
    }
    cfg, err := pgxpool.ParseConfig(opts.URL)
    if err != nil {
        return nil, fmt.Errorf("parsing database url: %w", err)
    }
    if opts.MaxConns <= 0 {
        opts.MaxConns = defaultMaxConns
    }
    if opts.StatementTimeout <= 0 {
        opts.StatementTimeout = defaultStatementTimeout
    }
    if opts.ApplicationName == "" {
        opts.ApplicationName = defaultApplicationName
    }
    cfg.MaxConns = opts.MaxConns
    cfg.MinConns = 0
    cfg.MaxConnLifetime = 30 * time.Minute
    cfg.MaxConnIdleTime = 5 * time.Minute
    cfg.HealthCheckPeriod = 30 * time.Second
    params := cfg.ConnConfig.RuntimeParams
    params["application_name"] = opts.ApplicationName
    params["search_path"] = "public"
    params["timezone"] = "UTC"
    params["statement_timeout"] = strconv.FormatInt(opts.StatementTimeout.Milliseconds(), 10)
    params["idle_in_transaction_session_timeout"] = "5000"
    return cfg, nil
}

// Open connects and pings. The pool is closed again if the ping fails.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*pgxpool.Pool, error) {
    cfg, err := poolConfig(opts)
    if err != nil {
        return nil, err
    }
    pool, err := pgxpool.NewWithConfig(ctx, cfg)
    if err != nil {
        return nil, err
    }
    if err := pool.Ping(ctx); err != nil {
        pool.Close()
        return nil, fmt.Errorf("pinging database: %w", err)
    }
    if logger != nil {
        logger.Info("database connected",
            zap.String("host", cfg.ConnConfig.Host),
            zap.String("database", cfg.ConnConfig.Database),
            zap.Int32("max_conns", cfg.MaxConns),
        )
    }
    return pool, nil
}

// NewPool opens a pool with default options.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
    return Open(ctx, Options{URL: databaseURL}, nil)
}

// Migrate applies idempotent DDL statements in one transaction.
func Migrate(ctx context.Context, pool *pgxpool.Pool, statements ...string) error {
    tx, err := pool.Begin(ctx)
    if err != nil {
        return err
    }
    defer func() { _ = tx.Rollback(ctx) }()
    for _, stmt := range statements {
        if _, err := tx.Exec(ctx, stmt); err != nil {
            return fmt.Errorf("migrating: %w", err)
        }
    }
    return tx.Commit(ctx)
}
