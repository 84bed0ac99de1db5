package main

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "go.uber.org/zap"

    "printship/internal/cache"
    "printship/internal/carrier"
    "printship/internal/catalog"
    "printship/internal/config"
    "printship/internal/db"
    "printship/internal/logging"
    "printship/internal/metrics"
    "printship/internal/server"
    "printship/internal/shipping"
)

func main() {
    cfg, err := config.Load()
    if err != nil {
        zap.NewExample().Fatal("failed to load config", zap.Error(err))
    }
    logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
    defer logger.Sync()

    if err := run(cfg, logger); err != nil {
        logger.Error("server error", zap.Error(err))
        os.Exit(1)
    }
}

func run(cfg *config.Config, logger *zap.Logger) error {
    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    // Material catalog: Postgres when configured, otherwise every material
    // uses the fallback density.
    var (
        lookup catalog.DensityLookup = catalog.Static{}
        pinger server.Pinger
    )
    if cfg.DatabaseURL != "" {
        dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
        pool, err := db.Open(dbCtx, db.Options{
            URL:              cfg.DatabaseURL,
            MaxConns:         cfg.Database.MaxConns,
            StatementTimeout: cfg.Database.StatementTimeout,
        }, logger)
        if err != nil {
            cancel()
            return err
        }
        err = db.Migrate(dbCtx, pool, catalog.Schema)
        cancel()
        if err != nil {
            pool.Close()
            return err
        }
        defer pool.Close()
        lookup = catalog.NewPGStore(pool)
        pinger = pool
    } else {
        logger.Warn("DATABASE_URL not set, using fallback material density for every item")
    }
    resolver := catalog.NewResolver(lookup, cfg.FallbackDensity, logger)

    var quoteCache shipping.QuoteCache
    if cfg.Redis.Addr != "" {
        rc, err := cache.NewRedisQuoteCache(cache.RedisConfig{
            Addr:     cfg.Redis.Addr,
            Password: cfg.Redis.Password,
            DB:       cfg.Redis.DB,
            TTL:      cfg.Redis.TTL,
        })
        if err != nil {
            return err
        }
        defer rc.Close()
        quoteCache = rc
    }

    fedexCard, err := carrier.LoadCard(cfg.FedExCardFile, "fedex")
    if err != nil {
        return err
    }
    swcCard, err := carrier.LoadCard(cfg.SouthwestCardFile, "southwest")
    if err != nil {
        return err
    }
    providers, err := carrier.NewRegistry(cfg.Providers, carrier.Deps{
        FedExCard:     fedexCard,
        SouthwestCard: swcCard,
        FedExAPI: carrier.NewFedExAPI(carrier.FedExAPIConfig{
            BaseURL:           cfg.FedEx.APIURL,
            APIKey:            cfg.FedEx.APIKey,
            AccountNumber:     cfg.FedEx.AccountNumber,
            RequestsPerSecond: cfg.FedEx.RequestsPerSecond,
        }),
        Breaker: carrier.BreakerSettings{
            ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
            OpenTimeout:         cfg.Breaker.OpenTimeout,
        },
        Logger: logger,
    })
    if err != nil {
        return err
    }

    tiers, err := cfg.BoxTiers()
    if err != nil {
        return err
    }

    reg := prometheus.NewRegistry()
    reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

    packaging := cfg.PackagingWeight
    engine, err := shipping.NewEngine(providers, shipping.Options{
        MaxBoxWeight:    cfg.MaxBoxWeight,
        PackagingWeight: &packaging,
        BoxTiers:        tiers,
        ProviderTimeout: cfg.ProviderTimeout,
        Origin:          cfg.Origin,
        Cache:           quoteCache,
        Observer:        metrics.New(reg),
        Logger:          logger,
    })
    if err != nil {
        return err
    }

    r := server.New(server.Deps{
        Rates:     engine,
        Densities: resolver,
        DB:        pinger,
        Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
        Logger:    logger,
    })

    srv := &http.Server{
        Addr:              ":" + cfg.Port,
        Handler:           r,
        ReadTimeout:       10 * time.Second,
        ReadHeaderTimeout: 10 * time.Second,
        WriteTimeout:      20 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    errCh := make(chan error, 1)
    go func() {
        logger.Info("api listening",
            zap.String("addr", srv.Addr),
            zap.Strings("providers", cfg.Providers),
            zap.Bool("fedex_live", cfg.FedEx.APIURL != ""),
            zap.Bool("quote_cache", quoteCache != nil),
        )
        errCh <- srv.ListenAndServe()
    }()

    select {
    case err := <-errCh:
        if !errors.Is(err, http.ErrServerClosed) {
            return err
        }
        return nil
    case <-ctx.Done():
    }

    logger.Info("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
    defer cancel()
    return srv.Shutdown(shutdownCtx)
}
