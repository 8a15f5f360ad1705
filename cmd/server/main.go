package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/candidate-import/internal/cache"
	"github.com/JonMunkholm/candidate-import/internal/config"
	"github.com/JonMunkholm/candidate-import/internal/core"
	"github.com/JonMunkholm/candidate-import/internal/logging"
	"github.com/JonMunkholm/candidate-import/internal/metrics"
	"github.com/JonMunkholm/candidate-import/internal/store"
	"github.com/JonMunkholm/candidate-import/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Overload lets a local .env win over the shell environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	db := store.New(pool)
	if err := db.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	if cfg.Database.Migrate {
		if err := db.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	var fields core.FieldSource = db
	if cfg.Cache.Enabled() {
		client, err := cache.NewClient(cfg.Cache.URL)
		if err != nil {
			slog.Error("failed to configure redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unreachable, custom fields will be read from the database", "error", err)
		}
		fields = cache.NewFieldCache(client, db, cfg.Cache.TTL)
		slog.Info("custom field cache enabled", "ttl", cfg.Cache.TTL)
	}

	var audit core.AuditStore
	if cfg.Audit.Enabled {
		audit = db
	}

	recorder := metrics.New()
	service := core.NewService(db, core.Options{
		MaxFileSize:   cfg.Import.MaxFileSize,
		MaxConcurrent: cfg.Import.MaxConcurrent,
		MaxWait:       cfg.Import.MaxWaitTime,
		SessionTTL:    cfg.Import.SessionTTL,
		PhonePolicy:   cfg.PhonePolicy(),
		Fields:        fields,
		Observer:      recorder,
		Audit:         audit,
	})
	recorder.TrackSessions(service.ActiveSessions)

	server := web.NewServer(service, cfg, web.Deps{
		Metrics: recorder.Handler(),
		Health:  db.Ping,
	})

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSessionSweeper(jobCtx, cfg.Import.SweepInterval)
	go service.StartAuditRetention(jobCtx, core.AuditRetention{
		Days:     cfg.Audit.RetentionDays,
		Interval: cfg.Audit.PurgeInterval,
	})

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		shutdown(shutdownCtx, server, service)
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}

type httpStopper interface {
	Shutdown(ctx context.Context) error
}

type importDrainer interface {
	LimiterStatus() core.ImportLimiterStatus
	WaitForImports(ctx context.Context) error
}

// shutdown stops accepting requests first so no preview starts while the
// running ones drain.
func shutdown(ctx context.Context, server httpStopper, imports importDrainer) {
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}

	if status := imports.LimiterStatus(); status.Active > 0 {
		slog.Info("waiting for imports to complete", "active", status.Active)
		if err := imports.WaitForImports(ctx); err != nil {
			slog.Warn("imports did not complete in time", "error", err)
		}
	}
}
