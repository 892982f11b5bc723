package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/stockimport/internal/config"
	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/JonMunkholm/stockimport/internal/events"
	"github.com/JonMunkholm/stockimport/internal/logging"
	"github.com/JonMunkholm/stockimport/internal/session"
	"github.com/JonMunkholm/stockimport/internal/store/memory"
	"github.com/JonMunkholm/stockimport/internal/store/postgres"
	"github.com/JonMunkholm/stockimport/internal/web"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// inventoryStore is what the pipeline needs from a storage backend.
type inventoryStore interface {
	core.CategoryStore
	core.LocationSet
	core.InventoryStore
	core.AuditLog
	core.MovementLister
}

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		slog.Error("failed to open inventory store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	states, closeStates, err := openSessions(ctx, cfg.Session)
	if err != nil {
		slog.Error("failed to open session store", "backend", cfg.Session.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStates()

	var publisher core.EventPublisher
	if cfg.Events.EventsEnabled() {
		kafkaPub := events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.Topic)
		defer func() {
			if err := kafkaPub.Close(); err != nil {
				slog.Warn("kafka publisher close", "error", err)
			}
		}()
		publisher = kafkaPub
		slog.Info("import events enabled", "brokers", cfg.Events.KafkaBrokers, "topic", cfg.Events.Topic)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pipeline := core.NewPipeline(core.Deps{
		Categories:  store,
		Locations:   store,
		Inventory:   store,
		Audit:       store,
		Diagnostics: logging.NewDiagnosticLog(logger),
	})
	service := core.NewService(pipeline, states, core.ServiceOptions{
		Limiter:       core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		Metrics:       core.NewMetrics(reg),
		Events:        publisher,
		Ledger:        store,
		CommitTimeout: cfg.Import.CommitTimeout,
	})

	server := web.NewServer(service, cfg, reg)

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Commits run detached from requests, so they can outlive Shutdown.
		status := service.LimiterStatus()
		if status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		stop()
	}

	// Stores close in deferred calls, after in-flight imports drain.
	<-done
	slog.Info("server stopped")
}

func openStore(ctx context.Context, cfg config.StoreConfig) (inventoryStore, func(), error) {
	if cfg.UsesMemory() {
		slog.Warn("using in-memory inventory store; data is lost on restart")
		return memory.New(), func() {}, nil
	}

	pool, err := postgres.Connect(ctx, postgres.PoolConfig{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.MaxConns,
		MinConns:        cfg.MinConns,
		MaxConnLifetime: cfg.MaxConnLifetime,
		MaxConnIdleTime: cfg.MaxConnIdleTime,
	})
	if err != nil {
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.DatabaseURL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	return postgres.New(pool), pool.Close, nil
}

func openSessions(ctx context.Context, cfg config.SessionConfig) (core.StateStore, func(), error) {
	if cfg.UsesRedis() {
		client, err := session.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("import sessions stored in redis", "prefix", cfg.KeyPrefix, "ttl", cfg.TTL)
		return session.NewRedisStore(client, cfg.KeyPrefix, cfg.TTL), func() { _ = client.Close() }, nil
	}

	states := session.NewMemoryStore(cfg.TTL)
	janitorCtx, cancel := context.WithCancel(ctx)
	go states.RunJanitor(janitorCtx, session.DefaultJanitorInterval)
	return states, cancel, nil
}
