package daemon

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ebosoh/sales-agent/internal/api"
	agentv1 "github.com/ebosoh/sales-agent/internal/api/agentv1"
	"github.com/ebosoh/sales-agent/internal/browser"
	"github.com/ebosoh/sales-agent/internal/bus"
	"github.com/ebosoh/sales-agent/internal/community"
	"github.com/ebosoh/sales-agent/internal/config"
	"github.com/ebosoh/sales-agent/internal/fraud"
	"github.com/ebosoh/sales-agent/internal/lock"
	"github.com/ebosoh/sales-agent/internal/logging"
	"github.com/ebosoh/sales-agent/internal/monitor"
	"github.com/ebosoh/sales-agent/internal/pipeline"
	"github.com/ebosoh/sales-agent/internal/profile"
	"github.com/ebosoh/sales-agent/internal/query"
	"github.com/ebosoh/sales-agent/internal/status"
	"github.com/ebosoh/sales-agent/internal/store"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile    string
	SocketPath string // optional override for testing; empty = use default
	LogLevel   string
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			provideCommunity,
			provideModel,
			provideCache,
			providePipeline,
			provideQuery,
			provideOrchestrator,
			provideWatcher,
			provideAgent,
			health.NewServer,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig() (*config.Config, error) {
	if err := config.LoadEnv(profile.EnvPath(), ".env"); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadOrDefault(profile.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(profile.LogPath(p.Profile), p.Profile, logging.ParseLevel(p.LogLevel))
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

// provideStore opens the local store and applies migrations. It takes the
// lock so that no store is touched before the profile is ours.
func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := profile.AgentDBPath(p.Profile)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

// provideCommunity connects the shared fraud list. Failure is not fatal:
// the daemon runs without it and the views report unknown risk.
func provideCommunity(p Params, cfg *config.Config, logger *zap.Logger) store.Community {
	dsn := cfg.Community.DSN
	if dsn == "" {
		dsn = profile.CommunityDBPath(p.Profile)
	}
	c, err := community.Connect(context.Background(), dsn)
	if err != nil {
		logger.Warn("community store unavailable", zap.Error(err))
		return nil
	}
	logger.Info("community store connected", zap.Bool("postgres", community.IsPostgresDSN(dsn)))
	return c
}

func provideModel(cfg *config.Config, logger *zap.Logger) (pipeline.Model, error) {
	g, err := pipeline.NewGemini(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model)
	if errors.Is(err, pipeline.ErrNoAPIKey) {
		logger.Warn("text analysis disabled", zap.String("env", config.EnvGeminiKey))
		return pipeline.ModelFunc(func(context.Context, string) (string, error) {
			return "", pipeline.ErrNoAPIKey
		}), nil
	}
	if err != nil {
		return nil, err
	}
	return pipeline.WithRetry(g, cfg.Gemini.MaxRetries, cfg.Gemini.Backoff.Duration, logger), nil
}

func provideCache(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) pipeline.Cache {
	if cfg.Redis.Addr == "" {
		return nil
	}
	c, err := pipeline.NewRedisCache(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL.Duration)
	if err != nil {
		logger.Warn("extraction cache unavailable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		return nil
	}
	lc.Append(fx.StopHook(c.Close))
	logger.Info("extraction cache connected", zap.String("addr", cfg.Redis.Addr))
	return c
}

func providePipeline(model pipeline.Model, cache pipeline.Cache, logger *zap.Logger) *pipeline.Pipeline {
	return pipeline.New(model, cache, logger)
}

func provideQuery(db *store.DB, c store.Community, pipe *pipeline.Pipeline, logger *zap.Logger) *query.Service {
	return query.New(db, c, pipe, logger)
}

func provideOrchestrator(p Params, cfg *config.Config, db *store.DB, b *bus.Bus, m *status.Machine, logger *zap.Logger) *monitor.Orchestrator {
	mc := monitor.Config{
		MaxScrolls:     cfg.Monitor.MaxScrolls,
		ScrollPause:    cfg.Monitor.ScrollPause.Duration,
		Settle:         cfg.Monitor.Settle.Duration,
		InterGroup:     cfg.Monitor.InterGroup.Duration,
		InterCycle:     cfg.Monitor.InterCycle.Duration,
		EmptyWait:      cfg.Monitor.EmptyWait.Duration,
		DiagnosticsDir: profile.DiagnosticsDir(p.Profile),
		Location:       cfg.Location(),
	}
	rc := browser.RodConfig{
		UserDataDir: profile.BrowserDir(p.Profile),
		Headless:    cfg.Browser.Headless,
		RemoteURL:   cfg.Browser.RemoteURL,
		Logger:      logger,
	}
	open := func(ctx context.Context) (browser.Session, error) {
		return browser.OpenRod(ctx, rc)
	}
	return monitor.New(mc, db, open, b, m, logger)
}

// provideWatcher gives the watcher its own connection to the local store.
func provideWatcher(lc fx.Lifecycle, p Params, cfg *config.Config, _ *store.DB, c store.Community, pipe *pipeline.Pipeline, b *bus.Bus, logger *zap.Logger) (*fraud.Watcher, error) {
	src, err := store.Open(profile.AgentDBPath(p.Profile))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(src.Close))
	return fraud.NewWatcher(src, c, pipe, b, cfg.Watcher.Interval.Duration, logger), nil
}

func provideAgent(p Params, cfg *config.Config, db *store.DB, views *query.Service, orch *monitor.Orchestrator, b *bus.Bus, logger *zap.Logger) *api.Agent {
	return api.NewAgent(db, views, orch, b, api.Options{Profile: p.Profile, Identity: cfg.Identity}, logger)
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, db *store.DB, c store.Community, orch *monitor.Orchestrator, watcher *fraud.Watcher, hs *health.Server, cfg *config.Config, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Start gRPC server in background.
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()

			if cfg.Watcher.Disabled {
				logger.Info("fraud watcher disabled by config")
			} else {
				watcher.Start(context.Background())
			}

			hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
			hs.SetServingStatus(agentv1.ServiceName, healthpb.HealthCheckResponse_SERVING)
			logger.Info("daemon ready", zap.Bool("community", c != nil))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			hs.Shutdown()
			orch.Stop()
			select {
			case <-orch.Done():
			case <-ctx.Done():
				logger.Warn("monitor did not stop in time")
			}
			watcher.Stop()
			srv.Stop(ctx)
			if c != nil {
				if err := c.Close(); err != nil {
					logger.Warn("error closing community store", zap.Error(err))
				}
			}
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
