package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"conduit/internal/app/catalog"
	"conduit/internal/domain"
	"conduit/internal/infra/bridge"
	"conduit/internal/infra/config"
	"conduit/internal/infra/gateway"
	"conduit/internal/infra/router"
	"conduit/internal/infra/simulate"
	"conduit/internal/infra/strategy"
	"conduit/internal/infra/strategy/fsops"
	"conduit/internal/infra/strategy/memory"
	"conduit/internal/infra/strategy/websearch"
	"conduit/internal/infra/telemetry"
)

type App struct {
	logger *zap.Logger
}

type ServeConfig struct {
	ConfigPath string
	// ForceSimulation mirrors the FORCE_MOCK_MODE switch, resolved once by
	// the command layer.
	ForceSimulation bool
}

type ValidateConfig struct {
	ConfigPath string
}

func New(logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{logger: logger.Named("app")}
}

// Serve boots the bridge: load config, connect every server in parallel,
// discover tool catalogs, then serve the gateway and the observability
// endpoint until ctx is cancelled. Shutdown is a single one-shot pass.
func (a *App) Serve(ctx context.Context, cfg ServeConfig) error {
	loader := config.NewLoader(a.logger)
	loaded, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}
	a.logger.Info("configuration loaded",
		zap.String("config", loaded.Path),
		zap.Bool("exists", loaded.Exists),
		zap.Int("servers", len(loaded.Definitions)),
		zap.Bool("forceSimulation", cfg.ForceSimulation),
	)

	metrics := telemetry.NewPrometheusMetrics(nil)

	registry := strategy.NewRegistry()
	registry.Register(domain.IdentityFilesystem, strategy.Entry{Strategy: fsops.New()})
	registry.Register(domain.IdentityWebSearch, strategy.Entry{
		Strategy:      websearch.New(websearch.Options{}),
		CredentialKey: websearch.CredentialKey,
		Guidance:      websearch.Guidance,
	})

	memStore, err := memory.Open(loaded.Runtime.Memory.Path)
	if err != nil {
		// The memory identity degrades to the simulated path when its
		// store cannot be opened; the bridge still comes up.
		a.logger.Warn("memory store unavailable, memory identity will be simulated", zap.Error(err))
	} else {
		registry.Register(domain.IdentityMemory, strategy.Entry{Strategy: memStore})
		defer func() {
			if err := memStore.Close(); err != nil {
				a.logger.Warn("memory store close failed", zap.Error(err))
			}
		}()
	}

	manager := bridge.NewManager(bridge.Options{
		Logger:      a.logger,
		Metrics:     metrics,
		Timeout:     time.Duration(loaded.Runtime.ConnectTimeoutSeconds) * time.Second,
		Concurrency: loaded.Runtime.ConnectConcurrency,
	})
	conns := manager.ConnectAll(ctx, loaded.Definitions)

	cat := catalog.New(registry, a.logger)
	cat.DiscoverAll(conns)

	// Excluded servers stay visible to discovery and health but are absent
	// from the router's ready set, so executing against them reports
	// "not found" rather than a simulated result.
	readySet := make(map[string]*domain.ServerConnection, len(conns))
	for name, conn := range conns {
		if conn.Status != domain.StatusExcluded {
			readySet[name] = conn
		}
	}

	rt := router.New(readySet, registry, router.Options{
		ForceSimulation: cfg.ForceSimulation,
		Simulator:       simulate.NewDefault(loaded.Runtime.Simulation),
		Logger:          a.logger,
		Metrics:         metrics,
	})

	gw := gateway.NewServer(gateway.Options{
		Connections:  conns,
		Router:       rt,
		ConfigPath:   loaded.Path,
		ConfigExists: loaded.Exists,
		Logger:       a.logger,
	})

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 2)
	go func() {
		errChan <- gw.Serve(serveCtx, loaded.Runtime.Gateway.ListenAddress)
	}()
	go func() {
		errChan <- telemetry.StartHTTPServer(serveCtx, telemetry.HTTPServerOptions{
			Addr: loaded.Runtime.Observability.ListenAddress,
		}, a.logger)
	}()

	var firstErr error
	for i := 0; i < 2; i++ {
		if err := <-errChan; err != nil && firstErr == nil {
			firstErr = err
		}
		cancel()
	}
	return firstErr
}

// Validate loads and validates the configuration without connecting
// anything.
func (a *App) Validate(ctx context.Context, cfg ValidateConfig) error {
	loader := config.NewLoader(a.logger)
	loaded, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}
	a.logger.Info("configuration valid",
		zap.String("config", loaded.Path),
		zap.Bool("exists", loaded.Exists),
		zap.Int("servers", len(loaded.Definitions)),
	)
	return nil
}
