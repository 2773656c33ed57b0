package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kode4food/timebox"

	app "github.com/agentflow/onboard"
	"github.com/agentflow/onboard/internal/archive"
	"github.com/agentflow/onboard/internal/config"
	"github.com/agentflow/onboard/internal/engine"
	"github.com/agentflow/onboard/internal/server"
	"github.com/agentflow/onboard/pkg/log"
	"github.com/agentflow/onboard/pkg/wizard"
)

type onboard struct {
	cfg         *config.Config
	timebox     *timebox.Timebox
	engineStore *timebox.Store
	wizardStore *timebox.Store
	registry    *wizard.Registry
	engine      *engine.Engine
	archiver    *archive.BlobArchiver
	archWorker  *engine.ArchiveWorker
	apiServer   *server.Server
	httpServer  *http.Server
	quit        chan os.Signal
}

var (
	ErrCreateTimebox     = errors.New("failed to create timebox")
	ErrCreateEngineStore = errors.New("failed to create engine store")
	ErrCreateWizardStore = errors.New("failed to create wizard store")
	ErrLoadSteps         = errors.New("failed to load step definitions")
	ErrOpenArchive       = errors.New("failed to open archive bucket")
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func main() {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &onboard{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *onboard) run() error {
	if err := s.loadRegistry(); err != nil {
		return err
	}
	if err := s.initializeStores(); err != nil {
		return err
	}
	if err := s.initializeEngine(); err != nil {
		return err
	}
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *onboard) setupLogging() {
	level, ok := logLevels[s.cfg.LogLevel]
	if !ok {
		level = slog.LevelInfo
	}

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Onboard engine starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("engine_redis_addr", s.cfg.EngineStore.Addr),
		slog.Int("engine_redis_db", s.cfg.EngineStore.DB),
		slog.String("wizard_redis_addr", s.cfg.WizardStore.Addr),
		slog.Int("wizard_redis_db", s.cfg.WizardStore.DB),
		slog.String("steps_file", s.cfg.StepsFile),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort))
}

func (s *onboard) loadRegistry() error {
	steps, err := config.LoadSteps(s.cfg.StepsFile)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadSteps, err)
	}
	registry, err := wizard.NewRegistry(steps...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadSteps, err)
	}
	s.registry = registry

	slog.Info("Step registry loaded",
		slog.Int("steps", registry.Len()))
	return nil
}

func (s *onboard) initializeStores() error {
	var err error

	s.timebox, err = timebox.NewTimebox(timebox.Config{
		MaxRetries: timebox.DefaultMaxRetries,
		CacheSize:  s.cfg.WizardCacheSize,
		Workers:    true,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreateTimebox, err)
	}

	s.engineStore, err = s.timebox.NewStore(s.cfg.EngineStore)
	if err != nil {
		_ = s.timebox.Close()
		return fmt.Errorf("%w: %w", ErrCreateEngineStore, err)
	}

	s.wizardStore, err = s.timebox.NewStore(s.cfg.WizardStore)
	if err != nil {
		_ = s.timebox.Close()
		return fmt.Errorf("%w: %w", ErrCreateWizardStore, err)
	}

	return nil
}

func (s *onboard) initializeEngine() error {
	s.engine = engine.New(
		s.engineStore, s.wizardStore, s.registry,
		s.timebox.GetHub(), s.cfg,
	)
	s.engine.Start()

	if s.cfg.Archive.BucketURL != "" {
		archiver, err := archive.NewBlobArchiver(
			context.Background(),
			s.cfg.Archive.BucketURL, s.cfg.Archive.Prefix,
		)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrOpenArchive, err)
		}
		s.archiver = archiver
		s.archWorker = engine.NewArchiveWorker(s.engine, archiver, s.cfg)
		s.archWorker.Start()
	}

	return nil
}

func (s *onboard) startServer() {
	s.apiServer = server.NewServer(s.engine, s.timebox.GetHub())
	router := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
}

func (s *onboard) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	s.apiServer.CloseWebSockets()

	if s.archWorker != nil {
		s.archWorker.Stop()
	}

	if err := s.engine.Stop(); err != nil {
		slog.Error("Engine shutdown failed", log.Error(err))
	}

	if s.archiver != nil {
		_ = s.archiver.Close()
	}

	_ = s.timebox.Close()

	slog.Info("Server exited")
}
