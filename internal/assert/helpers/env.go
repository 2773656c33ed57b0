package helpers

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kode4food/timebox"
	"github.com/stretchr/testify/require"

	"github.com/agentflow/onboard/internal/config"
	"github.com/agentflow/onboard/internal/engine"
	"github.com/agentflow/onboard/pkg/api"
	"github.com/agentflow/onboard/pkg/wizard"
)

// TestEngineEnv holds all the components needed for engine testing
type TestEngineEnv struct {
	Engine      *engine.Engine
	Redis       *miniredis.Miniredis
	Registry    *wizard.Registry
	Config      *config.Config
	EventHub    *timebox.EventHub
	Cleanup     func()
	engineStore *timebox.Store
	wizardStore *timebox.Store
}

// NewTestRegistry creates the three-step registry used throughout the tests
func NewTestRegistry(t *testing.T) *wizard.Registry {
	t.Helper()

	registry, err := wizard.NewRegistry(
		&api.StepDefinition{
			ID:    1,
			Title: "Account",
			Fields: api.FieldSpecs{
				"full_name": {Role: api.RoleRequired, Type: api.TypeString},
				"email":     {Role: api.RoleRequired, Type: api.TypeString},
			},
		},
		&api.StepDefinition{
			ID:    2,
			Title: "Workspace",
			Fields: api.FieldSpecs{
				"workspace_name": {
					Role: api.RoleRequired, Type: api.TypeString,
				},
				"team_size": {Role: api.RoleOptional, Type: api.TypeNumber},
			},
		},
		&api.StepDefinition{
			ID:    3,
			Title: "Preferences",
			Fields: api.FieldSpecs{
				"newsletter": {
					Role: api.RoleOptional, Type: api.TypeBoolean,
				},
			},
		},
	)
	require.NoError(t, err)
	return registry
}

// NewTestEngine creates a fully configured test engine environment with an
// in-memory Redis backend
func NewTestEngine(t *testing.T) *TestEngineEnv {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)

	tb, err := timebox.NewTimebox(timebox.Config{
		MaxRetries: timebox.DefaultMaxRetries,
		CacheSize:  100,
		Workers:    true,
	})
	require.NoError(t, err)

	engineConfig := config.NewDefaultConfig().EngineStore
	engineConfig.Addr = server.Addr()
	engineConfig.Prefix = "test-engine"

	engineStore, err := tb.NewStore(engineConfig)
	require.NoError(t, err)

	wizardConfig := config.NewDefaultConfig().WizardStore
	wizardConfig.Addr = server.Addr()
	wizardConfig.Prefix = "test-wizard"

	wizardStore, err := tb.NewStore(wizardConfig)
	require.NoError(t, err)

	registry := NewTestRegistry(t)

	cfg := config.NewDefaultConfig()
	cfg.APIHost = "localhost"
	cfg.LogLevel = "debug"
	cfg.WizardCacheSize = 100
	cfg.ShutdownTimeout = 2 * time.Second
	cfg.EngineStore = engineConfig
	cfg.WizardStore = wizardConfig

	hub := tb.GetHub()
	eng := engine.New(engineStore, wizardStore, registry, hub, cfg)

	cleanup := func() {
		_ = eng.Stop()
		_ = tb.Close()
		server.Close()
	}

	return &TestEngineEnv{
		Engine:      eng,
		Redis:       server,
		Registry:    registry,
		Config:      cfg,
		EventHub:    hub,
		Cleanup:     cleanup,
		engineStore: engineStore,
		wizardStore: wizardStore,
	}
}

// NewEngineInstance creates a new engine instance sharing the same stores.
// Used to simulate process restart after crash
func (e *TestEngineEnv) NewEngineInstance() *engine.Engine {
	return engine.New(
		e.engineStore, e.wizardStore, e.Registry, e.EventHub, e.Config,
	)
}

// WithTestEnv creates a test engine environment, executes the provided
// function with it, and ensures cleanup happens automatically
func WithTestEnv(t *testing.T, fn func(*TestEngineEnv)) {
	t.Helper()
	testEnv := NewTestEngine(t)
	defer testEnv.Cleanup()
	fn(testEnv)
}

// WithEngine creates a test engine, executes the provided function with it,
// and ensures cleanup happens automatically
func WithEngine(t *testing.T, fn func(*engine.Engine)) {
	t.Helper()
	WithTestEnv(t, func(env *TestEngineEnv) {
		fn(env.Engine)
	})
}

// WithStartedEngine creates a test engine, starts it, executes the provided
// function with the engine, and ensures cleanup happens automatically
func WithStartedEngine(t *testing.T, fn func(*engine.Engine)) {
	t.Helper()
	WithEngine(t, func(eng *engine.Engine) {
		eng.Start()
		fn(eng)
	})
}
