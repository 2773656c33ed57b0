package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kode4food/timebox"

	"github.com/agentflow/onboard/pkg/api"
)

type (
	// Config holds configuration settings for the wizard engine
	Config struct {
		// API Server
		APIHost  string
		APIPort  int
		LogLevel string

		// Step definitions
		StepsFile string

		// Stores & Archiving
		EngineStore timebox.StoreConfig
		WizardStore timebox.StoreConfig
		Archive     ArchiveConfig

		// Engine
		WizardCacheSize int
		ShutdownTimeout time.Duration
	}

	// ArchiveConfig controls how completed wizards are moved out of the
	// event store and into blob storage
	ArchiveConfig struct {
		BucketURL     string
		Prefix        string
		CheckInterval time.Duration
		MaxAge        time.Duration
		MemoryPercent float64
	}
)

const (
	DefaultShutdownTimeout = 10 * time.Second

	DefaultAPIPort = 8080
	DefaultAPIHost = "0.0.0.0"
	MaxTCPPort     = 65535
	DefaultRedisDB = 0

	DefaultRedisEndpoint       = "localhost:6379"
	DefaultRedisPrefix         = "onboard"
	DefaultSnapshotWorkers     = 4
	DefaultSnapshotQueueSize   = 1000
	DefaultSnapshotSaveTimeout = 30 * time.Second
	DefaultCacheSize           = 4096

	DefaultArchiveCheckInterval = 5 * time.Minute
	DefaultArchiveMaxAge        = 24 * time.Hour
	DefaultArchiveMemoryPercent = 80.0
	DefaultArchivePrefix        = "wizards/"

	MaxWizardCacheSize = 1_000_000
)

var (
	ErrInvalidAPIPort       = errors.New("invalid API port")
	ErrStepsFileRequired    = errors.New("steps file is required")
	ErrInvalidCheckInterval = errors.New(
		"archive check interval must be positive",
	)
	ErrInvalidMaxAge        = errors.New("archive max age must be positive")
	ErrInvalidMemoryPercent = errors.New(
		"archive memory percent must be between 0 and 100",
	)
)

// NewDefaultConfig creates a configuration with sensible defaults for the
// API server, stores, and archive worker
func NewDefaultConfig() *Config {
	return &Config{
		APIPort:   DefaultAPIPort,
		APIHost:   DefaultAPIHost,
		StepsFile: "steps.json",
		EngineStore: timebox.StoreConfig{
			Addr:         DefaultRedisEndpoint,
			Password:     "",
			DB:           DefaultRedisDB,
			Prefix:       DefaultRedisPrefix,
			WorkerCount:  DefaultSnapshotWorkers,
			MaxQueueSize: DefaultSnapshotQueueSize,
			SaveTimeout:  DefaultSnapshotSaveTimeout,
		},
		WizardStore: timebox.StoreConfig{
			Addr:         DefaultRedisEndpoint,
			Password:     "",
			DB:           DefaultRedisDB,
			Prefix:       DefaultRedisPrefix,
			WorkerCount:  DefaultSnapshotWorkers,
			MaxQueueSize: DefaultSnapshotQueueSize,
			SaveTimeout:  DefaultSnapshotSaveTimeout,
		},
		Archive: ArchiveConfig{
			Prefix:        DefaultArchivePrefix,
			CheckInterval: DefaultArchiveCheckInterval,
			MaxAge:        DefaultArchiveMaxAge,
			MemoryPercent: DefaultArchiveMemoryPercent,
		},
		WizardCacheSize: DefaultCacheSize,
		ShutdownTimeout: DefaultShutdownTimeout,
		LogLevel:        "info",
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed.
func (c *Config) LoadFromEnv() error {
	LoadStoreConfigFromEnv(&c.EngineStore, "ENGINE")
	LoadStoreConfigFromEnv(&c.WizardStore, "WIZARD")

	if apiHost := os.Getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if stepsFile := os.Getenv("STEPS_FILE"); stepsFile != "" {
		c.StepsFile = stepsFile
	}
	if bucketURL := os.Getenv("ARCHIVE_BUCKET_URL"); bucketURL != "" {
		c.Archive.BucketURL = bucketURL
	}
	if prefix := os.Getenv("ARCHIVE_PREFIX"); prefix != "" {
		c.Archive.Prefix = prefix
	}

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt(
		"WIZARD_CACHE_SIZE", &c.WizardCacheSize, 0, MaxWizardCacheSize,
	); err != nil {
		return err
	}

	if err := loadEnvDuration(
		"ARCHIVE_CHECK_INTERVAL", &c.Archive.CheckInterval,
	); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"ARCHIVE_MAX_AGE", &c.Archive.MaxAge,
	); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout,
	); err != nil {
		return err
	}

	if s := os.Getenv("ARCHIVE_MEMORY_PERCENT"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid ARCHIVE_MEMORY_PERCENT: %q", s)
		}
		c.Archive.MemoryPercent = v
	}

	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}
	if c.StepsFile == "" {
		return ErrStepsFileRequired
	}
	if c.Archive.CheckInterval <= 0 {
		return ErrInvalidCheckInterval
	}
	if c.Archive.MaxAge <= 0 {
		return ErrInvalidMaxAge
	}
	if c.Archive.MemoryPercent <= 0 || c.Archive.MemoryPercent > 100 {
		return fmt.Errorf("%w: %v",
			ErrInvalidMemoryPercent, c.Archive.MemoryPercent)
	}
	return nil
}

// LoadSteps reads step definitions from the given JSON file
func LoadSteps(path string) ([]*api.StepDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var steps []*api.StepDefinition
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("invalid steps file %s: %w", path, err)
	}
	return steps, nil
}

// LoadStoreConfigFromEnv loads Redis store configuration from environment
// variables with the given prefix (e.g., "ENGINE" or "WIZARD")
func LoadStoreConfigFromEnv(s *timebox.StoreConfig, prefix string) {
	if addr := os.Getenv(prefix + "_REDIS_ADDR"); addr != "" {
		s.Addr = addr
	}
	if password := os.Getenv(prefix + "_REDIS_PASSWORD"); password != "" {
		s.Password = password
	}
	if dbStr := os.Getenv(prefix + "_REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err == nil {
			s.DB = db
		}
	}
	if envPrefix := os.Getenv(prefix + "_REDIS_PREFIX"); envPrefix != "" {
		s.Prefix = envPrefix
	}
	if envCount := os.Getenv(prefix + "_SNAPSHOT_WORKERS"); envCount != "" {
		if wc, err := strconv.Atoi(envCount); err == nil && wc >= 0 {
			s.WorkerCount = wc
		}
	}
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max). Returns an error if
// the value cannot be parsed or falls outside the valid range.
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

func loadEnvDuration(key string, dst *time.Duration) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s: must be positive", key)
	}
	*dst = d
	return nil
}
