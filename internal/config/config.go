package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config holds all psv configuration. It is built from defaults and
// environment variables and then refined by command-line flags; nothing is
// read from or written to disk.
type Config struct {
	// Benchmark harness settings
	Bench BenchConfig

	// Sequence generation settings
	Generation GenerationConfig

	// External program settings
	Execution ExecutionConfig

	// Logging
	Logging LoggingConfig

	// Run history database
	History HistoryConfig
}

// BenchConfig configures the benchmark harness.
type BenchConfig struct {
	Workers      int
	TrialTimeout string
	FailureLog   string
	// MaxLength bounds the sequence length a run may request.
	MaxLength int
}

// GenerationConfig configures sequence generation.
type GenerationConfig struct {
	// Custom ranges are clamped to [RangeMin, RangeMax].
	RangeMin int
	RangeMax int
	// SearchTimeout bounds the disorder search of one trial.
	SearchTimeout string
}

// ExecutionConfig configures the process runner.
type ExecutionConfig struct {
	Executable     string
	Strategy       string
	MaxOutputBytes int64
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string // debug, info, warn, error
	Dir   string
}

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	DatabasePath string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	return &Config{
		Bench: BenchConfig{
			Workers:      workers,
			TrialTimeout: "10s",
			FailureLog:   "error.log",
			MaxLength:    100000,
		},
		Generation: GenerationConfig{
			RangeMin:      -32768,
			RangeMax:      32767,
			SearchTimeout: "5s",
		},
		Execution: ExecutionConfig{
			Executable:     "",
			Strategy:       "",
			MaxOutputBytes: 64 * 1024 * 1024,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load returns the defaults with environment overrides applied.
func Load() *Config {
	cfg := DefaultConfig()
	cfg.applyEnvOverrides()
	return cfg
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("PSV_EXECUTABLE"); path != "" {
		c.Execution.Executable = path
	}
	if strategy := os.Getenv("PSV_STRATEGY"); strategy != "" {
		c.Execution.Strategy = strategy
	}
	if v := os.Getenv("PSV_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Bench.Workers = n
		}
	}
	if v := os.Getenv("PSV_TIMEOUT"); v != "" {
		if _, err := time.ParseDuration(v); err == nil {
			c.Bench.TrialTimeout = v
		}
	}
	if dir := os.Getenv("PSV_LOG_DIR"); dir != "" {
		c.Logging.Dir = dir
	}
	if level := os.Getenv("PSV_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if path := os.Getenv("PSV_HISTORY_DB"); path != "" {
		c.History.DatabasePath = path
	}
}

// GetTrialTimeout returns the per-trial process timeout as a duration.
func (c *Config) GetTrialTimeout() time.Duration {
	d, err := time.ParseDuration(c.Bench.TrialTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetSearchTimeout returns the disorder search timeout as a duration.
func (c *Config) GetSearchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Generation.SearchTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// ValidStrategies lists the sorting strategy flags a program may accept.
// The empty strategy passes no flag.
var ValidStrategies = []string{"", "simple", "medium", "complex", "adaptive"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Bench.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Bench.Workers)
	}
	if c.Bench.MaxLength < 1 {
		return fmt.Errorf("max length must be at least 1, got %d", c.Bench.MaxLength)
	}
	if c.Generation.RangeMin >= c.Generation.RangeMax {
		return fmt.Errorf("invalid generation range [%d, %d]", c.Generation.RangeMin, c.Generation.RangeMax)
	}
	if _, err := time.ParseDuration(c.Bench.TrialTimeout); err != nil {
		return fmt.Errorf("invalid trial timeout %q: %w", c.Bench.TrialTimeout, err)
	}

	validStrategy := false
	for _, s := range ValidStrategies {
		if c.Execution.Strategy == s {
			validStrategy = true
			break
		}
	}
	if !validStrategy {
		return fmt.Errorf("invalid strategy: %s (valid: %v)", c.Execution.Strategy, ValidStrategies[1:])
	}
	return nil
}
