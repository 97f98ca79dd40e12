// Package logging provides categorized logging for psv.
// Every category is a named child of one zap logger. Until Initialize is
// called with a directory (or a logger is attached with Attach), every call is
// a no-op, so library code can log freely without configuring anything.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // CLI startup, config resolution
	CategorySim      Category = "sim"      // Stack machine and playback
	CategoryGenerate Category = "generate" // Sequence generation and disorder search
	CategorySource   Category = "source"   // Instruction sources
	CategoryRunner   Category = "runner"   // External process execution
	CategoryBench    Category = "bench"    // Benchmark harness
	CategoryStore    Category = "store"    // Run history database
)

// Config selects where log output goes.
type Config struct {
	// Dir receives psv.log. Empty disables file logging.
	Dir string
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string
}

var (
	mu      sync.RWMutex
	root    = zap.NewNop()
	loggers = make(map[Category]*zap.SugaredLogger)
)

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Initialize builds a JSON file logger under cfg.Dir. With an empty Dir the
// package stays silent.
func Initialize(cfg Config) error {
	if cfg.Dir == "" {
		Attach(zap.NewNop())
		return nil
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))
	zcfg.OutputPaths = []string{filepath.Join(cfg.Dir, "psv.log")}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	zcfg.Sampling = nil

	l, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	Attach(l)
	Get(CategoryBoot).Infof("logging initialized: dir=%s level=%s", cfg.Dir, cfg.Level)
	return nil
}

// Attach routes every category through l.
func Attach(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	root = l
	loggers = make(map[Category]*zap.SugaredLogger)
}

// Logger returns the root logger.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Get returns (or creates) the logger for a category.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := root.Named(string(category)).Sugar()
	loggers[category] = l
	return l
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	l := root
	mu.RUnlock()
	_ = l.Sync()
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Infof(format, args...) }
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debugf(format, args...) }

func Sim(format string, args ...interface{})      { Get(CategorySim).Infof(format, args...) }
func SimDebug(format string, args ...interface{}) { Get(CategorySim).Debugf(format, args...) }

func Generate(format string, args ...interface{})      { Get(CategoryGenerate).Infof(format, args...) }
func GenerateDebug(format string, args ...interface{}) { Get(CategoryGenerate).Debugf(format, args...) }

func Source(format string, args ...interface{})      { Get(CategorySource).Infof(format, args...) }
func SourceDebug(format string, args ...interface{}) { Get(CategorySource).Debugf(format, args...) }
func SourceWarn(format string, args ...interface{})  { Get(CategorySource).Warnf(format, args...) }

func Runner(format string, args ...interface{})      { Get(CategoryRunner).Infof(format, args...) }
func RunnerDebug(format string, args ...interface{}) { Get(CategoryRunner).Debugf(format, args...) }
func RunnerWarn(format string, args ...interface{})  { Get(CategoryRunner).Warnf(format, args...) }

func Bench(format string, args ...interface{})      { Get(CategoryBench).Infof(format, args...) }
func BenchDebug(format string, args ...interface{}) { Get(CategoryBench).Debugf(format, args...) }
func BenchWarn(format string, args ...interface{})  { Get(CategoryBench).Warnf(format, args...) }
func BenchError(format string, args ...interface{}) { Get(CategoryBench).Errorf(format, args...) }

func Store(format string, args ...interface{})      { Get(CategoryStore).Infof(format, args...) }
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debugf(format, args...) }

// Timer measures an operation and logs its duration on Stop.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if the duration exceeds threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warnf("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
