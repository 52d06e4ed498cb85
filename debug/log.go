package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	logger  = zap.NewNop()
	file    *os.File
	enabled bool
)

// DefaultPath returns ~/.config/keysurface/debug.log
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "keysurface", "debug.log")
}

// Enable starts debug logging to path (DefaultPath when empty). The terminal
// belongs to the TUI, so everything goes to the file.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), zap.DebugLevel)

	file = f
	logger = zap.New(core, zap.AddCaller())
	enabled = true

	logger.Info("debug logging started", zap.String("path", path))
	return nil
}

// Disable flushes and stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}
	_ = logger.Sync()
	logger = zap.NewNop()
	if file != nil {
		file.Close()
		file = nil
	}
	enabled = false
}

// Logger returns a named logger for one subsystem. Loggers handed out before
// Enable stay no-ops.
func Logger(category string) *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger.Named(category)
}

// Log writes a formatted debug line under category
func Log(category, format string, args ...any) {
	mu.Lock()
	l := logger
	on := enabled
	mu.Unlock()

	if !on {
		return
	}
	l.Named(category).Debug(fmt.Sprintf(format, args...))
}

// LogEvery logs only every N calls (use for high-frequency events like pointer motion)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
