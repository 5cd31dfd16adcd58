// internals/logger/logger.go
package logger

import "go.uber.org/zap"

// Log is the process-wide logger. No-op until Initialize runs so packages
// can log unconditionally during tests.
var Log *zap.Logger = zap.NewNop()

// Initialize builds a production zap logger at the given level and installs
// it as Log.
func Initialize(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zl
	return nil
}

// Sync flushes buffered entries; called on shutdown.
func Sync() {
	_ = Log.Sync()
}
