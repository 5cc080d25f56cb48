package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rehber360/rehber360-desktop/internal/constants"
)

// FileLog is a rotating log file (main.log) in the log directory.
// It can be toggled at runtime from the settings screen.
type FileLog struct {
	mu      sync.RWMutex
	lj      *lumberjack.Logger
	enabled bool
}

// OpenFileLog creates the log directory and the rotating writer.
func OpenFileLog(logDir string) (*FileLog, error) {
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &FileLog{
		lj: &lumberjack.Logger{
			Filename:   filepath.Join(logDir, constants.LogFileName),
			MaxSize:    10, // MB per file
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		},
		enabled: true,
	}, nil
}

// Write implements io.Writer. Writes are dropped while disabled.
func (f *FileLog) Write(p []byte) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.lj == nil || !f.enabled {
		return len(p), nil
	}
	return f.lj.Write(p)
}

// SetEnabled toggles writing without closing the file.
func (f *FileLog) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled
}

// Enabled reports whether lines are currently written.
func (f *FileLog) Enabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.enabled && f.lj != nil
}

// Path returns the current log file path.
func (f *FileLog) Path() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.lj == nil {
		return ""
	}
	return f.lj.Filename
}

// Close closes the file (call on shutdown).
func (f *FileLog) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lj == nil {
		return nil
	}
	err := f.lj.Close()
	f.lj = nil
	f.enabled = false
	return err
}

var _ io.WriteCloser = (*FileLog)(nil)
