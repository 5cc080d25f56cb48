package desktop

import "errors"

var (
	// ErrNoEngine is returned when engine is not initialized.
	ErrNoEngine = errors.New("engine not initialized")

	// ErrWindowNotReady is returned by window bindings called before startup.
	ErrWindowNotReady = errors.New("window not ready")

	// ErrCancelled is returned when the user dismisses a dialog.
	ErrCancelled = errors.New("cancelled by user")
)
