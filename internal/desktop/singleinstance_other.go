//go:build !windows

package desktop

// EnsureSingleInstance always returns true outside Windows. A running
// instance is still detected through its shell IPC socket.
func EnsureSingleInstance() bool {
	return true
}
