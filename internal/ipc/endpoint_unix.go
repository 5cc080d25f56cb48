//go:build !windows

package ipc

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/rehber360/rehber360-desktop/internal/config"
)

// Address returns the socket path for an endpoint name.
// On Mac/Linux: <app data>/<name>.sock
func Address(name string) string {
	return filepath.Join(config.AppDataDirectory(), name+".sock")
}

// listen creates the Unix socket, replacing a stale socket file left by a
// previous process.
func listen(address string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(address), 0700); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}

	if _, err := os.Stat(address); err == nil {
		if isListening(address) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, address)
		}
		if err := os.Remove(address); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	listener, err := net.Listen("unix", address)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(address, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to restrict socket permissions: %w", err)
	}
	return listener, nil
}

func dial(ctx context.Context, address string) (net.Conn, error) {
	var dialer net.Dialer
	return dialer.DialContext(ctx, "unix", address)
}

func cleanup(address string) {
	os.Remove(address)
}
