//go:build windows

package ipc

import (
	"context"
	"fmt"
	"net"

	"github.com/Microsoft/go-winio"
	"golang.org/x/sys/windows"
)

// pipePrefix is prepended to endpoint names to form pipe paths.
const pipePrefix = `\\.\pipe\rehber360-`

// Address returns the named pipe path for an endpoint name.
func Address(name string) string {
	return pipePrefix + name
}

// currentUserSID returns the SID of the current process owner.
func currentUserSID() (string, error) {
	token, err := windows.OpenCurrentProcessToken()
	if err != nil {
		return "", fmt.Errorf("failed to open process token: %w", err)
	}
	defer token.Close()

	user, err := token.GetTokenUser()
	if err != nil {
		return "", fmt.Errorf("failed to get token user: %w", err)
	}

	return user.User.Sid.String(), nil
}

// listen creates the named pipe. Only the current user and SYSTEM may connect.
func listen(address string) (net.Listener, error) {
	if isListening(address) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, address)
	}

	descriptor := "D:P(A;;GA;;;SY)(A;;GA;;;OW)"
	if sid, err := currentUserSID(); err == nil {
		descriptor = fmt.Sprintf("D:P(A;;GA;;;SY)(A;;GA;;;%s)", sid)
	}

	cfg := &winio.PipeConfig{
		SecurityDescriptor: descriptor,
		MessageMode:        true,
		InputBufferSize:    64 * 1024,
		OutputBufferSize:   64 * 1024,
	}
	listener, err := winio.ListenPipe(address, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create named pipe: %w", err)
	}
	return listener, nil
}

func dial(ctx context.Context, address string) (net.Conn, error) {
	return winio.DialPipeContext(ctx, address)
}

// Named pipes disappear with their last handle.
func cleanup(string) {}
