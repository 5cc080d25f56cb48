package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/transport"
)

// ErrAlreadyRunning is returned by Server.Start when another process already
// serves the endpoint.
var ErrAlreadyRunning = errors.New("another instance is already listening")

// Client sends requests to an IPC server. Each request uses its own connection.
type Client struct {
	timeout time.Duration
	address string
}

// NewClient creates a client for a named endpoint (BackendEndpoint or ShellEndpoint).
func NewClient(name string) *Client {
	return NewClientWithPath(Address(name))
}

// NewClientWithPath creates a client for an explicit socket or pipe path.
func NewClientWithPath(address string) *Client {
	return &Client{
		timeout: constants.IPCDefaultTimeout,
		address: address,
	}
}

// SetTimeout sets the per-request timeout used when ctx has no deadline.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// Address returns the socket or pipe path.
func (c *Client) Address() string {
	return c.address
}

// sendRequest sends a request and receives a response. A failed dial wraps
// transport.ErrBridgeUnavailable.
func (c *Client) sendRequest(ctx context.Context, req *Request) (*Response, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, err := dial(ctx, c.address)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: failed to connect to %s: %v", transport.ErrBridgeUnavailable, c.address, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	// Unblock reads when ctx is cancelled before the deadline.
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	data, err := req.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	data = append(data, '\n')

	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReaderSize(conn, 64*1024)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	resp, err := DecodeResponse(respData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.ID != "" && resp.ID != req.ID {
		return nil, fmt.Errorf("response id %s does not match request %s", resp.ID, req.ID)
	}

	return resp, nil
}

// Invoke runs a native command on the server and returns its JSON result.
func (c *Client) Invoke(ctx context.Context, command string, args map[string]any) (json.RawMessage, error) {
	resp, err := c.sendRequest(ctx, NewInvokeRequest(command, args))
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return json.RawMessage("null"), nil
	}
	return resp.Data, nil
}

// Ping checks if the server is responsive.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.sendRequest(ctx, NewRequest(MsgPing))
	if err != nil {
		return err
	}
	return resp.Err()
}

// IsRunning reports whether a server answers on the endpoint.
func (c *Client) IsRunning(ctx context.Context) bool {
	return c.Ping(ctx) == nil
}

// GetStatus retrieves the shell status.
func (c *Client) GetStatus(ctx context.Context) (*StatusData, error) {
	resp, err := c.sendRequest(ctx, NewRequest(MsgGetStatus))
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.GetStatusData(), nil
}

// ShowWindow asks the shell to show and focus its main window.
func (c *Client) ShowWindow(ctx context.Context) error {
	return c.simple(ctx, NewRequest(MsgShowWindow))
}

// Navigate shows the main window and routes the renderer to path.
func (c *Client) Navigate(ctx context.Context, path string) error {
	req := NewRequest(MsgNavigate)
	req.Path = path
	return c.simple(ctx, req)
}

// MenuAction triggers a menu action (e.g. "open-settings") in the shell.
func (c *Client) MenuAction(ctx context.Context, action string) error {
	req := NewRequest(MsgMenuAction)
	req.Action = action
	return c.simple(ctx, req)
}

// Quit asks the shell to exit.
func (c *Client) Quit(ctx context.Context) error {
	return c.simple(ctx, NewRequest(MsgQuit))
}

func (c *Client) simple(ctx context.Context, req *Request) error {
	resp, err := c.sendRequest(ctx, req)
	if err != nil {
		return err
	}
	return resp.Err()
}

// isListening reports whether something answers on address.
func isListening(address string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	conn, err := dial(ctx, address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
