// Package ipc provides the local native bridge: newline-delimited JSON over a
// Unix domain socket (named pipe on Windows). The shell uses it to invoke
// backend commands, and the tray companion uses it to control the shell.
package ipc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Endpoint names. The address for a name is platform specific, see Address.
const (
	// BackendEndpoint is served by the backend process and accepts Invoke.
	BackendEndpoint = "backend"

	// ShellEndpoint is served by the desktop shell for the tray companion.
	ShellEndpoint = "shell"
)

// MessageType identifies the type of IPC message.
type MessageType string

const (
	// Request types (client -> server)
	MsgInvoke     MessageType = "Invoke"
	MsgPing       MessageType = "Ping"
	MsgGetStatus  MessageType = "GetStatus"
	MsgShowWindow MessageType = "ShowWindow"
	MsgNavigate   MessageType = "Navigate"
	MsgMenuAction MessageType = "MenuAction"
	MsgQuit       MessageType = "Quit"

	// Response types (server -> client)
	MsgResult         MessageType = "Result"
	MsgStatusResponse MessageType = "StatusResponse"
	MsgOK             MessageType = "OK"
	MsgError          MessageType = "Error"
)

// Request represents an IPC request from client to server.
type Request struct {
	Type MessageType `json:"type"`
	ID   string      `json:"id"`

	// Command and Args are set for Invoke.
	Command string         `json:"command,omitempty"`
	Args    map[string]any `json:"args,omitempty"`

	// Path is set for Navigate; Action for MenuAction.
	Path   string `json:"path,omitempty"`
	Action string `json:"action,omitempty"`
}

// Response represents an IPC response from server to client.
type Response struct {
	Type      MessageType     `json:"type"`
	ID        string          `json:"id,omitempty"`
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
	ErrorKind string          `json:"error_kind,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// StatusData describes the running shell, shown in the tray.
type StatusData struct {
	State         string     `json:"state"` // "running", "hidden", "starting"
	Version       string     `json:"version"`
	Transport     string     `json:"transport"`
	WindowVisible bool       `json:"window_visible"`
	LastBackup    *time.Time `json:"last_backup,omitempty"`
	PendingUpdate string     `json:"pending_update,omitempty"`
	Uptime        string     `json:"uptime,omitempty"`
}

// RemoteError is an error reported by the other side of the bridge.
type RemoteError struct {
	Kind    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Message
}

// ErrorKind returns the backend error kind, used for status mapping.
func (e *RemoteError) ErrorKind() string {
	return e.Kind
}

// NewRequest creates a new IPC request with a fresh correlation ID.
func NewRequest(msgType MessageType) *Request {
	return &Request{Type: msgType, ID: uuid.NewString()}
}

// NewInvokeRequest creates an Invoke request.
func NewInvokeRequest(command string, args map[string]any) *Request {
	req := NewRequest(MsgInvoke)
	req.Command = command
	req.Args = args
	return req
}

// NewOKResponse creates a success response.
func NewOKResponse() *Response {
	return &Response{Type: MsgOK, Success: true}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(err string) *Response {
	return &Response{Type: MsgError, Success: false, Error: err}
}

// NewResultResponse creates an Invoke result response.
func NewResultResponse(result any) (*Response, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &Response{Type: MsgResult, Success: true, Data: data}, nil
}

// NewStatusResponse creates a status response.
func NewStatusResponse(status *StatusData) *Response {
	data, _ := json.Marshal(status)
	return &Response{Type: MsgStatusResponse, Success: true, Data: data}
}

// Encode serializes a request to JSON.
func (r *Request) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// Encode serializes a response to JSON.
func (r *Response) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRequest deserializes a request from JSON.
func DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// DecodeResponse deserializes a response from JSON.
func DecodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetStatusData extracts StatusData from a response.
// Returns nil if the response doesn't contain status data.
func (r *Response) GetStatusData() *StatusData {
	if len(r.Data) == 0 {
		return nil
	}
	var status StatusData
	if err := json.Unmarshal(r.Data, &status); err != nil {
		return nil
	}
	return &status
}

// Err converts an unsuccessful response into a *RemoteError.
func (r *Response) Err() error {
	if r.Success {
		return nil
	}
	return &RemoteError{Kind: r.ErrorKind, Message: r.Error}
}
