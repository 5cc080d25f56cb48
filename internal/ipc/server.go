package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/logging"
)

// ErrUnsupported is returned by handlers for messages they do not serve.
var ErrUnsupported = errors.New("operation not supported by this endpoint")

// Handler serves IPC requests.
type Handler interface {
	// Invoke runs a native command.
	Invoke(ctx context.Context, command string, args map[string]any) (json.RawMessage, error)

	// GetStatus returns the current shell status.
	GetStatus() *StatusData

	// ShowWindow shows and focuses the main window.
	ShowWindow() error

	// Navigate shows the main window and routes the renderer to path.
	Navigate(path string) error

	// MenuAction runs a menu action by id.
	MenuAction(action string) error

	// Quit triggers application shutdown.
	Quit() error
}

// BaseHandler answers every message with ErrUnsupported. Embed it to serve a
// subset of messages.
type BaseHandler struct{}

func (BaseHandler) Invoke(context.Context, string, map[string]any) (json.RawMessage, error) {
	return nil, ErrUnsupported
}
func (BaseHandler) GetStatus() *StatusData  { return nil }
func (BaseHandler) ShowWindow() error       { return ErrUnsupported }
func (BaseHandler) Navigate(string) error   { return ErrUnsupported }
func (BaseHandler) MenuAction(string) error { return ErrUnsupported }
func (BaseHandler) Quit() error             { return ErrUnsupported }

// kinded matches errors that report a backend error kind.
type kinded interface {
	ErrorKind() string
}

// Server accepts IPC connections and dispatches requests to a Handler.
type Server struct {
	handler Handler
	logger  *logging.Logger
	address string

	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	// requestTimeout bounds Invoke handling per connection.
	requestTimeout time.Duration
}

// NewServer creates a server for a named endpoint.
func NewServer(name string, handler Handler, logger *logging.Logger) *Server {
	return NewServerWithPath(Address(name), handler, logger)
}

// NewServerWithPath creates a server on an explicit socket or pipe path.
func NewServerWithPath(address string, handler Handler, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		handler:        handler,
		logger:         logger,
		address:        address,
		ctx:            ctx,
		cancel:         cancel,
		requestTimeout: constants.DefaultRequestTimeout,
	}
}

// Start begins listening for IPC connections.
func (s *Server) Start() error {
	listener, err := listen(s.address)
	if err != nil {
		return err
	}
	s.listener = listener

	s.logger.Info().Str("address", s.address).Msg("IPC server started")

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop gracefully shuts down the IPC server and waits for in-flight requests.
func (s *Server) Stop() {
	s.logger.Debug().Msg("Stopping IPC server")
	s.cancel()

	if s.listener != nil {
		s.listener.Close()
	}

	s.wg.Wait()
	cleanup(s.address)
	s.logger.Info().Msg("IPC server stopped")
}

// Address returns the socket or pipe path.
func (s *Server) Address() string {
	return s.address
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn().Err(err).Msg("Failed to accept IPC connection")
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection processes a single request on conn.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(s.requestTimeout + 5*time.Second))

	reader := bufio.NewReaderSize(conn, 64*1024)
	data, err := readLine(reader, constants.MaxIPCMessageSize)
	if err != nil {
		if err != io.EOF {
			s.logger.Warn().Err(err).Msg("Failed to read IPC request")
		}
		return
	}

	req, err := DecodeRequest(data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to decode IPC request")
		s.sendResponse(conn, NewErrorResponse("invalid request format"))
		return
	}

	s.logger.Debug().
		Str("type", string(req.Type)).
		Str("id", req.ID).
		Str("command", req.Command).
		Msg("Received IPC request")

	resp := s.handleRequest(req)
	resp.ID = req.ID
	s.sendResponse(conn, resp)
}

func (s *Server) handleRequest(req *Request) *Response {
	switch req.Type {
	case MsgPing:
		return NewOKResponse()

	case MsgInvoke:
		if req.Command == "" {
			return NewErrorResponse("command is required")
		}
		ctx, cancel := context.WithTimeout(s.ctx, s.requestTimeout)
		defer cancel()
		result, err := s.handler.Invoke(ctx, req.Command, req.Args)
		if err != nil {
			return errorResponse(err)
		}
		if len(result) == 0 {
			result = json.RawMessage("null")
		}
		return &Response{Type: MsgResult, Success: true, Data: result}

	case MsgGetStatus:
		status := s.handler.GetStatus()
		if status == nil {
			return errorResponse(ErrUnsupported)
		}
		return NewStatusResponse(status)

	case MsgShowWindow:
		return okOrError(s.handler.ShowWindow())

	case MsgNavigate:
		if req.Path == "" {
			return NewErrorResponse("path is required")
		}
		return okOrError(s.handler.Navigate(req.Path))

	case MsgMenuAction:
		if req.Action == "" {
			return NewErrorResponse("action is required")
		}
		return okOrError(s.handler.MenuAction(req.Action))

	case MsgQuit:
		// Respond first; the handler may tear the server down.
		go func() {
			if err := s.handler.Quit(); err != nil {
				s.logger.Warn().Err(err).Msg("Quit request failed")
			}
		}()
		return NewOKResponse()

	default:
		return NewErrorResponse(fmt.Sprintf("unknown request type: %s", req.Type))
	}
}

func okOrError(err error) *Response {
	if err != nil {
		return errorResponse(err)
	}
	return NewOKResponse()
}

func errorResponse(err error) *Response {
	resp := NewErrorResponse(err.Error())
	var k kinded
	if errors.As(err, &k) {
		resp.ErrorKind = k.ErrorKind()
	}
	return resp
}

func (s *Server) sendResponse(conn net.Conn, resp *Response) {
	data, err := resp.Encode()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode IPC response")
		data, _ = NewErrorResponse("failed to encode response").Encode()
	}

	data = append(data, '\n')

	if _, err := conn.Write(data); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to send IPC response")
	}
}

// readLine reads one newline-terminated message of at most limit bytes.
func readLine(r *bufio.Reader, limit int) ([]byte, error) {
	var line []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return nil, err
		}
		line = append(line, chunk...)
		if len(line) > limit {
			return nil, fmt.Errorf("message exceeds %d bytes", limit)
		}
		if !isPrefix {
			return line, nil
		}
	}
}
