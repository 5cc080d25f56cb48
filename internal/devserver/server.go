// Package devserver exposes the command router over HTTP and the event bus
// over a websocket so the renderer can run in a plain browser during development.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rehber360/rehber360-desktop/internal/config"
	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/events"
	"github.com/rehber360/rehber360-desktop/internal/logging"
	"github.com/rehber360/rehber360-desktop/internal/transport"
	"github.com/rehber360/rehber360-desktop/internal/version"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Server is the development HTTP bridge.
type Server struct {
	cfg     config.DevServerConfig
	invoker transport.Invoker
	bus     *events.EventBus
	logger  *logging.Logger

	engine   *gin.Engine
	upgrader websocket.Upgrader

	mu       sync.Mutex
	httpSrv  *nethttp.Server
	stopping bool
	quit     chan struct{}
	clients  sync.WaitGroup
}

// New creates the server and its routes.
func New(cfg config.DevServerConfig, invoker transport.Invoker, bus *events.EventBus, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultDevServerAddr
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		cfg:     cfg,
		invoker: invoker,
		bus:     bus,
		logger:  logger,
		engine:  gin.New(),
		quit:    make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.originAllowed,
	}

	s.engine.Use(gin.Recovery(), s.requestLogger(), s.cors())
	s.engine.GET("/health", s.health)
	s.engine.GET("/events", s.events)
	s.engine.Any("/api/*path", s.api)
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() nethttp.Handler {
	return s.engine
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.mu.Lock()
	s.httpSrv = &nethttp.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpSrv
	s.mu.Unlock()

	s.logger.Info().Str("addr", s.cfg.Addr).Msg("Development server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, closes websocket streams and waits for
// in-flight handlers until ctx ends. Hijacked websocket connections are not
// tracked by http.Server, so they are stopped through quit.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpSrv
	if !s.stopping {
		s.stopping = true
		close(s.quit)
	}
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}

	done := make(chan struct{})
	go func() {
		s.clients.Wait()
		close(done)
	}()
	select {
	case <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(nethttp.StatusOK, gin.H{
		"status":   "ok",
		"version":  version.Version,
		"platform": version.Platform(),
	})
}

// api maps METHOD /api/<endpoint> onto a native command.
func (s *Server) api(c *gin.Context) {
	endpoint := strings.TrimPrefix(c.Param("path"), "/")
	if c.Request.URL.RawQuery != "" {
		endpoint += "?" + c.Request.URL.RawQuery
	}
	method := c.Request.Method

	var body any
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		data, err := io.ReadAll(io.LimitReader(c.Request.Body, constants.MaxIPCMessageSize))
		if err != nil {
			s.fail(c, transport.NormalizeError("", err))
			return
		}
		if len(strings.TrimSpace(string(data))) > 0 {
			if err := json.Unmarshal(data, &body); err != nil {
				s.fail(c, &transport.Error{
					Name:       transport.ErrorName,
					Code:       transport.CodeInvalidRequest,
					Message:    "invalid JSON body: " + err.Error(),
					StatusCode: nethttp.StatusBadRequest,
				})
				return
			}
		}
	}

	command := transport.EndpointToCommand(endpoint, method)
	args := transport.BuildCommandArgs(endpoint, body)

	result, err := s.invoker.Invoke(c.Request.Context(), command, args)
	if err != nil {
		s.fail(c, transport.NormalizeError(command, err))
		return
	}
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	c.Data(nethttp.StatusOK, "application/json; charset=utf-8", result)
}

func (s *Server) fail(c *gin.Context, te *transport.Error) {
	status := te.StatusCode
	if status < 400 {
		status = nethttp.StatusBadGateway
	}
	c.JSON(status, gin.H{
		"error":   te.Message,
		"code":    te.Code,
		"command": te.Command,
		"kind":    te.Kind,
	})
}

// events streams bus events to one websocket client as {"event","payload"} frames.
func (s *Server) events(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		closeFrame(conn)
		return
	}
	s.clients.Add(1)
	s.mu.Unlock()
	defer s.clients.Done()

	sub := s.bus.SubscribeAll()
	defer s.bus.UnsubscribeAll(sub)

	// Reader goroutine: detects client close and answers control frames.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case <-s.quit:
			closeFrame(conn)
			return
		case ev, ok := <-sub:
			if !ok {
				closeFrame(conn)
				return
			}
			name, payload, forward := events.RendererEvent(ev)
			if !forward {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(gin.H{"event": name, "payload": payload}); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// closeFrame tells the client the server is going away.
func closeFrame(conn *websocket.Conn) {
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
}

func (s *Server) originAllowed(r *nethttp.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.cfg.AllowedOrigin == "*" {
		return true
	}
	return strings.EqualFold(origin, s.cfg.AllowedOrigin)
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && s.originAllowed(c.Request) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if c.Request.Method == nethttp.MethodOptions {
			c.AbortWithStatus(nethttp.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Dev request")
	}
}
