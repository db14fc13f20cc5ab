package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wayfare-dev/wayfare/pkg/dispatch"
	"github.com/wayfare-dev/wayfare/pkg/middleware"
	"github.com/wayfare-dev/wayfare/pkg/protocol"
	"github.com/wayfare-dev/wayfare/pkg/route"
	"github.com/wayfare-dev/wayfare/pkg/urlpath"
)

// Server is the HTTP/WebSocket server. It holds the shared route table;
// each connected client gets its own dispatcher over that table.
type Server struct {
	table      *route.Table
	config     *ServerConfig
	sessions   *SessionManager
	upgrader   websocket.Upgrader
	logger     *slog.Logger
	httpServer *http.Server

	preloadCfg  *dispatch.PreloadConfig
	preloads    map[string]dispatch.PreloadFunc
	middlewares []dispatch.Middleware
	historyLim  int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithPreloadConfig sets the preload settings applied to every session
// dispatcher.
func WithPreloadConfig(cfg *dispatch.PreloadConfig) Option {
	return func(s *Server) {
		s.preloadCfg = cfg
	}
}

// WithDispatchMiddleware adds middleware to every session dispatcher.
func WithDispatchMiddleware(mw ...dispatch.Middleware) Option {
	return func(s *Server) {
		s.middlewares = append(s.middlewares, mw...)
	}
}

// WithHistoryLimit bounds every session's navigation history.
func WithHistoryLimit(n int) Option {
	return func(s *Server) {
		s.historyLim = n
	}
}

// New creates a server over a validated route table.
func New(table *route.Table, config *ServerConfig, opts ...Option) *Server {
	if config == nil {
		config = DefaultServerConfig()
	} else {
		config.fillDefaults()
	}

	logger := slog.Default().With("component", "server")

	s := &Server{
		table:      table,
		config:     config,
		logger:     logger,
		preloadCfg: dispatch.DefaultPreloadConfig(),
		preloads:   make(map[string]dispatch.PreloadFunc),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.sessions = NewSessionManager(config.MaxSessions, s.logger)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin:     config.CheckOrigin,
	}

	return s
}

// OnPreload registers a preload effect applied to every session.
func (s *Server) OnPreload(name string, fn dispatch.PreloadFunc) {
	s.preloads[name] = fn
}

// Table returns the shared route table.
func (s *Server) Table() *route.Table {
	return s.table
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Handler returns the HTTP handler: the WebSocket endpoint, health and
// metrics, and a resolve endpoint that matches any URL against the table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if s.config.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/_wayfare/ws", s.HandleWebSocket)

	// Any other GET resolves the URL against the route table. Matching is
	// total, so this always answers with a view.
	r.Get("/*", s.handleResolve)

	return r
}

// resolveResponse is the JSON body for resolve requests.
type resolveResponse struct {
	View   string            `json:"view"`
	Path   string            `json:"path"`
	Params map[string]string `json:"params,omitempty"`
}

// handleResolve canonicalizes the request path and matches it. Requests
// with non-canonical paths get a 308 so clients converge on one URL per
// resource; malformed paths are a 400.
func (s *Server) handleResolve(w http.ResponseWriter, req *http.Request) {
	input := req.URL.EscapedPath()
	if req.URL.RawQuery != "" {
		input += "?" + req.URL.RawQuery
	}

	result, err := urlpath.Canonicalize(input)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	if result.Changed {
		canonURL := result.Path
		if result.Query != "" {
			canonURL += "?" + result.Query
		}
		// 308 preserves the HTTP method, unlike 301.
		http.Redirect(w, req, canonURL, http.StatusPermanentRedirect)
		return
	}

	m := s.table.Match(result.Path)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resolveResponse{
		View:   m.Name,
		Path:   result.Path,
		Params: m.Params,
	})
}

// HandleWebSocket upgrades the connection, performs the hello exchange,
// and starts the session.
func (s *Server) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		middleware.RecordWebSocketError("upgrade")
		return
	}

	conn.SetReadLimit(s.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(s.config.HandshakeTimeout))

	_, msg, err := conn.ReadMessage()
	if err != nil {
		s.logger.Error("hello read failed", "error", err)
		conn.Close()
		return
	}

	frame, err := protocol.DecodeFrame(msg)
	if err != nil || frame.Type != protocol.FrameHello {
		s.sendHelloError(conn, protocol.ErrInvalidFrame, "expected hello frame")
		conn.Close()
		return
	}

	hello, err := protocol.DecodeClientHello(frame.Payload)
	if err != nil {
		s.sendHelloError(conn, protocol.ErrInvalidFrame, "malformed hello")
		conn.Close()
		return
	}

	session, err := s.createSession(conn)
	if err != nil {
		s.sendHelloError(conn, protocol.ErrServerError, "session limit reached")
		conn.Close()
		return
	}

	s.sendServerHello(conn, session.ID)

	// Dispatch the client's initial URL. The subscriber delivers the
	// first ViewUpdate once the loops start.
	initial := hello.URL
	if initial == "" {
		initial = "/"
	}
	session.Start()
	if _, err := session.dispatcher.Navigate(context.Background(), initial); err != nil {
		session.logger.Warn("initial navigation failed", "url", initial, "error", err)
		session.dispatcher.Navigate(context.Background(), "/")
	}

	s.logger.Info("session started", "session_id", session.ID, "url", initial)
}

// createSession builds the per-client dispatcher and registers the session.
func (s *Server) createSession(conn *websocket.Conn) (*Session, error) {
	id := NewSessionID()

	d := dispatch.New(s.table,
		dispatch.WithLogger(s.logger.With("session_id", id)),
		dispatch.WithPreloadConfig(s.preloadCfg),
		dispatch.WithHistoryLimit(s.historyLim),
		dispatch.WithPreloadObserver(middleware.ObservePreload),
	)
	d.Use(s.middlewares...)
	for name, fn := range s.preloads {
		d.OnPreload(name, fn)
	}

	session := newSession(id, conn, d, s.config, s.logger)
	session.onClose = func(sess *Session) {
		s.sessions.remove(sess.ID)
	}

	if err := s.sessions.register(session); err != nil {
		return nil, err
	}
	return session, nil
}

// sendServerHello sends a successful hello response.
func (s *Server) sendServerHello(conn *websocket.Conn, sessionID string) {
	payload := protocol.EncodeServerHello(&protocol.ServerHello{
		Version:   protocol.ProtocolVersion,
		SessionID: sessionID,
	})
	frame := protocol.NewFrame(protocol.FrameHello, payload)

	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
}

// sendHelloError sends an error frame during the hello exchange.
func (s *Server) sendHelloError(conn *websocket.Conn, code protocol.ErrorCode, message string) {
	payload := protocol.EncodeErrorMessage(protocol.NewFatalError(code, message))
	frame := protocol.NewFrame(protocol.FrameError, payload)

	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil

	case <-shutdown:
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.sessions.Shutdown()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}
