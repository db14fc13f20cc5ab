package server

import (
	"net/http"
	"time"
)

// ServerConfig configures the HTTP/WebSocket server.
type ServerConfig struct {
	// Address is the host:port to listen on.
	Address string

	// ReadBufferSize is the WebSocket read buffer size.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	WriteBufferSize int

	// CheckOrigin validates the WebSocket upgrade origin.
	// Default allows same-origin only.
	CheckOrigin func(r *http.Request) bool

	// MaxSessions limits concurrent WebSocket sessions (0 = unlimited).
	MaxSessions int

	// MaxMessageSize limits incoming WebSocket messages.
	MaxMessageSize int64

	// HandshakeTimeout bounds the wait for the client hello.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each WebSocket write.
	WriteTimeout time.Duration

	// PingInterval is how often the server pings idle connections.
	PingInterval time.Duration

	// PongTimeout is how long to wait for a pong before closing.
	PongTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout is the HTTP server read-header timeout.
	ReadHeaderTimeout time.Duration

	// IdleTimeout is the HTTP server idle timeout.
	IdleTimeout time.Duration

	// Metrics enables the /metrics endpoint.
	Metrics bool
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:         "localhost:4000",
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
		},
		MaxSessions:       0,
		MaxMessageSize:    64 * 1024,
		HandshakeTimeout:  10 * time.Second,
		WriteTimeout:      10 * time.Second,
		PingInterval:      30 * time.Second,
		PongTimeout:       60 * time.Second,
		ShutdownTimeout:   15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		Metrics:           true,
	}
}

// fillDefaults fills in defaults for any unset fields.
func (c *ServerConfig) fillDefaults() {
	d := DefaultServerConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = d.CheckOrigin
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.PingInterval == 0 {
		c.PingInterval = d.PingInterval
	}
	if c.PongTimeout == 0 {
		c.PongTimeout = d.PongTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = d.IdleTimeout
	}
}
