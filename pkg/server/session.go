package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wayfare-dev/wayfare/pkg/dispatch"
	"github.com/wayfare-dev/wayfare/pkg/middleware"
	"github.com/wayfare-dev/wayfare/pkg/protocol"
)

// Session is one connected client. Each session owns its own dispatcher,
// so current view and navigation history are per client.
type Session struct {
	// ID is the unique session identifier.
	ID string

	// LastActive is updated on every received frame.
	LastActive time.Time

	conn       *websocket.Conn
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
	cfg        *ServerConfig

	send chan []byte

	closeOnce sync.Once
	closed    chan struct{}
	onClose   func(*Session)
}

func newSession(id string, conn *websocket.Conn, d *dispatch.Dispatcher, cfg *ServerConfig, logger *slog.Logger) *Session {
	s := &Session{
		ID:         id,
		LastActive: time.Now(),
		conn:       conn,
		dispatcher: d,
		logger:     logger.With("session_id", id),
		cfg:        cfg,
		send:       make(chan []byte, 32),
		closed:     make(chan struct{}),
	}

	// Every navigation on this session's dispatcher becomes a ViewUpdate
	// frame on the wire.
	d.Subscribe(func(v dispatch.ViewChange) {
		s.sendViewUpdate(v)
	})

	return s
}

// Dispatcher returns the session's dispatcher.
func (s *Session) Dispatcher() *dispatch.Dispatcher {
	return s.dispatcher
}

// Start launches the session read and write loops.
func (s *Session) Start() {
	go s.writeLoop()
	go s.readLoop()
}

// Close tears the session down. Safe to call multiple times.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.conn.Close()
		if s.onClose != nil {
			s.onClose(s)
		}
		middleware.RecordSessionClose()
		s.logger.Debug("session closed")
	})
}

// IsClosed reports whether the session has been closed.
func (s *Session) IsClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// enqueue queues a frame for the write loop, dropping it if the session
// is closing or the client cannot keep up.
func (s *Session) enqueue(frame *protocol.Frame) {
	select {
	case s.send <- frame.Encode():
	case <-s.closed:
	default:
		s.logger.Warn("send queue full, dropping frame", "type", frame.Type.String())
		middleware.RecordWebSocketError("send_queue_full")
	}
}

// sendViewUpdate encodes a view change as a ViewUpdate frame.
func (s *Session) sendViewUpdate(v dispatch.ViewChange) {
	payload := protocol.EncodeViewUpdate(&protocol.ViewUpdate{
		Name:    v.Name,
		Path:    v.Path,
		Query:   v.Query,
		Params:  v.Params,
		Replace: v.Replace,
	})
	s.enqueue(protocol.NewFrame(protocol.FrameViewUpdate, payload))
	middleware.RecordViewUpdate()
}

// sendError sends an error frame to the client.
func (s *Session) sendError(code protocol.ErrorCode, message string, fatal bool) {
	em := &protocol.ErrorMessage{Code: code, Message: message, Fatal: fatal}
	s.enqueue(protocol.NewFrame(protocol.FrameError, protocol.EncodeErrorMessage(em)))
}

// readLoop reads frames until the connection dies.
func (s *Session) readLoop() {
	defer s.Close()

	s.conn.SetReadLimit(s.cfg.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
		return nil
	})

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read failed", "error", err)
				middleware.RecordWebSocketError("read")
			}
			return
		}

		s.LastActive = time.Now()
		s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.sendError(protocol.ErrInvalidFrame, "malformed frame", false)
			middleware.RecordWebSocketError("decode")
			continue
		}

		s.handleFrame(frame)
	}
}

// handleFrame dispatches one decoded frame.
func (s *Session) handleFrame(frame *protocol.Frame) {
	switch frame.Type {
	case protocol.FrameNavigate:
		ev, err := protocol.DecodeNavigateEvent(frame.Payload)
		if err != nil {
			s.sendError(protocol.ErrInvalidFrame, "malformed navigate event", false)
			return
		}
		s.handleNavigate(ev)

	case protocol.FrameControl:
		ct, payload, err := protocol.DecodeControl(frame.Payload)
		if err != nil {
			s.sendError(protocol.ErrInvalidFrame, "malformed control message", false)
			return
		}
		s.handleControl(ct, payload)

	default:
		s.sendError(protocol.ErrInvalidFrame, "unexpected frame type "+frame.Type.String(), false)
	}
}

// handleNavigate runs one client navigation through the dispatcher. The
// subscriber wired in newSession turns the resulting notification into the
// ViewUpdate frame, so nothing is sent here on success.
func (s *Session) handleNavigate(ev *protocol.NavigateEvent) {
	ctx := context.Background()

	var err error
	switch ev.Kind {
	case protocol.NavigatePush:
		_, err = s.dispatcher.Navigate(ctx, ev.URL)
	case protocol.NavigateReplace:
		_, err = s.dispatcher.Navigate(ctx, ev.URL, dispatch.WithReplace())
	case protocol.NavigateBack:
		_, err = s.dispatcher.Back(ctx)
	case protocol.NavigateForward:
		_, err = s.dispatcher.Forward(ctx)
	default:
		s.sendError(protocol.ErrInvalidNavigation, "unknown navigate kind", false)
		return
	}

	switch {
	case err == nil:
	case errors.Is(err, dispatch.ErrNoHistory):
		// Client and server history are momentarily out of step; nothing
		// to do, the client keeps its current view.
		s.logger.Debug("history movement out of range", "kind", ev.Kind.String())
	case errors.Is(err, dispatch.ErrInvalidTarget):
		s.logger.Warn("invalid navigation target", "url", ev.URL, "error", err)
		s.sendError(protocol.ErrInvalidNavigation, "invalid navigation target", false)
	default:
		s.logger.Error("navigation failed", "url", ev.URL, "error", err)
		s.sendError(protocol.ErrServerError, "navigation failed", false)
	}
}

// handleControl answers pings and honors close requests.
func (s *Session) handleControl(ct protocol.ControlType, payload any) {
	switch ct {
	case protocol.ControlPing:
		ts := uint64(time.Now().UnixMilli())
		if pp, ok := payload.(*protocol.PingPong); ok {
			ts = pp.Timestamp
		}
		ctrl, pong := protocol.NewPong(ts)
		s.enqueue(protocol.NewFrame(protocol.FrameControl, protocol.EncodeControl(ctrl, pong)))

	case protocol.ControlClose:
		s.Close()
	}
}

// writeLoop drains the send queue and pings idle connections.
func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				s.logger.Debug("websocket write failed", "error", err)
				middleware.RecordWebSocketError("write")
				s.Close()
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}

		case <-s.closed:
			return
		}
	}
}

// sendClose sends a close control frame, best effort.
func (s *Session) sendClose(reason protocol.CloseReason, message string) {
	ct, cm := protocol.NewClose(reason, message)
	data := protocol.NewFrame(protocol.FrameControl, protocol.EncodeControl(ct, cm)).Encode()
	s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	s.conn.WriteMessage(websocket.BinaryMessage, data)
}
