package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"go.uber.org/zap"
)

const (
	socketWriteWait  = 10 * time.Second
	socketPingPeriod = 30 * time.Second
)

// handleEvents streams simulation events over a websocket. The optional
// simulation_id query parameter restricts the stream to one simulation.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.deps.Events == nil {
		notConfigured(w, "event stream")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the handshake error
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	s.trackSocket(conn)

	simulationID := strings.TrimSpace(r.URL.Query().Get("simulation_id"))
	sub := s.deps.Events.Subscribe(simulationID)

	defer func() {
		s.deps.Events.Unsubscribe(sub.ID)
		s.untrackSocket(conn)
		_ = conn.Close()
	}()

	s.log.Debug("event stream opened", zap.String("subscription", sub.ID), zap.String("simulation_id", simulationID))

	// The client never sends anything meaningful; reading only detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(socketPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case event, ok := <-sub.Events():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(socketWriteWait))
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				s.log.Debug("event stream write failed", zap.Error(errors.Wrap(errors.ErrCodeCallbackFailed, "websocket write", err)))
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(socketWriteWait)); err != nil {
				return
			}
		}
	}
}
