// internal/httpserver/ws.go
//
// WebSocket board stream: one text frame with the serialized board on
// connect, then one more after every board change. Equivalent to a /watch
// loop without the reconnect cost.

package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	wsPingInterval = 30 * time.Second
	wsWriteWait    = 10 * time.Second
)

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	player := chi.URLParam(r, "player")
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain the read side so close frames and pongs are processed; any read
	// error means the client is gone.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	send := func(body string) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteMessage(websocket.TextMessage, []byte(body)) == nil
	}

	v := s.board.Version()
	if !send(s.board.Look(player)) {
		return
	}
	for {
		next := s.board.WaitVersion(ctx, v, wsPingInterval)
		if ctx.Err() != nil {
			return
		}
		if next > v {
			v = next
			if !send(s.board.Look(player)) {
				return
			}
			continue
		}
		// No change inside the ping window; keep the connection warm.
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}
