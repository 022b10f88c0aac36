package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/agro-hegemony/internal/engine"
	"github.com/talgya/agro-hegemony/internal/protocol"
	"github.com/talgya/agro-hegemony/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 << 10
)

// upgrader allows any origin; CORS for the REST surface is handled by
// corsMiddleware and the stream is read-mostly.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamClient is one websocket subscribed to one game. The client may also
// submit action requests; replies go to this client only, while the
// resulting state is pushed to every subscriber of the game.
type streamClient struct {
	conn    *websocket.Conn
	replies chan any
	stopped chan struct{} // closed when the write pump exits
	done    chan struct{} // closed when the read pump exits
}

// handleStream upgrades GET /api/v1/games/{id}/stream. The first message is
// the current state; every applied action then pushes a STATE message.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if n := atomic.AddInt32(&s.streamConn, 1); n > maxStreamConns {
		atomic.AddInt32(&s.streamConn, -1)
		writeError(w, http.StatusServiceUnavailable, protocol.ErrRateLimit, "too many stream connections")
		return
	}
	defer atomic.AddInt32(&s.streamConn, -1)

	// Subscribe before reading the state so no update falls in between.
	updates, cancel, err := s.Sessions.Subscribe(context.Background(), id)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	defer cancel()
	st, err := s.Sessions.Get(r.Context(), id)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("stream upgrade failed", "game", id, "error", err)
		return
	}

	c := &streamClient{
		conn:    conn,
		replies: make(chan any, 8),
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}
	slog.Info("stream client connected", "game", id, "remote", clientIP(r))

	go c.writePump(st, updates)
	c.readPump(s, id)
	close(c.done)
	<-c.stopped

	slog.Info("stream client disconnected", "game", id)
}

// readPump reads action requests until the connection fails. The write
// pump owns closing the connection.
func (c *streamClient) readPump(s *Server, id string) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("stream read error", "game", id, "error", err)
			}
			return
		}

		var reply any
		var req protocol.ActionRequest
		if err := json.Unmarshal(message, &req); err != nil {
			reply = protocol.NewError(protocol.ErrBadRequest, "invalid JSON message")
		} else {
			_, reply = s.dispatch(context.Background(), id, req)
		}

		select {
		case c.replies <- reply:
		case <-c.stopped:
			return
		}
	}
}

// writePump owns all writes to the connection and closes it on exit.
func (c *streamClient) writePump(first *engine.State, updates <-chan session.Update) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(c.stopped)
	}()

	if err := c.write(protocol.NewStateMsg(first, "")); err != nil {
		return
	}
	seen := first.Version
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return
			}
			if stale(seen, u) {
				continue
			}
			seen = u.State.Version
			if err := c.write(protocol.NewStateMsg(u.State, u.Action)); err != nil {
				return
			}
		case msg := <-c.replies:
			if err := c.write(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *streamClient) write(v any) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// stale reports whether u is already reflected in a message at version
// seen. A reset or restore may move the version back and always passes.
func stale(seen uint64, u session.Update) bool {
	return u.Action != engine.ActReset && u.State.Version <= seen
}
