package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The dashboard is served same-origin; reverse proxies rewrite Host
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSubscriber adapts one WebSocket connection to the stream's subscriber
// interface. gorilla/websocket allows a single concurrent writer, so sends
// are serialized with a mutex.
type wsSubscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsSubscriber) Send(payload string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.conn.WriteMessage(websocket.TextMessage, []byte(payload))
}

// handleStream upgrades the connection, registers it as a subscriber and
// blocks reading until the peer goes away. Any read error (clean close,
// network drop, browser kill) unregisters the subscriber, so abnormal
// disconnects cannot leak set entries.
func (s *webServer) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub := &wsSubscriber{conn: conn}
	if err := s.stream.register(r.Context(), sub); err != nil {
		s.log.Warn().Err(err).Msg("websocket register failed")
		conn.Close()
		return
	}
	defer func() {
		s.stream.unregister(sub)
		conn.Close()
	}()

	// The client never sends application data; reads only serve to detect
	// disconnection and answer pings.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
