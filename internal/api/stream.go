package api

import (
	"net/http"
	"sync"

	"github.com/bryanchriswhite/RetroDesk/internal/desktop"
	"github.com/bryanchriswhite/RetroDesk/internal/logger"
	"github.com/bryanchriswhite/RetroDesk/internal/window"
	"github.com/gorilla/websocket"
)

// Stream message types
const (
	MessageSnapshot = "snapshot"
	MessageEvent    = "event"
	MessageResult   = "result"
)

// StreamMessage is what the server writes on the desktop stream
type StreamMessage struct {
	Type     string            `json:"type"`
	Snapshot *desktop.Snapshot `json:"snapshot,omitempty"`
	Event    *window.Event     `json:"event,omitempty"`
	Action   string            `json:"action,omitempty"`
	Result   interface{}       `json:"result,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// wsConn serializes writes; gorilla connections allow one writer at a time
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(msg StreamMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// handleStream pushes window events to the browser and applies the
// commands it sends back
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	log := logger.WithComponent("api")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}
	defer conn.Close()
	ws := &wsConn{conn: conn}

	// Subscribe before the snapshot so no change falls between them
	updates := s.session.Windows().Subscribe()
	defer s.session.Windows().Unsubscribe(updates)

	snap := s.session.Snapshot()
	if err := ws.send(StreamMessage{Type: MessageSnapshot, Snapshot: &snap}); err != nil {
		log.Debug().Err(err).Msg("WebSocket write error")
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var cmd desktop.Command
			if err := conn.ReadJSON(&cmd); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug().Err(err).Msg("WebSocket read error")
				}
				return
			}

			msg := StreamMessage{Type: MessageResult, Action: cmd.Action}
			res, err := s.session.Dispatch(cmd)
			if err != nil {
				msg.Error = err.Error()
			} else {
				msg.Result = res
			}
			if err := ws.send(msg); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-updates:
			if !ok {
				return
			}
			if err := ws.send(StreamMessage{Type: MessageEvent, Event: &ev}); err != nil {
				log.Debug().Err(err).Msg("WebSocket write error")
				return
			}
		}
	}
}
