package hub

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	Logger "github.com/plaza-social/plaza/utils/log"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size allowed from peer.
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Auth happens via the session token, cross origin browsers are fine.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Presence is the volatile presence mark refreshed while a connection
// is alive. Satisfied by utils.RedisStore.
type Presence interface {
	MarkOnline(userId string) error
}

// ServeWS upgrades the request to a websocket and runs the connection
// until the peer goes away. Blocks for the lifetime of the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userId string, presence Presence) error {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	conn := h.register(userId)
	if presence != nil {
		presence.MarkOnline(userId)
	}

	go h.writePump(ws, conn)
	h.readPump(ws, conn, presence)
	return nil
}

// readPump relays inbound frames from the peer into the hub. It owns
// connection teardown: when the read side errors out, the connection
// is unregistered and, if it was the user's last one, an offline
// presence transition is broadcast to the rooms it occupied.
func (h *Hub) readPump(ws *websocket.Conn, conn *connection, presence Presence) {
	defer func() {
		occupied, last := h.unregister(conn)
		if last {
			for _, room := range occupied {
				h.BroadcastRoom(room, &Frame{
					Type:    FrameTypePresence,
					Room:    room,
					Payload: MustPayload(PresencePayload{UserID: conn.userId, Online: false}),
				}, nil)
			}
		}
		ws.Close()
	}()

	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		// The pong doubles as a presence heartbeat.
		if presence != nil {
			presence.MarkOnline(conn.userId)
		}
		return nil
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Logger.Log.Warnf("websocket closed unexpectedly, user: %s, err: %v", conn.userId, err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.deliverError(conn, "malformed frame")
			continue
		}
		h.handleFrame(conn, &frame)
	}
}

// handleFrame dispatches a single client frame.
func (h *Hub) handleFrame(conn *connection, frame *Frame) {
	switch frame.Type {
	case FrameTypeJoin:
		if err := h.Join(conn, frame.Room); err != nil {
			h.deliverError(conn, err.Error())
			return
		}
		h.BroadcastRoom(frame.Room, &Frame{
			Type:    FrameTypePresence,
			Room:    frame.Room,
			Payload: MustPayload(PresencePayload{UserID: conn.userId, Online: true}),
		}, conn)

	case FrameTypeLeave:
		h.Leave(conn, frame.Room)

	case FrameTypeTyping:
		// Typing indicators are relay-only, never persisted. Only
		// relayed into rooms the sender actually joined.
		h.mu.RLock()
		joined := conn.rooms[frame.Room]
		h.mu.RUnlock()
		if !joined {
			h.deliverError(conn, "not in room: "+frame.Room)
			return
		}
		h.BroadcastRoom(frame.Room, &Frame{
			Type:    FrameTypeTyping,
			Room:    frame.Room,
			From:    conn.userId,
			Payload: frame.Payload,
		}, conn)

	default:
		h.deliverError(conn, "unsupported frame type: "+string(frame.Type))
	}
}

func (h *Hub) deliverError(conn *connection, msg string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(conn, &Frame{Type: FrameTypeError, Payload: MustPayload(msg)})
}

// writePump flushes outbound frames and keeps the connection alive
// with periodic pings.
func (h *Hub) writePump(ws *websocket.Conn, conn *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case frame, ok := <-conn.send:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel on unregister.
				ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteJSON(frame); err != nil {
				return
			}

		case <-conn.done:
			// Killed for falling behind.
			ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "slow consumer"))
			return

		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
