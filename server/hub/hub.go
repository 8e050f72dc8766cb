package hub

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	Logger "github.com/plaza-social/plaza/utils/log"
)

// sendBufferSize bounds the per-connection outgoing queue. A consumer
// that falls this far behind gets disconnected instead of stalling the
// broadcaster.
const sendBufferSize = 64

// AuthorizeFunc decides whether a user may join a room. Wired in by
// the server with a DB backed membership check.
type AuthorizeFunc func(userId string, room string) bool

// connection is one live websocket attached to the hub. A user with
// multiple devices holds multiple connections.
type connection struct {
	id     string
	userId string
	send   chan *Frame

	// done is closed (once) to force the write pump to drop the socket,
	// used when the consumer cannot keep up.
	done     chan struct{}
	doneOnce sync.Once

	// rooms this connection has joined, owned by the hub under its lock.
	rooms map[string]bool
}

// kill forces the connection down. Safe to call multiple times and
// from any goroutine.
func (c *connection) kill() {
	c.doneOnce.Do(func() { close(c.done) })
}

// Hub contains all structures that handle the realtime relay. All
// internal state should not be handled directly by hand but managed by
// its public receivers.
type Hub struct {
	// connectionMap maps from user id to the user's active connections,
	// keyed by connection id (uuid) so that deletion is O(1). Each
	// connectionMap entry is deleted once all of the user's connections
	// are closed.
	connectionMap map[string]map[string]*connection

	// roomMap maps from room name to the connections currently joined.
	roomMap map[string]map[string]*connection

	authorize AuthorizeFunc

	// Adding/Removing a connection or room membership must grab the
	// write lock, while pushing frames grabs a read lock. Ideally we
	// should create lock per-room but we start from a shared lock for
	// simplicity.
	mu sync.RWMutex
}

func NewHub(authorize AuthorizeFunc) *Hub {
	return &Hub{
		connectionMap: make(map[string]map[string]*connection),
		roomMap:       make(map[string]map[string]*connection),
		authorize:     authorize,
		mu:            sync.RWMutex{},
	}
}

// register attaches a new connection for the user and returns it.
func (h *Hub) register(userId string) *connection {
	conn := &connection{
		id:     "conn_" + uuid.New().String(),
		userId: userId,
		send:   make(chan *Frame, sendBufferSize),
		done:   make(chan struct{}),
		rooms:  make(map[string]bool),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.connectionMap[userId]; !ok {
		h.connectionMap[userId] = make(map[string]*connection)
	}
	h.connectionMap[userId][conn.id] = conn

	return conn
}

// unregister detaches the connection, removes it from every room it
// joined and reports the rooms it occupied plus whether this was the
// user's last connection.
func (h *Hub) unregister(conn *connection) (occupied []string, last bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range conn.rooms {
		occupied = append(occupied, room)
		delete(h.roomMap[room], conn.id)
		if len(h.roomMap[room]) == 0 {
			delete(h.roomMap, room)
		}
	}

	delete(h.connectionMap[conn.userId], conn.id)
	if len(h.connectionMap[conn.userId]) == 0 {
		delete(h.connectionMap, conn.userId)
		last = true
	}

	close(conn.send)
	return occupied, last
}

// Join adds the connection to a room after authorization.
func (h *Hub) Join(conn *connection, room string) error {
	if h.authorize != nil && !h.authorize(conn.userId, room) {
		return errors.New("not authorized to join room: " + room)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.roomMap[room]; !ok {
		h.roomMap[room] = make(map[string]*connection)
	}
	h.roomMap[room][conn.id] = conn
	conn.rooms[room] = true
	return nil
}

// Leave removes the connection from a room, no-op when not joined.
func (h *Hub) Leave(conn *connection, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(conn.rooms, room)
	if conns, ok := h.roomMap[room]; ok {
		delete(conns, conn.id)
		if len(conns) == 0 {
			delete(h.roomMap, room)
		}
	}
}

// GetActiveConnectionsCount reports the number of live connections.
// Thread-safe.
func (h *Hub) GetActiveConnectionsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, mp := range h.connectionMap {
		count += len(mp)
	}
	return count
}

// IsUserConnected reports whether the user holds at least one live
// connection on this hub instance. Thread-safe.
func (h *Hub) IsUserConnected(userId string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.connectionMap[userId]) > 0
}

// PushToUser delivers the frame to every connection of the user.
// Returns error when the user has no active connection. Thread-safe.
func (h *Hub) PushToUser(userId string, frame *Frame) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.connectionMap[userId]
	if !ok {
		return errors.New("no active connection for user: " + userId)
	}
	for _, conn := range conns {
		h.deliver(conn, frame)
	}
	return nil
}

// BroadcastRoom delivers the frame to every connection in the room,
// optionally skipping the originating connection. Thread-safe.
func (h *Hub) BroadcastRoom(room string, frame *Frame, except *connection) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.roomMap[room] {
		if except != nil && conn.id == except.id {
			continue
		}
		h.deliver(conn, frame)
	}
}

// deliver enqueues the frame without ever blocking. A full send buffer
// means the consumer is too slow, so the connection is killed and torn
// down through the usual unregister path. Callers hold at least the
// read lock.
func (h *Hub) deliver(conn *connection, frame *Frame) {
	select {
	case conn.send <- frame:
	default:
		Logger.Log.Warnf("dropping slow websocket consumer, user: %s", conn.userId)
		conn.kill()
	}
}
