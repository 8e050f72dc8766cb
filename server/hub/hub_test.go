package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allowAll(userId string, room string) bool { return true }

func denyAll(userId string, room string) bool { return false }

func TestRegisterUnregister(t *testing.T) {
	h := NewHub(allowAll)

	// User 1 signed in on 2 devices.
	c1 := h.register("user_1")
	c2 := h.register("user_1")
	// User 2 signed in on 1 device.
	c3 := h.register("user_2")

	assert.Equal(t, 3, h.GetActiveConnectionsCount())
	assert.True(t, h.IsUserConnected("user_1"))

	_, last := h.unregister(c1)
	assert.False(t, last)
	_, last = h.unregister(c2)
	assert.True(t, last)
	assert.False(t, h.IsUserConnected("user_1"))

	_, last = h.unregister(c3)
	assert.True(t, last)
	assert.Equal(t, 0, h.GetActiveConnectionsCount())
}

func TestPushToUser(t *testing.T) {
	h := NewHub(allowAll)
	conn := h.register("user_1")

	frame := &Frame{Type: FrameTypeNotification}
	require.NoError(t, h.PushToUser("user_1", frame))
	assert.Equal(t, frame, <-conn.send)

	assert.Error(t, h.PushToUser("user_without_connection", frame))
}

func TestJoinAndBroadcast(t *testing.T) {
	h := NewHub(allowAll)
	sender := h.register("user_1")
	receiver := h.register("user_2")
	outsider := h.register("user_3")

	require.NoError(t, h.Join(sender, "conversation:c1"))
	require.NoError(t, h.Join(receiver, "conversation:c1"))

	frame := &Frame{Type: FrameTypeMessageNew, Room: "conversation:c1"}
	h.BroadcastRoom("conversation:c1", frame, sender)

	assert.Equal(t, frame, <-receiver.send)
	assert.Equal(t, 0, len(sender.send), "broadcast must skip the originating connection")
	assert.Equal(t, 0, len(outsider.send), "broadcast must not leak outside the room")
}

func TestJoinUnauthorized(t *testing.T) {
	h := NewHub(denyAll)
	conn := h.register("user_1")

	assert.Error(t, h.Join(conn, "conversation:c1"))
}

func TestLeaveStopsDelivery(t *testing.T) {
	h := NewHub(allowAll)
	conn := h.register("user_1")

	require.NoError(t, h.Join(conn, "stream:s1"))
	h.Leave(conn, "stream:s1")

	h.BroadcastRoom("stream:s1", &Frame{Type: FrameTypeTyping}, nil)
	assert.Equal(t, 0, len(conn.send))
}

func TestUnregisterReportsOccupiedRooms(t *testing.T) {
	h := NewHub(allowAll)
	conn := h.register("user_1")

	require.NoError(t, h.Join(conn, "conversation:c1"))
	require.NoError(t, h.Join(conn, "stream:s1"))

	occupied, last := h.unregister(conn)
	assert.True(t, last)
	assert.ElementsMatch(t, []string{"conversation:c1", "stream:s1"}, occupied)
}

func TestSlowConsumerIsKilled(t *testing.T) {
	h := NewHub(allowAll)
	conn := h.register("user_1")

	// Fill the buffer past the brim, never draining.
	for i := 0; i < sendBufferSize+1; i++ {
		h.PushToUser("user_1", &Frame{Type: FrameTypeNotification})
	}

	select {
	case <-conn.done:
		// Connection was flagged for teardown.
	default:
		t.Fatal("slow consumer was not killed")
	}
}
