package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectPairKey(t *testing.T) {
	// The key is order independent, both sides of a DM resolve to the
	// same thread.
	assert.Equal(t, DirectPairKey("alice", "bob"), DirectPairKey("bob", "alice"))
	assert.NotEqual(t, DirectPairKey("alice", "bob"), DirectPairKey("alice", "carol"))
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransition(OrderStatusPaid))
	assert.True(t, OrderStatusPending.CanTransition(OrderStatusCancelled))
	assert.True(t, OrderStatusPaid.CanTransition(OrderStatusShipped))
	assert.True(t, OrderStatusPaid.CanTransition(OrderStatusCancelled))
	assert.True(t, OrderStatusShipped.CanTransition(OrderStatusCompleted))

	// No skipping ahead and no way out of a terminal state.
	assert.False(t, OrderStatusPending.CanTransition(OrderStatusShipped))
	assert.False(t, OrderStatusShipped.CanTransition(OrderStatusCancelled))
	assert.False(t, OrderStatusCompleted.CanTransition(OrderStatusPending))
	assert.False(t, OrderStatusCancelled.CanTransition(OrderStatusPaid))
}

func TestStreamStatusTransitions(t *testing.T) {
	assert.True(t, StreamStatusDraft.CanTransition(StreamStatusLive))
	assert.True(t, StreamStatusLive.CanTransition(StreamStatusEnded))

	assert.False(t, StreamStatusDraft.CanTransition(StreamStatusEnded))
	assert.False(t, StreamStatusEnded.CanTransition(StreamStatusLive))
	assert.False(t, StreamStatusLive.CanTransition(StreamStatusDraft))
}

func TestEventTypeIsValid(t *testing.T) {
	for _, eventType := range AllEventType {
		assert.True(t, eventType.IsValid())
	}
	assert.False(t, EventType("SOLAR_FLARE").IsValid())
}
