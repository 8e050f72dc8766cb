package hub

import "encoding/json"

// FrameType enumerates the JSON frames exchanged over the websocket.
type FrameType string

const (
	// client -> server
	FrameTypeJoin   FrameType = "JOIN"
	FrameTypeLeave  FrameType = "LEAVE"
	FrameTypeTyping FrameType = "TYPING"

	// server -> client
	FrameTypeMessageNew   FrameType = "MESSAGE_NEW"
	FrameTypeReceipt      FrameType = "RECEIPT"
	FrameTypePresence     FrameType = "PRESENCE"
	FrameTypeNotification FrameType = "NOTIFICATION"
	FrameTypeError        FrameType = "ERROR"
)

/*

Frame is the wire unit of the realtime channel.

Type: see FrameType
Room: the room this frame is scoped to, e.g. "conversation:<id>" or
		"stream:<id>". Empty for user scoped frames (notifications).
From: user id of the originator, filled in by the server, never
		trusted from the client.
Payload: type specific JSON body.

*/

type Frame struct {
	Type    FrameType       `json:"type"`
	Room    string          `json:"room,omitempty"`
	From    string          `json:"from,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TypingPayload is the body of a TYPING frame.
type TypingPayload struct {
	Active bool `json:"active"`
}

// PresencePayload is the body of a PRESENCE frame.
type PresencePayload struct {
	UserID string `json:"user_id"`
	Online bool   `json:"online"`
}

// ReceiptPayload is the body of a RECEIPT frame, broadcast when a
// member advances their read cursor in a conversation.
type ReceiptPayload struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	LastReadCursor int64  `json:"last_read_cursor"`
}

// MustPayload marshals v into a frame payload, panics on marshal
// failure which can only happen on programmer error.
func MustPayload(v interface{}) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
