package model

import (
	"encoding/json"
	"time"
)

// EventType enumerates the domain events that flow through the event
// bus. The notifier turns most of them into Notification rows; the
// realtime hub relays the conversation scoped ones to connected
// clients as well.
type EventType string

const (
	EventTypeFollow      EventType = "FOLLOW"
	EventTypePostLike    EventType = "POST_LIKE"
	EventTypePostRepost  EventType = "POST_REPOST"
	EventTypeCommentNew  EventType = "COMMENT_NEW"
	EventTypeCommentLike EventType = "COMMENT_LIKE"
	EventTypeMessageNew  EventType = "MESSAGE_NEW"
	EventTypeOrderPlaced EventType = "ORDER_PLACED"
	EventTypeOrderPaid   EventType = "ORDER_PAID"
	EventTypeReportFiled EventType = "REPORT_FILED"
)

var AllEventType = []EventType{
	EventTypeFollow,
	EventTypePostLike,
	EventTypePostRepost,
	EventTypeCommentNew,
	EventTypeCommentLike,
	EventTypeMessageNew,
	EventTypeOrderPlaced,
	EventTypeOrderPaid,
	EventTypeReportFiled,
}

func (e EventType) IsValid() bool {
	for _, t := range AllEventType {
		if e == t {
			return true
		}
	}
	return false
}

func (e EventType) String() string {
	return string(e)
}

/*

Event is the payload published on the event bus by API mutations.

Type: what happened
ActorID: the user who did it
RecipientID: the user who should be notified. Events where actor and
		recipient coincide are dropped by the notifier.
SubjectType / SubjectID: the entity acted on
ConversationID: set for message events so the hub can fan out to the
		conversation room
CreatedAt: event time, stamped by the publisher

*/

type Event struct {
	Type           EventType `json:"type"`
	ActorID        string    `json:"actor_id"`
	RecipientID    string    `json:"recipient_id"`
	SubjectType    string    `json:"subject_type"`
	SubjectID      string    `json:"subject_id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Marshal encodes the event for the bus.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEvent decodes a bus payload back into an Event.
func UnmarshalEvent(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
