// Package notifier turns domain events from the in-process event bus
// into persisted notifications and realtime pushes.
package notifier

import (
	"context"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/server/hub"
	Logger "github.com/plaza-social/plaza/utils/log"
)

// TopicEvents is the bus topic every API mutation publishes to.
const TopicEvents = "plaza.events"

// PublishEvent stamps and publishes a domain event on the bus. Called
// from request handlers after the transaction commits.
func PublishEvent(bus *gochannel.GoChannel, event *model.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	payload, err := event.Marshal()
	if err != nil {
		return errors.Wrap(err, "fail to encode event")
	}
	return bus.Publish(TopicEvents, message.NewMessage(watermill.NewUUID(), payload))
}

/*

EventProcessor subscribes to the event bus and, for each event:
1. drops it when there is nobody to notify (no recipient, or the
   actor acting on their own content)
2. persists a Notification row for the recipient
3. pushes a NOTIFICATION frame to the recipient's live connections

Delivery to the hub is best-effort: an offline recipient simply finds
the notification in their list later.

*/

type EventProcessor struct {
	DB  *gorm.DB
	Hub *hub.Hub
	Bus *gochannel.GoChannel

	// Statsd counts processed events per type for monitoring, may be
	// nil in tests.
	Statsd *statsd.Client
}

func NewEventProcessor(db *gorm.DB, h *hub.Hub, bus *gochannel.GoChannel, statsdClient *statsd.Client) *EventProcessor {
	return &EventProcessor{
		DB:     db,
		Hub:    h,
		Bus:    bus,
		Statsd: statsdClient,
	}
}

func (p *EventProcessor) Name() string {
	return "event_notifier"
}

// RunModule consumes the bus until the context terminates.
func (p *EventProcessor) RunModule(ctx context.Context) error {
	messages, err := p.Bus.Subscribe(ctx, TopicEvents)
	if err != nil {
		return errors.Wrap(err, "fail to subscribe to event bus")
	}

	for msg := range messages {
		if err := p.ProcessOneEvent(msg); err != nil {
			Logger.Log.Errorf("fail to process event: %s, err: %v", string(msg.Payload), err)
		}
		// The bus has no DLQ, a poisoned event is logged and dropped.
		msg.Ack()
	}
	return nil
}

// ProcessOneEvent handles a single bus message.
func (p *EventProcessor) ProcessOneEvent(msg *message.Message) error {
	event, err := model.UnmarshalEvent(msg.Payload)
	if err != nil {
		return errors.Wrap(err, "fail to decode event")
	}

	if p.Statsd != nil {
		p.Statsd.Incr("plaza.notifier.event", []string{"type:" + event.Type.String()}, 1)
	}

	if !event.Type.IsValid() {
		return errors.Errorf("unknown event type: %s", event.Type)
	}

	// Nothing to notify: bus events without a recipient (e.g. report
	// audit events) and users acting on their own content.
	if event.RecipientID == "" || event.RecipientID == event.ActorID {
		return nil
	}

	notification := model.Notification{
		Id:          uuid.New().String(),
		CreatedAt:   event.CreatedAt,
		RecipientID: event.RecipientID,
		ActorID:     event.ActorID,
		Type:        event.Type,
		SubjectType: event.SubjectType,
		SubjectID:   event.SubjectID,
	}
	if err := p.DB.Create(&notification).Error; err != nil {
		return errors.Wrap(err, "fail to persist notification")
	}

	if p.Hub != nil {
		// Best-effort: error just means the recipient is offline.
		p.Hub.PushToUser(event.RecipientID, &hub.Frame{
			Type:    hub.FrameTypeNotification,
			From:    event.ActorID,
			Payload: hub.MustPayload(notification),
		})
	}
	return nil
}
