package notifier

import (
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/require"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/utils"
	"github.com/plaza-social/plaza/utils/dotenv"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

func eventMessage(t *testing.T, event *model.Event) *message.Message {
	event.CreatedAt = time.Now()
	payload, err := event.Marshal()
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func TestProcessOneEventPersistsNotification(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	processor := NewEventProcessor(db, nil, nil, nil)

	err := processor.ProcessOneEvent(eventMessage(t, &model.Event{
		Type:        model.EventTypePostLike,
		ActorID:     "actor",
		RecipientID: "recipient",
		SubjectType: model.SubjectTypePost,
		SubjectID:   "post-1",
	}))
	require.NoError(t, err)

	var notification model.Notification
	require.Equal(t, int64(1),
		db.Where("recipient_id = ?", "recipient").First(&notification).RowsAffected)
	require.Equal(t, model.EventTypePostLike, notification.Type)
	require.Equal(t, "actor", notification.ActorID)
	require.False(t, notification.Read)
}

func TestProcessOneEventSkipsSelfAction(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	processor := NewEventProcessor(db, nil, nil, nil)

	err := processor.ProcessOneEvent(eventMessage(t, &model.Event{
		Type:        model.EventTypePostLike,
		ActorID:     "narcissus",
		RecipientID: "narcissus",
		SubjectType: model.SubjectTypePost,
		SubjectID:   "post-1",
	}))
	require.NoError(t, err)

	var count int64
	db.Model(&model.Notification{}).Count(&count)
	require.Equal(t, int64(0), count)
}

func TestProcessOneEventSkipsAuditEvents(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	processor := NewEventProcessor(db, nil, nil, nil)

	err := processor.ProcessOneEvent(eventMessage(t, &model.Event{
		Type:        model.EventTypeReportFiled,
		ActorID:     "reporter",
		SubjectType: model.SubjectTypePost,
		SubjectID:   "post-1",
	}))
	require.NoError(t, err)

	var count int64
	db.Model(&model.Notification{}).Count(&count)
	require.Equal(t, int64(0), count)
}

func TestProcessOneEventRejectsUnknownType(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	processor := NewEventProcessor(db, nil, nil, nil)

	err := processor.ProcessOneEvent(eventMessage(t, &model.Event{
		Type:        model.EventType("SOLAR_FLARE"),
		ActorID:     "actor",
		RecipientID: "recipient",
	}))
	require.Error(t, err)
}

func TestProcessOneEventMalformedPayload(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	processor := NewEventProcessor(db, nil, nil, nil)

	err := processor.ProcessOneEvent(message.NewMessage(watermill.NewUUID(), []byte("not json")))
	require.Error(t, err)
}
