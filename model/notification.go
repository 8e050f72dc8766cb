package model

import (
	"time"

	"gorm.io/gorm"
)

/*

Notification is a persisted in-app notification for one recipient

Id: primary key
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

RecipientID: the user this notification targets
ActorID:
Actor: the user whose action produced it, "belongs-to" relation

Type: event type that produced the notification, see EventType
SubjectType / SubjectID: the entity the notification points at
		(post, comment, conversation, order ...)

Read: whether the recipient has seen it

Cursor: the auto-inc global-unique index used for paging
*/

type Notification struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt

	RecipientID string `gorm:"index"`
	ActorID     string
	Actor       User

	Type        EventType
	SubjectType string
	SubjectID   string

	Read bool

	Cursor int64 `gorm:"autoIncrement"`
}
