package model

import (
	"time"

	"gorm.io/gorm"
)

/*

Message is a single message inside a conversation

Id: primary key
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted (sender retracted it)

ConversationID: the thread this message belongs to
SenderID:
Sender: the author, "belongs-to" relation

Content: message body in plain text

Cursor: the auto-inc global-unique index. Read receipts and message
		paging are both keyed by this cursor rather than timestamps so
		ordering is total.
*/

type Message struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt

	ConversationID string
	SenderID       string `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Sender         User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`

	Content string

	Cursor int64 `gorm:"autoIncrement"`
}
