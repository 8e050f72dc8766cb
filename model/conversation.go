package model

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
)

type ConversationKind string

const (
	ConversationKindDirect ConversationKind = "direct"
	ConversationKindGroup  ConversationKind = "group"
)

/*

Conversation is a messaging thread between two or more users

Id: primary key
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

Kind: "direct" (exactly two members, deduplicated) or "group"
Title: display title, only meaningful for group conversations
CreatorID: user who started the conversation

PairKey: for direct conversations, the sorted member pair joined with
		"|". Unique index so the same two users always resolve to one
		conversation. Null for groups.

Members: all users in the thread, "many-to-many" relation through
		ConversationMember which also carries per-member read state

*/

type Conversation struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt

	Kind      ConversationKind
	Title     string
	CreatorID string
	PairKey   *string `gorm:"uniqueIndex"`

	Members []*User `json:"members" gorm:"many2many:conversation_members;"`
}

/*

ConversationMember is the membership of a user in a conversation

ConversationID: conversation id
UserID: user id
CreatedAt: time when relation is created
DeletedAt: time when relation is deleted

LastReadCursor: cursor of the newest message this member has read.
		Monotonically non-decreasing, advanced by the read receipt
		endpoint and never moved backwards.

*/

type ConversationMember struct {
	ConversationID string `gorm:"primaryKey"`
	UserID         string `gorm:"primaryKey"`
	CreatedAt      time.Time
	DeletedAt      gorm.DeletedAt

	LastReadCursor int64
}

// DirectPairKey builds the deduplication key of a direct conversation
// from the two member ids, order independent.
func DirectPairKey(userA string, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return fmt.Sprintf("%s|%s", pair[0], pair[1])
}
