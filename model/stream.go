package model

import (
	"time"

	"gorm.io/gorm"
)

type StreamStatus string

// Stream status moves strictly forward: draft -> live -> ended.
const (
	StreamStatusDraft StreamStatus = "draft"
	StreamStatusLive  StreamStatus = "live"
	StreamStatusEnded StreamStatus = "ended"
)

/*

Stream is a live broadcast record

Id: primary key
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

OwnerID:
Owner: the broadcaster, "belongs-to" relation

Title: stream title shown in listings
Status: draft | live | ended, monotonic
StreamKey: opaque ingest credential issued at creation. Returned only
		to the owner, never serialized in public payloads.

StartedAt / EndedAt: transition timestamps

Live viewer counts are volatile and live in redis, not here. Chat for
a stream rides the realtime hub room "stream:<id>".

*/

type Stream struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt

	OwnerID string `gorm:"index"`
	Owner   User

	Title     string
	Status    StreamStatus
	StreamKey string `json:"-"`

	StartedAt *time.Time
	EndedAt   *time.Time
}

// CanTransition reports whether a stream status change is legal.
func (s StreamStatus) CanTransition(next StreamStatus) bool {
	switch s {
	case StreamStatusDraft:
		return next == StreamStatusLive
	case StreamStatusLive:
		return next == StreamStatusEnded
	default:
		return false
	}
}
