package model

import (
	"time"

	"gorm.io/gorm"
)

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// StoryTTL is how long a story stays visible after creation.
const StoryTTL = 24 * time.Hour

/*

Story is an ephemeral piece of content that disappears 24h after
creation

Id: primary key
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted (set by the reaper or author)

AuthorID:
Author: user who posted the story, "belongs-to" relation

MediaUrl: media location on the CDN
MediaType: "image" or "video"
Caption: optional text overlay

ExpiresAt: CreatedAt + StoryTTL. Listings filter on it at query time
		so an expired story is invisible even before the reaper sweeps
		it.
ViewCount: denormalized count of distinct viewers

*/

type Story struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt

	AuthorID string `gorm:"index"`
	Author   User

	MediaUrl  string
	MediaType MediaType
	Caption   string

	ExpiresAt time.Time `gorm:"index"`
	ViewCount int32
}

// StoryView records that a user has seen a story, once per viewer.
type StoryView struct {
	StoryID   string `gorm:"primaryKey"`
	ViewerID  string `gorm:"primaryKey"`
	CreatedAt time.Time
}
