package model

import (
	"time"

	"gorm.io/gorm"
)

// Kinds of reaction a user can hold on a post. A user holds at most
// one of like/dislike at a time, the row is flipped in place when the
// user switches.
const (
	ReactionKindLike    = "like"
	ReactionKindDislike = "dislike"
)

/*

UserPostSave is a "many-to-many" relation of user save a post

UserID: user id
PostID: post id
CreatedAt: time when relation is created
DeletedAt: time when relation is deleted

*/

type UserPostSave struct {
	UserID    string `gorm:"primaryKey"`
	PostID    string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt
}

/*

UserPostReaction is a user's like or dislike on a post. At most one
row per (user, post) pair, the Kind column tells which one it is.

*/

type UserPostReaction struct {
	UserID    string `gorm:"primaryKey"`
	PostID    string `gorm:"primaryKey"`
	Kind      string
	CreatedAt time.Time
}
