package model

import (
	"time"

	"gorm.io/gorm"
)

/*

Comment is a reply on a post, optionally nested one level under
another comment

Id: primary key
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

PostID: the post this comment belongs to
AuthorID:
Author: user who wrote the comment, "belongs-to" relation
ReplyToID: parent comment when this is a nested reply

Content: comment body in plain text
LikeCount: denormalized like counter, see Post counters

Cursor: the auto-inc global-unique index to page comments in order
*/

type Comment struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt

	PostID   string
	AuthorID string `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Author   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`

	ReplyToID *string

	Content   string
	LikeCount int32

	Cursor int32 `gorm:"autoIncrement"`
}

// UserCommentLike is a "many-to-many" relation of user like a comment.
type UserCommentLike struct {
	UserID    string `gorm:"primaryKey"`
	CommentID string `gorm:"primaryKey"`
	CreatedAt time.Time
}
