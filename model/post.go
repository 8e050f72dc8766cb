package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*

Post is a piece of user generated content in the feed

Id: primary key, use to identify a post
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

AuthorID:
Author: user who wrote the post, "belongs-to" relation

Content: post body in plain text
ImageUrls: JSON array of media locations on the CDN
LinkPreview: unfurled OpenGraph preview of the first URL in the
		content, may be null when the post has no link or the fetch failed

SharedFromPostID:
SharedFromPost:
		if the post is a repost, set this as the Post originally shared.
		Support multi-level sharing.

LikeCount / DislikeCount / CommentCount / RepostCount / SaveCount:
		denormalized engagement counters. Always updated via atomic
		SQL expressions inside the same transaction that writes the
		corresponding relation row, so they stay equal to the live
		relation rows.

SavedByUser: users who bookmarked the post, "many-to-many" relation

Cursor: the auto-inc global-unique index to keep the relative order of posts
*/

type Post struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt

	AuthorID string `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Author   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`

	Content     string
	ImageUrls   datatypes.JSON
	LinkPreview datatypes.JSON

	SharedFromPostID *string
	SharedFromPost   *Post

	LikeCount    int32
	DislikeCount int32
	CommentCount int32
	RepostCount  int32
	SaveCount    int32

	SavedByUser []*User `json:"saved_by_user" gorm:"many2many:user_post_saves;"`

	Cursor int32 `gorm:"autoIncrement"`
}
