package model

import (
	"time"

	"gorm.io/gorm"
)

/*

User is a registered account on the platform

Id: primary key, use to identify a user
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

Username: unique login handle, immutable after signup
DisplayName: name shown on the profile, user editable
PasswordHash: bcrypt hash of the password, never serialized
Bio: free form profile text
AvatarUrl: profile image location on the CDN

FollowerCount / FollowingCount: denormalized counters, kept in sync
with the user_follows rows inside the same transaction

SavedPosts: posts this user bookmarked, "many-to-many" relation

*/

type User struct {
	Id           string `gorm:"primaryKey"`
	CreatedAt    time.Time
	DeletedAt    gorm.DeletedAt
	Username     string `gorm:"uniqueIndex"`
	DisplayName  string
	PasswordHash string `json:"-"`
	Bio          string
	AvatarUrl    string

	FollowerCount  int32
	FollowingCount int32

	SavedPosts []*Post `json:"saved_posts" gorm:"many2many:user_post_saves;"`
}
