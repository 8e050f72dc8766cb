package model

import (
	"time"

	"gorm.io/gorm"
)

/*

UserFollow is a directed follow edge between two users

FollowerID: the user who follows
FolloweeID: the user being followed
CreatedAt: time when relation is created
DeletedAt: time when relation is deleted

*/

type UserFollow struct {
	FollowerID string `gorm:"primaryKey"`
	FolloweeID string `gorm:"primaryKey"`
	CreatedAt  time.Time
	DeletedAt  gorm.DeletedAt
}
