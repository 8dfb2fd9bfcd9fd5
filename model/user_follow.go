package model

import "time"

/*

UserFollow is a directed "many-to-many" relation between two users

FollowerID: user who follows
FolloweeID: user being followed
CreatedAt: time when relation is created

The composite primary key makes the relation a set: inserting the same pair
twice violates the key. Deleting either user removes the row.

*/

type UserFollow struct {
	FollowerID string `gorm:"primaryKey"`
	Follower   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	FolloweeID string `gorm:"primaryKey;index"`
	Followee   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt  time.Time
}
