package model

import "time"

/*

User is an account that writes articles and comments

Id: primary key, uuid
CreatedAt: time when entity is created
UpdatedAt: time when entity is last updated

Username: public handle, unique
Email: login identity, unique
Password: bcrypt hash of the password, never serialized
Bio: optional free text shown on the profile
Image: optional avatar url

Users are connected to each other through UserFollow rows. The struct itself
carries no collection field, follow edges are read through the store.

*/

type User struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string `gorm:"uniqueIndex;not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `json:"-" gorm:"not null"`
	Bio       *string
	Image     *string
}
