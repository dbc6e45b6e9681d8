package models

import (
	"strings"
	"time"
)

// User is an account able to sign in to the web views or call the API.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"size:254" json:"email"`
	FirstName   string    `gorm:"size:150" json:"first_name"`
	LastName    string    `gorm:"size:150" json:"last_name"`
	IsStaff     bool      `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"is_superuser"`
	DateJoined  time.Time `gorm:"autoCreateTime" json:"date_joined"`
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// IsPrivileged reports whether the user may act on any other user's data.
func (u User) IsPrivileged() bool {
	return u.IsSuperuser || u.IsStaff
}

// ApiKey authenticates a user against the v3 API.
type ApiKey struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Key         string    `gorm:"size:128;index;not null" json:"-"`
	CreatedDate time.Time `gorm:"autoCreateTime" json:"created_date"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
