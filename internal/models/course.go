package models

import "time"

// Course permission roles.
const (
	CoursePermissionManager = "manager"
	CoursePermissionViewer  = "viewer"
)

// Course is an uploaded course package.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Shortname   string    `gorm:"size:200;index;not null" json:"shortname"`
	Title       string    `gorm:"type:text;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Version     int64     `gorm:"not null" json:"version"`
	UserID      uint      `gorm:"not null" json:"user_id"`
	IsDraft     bool      `gorm:"not null;default:false" json:"is_draft"`
	IsArchived  bool      `gorm:"not null;default:false" json:"is_archived"`
	Filename    string    `gorm:"size:200" json:"filename"`
	CreatedDate time.Time `gorm:"autoCreateTime" json:"created_date"`
	LastUpdated time.Time `gorm:"autoUpdateTime" json:"lastupdated_date"`
	User        User      `json:"-"`
}

// Status names the visibility state of the course.
func (c Course) Status() string {
	switch {
	case c.IsArchived:
		return "archived"
	case c.IsDraft:
		return "draft"
	default:
		return "live"
	}
}

// CoursePermission grants a user access to a draft course.
type CoursePermission struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	CourseID uint   `gorm:"index;not null" json:"course_id"`
	UserID   uint   `gorm:"index;not null" json:"user_id"`
	Role     string `gorm:"size:20;not null" json:"role"`
	Course   Course `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User     User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
