package models

import (
	"time"

	"gorm.io/datatypes"
)

// TrackerTypeDownload marks a course package download.
const TrackerTypeDownload = "download"

// Tracker logs a learning activity event of a user in a course.
type Tracker struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	UserID        uint              `gorm:"index;not null" json:"user_id"`
	CourseID      *uint             `gorm:"index" json:"course_id"`
	Type          string            `gorm:"size:10;not null" json:"type"`
	IP            string            `gorm:"size:45" json:"ip"`
	Agent         string            `gorm:"type:text" json:"agent"`
	Data          datatypes.JSONMap `gorm:"type:json" json:"data"`
	SubmittedDate time.Time         `gorm:"autoCreateTime" json:"submitted_date"`
	User          User              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
