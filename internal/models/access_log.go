package models

import "time"

// DashboardAccessLog records a visit to an authenticated web page.
type DashboardAccessLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id"`
	AccessDate time.Time `gorm:"not null;index" json:"access_date"`
	URL        string    `gorm:"type:text" json:"url"`
	IP         string    `gorm:"size:45" json:"ip"`
	Agent      string    `gorm:"type:text" json:"agent"`
	Data       string    `gorm:"type:text" json:"data"`
	User       *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
