package models

import "time"

// Award is a course completion award and its certificate.
type Award struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	CourseID       *uint     `gorm:"index" json:"course_id"`
	Description    string    `gorm:"type:text;not null" json:"description"`
	AwardDate      time.Time `gorm:"not null" json:"award_date"`
	CertificateURL string    `gorm:"size:512" json:"certificate_url"`
	ValidationUUID string    `gorm:"size:36;index" json:"validation_uuid"`
	User           User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Course         *Course   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}
