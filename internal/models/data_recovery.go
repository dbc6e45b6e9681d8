package models

import (
	"time"

	"gorm.io/gorm"
)

// Recovery record data types.
const (
	DataRecoveryActivityLog = "activity_log"
	DataRecoveryTracker     = "tracker"
	DataRecoveryQuiz        = "quiz"
	DataRecoveryUserProfile = "user_profile"
)

// DataRecoveryTypes lists the accepted recovery data types.
var DataRecoveryTypes = []string{
	DataRecoveryActivityLog,
	DataRecoveryTracker,
	DataRecoveryQuiz,
	DataRecoveryUserProfile,
}

// DataRecovery is a snapshot of data pending manual restoration.
type DataRecovery struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedDate time.Time `gorm:"not null" json:"created_date"`
	DataType    string    `gorm:"size:13;not null;index" json:"data_type"`
	Reasons     *string   `gorm:"size:500" json:"reasons"`
	Data        string    `gorm:"type:text;not null" json:"data"`
	Recovered   bool      `gorm:"not null;default:false" json:"recovered"`
	UserID      *uint     `gorm:"index" json:"user_id"`
	User        *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// TableName keeps the table name stable across renames of the struct.
func (DataRecovery) TableName() string {
	return "datarecovery_datarecovery"
}

// BeforeCreate stamps the creation date when the caller left it unset.
func (r *DataRecovery) BeforeCreate(_ *gorm.DB) error {
	if r.CreatedDate.IsZero() {
		r.CreatedDate = time.Now()
	}
	return nil
}
