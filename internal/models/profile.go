package models

import "strings"

// Custom field value types.
const (
	CustomFieldTypeStr  = "str"
	CustomFieldTypeInt  = "int"
	CustomFieldTypeBool = "bool"
)

// ParticipantIDField is the custom field whose values are zero padded.
const ParticipantIDField = "participant_id"

// UserProfile holds the fixed profile attributes of a user.
type UserProfile struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	UserID       uint    `gorm:"uniqueIndex;not null" json:"user_id"`
	PhoneNumber  *string `gorm:"size:32" json:"phone_number"`
	Organisation string  `gorm:"size:100" json:"organisation"`
	JobTitle     string  `gorm:"size:100" json:"job_title"`
	User         User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// HasPhoneNumber reports whether a non-blank phone number is stored.
func (p UserProfile) HasPhoneNumber() bool {
	return p.PhoneNumber != nil && strings.TrimSpace(*p.PhoneNumber) != ""
}

// CustomField declares a dynamically keyed profile attribute.
type CustomField struct {
	ID       string `gorm:"primaryKey;size:100" json:"id"`
	Label    string `gorm:"size:200;not null" json:"label"`
	Type     string `gorm:"size:10;not null" json:"type"`
	Required bool   `gorm:"not null;default:false" json:"required"`
	Order    int    `gorm:"column:order;not null;default:0" json:"order"`
}

// UserProfileCustomField stores a user's value for one custom field.
type UserProfileCustomField struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"uniqueIndex:idx_user_key;not null" json:"user_id"`
	KeyName     string      `gorm:"uniqueIndex:idx_user_key;size:100;not null" json:"key_name"`
	ValueStr    *string     `gorm:"type:text" json:"value_str"`
	ValueInt    *int64      `json:"value_int"`
	ValueBool   *bool       `json:"value_bool"`
	User        User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CustomField CustomField `gorm:"foreignKey:KeyName;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsEmptyFor reports whether no value is stored for the given field type.
func (f UserProfileCustomField) IsEmptyFor(fieldType string) bool {
	switch fieldType {
	case CustomFieldTypeInt:
		return f.ValueInt == nil
	case CustomFieldTypeBool:
		return f.ValueBool == nil
	default:
		return f.ValueStr == nil || strings.TrimSpace(*f.ValueStr) == ""
	}
}
