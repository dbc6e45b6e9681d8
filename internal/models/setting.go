package models

// SettingEmailCertificates toggles emailing regenerated certificates.
const SettingEmailCertificates = "OPPIA_EMAIL_CERTIFICATES"

// SettingProperty is a key/value runtime setting.
type SettingProperty struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Key       string  `gorm:"size:50;uniqueIndex;not null" json:"key"`
	StrValue  *string `gorm:"type:text" json:"str_value"`
	IntValue  *int64  `json:"int_value"`
	BoolValue *bool   `json:"bool_value"`
}
