package dto

import "time"

// RegenerateCertificatesRequest is the optional form posted to regenerate certificates.
type RegenerateCertificatesRequest struct {
	Email    string `form:"email" validate:"omitempty,email,max=254"`
	OldEmail string `form:"old_email" validate:"omitempty,email,max=254"`
}

// CertificateItem summarises one award certificate.
type CertificateItem struct {
	AwardID        uint      `json:"award_id"`
	Description    string    `json:"description"`
	CourseTitle    string    `json:"course_title"`
	AwardDate      time.Time `json:"award_date"`
	CertificateURL string    `json:"certificate_url"`
	ValidationUUID string    `json:"validation_uuid"`
}

// RegenerateCertificatesView is the render context of the regenerate form.
type RegenerateCertificatesView struct {
	UserID       uint
	Username     string
	Email        string
	Certificates []CertificateItem
	Errors       map[string]string
}

// RegenerateCertificatesResult reports what a regeneration did.
type RegenerateCertificatesResult struct {
	UserID       uint
	Regenerated  int
	Emailed      int
	EmailChanged bool
	Certificates []CertificateItem
}

// CertificateDocument is the render context of a certificate file.
type CertificateDocument struct {
	Name           string
	Description    string
	CourseTitle    string
	AwardDate      time.Time
	ValidationUUID string
	ValidationURL  string
}
