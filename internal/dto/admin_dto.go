package dto

import "time"

// AdminListRequest defines the query of an admin change list.
type AdminListRequest struct {
	Page     int
	PageSize int
	Search   string
}

// AdminModelSummary lists a registered admin model on the index page.
type AdminModelSummary struct {
	AppLabel     string   `json:"app_label"`
	ModelName    string   `json:"model_name"`
	VerboseName  string   `json:"verbose_name"`
	URL          string   `json:"url"`
	ListDisplay  []string `json:"list_display"`
	SearchFields []string `json:"search_fields"`
	ReadOnly     bool     `json:"read_only"`
	Actions      []string `json:"actions"`
}

// AdminChangeList is one page of an admin model listing.
type AdminChangeList struct {
	Model      AdminModelSummary        `json:"model"`
	Search     string                   `json:"search,omitempty"`
	Results    []map[string]interface{} `json:"results"`
	Pagination PaginationMeta           `json:"pagination"`
}

// AdminDetail is a single admin record with every field.
type AdminDetail struct {
	Model  AdminModelSummary      `json:"model"`
	Fields map[string]interface{} `json:"fields"`
}

// DataRecoveryEntry captures a snapshot to store for manual restoration.
type DataRecoveryEntry struct {
	UserID   *uint       `validate:"omitempty"`
	DataType string      `validate:"required,oneof=activity_log tracker quiz user_profile"`
	Reasons  string      `validate:"max=500"`
	Data     interface{} `validate:"required"`
}

// DataRecoveryResponse serializes a recovery record.
type DataRecoveryResponse struct {
	ID          uint      `json:"id"`
	CreatedDate time.Time `json:"created_date"`
	DataType    string    `json:"data_type"`
	Reasons     *string   `json:"reasons"`
	Data        string    `json:"data"`
	Recovered   bool      `json:"recovered"`
	UserID      *uint     `json:"user_id"`
	Username    string    `json:"user,omitempty"`
}

// AccessLogEntry captures a page visit to record.
type AccessLogEntry struct {
	UserID *uint
	URL    string
	IP     string
	Agent  string
	Data   string
}
