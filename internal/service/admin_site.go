package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/noah-isme/oppia-go-api/internal/dto"
	"github.com/noah-isme/oppia-go-api/internal/models"
	"github.com/noah-isme/oppia-go-api/internal/repository"
)

var (
	// ErrAdminModelNotRegistered indicates no admin registration for app/model.
	ErrAdminModelNotRegistered = errors.New("admin model not registered")
	// ErrAdminObjectNotFound indicates the admin record does not exist.
	ErrAdminObjectNotFound = errors.New("admin object not found")
)

// AdminSource supplies the rows of one registered admin model.
type AdminSource interface {
	AdminList(ctx context.Context, req dto.AdminListRequest) ([]map[string]interface{}, int64, error)
	AdminGet(ctx context.Context, id uint) (map[string]interface{}, error)
}

// ModelAdmin registers a model on the admin site.
type ModelAdmin struct {
	AppLabel     string
	ModelName    string
	VerboseName  string
	ListDisplay  []string
	SearchFields []string
	ReadOnly     bool
	Actions      []string
	Source       AdminSource
}

func (m ModelAdmin) summary() dto.AdminModelSummary {
	return dto.AdminModelSummary{
		AppLabel:     m.AppLabel,
		ModelName:    m.ModelName,
		VerboseName:  m.VerboseName,
		URL:          fmt.Sprintf("/admin/%s/%s/", m.AppLabel, m.ModelName),
		ListDisplay:  append([]string(nil), m.ListDisplay...),
		SearchFields: append([]string(nil), m.SearchFields...),
		ReadOnly:     m.ReadOnly,
		Actions:      append([]string(nil), m.Actions...),
	}
}

// AdminSite is the registry of admin models.
type AdminSite struct {
	registry map[string]ModelAdmin
}

// NewAdminSite constructs an empty admin site.
func NewAdminSite() *AdminSite {
	return &AdminSite{registry: make(map[string]ModelAdmin)}
}

// Register adds a model; registering the same app/model twice is an error.
func (s *AdminSite) Register(model ModelAdmin) error {
	if model.Source == nil {
		return fmt.Errorf("admin %s.%s has no source", model.AppLabel, model.ModelName)
	}
	key := adminKey(model.AppLabel, model.ModelName)
	if _, exists := s.registry[key]; exists {
		return fmt.Errorf("admin %s already registered", key)
	}
	s.registry[key] = model
	return nil
}

// Lookup returns the registration of app/model.
func (s *AdminSite) Lookup(app, model string) (ModelAdmin, error) {
	registered, ok := s.registry[adminKey(app, model)]
	if !ok {
		return ModelAdmin{}, ErrAdminModelNotRegistered
	}
	return registered, nil
}

// Models lists every registration ordered by app and model name.
func (s *AdminSite) Models() []dto.AdminModelSummary {
	summaries := make([]dto.AdminModelSummary, 0, len(s.registry))
	for _, model := range s.registry {
		summaries = append(summaries, model.summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].AppLabel != summaries[j].AppLabel {
			return summaries[i].AppLabel < summaries[j].AppLabel
		}
		return summaries[i].ModelName < summaries[j].ModelName
	})
	return summaries
}

// ChangeList returns one page of rows restricted to the list display columns.
func (s *AdminSite) ChangeList(ctx context.Context, app, model string, req dto.AdminListRequest) (dto.AdminChangeList, error) {
	registered, err := s.Lookup(app, model)
	if err != nil {
		return dto.AdminChangeList{}, err
	}

	req.Page = maxInt(req.Page, 1)
	req.PageSize = clampPageSize(req.PageSize)

	rows, total, err := registered.Source.AdminList(ctx, req)
	if err != nil {
		return dto.AdminChangeList{}, err
	}

	results := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		projected := map[string]interface{}{"id": row["id"]}
		for _, column := range registered.ListDisplay {
			projected[column] = row[column]
		}
		results = append(results, projected)
	}

	return dto.AdminChangeList{
		Model:      registered.summary(),
		Search:     req.Search,
		Results:    results,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

// Detail returns every field of one record.
func (s *AdminSite) Detail(ctx context.Context, app, model string, id uint) (dto.AdminDetail, error) {
	registered, err := s.Lookup(app, model)
	if err != nil {
		return dto.AdminDetail{}, err
	}

	fields, err := registered.Source.AdminGet(ctx, id)
	if err != nil {
		return dto.AdminDetail{}, err
	}
	return dto.AdminDetail{Model: registered.summary(), Fields: fields}, nil
}

func adminKey(app, model string) string {
	return app + "." + model
}

// NewDashboardAccessLogAdmin registers access logs under reports.
func NewDashboardAccessLogAdmin(logs AccessLogService) ModelAdmin {
	return ModelAdmin{
		AppLabel:     "reports",
		ModelName:    "dashboardaccesslog",
		VerboseName:  "dashboard access log",
		ListDisplay:  []string{"user", "access_date", "url", "ip", "data"},
		SearchFields: []string{"user__username"},
		ReadOnly:     true,
		Source:       accessLogAdminSource{logs: logs},
	}
}

// NewDataRecoveryAdmin registers recovery records with the recover action.
func NewDataRecoveryAdmin(recovery DataRecoveryService) ModelAdmin {
	return ModelAdmin{
		AppLabel:     "datarecovery",
		ModelName:    "datarecovery",
		VerboseName:  "data recovery",
		ListDisplay:  []string{"user", "created_date", "data_type", "recovered", "reasons"},
		SearchFields: []string{"user__username"},
		ReadOnly:     true,
		Actions:      []string{"recover"},
		Source:       dataRecoveryAdminSource{recovery: recovery},
	}
}

type accessLogAdminSource struct {
	logs AccessLogService
}

func (a accessLogAdminSource) AdminList(ctx context.Context, req dto.AdminListRequest) ([]map[string]interface{}, int64, error) {
	logs, meta, err := a.logs.List(ctx, repository.AccessLogFilter{Page: req.Page, PageSize: req.PageSize, Username: req.Search})
	if err != nil {
		return nil, 0, err
	}
	rows := make([]map[string]interface{}, 0, len(logs))
	for _, log := range logs {
		rows = append(rows, accessLogRow(log))
	}
	return rows, meta.TotalItems, nil
}

func (a accessLogAdminSource) AdminGet(ctx context.Context, id uint) (map[string]interface{}, error) {
	log, err := a.logs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccessLogNotFound) {
			return nil, ErrAdminObjectNotFound
		}
		return nil, err
	}
	return accessLogRow(log), nil
}

func accessLogRow(log models.DashboardAccessLog) map[string]interface{} {
	row := map[string]interface{}{
		"id":          log.ID,
		"user":        nil,
		"access_date": log.AccessDate,
		"url":         log.URL,
		"ip":          log.IP,
		"agent":       log.Agent,
		"data":        log.Data,
	}
	if log.User != nil {
		row["user"] = log.User.Username
	}
	return row
}

type dataRecoveryAdminSource struct {
	recovery DataRecoveryService
}

func (a dataRecoveryAdminSource) AdminList(ctx context.Context, req dto.AdminListRequest) ([]map[string]interface{}, int64, error) {
	records, meta, err := a.recovery.List(ctx, repository.DataRecoveryFilter{Page: req.Page, PageSize: req.PageSize, Username: req.Search})
	if err != nil {
		return nil, 0, err
	}
	rows := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		rows = append(rows, dataRecoveryRow(record))
	}
	return rows, meta.TotalItems, nil
}

func (a dataRecoveryAdminSource) AdminGet(ctx context.Context, id uint) (map[string]interface{}, error) {
	record, err := a.recovery.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecoveryNotFound) {
			return nil, ErrAdminObjectNotFound
		}
		return nil, err
	}
	return dataRecoveryRow(record), nil
}

func dataRecoveryRow(record dto.DataRecoveryResponse) map[string]interface{} {
	row := map[string]interface{}{
		"id":           record.ID,
		"user":         nil,
		"created_date": record.CreatedDate,
		"data_type":    record.DataType,
		"recovered":    record.Recovered,
		"reasons":      record.Reasons,
		"data":         record.Data,
	}
	if record.Username != "" {
		row["user"] = record.Username
	}
	return row
}
