package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/models"
)

// AccessLogFilter narrows dashboard access log queries.
type AccessLogFilter struct {
	Page     int
	PageSize int
	Username string
}

// AccessLogRepository persists dashboard access logs.
type AccessLogRepository interface {
	Create(ctx context.Context, entry *models.DashboardAccessLog) error
	List(ctx context.Context, filter AccessLogFilter) ([]models.DashboardAccessLog, int64, error)
	GetByID(ctx context.Context, id uint) (models.DashboardAccessLog, error)
}

type accessLogRepository struct {
	db *gorm.DB
}

// NewAccessLogRepository constructs the access log repository.
func NewAccessLogRepository(db *gorm.DB) AccessLogRepository {
	return &accessLogRepository{db: db}
}

func (r *accessLogRepository) Create(ctx context.Context, entry *models.DashboardAccessLog) error {
	return r.db.WithContext(ctx).Omit("User").Create(entry).Error
}

func (r *accessLogRepository) List(ctx context.Context, filter AccessLogFilter) ([]models.DashboardAccessLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DashboardAccessLog{})

	if search := strings.TrimSpace(filter.Username); search != "" {
		query = query.
			Joins("LEFT JOIN users ON users.id = dashboard_access_logs.user_id").
			Where("LOWER(users.username) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.PageSize)

	var entries []models.DashboardAccessLog
	if err := query.Preload("User").Order("dashboard_access_logs.access_date DESC, dashboard_access_logs.id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *accessLogRepository) GetByID(ctx context.Context, id uint) (models.DashboardAccessLog, error) {
	var entry models.DashboardAccessLog
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&entry).Error; err != nil {
		return models.DashboardAccessLog{}, err
	}
	return entry, nil
}

func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return query
	}
	if page <= 0 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
