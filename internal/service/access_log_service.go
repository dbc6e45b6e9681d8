package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/oppia-go-api/internal/dto"
	"github.com/noah-isme/oppia-go-api/internal/models"
	"github.com/noah-isme/oppia-go-api/internal/repository"
)

const maxAccessLogDataLength = 4096

// ErrAccessLogNotFound indicates the access log row does not exist.
var ErrAccessLogNotFound = errors.New("access log not found")

// AccessLogService records and lists dashboard visits.
type AccessLogService interface {
	Record(ctx context.Context, entry dto.AccessLogEntry) error
	List(ctx context.Context, filter repository.AccessLogFilter) ([]models.DashboardAccessLog, dto.PaginationMeta, error)
	Get(ctx context.Context, id uint) (models.DashboardAccessLog, error)
}

type accessLogService struct {
	repo   repository.AccessLogRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewAccessLogService constructs the access log service.
func NewAccessLogService(repo repository.AccessLogRepository, logger zerolog.Logger) AccessLogService {
	return &accessLogService{
		repo:   repo,
		logger: logger.With().Str("component", "access_log_service").Logger(),
		now:    time.Now,
	}
}

func (s *accessLogService) Record(ctx context.Context, entry dto.AccessLogEntry) error {
	data := entry.Data
	if len(data) > maxAccessLogDataLength {
		data = data[:maxAccessLogDataLength]
	}

	return s.repo.Create(ctx, &models.DashboardAccessLog{
		UserID:     entry.UserID,
		AccessDate: s.now(),
		URL:        entry.URL,
		IP:         entry.IP,
		Agent:      entry.Agent,
		Data:       data,
	})
}

func (s *accessLogService) List(ctx context.Context, filter repository.AccessLogFilter) ([]models.DashboardAccessLog, dto.PaginationMeta, error) {
	filter.Page = maxInt(filter.Page, 1)
	filter.PageSize = clampPageSize(filter.PageSize)

	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, dto.PaginationMeta{}, err
	}
	return logs, dto.NewPaginationMeta(filter.Page, filter.PageSize, total), nil
}

func (s *accessLogService) Get(ctx context.Context, id uint) (models.DashboardAccessLog, error) {
	log, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.DashboardAccessLog{}, notFound(err, ErrAccessLogNotFound)
	}
	return log, nil
}
