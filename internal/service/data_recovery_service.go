package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/oppia-go-api/internal/dto"
	"github.com/noah-isme/oppia-go-api/internal/models"
	"github.com/noah-isme/oppia-go-api/internal/repository"
)

// ErrRecoveryNotFound indicates the recovery record does not exist.
var ErrRecoveryNotFound = errors.New("data recovery record not found")

// DataRecoveryService stores snapshots of data that could not be applied.
type DataRecoveryService interface {
	Record(ctx context.Context, entry dto.DataRecoveryEntry) (dto.DataRecoveryResponse, error)
	List(ctx context.Context, filter repository.DataRecoveryFilter) ([]dto.DataRecoveryResponse, dto.PaginationMeta, error)
	Get(ctx context.Context, id uint) (dto.DataRecoveryResponse, error)
	MarkRecovered(ctx context.Context, id uint) (dto.DataRecoveryResponse, error)
}

type dataRecoveryService struct {
	repo      repository.DataRecoveryRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewDataRecoveryService constructs the data recovery service.
func NewDataRecoveryService(repo repository.DataRecoveryRepository, validate *validator.Validate, logger zerolog.Logger) DataRecoveryService {
	return &dataRecoveryService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "data_recovery_service").Logger(),
	}
}

func (s *dataRecoveryService) Record(ctx context.Context, entry dto.DataRecoveryEntry) (dto.DataRecoveryResponse, error) {
	entry.Reasons = sanitizeText(entry.Reasons)
	if err := s.validator.Struct(entry); err != nil {
		return dto.DataRecoveryResponse{}, err
	}

	payload, err := serializeRecoveryData(entry.Data)
	if err != nil {
		return dto.DataRecoveryResponse{}, err
	}

	record := models.DataRecovery{
		DataType: entry.DataType,
		Data:     payload,
		UserID:   entry.UserID,
	}
	if entry.Reasons != "" {
		reasons := entry.Reasons
		record.Reasons = &reasons
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		return dto.DataRecoveryResponse{}, err
	}

	s.logger.Info().
		Uint("recovery_id", record.ID).
		Str("data_type", record.DataType).
		Msg("data recovery record stored")

	return newDataRecoveryResponse(record), nil
}

func (s *dataRecoveryService) List(ctx context.Context, filter repository.DataRecoveryFilter) ([]dto.DataRecoveryResponse, dto.PaginationMeta, error) {
	filter.Page = maxInt(filter.Page, 1)
	filter.PageSize = clampPageSize(filter.PageSize)

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, dto.PaginationMeta{}, err
	}

	responses := make([]dto.DataRecoveryResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, newDataRecoveryResponse(record))
	}
	return responses, dto.NewPaginationMeta(filter.Page, filter.PageSize, total), nil
}

func (s *dataRecoveryService) Get(ctx context.Context, id uint) (dto.DataRecoveryResponse, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.DataRecoveryResponse{}, notFound(err, ErrRecoveryNotFound)
	}
	return newDataRecoveryResponse(record), nil
}

func (s *dataRecoveryService) MarkRecovered(ctx context.Context, id uint) (dto.DataRecoveryResponse, error) {
	if err := s.repo.MarkRecovered(ctx, id); err != nil {
		return dto.DataRecoveryResponse{}, notFound(err, ErrRecoveryNotFound)
	}
	s.logger.Info().Uint("recovery_id", id).Msg("data recovery record marked recovered")
	return s.Get(ctx, id)
}

func serializeRecoveryData(data interface{}) (string, error) {
	switch v := data.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode recovery data: %w", err)
	}
	return string(encoded), nil
}

func newDataRecoveryResponse(record models.DataRecovery) dto.DataRecoveryResponse {
	response := dto.DataRecoveryResponse{
		ID:          record.ID,
		CreatedDate: record.CreatedDate,
		DataType:    record.DataType,
		Reasons:     record.Reasons,
		Data:        record.Data,
		Recovered:   record.Recovered,
		UserID:      record.UserID,
	}
	if record.User != nil {
		response.Username = record.User.Username
	}
	return response
}
