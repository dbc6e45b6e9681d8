package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/models"
)

// DataRecoveryFilter narrows recovery record queries.
type DataRecoveryFilter struct {
	Page      int
	PageSize  int
	Username  string
	DataType  string
	Recovered *bool
}

// DataRecoveryRepository persists recovery records.
type DataRecoveryRepository interface {
	Create(ctx context.Context, record *models.DataRecovery) error
	List(ctx context.Context, filter DataRecoveryFilter) ([]models.DataRecovery, int64, error)
	GetByID(ctx context.Context, id uint) (models.DataRecovery, error)
	MarkRecovered(ctx context.Context, id uint) error
}

type dataRecoveryRepository struct {
	db *gorm.DB
}

// NewDataRecoveryRepository constructs the recovery record repository.
func NewDataRecoveryRepository(db *gorm.DB) DataRecoveryRepository {
	return &dataRecoveryRepository{db: db}
}

func (r *dataRecoveryRepository) Create(ctx context.Context, record *models.DataRecovery) error {
	return r.db.WithContext(ctx).Omit("User").Create(record).Error
}

func (r *dataRecoveryRepository) List(ctx context.Context, filter DataRecoveryFilter) ([]models.DataRecovery, int64, error) {
	table := models.DataRecovery{}.TableName()
	query := r.db.WithContext(ctx).Model(&models.DataRecovery{})

	if search := strings.TrimSpace(filter.Username); search != "" {
		query = query.
			Joins("LEFT JOIN users ON users.id = "+table+".user_id").
			Where("LOWER(users.username) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filter.DataType != "" {
		query = query.Where(table+".data_type = ?", filter.DataType)
	}
	if filter.Recovered != nil {
		query = query.Where(table+".recovered = ?", *filter.Recovered)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.PageSize)

	var records []models.DataRecovery
	if err := query.Preload("User").Order(table + ".created_date DESC, " + table + ".id DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *dataRecoveryRepository) GetByID(ctx context.Context, id uint) (models.DataRecovery, error) {
	var record models.DataRecovery
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&record).Error; err != nil {
		return models.DataRecovery{}, err
	}
	return record, nil
}

func (r *dataRecoveryRepository) MarkRecovered(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.DataRecovery{}).Where("id = ?", id).Update("recovered", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
