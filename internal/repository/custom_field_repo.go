package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/models"
)

// CustomFieldRepository persists custom field definitions and user values.
type CustomFieldRepository interface {
	List(ctx context.Context) ([]models.CustomField, error)
	GetValue(ctx context.Context, userID uint, key string) (models.UserProfileCustomField, error)
	SaveValue(ctx context.Context, value *models.UserProfileCustomField) error
	ListValuesByKey(ctx context.Context, key string) ([]models.UserProfileCustomField, error)
}

type customFieldRepository struct {
	db *gorm.DB
}

// NewCustomFieldRepository constructs the custom field repository.
func NewCustomFieldRepository(db *gorm.DB) CustomFieldRepository {
	return &customFieldRepository{db: db}
}

func (r *customFieldRepository) List(ctx context.Context) ([]models.CustomField, error) {
	var fields []models.CustomField
	if err := r.db.WithContext(ctx).Order(`"order" ASC, id ASC`).Find(&fields).Error; err != nil {
		return nil, err
	}
	return fields, nil
}

func (r *customFieldRepository) GetValue(ctx context.Context, userID uint, key string) (models.UserProfileCustomField, error) {
	var value models.UserProfileCustomField
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND key_name = ?", userID, key).
		First(&value).Error
	if err != nil {
		return models.UserProfileCustomField{}, err
	}
	return value, nil
}

func (r *customFieldRepository) SaveValue(ctx context.Context, value *models.UserProfileCustomField) error {
	return r.db.WithContext(ctx).Omit("User", "CustomField").Save(value).Error
}

func (r *customFieldRepository) ListValuesByKey(ctx context.Context, key string) ([]models.UserProfileCustomField, error) {
	var values []models.UserProfileCustomField
	if err := r.db.WithContext(ctx).Preload("User").Where("key_name = ?", key).Order("id ASC").Find(&values).Error; err != nil {
		return nil, err
	}
	return values, nil
}
