package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/oppia-go-api/internal/models"
)

// SettingRepository reads and writes runtime settings.
type SettingRepository interface {
	GetBool(ctx context.Context, key string, fallback bool) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
}

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository constructs the setting repository.
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) GetBool(ctx context.Context, key string, fallback bool) (bool, error) {
	var setting models.SettingProperty
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}
	if setting.BoolValue == nil {
		return fallback, nil
	}
	return *setting.BoolValue, nil
}

func (r *settingRepository) SetBool(ctx context.Context, key string, value bool) error {
	setting := models.SettingProperty{Key: key, BoolValue: &value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"bool_value"}),
	}).Create(&setting).Error
}
