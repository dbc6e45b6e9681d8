package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/models"
)

// AwardRepository persists course awards and their certificates.
type AwardRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.Award, error)
	Save(ctx context.Context, award *models.Award) error
}

type awardRepository struct {
	db *gorm.DB
}

// NewAwardRepository constructs the award repository.
func NewAwardRepository(db *gorm.DB) AwardRepository {
	return &awardRepository{db: db}
}

func (r *awardRepository) ListByUser(ctx context.Context, userID uint) ([]models.Award, error) {
	var awards []models.Award
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("award_date ASC, id ASC").
		Find(&awards).Error
	if err != nil {
		return nil, err
	}
	return awards, nil
}

func (r *awardRepository) Save(ctx context.Context, award *models.Award) error {
	return r.db.WithContext(ctx).Omit("User", "Course").Save(award).Error
}
