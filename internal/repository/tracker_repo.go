package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/models"
)

// TrackerRepository persists learning activity events.
type TrackerRepository interface {
	Create(ctx context.Context, tracker *models.Tracker) error
	ListForCourse(ctx context.Context, userID, courseID uint) ([]models.Tracker, error)
}

type trackerRepository struct {
	db *gorm.DB
}

// NewTrackerRepository constructs the tracker repository.
func NewTrackerRepository(db *gorm.DB) TrackerRepository {
	return &trackerRepository{db: db}
}

func (r *trackerRepository) Create(ctx context.Context, tracker *models.Tracker) error {
	return r.db.WithContext(ctx).Omit("User").Create(tracker).Error
}

func (r *trackerRepository) ListForCourse(ctx context.Context, userID, courseID uint) ([]models.Tracker, error) {
	var trackers []models.Tracker
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("submitted_date DESC, id DESC").
		Find(&trackers).Error
	if err != nil {
		return nil, err
	}
	return trackers, nil
}
