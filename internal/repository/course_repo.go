package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/models"
)

// CourseViewer describes who is asking for courses so drafts can be filtered in SQL.
type CourseViewer struct {
	UserID     uint
	Privileged bool
}

// CourseRepository exposes course lookups and the permission table.
type CourseRepository interface {
	ListVisible(ctx context.Context, viewer CourseViewer) ([]models.Course, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	ListByShortname(ctx context.Context, shortname string) ([]models.Course, error)
	HasPermission(ctx context.Context, courseID, userID uint) (bool, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs the course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) ListVisible(ctx context.Context, viewer CourseViewer) ([]models.Course, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{}).
		Preload("User").
		Where("is_archived = ?", false)

	if !viewer.Privileged {
		permitted := r.db.Model(&models.CoursePermission{}).Select("course_id").Where("user_id = ?", viewer.UserID)
		query = query.Where("(is_draft = ? OR user_id = ? OR id IN (?))", false, viewer.UserID, permitted)
	}

	var courses []models.Course
	if err := query.Order("title ASC, id ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&course).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) ListByShortname(ctx context.Context, shortname string) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).Preload("User").Where("shortname = ?", shortname).Order("id ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) HasPermission(ctx context.Context, courseID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CoursePermission{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
