package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/models"
)

// QuizAttemptFilter selects the attempts of one user on one quiz.
type QuizAttemptFilter struct {
	UserID   uint
	QuizID   uint
	Page     int
	PageSize int
}

// QuizRepository exposes quizzes and their attempts.
type QuizRepository interface {
	GetQuiz(ctx context.Context, id uint) (models.Quiz, error)
	ListAttempts(ctx context.Context, filter QuizAttemptFilter) ([]models.QuizAttempt, int64, error)
	GetAttempt(ctx context.Context, userID, quizID, attemptID uint) (models.QuizAttempt, error)
}

type quizRepository struct {
	db *gorm.DB
}

// NewQuizRepository constructs the quiz repository.
func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) GetQuiz(ctx context.Context, id uint) (models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&quiz).Error; err != nil {
		return models.Quiz{}, err
	}
	return quiz, nil
}

func (r *quizRepository) ListAttempts(ctx context.Context, filter QuizAttemptFilter) ([]models.QuizAttempt, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", filter.UserID, filter.QuizID)

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var attempts []models.QuizAttempt
	if err := query.Order("attempt_date DESC, id DESC").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (r *quizRepository) GetAttempt(ctx context.Context, userID, quizID, attemptID uint) (models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	err := r.db.WithContext(ctx).
		Preload("Responses", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ? AND user_id = ? AND quiz_id = ?", attemptID, userID, quizID).
		First(&attempt).Error
	if err != nil {
		return models.QuizAttempt{}, err
	}
	return attempt, nil
}
