package dto

import (
	"fmt"
	"time"

	"github.com/noah-isme/oppia-go-api/internal/models"
)

// QuizAttemptPageSize is the number of attempts shown per page.
const QuizAttemptPageSize = 15

// QuizAttemptQuery identifies the attempts being viewed from the URL.
type QuizAttemptQuery struct {
	UserID   uint
	CourseID uint
	QuizID   uint
	Page     int
}

// QuizAttemptItem is one row of the attempts list.
type QuizAttemptItem struct {
	ID          uint      `json:"id"`
	AttemptDate time.Time `json:"attempt_date"`
	Score       float64   `json:"score"`
	MaxScore    float64   `json:"maxscore"`
	Percent     float64   `json:"percent"`
	URL         string    `json:"url"`
}

// QuizAttemptContext carries the objects shown alongside attempts.
type QuizAttemptContext struct {
	Quiz    models.Quiz
	Profile models.User
	Course  models.Course
}

// QuizAttemptListView is the render context of the attempts list.
type QuizAttemptListView struct {
	QuizAttemptContext
	Attempts   []QuizAttemptItem
	Pagination PaginationMeta
}

// QuizAttemptDetailView is the render context of one attempt.
type QuizAttemptDetailView struct {
	QuizAttemptContext
	Attempt   models.QuizAttempt
	Percent   float64
	Responses []models.QuizAttemptResponse
}

// QuizAttemptURL builds the detail URL of an attempt.
func QuizAttemptURL(query QuizAttemptQuery, attemptID uint) string {
	return fmt.Sprintf("/profile/%d/course/%d/quiz/%d/attempts/%d/", query.UserID, query.CourseID, query.QuizID, attemptID)
}

// NewQuizAttemptItem converts an attempt into a list row.
func NewQuizAttemptItem(query QuizAttemptQuery, attempt models.QuizAttempt) QuizAttemptItem {
	return QuizAttemptItem{
		ID:          attempt.ID,
		AttemptDate: attempt.AttemptDate,
		Score:       attempt.Score,
		MaxScore:    attempt.MaxScore,
		Percent:     attempt.ScorePercent(),
		URL:         QuizAttemptURL(query, attempt.ID),
	}
}
