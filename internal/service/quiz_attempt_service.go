package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/noah-isme/oppia-go-api/internal/dto"
	"github.com/noah-isme/oppia-go-api/internal/models"
	"github.com/noah-isme/oppia-go-api/internal/repository"
)

var (
	// ErrForbidden indicates the viewer may not see another user's data.
	ErrForbidden = errors.New("forbidden")
	// ErrQuizNotFound indicates the quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizAttemptNotFound indicates the attempt is outside the user/quiz filter.
	ErrQuizAttemptNotFound = errors.New("quiz attempt not found")
	// ErrPageNotFound indicates a page number past the last page.
	ErrPageNotFound = errors.New("page not found")
)

// QuizAttemptService serves the quiz attempt pages of a learner's profile.
type QuizAttemptService interface {
	List(ctx context.Context, viewer models.User, query dto.QuizAttemptQuery) (dto.QuizAttemptListView, error)
	Get(ctx context.Context, viewer models.User, query dto.QuizAttemptQuery, attemptID uint) (dto.QuizAttemptDetailView, error)
}

type quizAttemptService struct {
	quizzes repository.QuizRepository
	users   repository.UserRepository
	courses repository.CourseRepository
	logger  zerolog.Logger
}

// NewQuizAttemptService constructs the quiz attempt service.
func NewQuizAttemptService(quizzes repository.QuizRepository, users repository.UserRepository, courses repository.CourseRepository, logger zerolog.Logger) QuizAttemptService {
	return &quizAttemptService{
		quizzes: quizzes,
		users:   users,
		courses: courses,
		logger:  logger.With().Str("component", "quiz_attempt_service").Logger(),
	}
}

func (s *quizAttemptService) List(ctx context.Context, viewer models.User, query dto.QuizAttemptQuery) (dto.QuizAttemptListView, error) {
	if !CanViewProfile(viewer, query.UserID) {
		return dto.QuizAttemptListView{}, ErrForbidden
	}

	pageContext, err := s.loadContext(ctx, query)
	if err != nil {
		return dto.QuizAttemptListView{}, err
	}

	page := maxInt(query.Page, 1)
	attempts, total, err := s.quizzes.ListAttempts(ctx, repository.QuizAttemptFilter{
		UserID:   query.UserID,
		QuizID:   query.QuizID,
		Page:     page,
		PageSize: dto.QuizAttemptPageSize,
	})
	if err != nil {
		return dto.QuizAttemptListView{}, err
	}

	pagination := dto.NewPaginationMeta(page, dto.QuizAttemptPageSize, total)
	if page > pagination.TotalPages {
		return dto.QuizAttemptListView{}, ErrPageNotFound
	}

	query.Page = page
	items := make([]dto.QuizAttemptItem, 0, len(attempts))
	for _, attempt := range attempts {
		items = append(items, dto.NewQuizAttemptItem(query, attempt))
	}

	return dto.QuizAttemptListView{
		QuizAttemptContext: pageContext,
		Attempts:           items,
		Pagination:         pagination,
	}, nil
}

func (s *quizAttemptService) Get(ctx context.Context, viewer models.User, query dto.QuizAttemptQuery, attemptID uint) (dto.QuizAttemptDetailView, error) {
	if !CanViewProfile(viewer, query.UserID) {
		return dto.QuizAttemptDetailView{}, ErrForbidden
	}

	pageContext, err := s.loadContext(ctx, query)
	if err != nil {
		return dto.QuizAttemptDetailView{}, err
	}

	attempt, err := s.quizzes.GetAttempt(ctx, query.UserID, query.QuizID, attemptID)
	if err != nil {
		return dto.QuizAttemptDetailView{}, notFound(err, ErrQuizAttemptNotFound)
	}

	return dto.QuizAttemptDetailView{
		QuizAttemptContext: pageContext,
		Attempt:            attempt,
		Percent:            attempt.ScorePercent(),
		Responses:          attempt.Responses,
	}, nil
}

func (s *quizAttemptService) loadContext(ctx context.Context, query dto.QuizAttemptQuery) (dto.QuizAttemptContext, error) {
	profile, err := s.users.GetByID(ctx, query.UserID)
	if err != nil {
		return dto.QuizAttemptContext{}, notFound(err, ErrUserNotFound)
	}
	quiz, err := s.quizzes.GetQuiz(ctx, query.QuizID)
	if err != nil {
		return dto.QuizAttemptContext{}, notFound(err, ErrQuizNotFound)
	}
	course, err := s.courses.GetByID(ctx, query.CourseID)
	if err != nil {
		return dto.QuizAttemptContext{}, notFound(err, ErrCourseNotFound)
	}

	return dto.QuizAttemptContext{Quiz: quiz, Profile: profile, Course: course}, nil
}

// CanViewProfile reports whether viewer may see the profile pages of userID.
func CanViewProfile(viewer models.User, userID uint) bool {
	return viewer.ID == userID || viewer.IsPrivileged()
}
