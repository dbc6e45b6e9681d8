package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/oppia-go-api/internal/dto"
	"github.com/noah-isme/oppia-go-api/internal/models"
	"github.com/noah-isme/oppia-go-api/internal/service"
	"github.com/noah-isme/oppia-go-api/internal/views"
)

// ProfileHandler serves the profile pages: certificate regeneration and quiz attempts.
type ProfileHandler struct {
	certificates service.CertificateService
	quizzes      service.QuizAttemptService
	logger       zerolog.Logger
}

// NewProfileHandler constructs the profile handler.
func NewProfileHandler(certificates service.CertificateService, quizzes service.QuizAttemptService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		certificates: certificates,
		quizzes:      quizzes,
		logger:       logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register wires the profile routes onto an authenticated group.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Get("/:user_id/regenerate/", h.regenerateForm)
	router.Post("/:user_id/regenerate/", h.regenerate)
	router.Get("/:user_id/regenerate/success/", h.regenerateSuccess)

	attempts := router.Group("/:user_id/course/:course_id/quiz/:quiz_id/attempts")
	attempts.Get("/", h.quizAttempts)
	attempts.Get("/:attempt_id/", h.quizAttempt)
}

func (h *ProfileHandler) regenerateForm(c *fiber.Ctx) error {
	viewer, err := currentUser(c)
	if err != nil {
		return err
	}
	userID, ok := paramID(c, "user_id")
	if !ok {
		return fiber.ErrNotFound
	}

	view, err := h.certificates.Form(c.UserContext(), viewer, userID)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Render("profile/certificates/regenerate", fiber.Map{"Title": "Regenerate certificates", "View": view}, views.Layout)
}

func (h *ProfileHandler) regenerate(c *fiber.Ctx) error {
	viewer, err := currentUser(c)
	if err != nil {
		return err
	}
	userID, ok := paramID(c, "user_id")
	if !ok {
		return fiber.ErrNotFound
	}

	var req dto.RegenerateCertificatesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form")
	}

	result, err := h.certificates.Regenerate(c.UserContext(), viewer, userID, req)
	switch {
	case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrEmailMismatch):
		return h.renderFormErrors(c, viewer, userID, err)
	case err != nil:
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("user_id", result.UserID).
		Int("regenerated", result.Regenerated).
		Int("emailed", result.Emailed).
		Msg("certificates regenerated")

	return c.Redirect(fmt.Sprintf("/profile/%d/regenerate/success/", userID), fiber.StatusFound)
}

func (h *ProfileHandler) renderFormErrors(c *fiber.Ctx, viewer models.User, userID uint, cause error) error {
	view, err := h.certificates.Form(c.UserContext(), viewer, userID)
	if err != nil {
		return h.handleError(c, err)
	}

	view.Errors = validationMessages(cause)
	if len(view.Errors) == 0 {
		field := "email"
		if errors.Is(cause, service.ErrEmailMismatch) {
			field = "old_email"
		}
		view.Errors = map[string]string{field: cause.Error()}
	}

	c.Status(fiber.StatusBadRequest)
	return c.Render("profile/certificates/regenerate", fiber.Map{"Title": "Regenerate certificates", "View": view}, views.Layout)
}

func (h *ProfileHandler) regenerateSuccess(c *fiber.Ctx) error {
	viewer, err := currentUser(c)
	if err != nil {
		return err
	}
	userID, ok := paramID(c, "user_id")
	if !ok {
		return fiber.ErrNotFound
	}

	view, err := h.certificates.Form(c.UserContext(), viewer, userID)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Render("profile/certificates/regenerate_success", fiber.Map{
		"Title":    "Certificates regenerated",
		"UserID":   view.UserID,
		"Username": view.Username,
	}, views.Layout)
}

func (h *ProfileHandler) quizAttempts(c *fiber.Ctx) error {
	viewer, err := currentUser(c)
	if err != nil {
		return err
	}
	query, ok := attemptQuery(c)
	if !ok {
		return fiber.ErrNotFound
	}
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return fiber.ErrNotFound
	}
	query.Page = page

	view, err := h.quizzes.List(c.UserContext(), viewer, query)
	if err != nil {
		return h.handleError(c, err)
	}

	data := fiber.Map{"Title": view.Quiz.Title, "View": view}
	if isAJAX(c) {
		return c.Render("quiz/attempts_query", data)
	}
	return c.Render("profile/quiz_attempts", data, views.Layout)
}

func (h *ProfileHandler) quizAttempt(c *fiber.Ctx) error {
	viewer, err := currentUser(c)
	if err != nil {
		return err
	}
	query, ok := attemptQuery(c)
	if !ok {
		return fiber.ErrNotFound
	}
	attemptID, ok := paramID(c, "attempt_id")
	if !ok {
		return fiber.ErrNotFound
	}

	view, err := h.quizzes.Get(c.UserContext(), viewer, query, attemptID)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Render("quiz/attempt", fiber.Map{"Title": view.Quiz.Title, "View": view}, views.Layout)
}

func attemptQuery(c *fiber.Ctx) (dto.QuizAttemptQuery, bool) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		return dto.QuizAttemptQuery{}, false
	}
	courseID, ok := paramID(c, "course_id")
	if !ok {
		return dto.QuizAttemptQuery{}, false
	}
	quizID, ok := paramID(c, "quiz_id")
	if !ok {
		return dto.QuizAttemptQuery{}, false
	}
	return dto.QuizAttemptQuery{UserID: userID, CourseID: courseID, QuizID: quizID}, true
}

func (h *ProfileHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return fiber.ErrForbidden
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrQuizNotFound),
		errors.Is(err, service.ErrQuizAttemptNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrPageNotFound):
		return fiber.ErrNotFound
	default:
		requestLogger(h.logger, c).Error().Err(err).Str("path", strings.TrimSpace(c.Path())).Msg("profile request failed")
		return fiber.ErrInternalServerError
	}
}
