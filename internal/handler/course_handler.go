package handler

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/oppia-go-api/internal/dto"
	"github.com/noah-isme/oppia-go-api/internal/service"
	"github.com/noah-isme/oppia-go-api/internal/utils"
)

// CourseHandler exposes the v3 course API.
type CourseHandler struct {
	service       service.CourseService
	logger        zerolog.Logger
	downloadGuard []fiber.Handler
}

// NewCourseHandler constructs a course handler. downloadGuard runs before
// package downloads, typically a rate limiter.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger, downloadGuard ...fiber.Handler) *CourseHandler {
	return &CourseHandler{
		service:       service,
		logger:        logger.With().Str("component", "course_handler").Logger(),
		downloadGuard: downloadGuard,
	}
}

// Register wires course routes. The group must already authenticate the caller,
// so writes by authenticated callers are answered with 405.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/:ref/", h.detail)
	router.Get("/:ref/download/", append(append([]fiber.Handler{}, h.downloadGuard...), h.download)...)
	router.Get("/:ref/activity/", h.activity)
	router.All("/", h.notAllowed)
	router.All("/*", h.notAllowed)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.SendAPIError(c, fiber.StatusForbidden, "")
	}

	response, err := h.service.List(c.UserContext(), user)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list courses")
		return utils.SendAPIError(c, fiber.StatusInternalServerError, "failed to list courses")
	}
	return c.JSON(response)
}

func (h *CourseHandler) detail(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.SendAPIError(c, fiber.StatusForbidden, "")
	}

	response, err := h.service.Get(c.UserContext(), user, c.Params("ref"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(response)
}

func (h *CourseHandler) download(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.SendAPIError(c, fiber.StatusForbidden, "")
	}

	pkg, err := h.service.Download(c.UserContext(), user, c.Params("ref"), dto.CourseDownloadMeta{
		IP:    c.IP(),
		Agent: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return h.handleError(c, err)
	}

	file, err := os.Open(pkg.Path)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("path", pkg.Path).Msg("failed to open course package")
		return utils.SendAPIError(c, fiber.StatusNotFound, service.ErrCoursePackageMissing.Error())
	}

	c.Set(fiber.HeaderContentType, pkg.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, pkg.Filename))
	return c.SendStream(file, int(pkg.Size))
}

func (h *CourseHandler) activity(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return utils.SendAPIError(c, fiber.StatusForbidden, "")
	}

	response, err := h.service.Activity(c.UserContext(), user, c.Params("ref"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(response)
}

func (h *CourseHandler) notAllowed(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
		return utils.SendAPIError(c, fiber.StatusNotFound, "")
	}
	c.Set(fiber.HeaderAllow, "GET, HEAD")
	return utils.SendAPIError(c, fiber.StatusMethodNotAllowed, "")
}

func (h *CourseHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendAPIError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMultipleCourses):
		return utils.SendAPIError(c, fiber.StatusMultipleChoices, err.Error())
	case errors.Is(err, service.ErrCoursePackageMissing):
		return utils.SendAPIError(c, fiber.StatusNotFound, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Str("course", c.Params("ref")).Msg("course request failed")
		return utils.SendAPIError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
