package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/oppia-go-api/internal/dto"
	"github.com/noah-isme/oppia-go-api/internal/service"
	"github.com/noah-isme/oppia-go-api/internal/utils"
)

// AdminHandler exposes the read-only admin registrations.
type AdminHandler struct {
	site     *service.AdminSite
	recovery service.DataRecoveryService
	logger   zerolog.Logger
}

// NewAdminHandler constructs the admin handler.
func NewAdminHandler(site *service.AdminSite, recovery service.DataRecoveryService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		site:     site,
		recovery: recovery,
		logger:   logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register wires admin routes onto a group restricted to staff.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/", h.index)
	router.Post("/datarecovery/datarecovery/:id/recover/", h.markRecovered)

	router.Get("/:app/:model/", h.changeList)
	router.Get("/:app/:model/:id/", h.detail)

	for _, path := range []string{"/:app/:model/", "/:app/:model/:id/"} {
		router.Post(path, h.readOnly)
		router.Put(path, h.readOnly)
		router.Patch(path, h.readOnly)
		router.Delete(path, h.readOnly)
	}
}

func (h *AdminHandler) index(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "admin models retrieved", h.site.Models())
}

func (h *AdminHandler) changeList(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	list, err := h.site.ChangeList(c.UserContext(), c.Params("app"), c.Params("model"), dto.AdminListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("q")),
	})
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.OK(c, list, "admin records retrieved", list.Pagination)
}

func (h *AdminHandler) detail(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "record not found")
	}

	detail, err := h.site.Detail(c.UserContext(), c.Params("app"), c.Params("model"), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "admin record retrieved", detail)
}

func (h *AdminHandler) markRecovered(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "record not found")
	}

	record, err := h.recovery.MarkRecovered(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrRecoveryNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().Uint("recovery_id", id).Msg("data recovery record marked recovered")
	return utils.SendSuccess(c, "record marked recovered", record)
}

func (h *AdminHandler) readOnly(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAllow, "GET, HEAD")
	return utils.SendError(c, fiber.StatusMethodNotAllowed, "admin registrations are read-only")
}

func (h *AdminHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAdminModelNotRegistered), errors.Is(err, service.ErrAdminObjectNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("admin request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
