package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/oppia-go-api/internal/middleware"
	"github.com/noah-isme/oppia-go-api/internal/models"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// paramID parses a positive numeric route parameter.
func paramID(c *fiber.Ctx, key string) (uint, bool) {
	parsed, err := strconv.ParseUint(c.Params(key), 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}

func currentUser(c *fiber.Ctx) (models.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return models.User{}, fiber.ErrUnauthorized
	}
	return user, nil
}

func isAJAX(c *fiber.Ctx) bool {
	return strings.EqualFold(c.Get(fiber.HeaderXRequestedWith), "XMLHttpRequest")
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func validationMessages(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	messages := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages[strings.ToLower(fieldErr.Field())] = "invalid " + fieldErr.Tag()
	}
	return messages
}
