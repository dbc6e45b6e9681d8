package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/oppia-go-api/internal/dto"
)

// AccessRecorder persists dashboard visits.
type AccessRecorder interface {
	Record(ctx context.Context, entry dto.AccessLogEntry) error
}

// AccessLog writes one dashboard access record per authenticated request once
// the handler has run. Recording failures are logged and never fail the request.
func AccessLog(recorder AccessRecorder, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		user, ok := CurrentUser(c)
		if !ok {
			return err
		}

		entry := dto.AccessLogEntry{
			UserID: &user.ID,
			URL:    c.OriginalURL(),
			IP:     c.IP(),
			Agent:  c.Get(fiber.HeaderUserAgent),
		}
		if c.Method() != fiber.MethodGet {
			entry.Data = string(c.Body())
		}

		if recErr := recorder.Record(c.UserContext(), entry); recErr != nil {
			logger.Warn().Err(recErr).
				Str("correlation_id", GetCorrelationID(c)).
				Str("url", entry.URL).
				Msg("failed to record dashboard access")
		}

		return err
	}
}
