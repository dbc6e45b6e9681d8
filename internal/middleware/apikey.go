package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

func apiCredentials(c *fiber.Ctx) (string, string) {
	username := strings.TrimSpace(c.Query("username"))
	key := strings.TrimSpace(c.Query("api_key"))
	if username != "" && key != "" {
		return username, key
	}

	const scheme = "apikey "
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return username, key
	}

	pair := strings.SplitN(strings.TrimSpace(header[len(scheme):]), ":", 2)
	if len(pair) != 2 {
		return username, key
	}
	return strings.TrimSpace(pair[0]), strings.TrimSpace(pair[1])
}
