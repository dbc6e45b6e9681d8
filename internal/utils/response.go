package utils

import (
	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
)

// APIResponse describes the common envelope for JSON responses outside the v3 course API.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Details interface{} `json:"details,omitempty"`
	Message string      `json:"message"`
}

// ErrorBody is the bare error payload used by the v3 course API.
type ErrorBody struct {
	Error string `json:"error"`
}

// OK sends a 200 envelope with optional pagination or listing metadata.
func OK(c *fiber.Ctx, data interface{}, message string, meta interface{}) error {
	if message == "" {
		message = "success"
	}

	return c.Status(fiber.StatusOK).JSON(APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
		Message: message,
	})
}

// Fail sends an error envelope carrying optional details, such as validation failures.
func Fail(c *fiber.Ctx, status int, message string, details interface{}) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Details: details,
		Message: message,
	})
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return OK(c, data, message, nil)
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	return Fail(c, status, message, nil)
}

// SendAPIError writes the `{"error": ...}` body used by the course API.
func SendAPIError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = utilsStatusText(status)
	}
	return c.Status(status).JSON(ErrorBody{Error: message})
}

func utilsStatusText(status int) string {
	text := fiberutils.StatusMessage(status)
	if text == "" {
		return "error"
	}
	return text
}
