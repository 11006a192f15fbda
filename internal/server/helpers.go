package server

import (
	"errors"
	"time"

	"devlink/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUserID returns the authenticated user's ID placed in locals by
// AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// dateLayouts are the accepted formats for submitted history dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

// parseDate parses a submitted date string against the accepted layouts.
func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseOptionalDate parses a date that may legitimately be absent (e.g. the
// "to" date of a current position).
func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// respondRepoError maps repository errors onto HTTP statuses. FieldErrors
// carry a 400, everything else is a 500.
func respondRepoError(c *fiber.Ctx, err error) error {
	if _, ok := err.(models.FieldErrors); ok {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}
