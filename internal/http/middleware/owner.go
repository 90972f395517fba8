package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// OwnerHeader carries the authenticated owner id set by the gateway in front of the API.
	OwnerHeader = "X-Owner-ID"
	// OwnerLocalKey is where Owner stores the id in Fiber's context locals.
	OwnerLocalKey = "owner_id"
)

// Owner copies the owner id from OwnerHeader into context locals. It does not
// reject anonymous requests; the service layer does.
func Owner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(OwnerLocalKey, strings.TrimSpace(c.Get(OwnerHeader)))
		return c.Next()
	}
}

// OwnerID returns the id stored by Owner, falling back to the raw header.
func OwnerID(c *fiber.Ctx) string {
	if v, ok := c.Locals(OwnerLocalKey).(string); ok {
		return v
	}
	return strings.TrimSpace(c.Get(OwnerHeader))
}
