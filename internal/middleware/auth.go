package middleware

import (
	"keystone-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals("auth", user)
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// Principal is the acting user extracted from the session for service calls.
type Principal struct {
	UserID              uuid.UUID
	Role                string
	ManagementCompanyID *uuid.UUID
	HoaOrganizationID   *uuid.UUID
}

// GetPrincipal builds a Principal from the session user; ok is false when the session
// has no usable user.
func GetPrincipal(c *fiber.Ctx) (Principal, bool) {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return Principal{}, false
	}
	idStr, _ := m["user_id"].(string)
	userID, err := uuid.Parse(idStr)
	if err != nil {
		return Principal{}, false
	}
	p := Principal{UserID: userID}
	p.Role, _ = m["role"].(string)
	p.ManagementCompanyID = parseOptionalUUID(m["management_company_id"])
	p.HoaOrganizationID = parseOptionalUUID(m["hoa_organization_id"])
	return p, true
}

func parseOptionalUUID(v interface{}) *uuid.UUID {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
