package auth

import (
	"context"
	"encoding/json"

	authsvc "keystone-backend/internal/auth"
	"keystone-backend/internal/middleware"
	"keystone-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Handlers bundles auth handlers with dependencies.
type Handlers struct {
	UserFinder authsvc.UserFinder
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

// Login POST /api/v1/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}

	var body authsvc.LoginInput
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, authsvc.ErrEmailPasswordRequired.Error(), 400, nil)
	}

	u, err := h.UserFinder.FindByEmailAndPassword(body.Email, body.Password)
	if err != nil {
		switch err {
		case authsvc.ErrEmailPasswordRequired:
			return response.Error(c, err.Error(), 400, nil)
		case authsvc.ErrInvalidEmail, authsvc.ErrIncorrectPassword:
			return response.Error(c, err.Error(), 401, nil)
		default:
			return response.Error(c, "Internal Server Error", 500, nil)
		}
	}

	sessionID := middleware.RegenerateSessionID(c)
	sessionUser := middleware.SessionUser{
		UserID:   u.UserID.String(),
		Fullname: u.Fullname,
		Email:    u.Email,
		Role:     u.Role,
	}
	if u.ManagementCompanyID != nil {
		s := u.ManagementCompanyID.String()
		sessionUser.ManagementCompanyID = &s
	}
	if u.HoaOrganizationID != nil {
		s := u.HoaOrganizationID.String()
		sessionUser.HoaOrganizationID = &s
	}
	middleware.SetSessionUser(c, sessionUser)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)

	return response.Success(c, "Login successful", sessionUser, nil)
}

// Me GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	shape, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		return response.Unauthorized(c, err.Error())
	}
	return response.Success(c, "Authenticated", shape, nil)
}

// Logout DELETE /api/v1/auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sid := middleware.GetSessionID(c)
	if sid != "" && h.Rdb != nil {
		_ = h.Rdb.Del(context.Background(), middleware.SessionRedisPrefix+sid).Err()
	}
	middleware.DestroySession(c)
	c.Locals("session_id", "")

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out", fiber.Map{"success": true}, nil)
}
