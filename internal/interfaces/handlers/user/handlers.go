package user

import (
	"encoding/json"

	usersvc "keystone-backend/internal/application/user"
	"keystone-backend/internal/domain"
	"keystone-backend/internal/middleware"
	"keystone-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles user handlers with dependencies.
type Handlers struct {
	Service *usersvc.Service
}

type createUserBody struct {
	Fullname            string  `json:"fullname"`
	Email               string  `json:"email"`
	Password            string  `json:"password"`
	Role                string  `json:"role"`
	Phone               *string `json:"phone"`
	ManagementCompanyID *string `json:"management_company_id"`
	HoaOrganizationID   *string `json:"hoa_organization_id"`
}

// Create POST /api/v1/users
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body createUserBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Malformed user payload", 400, nil)
	}
	in := usersvc.CreateUserInput{
		Fullname: body.Fullname,
		Email:    body.Email,
		Password: body.Password,
		Role:     body.Role,
		Phone:    body.Phone,
	}
	if body.ManagementCompanyID != nil && *body.ManagementCompanyID != "" {
		id, err := uuid.Parse(*body.ManagementCompanyID)
		if err != nil {
			return response.Error(c, "management_company_id must be a valid UUID", 400, nil)
		}
		in.ManagementCompanyID = &id
	}
	if body.HoaOrganizationID != nil && *body.HoaOrganizationID != "" {
		id, err := uuid.Parse(*body.HoaOrganizationID)
		if err != nil {
			return response.Error(c, "hoa_organization_id must be a valid UUID", 400, nil)
		}
		in.HoaOrganizationID = &id
	}

	u, err := h.Service.CreateUser(c.Context(), in)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "User created successfully", u, nil)
}

// UpdateRole PATCH /api/v1/users/:id/role
func (h *Handlers) UpdateRole(c *fiber.Ctx) error {
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid user id", 400, nil)
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Malformed role payload", 400, nil)
	}
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	u, err := h.Service.UpdateRole(c.Context(), p.Role, targetID, body.Role)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Role updated successfully", u, nil)
}

// ListOrgUsers GET /api/v1/users/org
func (h *Handlers) ListOrgUsers(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var op domain.Operator
	switch {
	case p.ManagementCompanyID != nil:
		op = domain.PM(*p.ManagementCompanyID)
	case p.HoaOrganizationID != nil:
		op = domain.HOA(*p.HoaOrganizationID)
	default:
		return response.Error(c, "User is not associated with any operator organization", 403, nil)
	}
	users, err := h.Service.ListByOperatorOrg(c.Context(), op)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Users fetched successfully", users, nil)
}
