package orgs

import (
	"encoding/json"

	orgsvc "keystone-backend/internal/application/orgs"
	"keystone-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles operator-directory handlers with dependencies.
type Handlers struct {
	Service *orgsvc.Service
}

type createOrgBody struct {
	Name         string  `json:"name"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
}

// CreateManagementCompany POST /api/v1/orgs/management-companies
func (h *Handlers) CreateManagementCompany(c *fiber.Ctx) error {
	var body createOrgBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Name is required", 400, nil)
	}
	company, err := h.Service.CreateManagementCompany(c.Context(), orgsvc.CreateOrgInput{
		Name:         body.Name,
		ContactEmail: body.ContactEmail,
		ContactPhone: body.ContactPhone,
	})
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Management company created successfully", company, nil)
}

// CreateHoaOrganization POST /api/v1/orgs/hoa-organizations
func (h *Handlers) CreateHoaOrganization(c *fiber.Ctx) error {
	var body createOrgBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Name is required", 400, nil)
	}
	hoa, err := h.Service.CreateHoaOrganization(c.Context(), orgsvc.CreateOrgInput{
		Name:         body.Name,
		ContactEmail: body.ContactEmail,
		ContactPhone: body.ContactPhone,
	})
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "HOA organization created successfully", hoa, nil)
}

// ListManagementCompanies GET /api/v1/orgs/management-companies
func (h *Handlers) ListManagementCompanies(c *fiber.Ctx) error {
	list, err := h.Service.ListManagementCompanies(c.Context())
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Management companies fetched successfully", list, nil)
}

// ListHoaOrganizations GET /api/v1/orgs/hoa-organizations
func (h *Handlers) ListHoaOrganizations(c *fiber.Ctx) error {
	list, err := h.Service.ListHoaOrganizations(c.Context())
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "HOA organizations fetched successfully", list, nil)
}
