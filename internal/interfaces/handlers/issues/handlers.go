package issues

import (
	"encoding/json"

	issuesvc "keystone-backend/internal/application/issues"
	"keystone-backend/internal/middleware"
	"keystone-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles issue handlers with dependencies.
type Handlers struct {
	Service *issuesvc.Service
}

type createIssueBody struct {
	BuildingID  string  `json:"building_id"`
	UnitID      *string `json:"unit_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Priority    string  `json:"priority"`
}

// Create POST /api/v1/issues
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body createIssueBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Malformed issue payload", 400, nil)
	}
	buildingID, err := uuid.Parse(body.BuildingID)
	if err != nil {
		return response.Error(c, "building_id must be a valid UUID", 400, nil)
	}
	in := issuesvc.CreateIssueInput{
		BuildingID:  buildingID,
		Title:       body.Title,
		Description: body.Description,
		Priority:    body.Priority,
	}
	if body.UnitID != nil && *body.UnitID != "" {
		unitID, err := uuid.Parse(*body.UnitID)
		if err != nil {
			return response.Error(c, "unit_id must be a valid UUID", 400, nil)
		}
		in.UnitID = &unitID
	}
	if p, ok := middleware.GetPrincipal(c); ok {
		reporterID := p.UserID
		in.ReporterID = &reporterID
	}

	issue, err := h.Service.CreateIssue(c.Context(), in)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Issue created successfully", issue, nil)
}

// Get GET /api/v1/issues/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	issueID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid issue id", 400, nil)
	}
	issue, err := h.Service.GetIssue(c.Context(), issueID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Issue fetched successfully", issue, nil)
}

// ListByBuilding GET /api/v1/issues/building/:building_id?status=...
func (h *Handlers) ListByBuilding(c *fiber.Ctx) error {
	buildingID, err := uuid.Parse(c.Params("building_id"))
	if err != nil {
		return response.Error(c, "Invalid building id", 400, nil)
	}
	list, err := h.Service.ListByBuilding(c.Context(), buildingID, c.Query("status"))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Issues fetched successfully", list, nil)
}

// UpdateStatus PATCH /api/v1/issues/:id/status
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	issueID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid issue id", 400, nil)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Malformed status payload", 400, nil)
	}
	issue, err := h.Service.UpdateStatus(c.Context(), issueID, body.Status)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Issue updated successfully", issue, nil)
}
