package workorders

import (
	"encoding/json"

	wosvc "keystone-backend/internal/application/workorders"
	"keystone-backend/internal/pkg/response"
	"keystone-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles work-order handlers with dependencies.
type Handlers struct {
	Service *wosvc.Service
}

type createWorkOrderBody struct {
	BuildingID    string   `json:"building_id"`
	IssueID       *string  `json:"issue_id"`
	Title         string   `json:"title"`
	Description   *string  `json:"description"`
	AssigneeName  *string  `json:"assignee_name"`
	ScheduledFor  *string  `json:"scheduled_for"`
	EstimatedCost *float64 `json:"estimated_cost"`
}

// Create POST /api/v1/work-orders
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body createWorkOrderBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Malformed work order payload", 400, nil)
	}
	buildingID, err := uuid.Parse(body.BuildingID)
	if err != nil {
		return response.Error(c, "building_id must be a valid UUID", 400, nil)
	}
	in := wosvc.CreateWorkOrderInput{
		BuildingID:    buildingID,
		Title:         body.Title,
		Description:   body.Description,
		AssigneeName:  body.AssigneeName,
		EstimatedCost: body.EstimatedCost,
	}
	if body.IssueID != nil && *body.IssueID != "" {
		issueID, err := uuid.Parse(*body.IssueID)
		if err != nil {
			return response.Error(c, "issue_id must be a valid UUID", 400, nil)
		}
		in.IssueID = &issueID
	}
	if body.ScheduledFor != nil && *body.ScheduledFor != "" {
		t, ok := validation.ParseInstant(*body.ScheduledFor)
		if !ok {
			return response.Error(c, "scheduled_for must be a valid ISO 8601 instant", 400, nil)
		}
		in.ScheduledFor = &t
	}

	order, err := h.Service.CreateWorkOrder(c.Context(), in)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Work order created successfully", order, nil)
}

// Get GET /api/v1/work-orders/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	workOrderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid work order id", 400, nil)
	}
	order, err := h.Service.GetWorkOrder(c.Context(), workOrderID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Work order fetched successfully", order, nil)
}

// ListByBuilding GET /api/v1/work-orders/building/:building_id?status=...
func (h *Handlers) ListByBuilding(c *fiber.Ctx) error {
	buildingID, err := uuid.Parse(c.Params("building_id"))
	if err != nil {
		return response.Error(c, "Invalid building id", 400, nil)
	}
	list, err := h.Service.ListByBuilding(c.Context(), buildingID, c.Query("status"))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Work orders fetched successfully", list, nil)
}

// UpdateStatus PATCH /api/v1/work-orders/:id/status
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	workOrderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid work order id", 400, nil)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Malformed status payload", 400, nil)
	}
	order, err := h.Service.UpdateStatus(c.Context(), workOrderID, body.Status)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Work order updated successfully", order, nil)
}
