package buildings

import (
	"encoding/json"
	"time"

	bsvc "keystone-backend/internal/application/buildings"
	"keystone-backend/internal/application/continuity"
	transitioneventsvc "keystone-backend/internal/application/transitionevents"
	"keystone-backend/internal/domain"
	"keystone-backend/internal/middleware"
	"keystone-backend/internal/pkg/response"
	"keystone-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles building handlers with dependencies.
type Handlers struct {
	Service    *bsvc.Service
	Continuity *continuity.Service
	EventLog   *transitioneventsvc.Service
}

type onboardBody struct {
	Name         string  `json:"name"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postal_code"`

	OperatorType  *string `json:"operator_type"`
	OperatorID    *string `json:"operator_id"`
	EffectiveDate string  `json:"effective_date"`
}

// Onboard POST /api/v1/buildings/onboard
func (h *Handlers) Onboard(c *fiber.Ctx) error {
	var body onboardBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Name and address fields are required", 400, nil)
	}

	in := bsvc.OnboardInput{
		Name:          body.Name,
		AddressLine1:  body.AddressLine1,
		AddressLine2:  body.AddressLine2,
		City:          body.City,
		State:         body.State,
		PostalCode:    body.PostalCode,
		EffectiveDate: body.EffectiveDate,
	}
	if body.OperatorType != nil {
		t := domain.OperatorType(*body.OperatorType)
		in.OperatorType = &t
	}
	if body.OperatorID != nil {
		id, err := uuid.Parse(*body.OperatorID)
		if err != nil {
			return response.Error(c, "operator_id must be a valid UUID", 400, nil)
		}
		in.OperatorID = &id
	}
	if p, ok := middleware.GetPrincipal(c); ok {
		actorID := p.UserID
		in.ActorUserID = &actorID
	}

	building, period, err := h.Service.Onboard(c.Context(), in)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Building onboarded successfully", fiber.Map{
		"building":       building,
		"initial_period": period,
	}, nil)
}

// Get GET /api/v1/buildings/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	buildingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid building id", 400, nil)
	}
	building, err := h.Service.GetBuilding(c.Context(), buildingID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Building fetched successfully", building, nil)
}

// Portfolio GET /api/v1/buildings/portfolio
func (h *Handlers) Portfolio(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	rows, err := h.Continuity.Portfolio(c.Context(), continuity.Principal{
		UserID:              p.UserID,
		Role:                p.Role,
		ManagementCompanyID: p.ManagementCompanyID,
		HoaOrganizationID:   p.HoaOrganizationID,
	})
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Portfolio fetched successfully", fiber.Map{"buildings": rows}, nil)
}

// Timeline GET /api/v1/buildings/:id/timeline?from=...&to=...
func (h *Handlers) Timeline(c *fiber.Ctx) error {
	buildingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid building id", 400, nil)
	}
	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, ok := validation.ParseInstant(s)
		if !ok {
			return response.Error(c, "from must be a valid ISO 8601 instant", 400, nil)
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, ok := validation.ParseInstant(s)
		if !ok {
			return response.Error(c, "to must be a valid ISO 8601 instant", 400, nil)
		}
		to = &t
	}
	result, err := h.Continuity.Timeline(c.Context(), buildingID, from, to)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Timeline fetched successfully", result, nil)
}

// Events GET /api/v1/buildings/:id/events
func (h *Handlers) Events(c *fiber.Ctx) error {
	buildingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid building id", 400, nil)
	}
	events, err := h.EventLog.ListForBuilding(c.Context(), buildingID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Transition events fetched successfully", events, nil)
}

// Units GET /api/v1/buildings/:id/units
func (h *Handlers) Units(c *fiber.Ctx) error {
	buildingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid building id", 400, nil)
	}
	units, err := h.Service.ListUnits(c.Context(), buildingID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Units fetched successfully", units, nil)
}

// AddUnit POST /api/v1/buildings/:id/units
func (h *Handlers) AddUnit(c *fiber.Ctx) error {
	buildingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid building id", 400, nil)
	}
	var body struct {
		UnitNumber string `json:"unit_number"`
		Floor      *int   `json:"floor"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Unit number is required", 400, nil)
	}
	unit, err := h.Service.AddUnit(c.Context(), buildingID, body.UnitNumber, body.Floor)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Unit created successfully", unit, nil)
}
