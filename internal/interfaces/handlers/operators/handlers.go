package operators

import (
	"encoding/json"

	"keystone-backend/internal/application/transitions"
	"keystone-backend/internal/domain"
	"keystone-backend/internal/middleware"
	"keystone-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles operator-transition handlers with dependencies.
type Handlers struct {
	Service *transitions.Service
}

type transitionBody struct {
	BuildingID           string  `json:"building_id"`
	FromOperatorPeriodID *string `json:"from_operator_period_id"`
	ToOperatorType       string  `json:"to_operator_type"`
	ToOperatorID         string  `json:"to_operator_id"`
	EffectiveDate        string  `json:"effective_date"`
	HandoffNotes         *string `json:"handoff_notes"`
}

// Transition POST /api/v1/operators/transition
func (h *Handlers) Transition(c *fiber.Ctx) error {
	var body transitionBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Malformed transition payload", 400, nil)
	}

	buildingID, err := uuid.Parse(body.BuildingID)
	if err != nil {
		return response.Error(c, "building_id must be a valid UUID", 400, nil)
	}
	toOperatorID, err := uuid.Parse(body.ToOperatorID)
	if err != nil {
		return response.Error(c, "to_operator_id must be a valid UUID", 400, nil)
	}
	var fromID *uuid.UUID
	if body.FromOperatorPeriodID != nil && *body.FromOperatorPeriodID != "" {
		parsed, err := uuid.Parse(*body.FromOperatorPeriodID)
		if err != nil {
			return response.Error(c, "from_operator_period_id must be a valid UUID", 400, nil)
		}
		fromID = &parsed
	}

	in := transitions.Input{
		BuildingID:           buildingID,
		FromOperatorPeriodID: fromID,
		ToOperatorType:       domain.OperatorType(body.ToOperatorType),
		ToOperatorID:         toOperatorID,
		EffectiveDate:        body.EffectiveDate,
		HandoffNotes:         body.HandoffNotes,
	}
	if p, ok := middleware.GetPrincipal(c); ok {
		actorID := p.UserID
		in.ActorUserID = &actorID
	}

	result, err := h.Service.Transition(c.Context(), in)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Operator transition committed", result, nil)
}
