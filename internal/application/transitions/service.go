package transitions

import (
	"context"
	"encoding/json"
	"time"

	"keystone-backend/internal/application/operatorperiods"
	"keystone-backend/internal/domain"
	"keystone-backend/internal/pkg/apperr"
	"keystone-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service executes operator handoffs. A transition closes the building's current
// ACTIVE period (if any), opens the successor, and repoints the building, all inside
// one transaction, so the ledger is contiguous by construction: the closed period's
// end_date equals the new period's start_date and exactly one ACTIVE period remains.
type Service struct {
	DB *gorm.DB
}

// Input carries one transition request. FromOperatorPeriodID is the compare-and-swap
// guard: when the building has an ACTIVE period it must match that period's id, and
// its absence is only honored for initial assignment (no prior period).
// EffectiveDate is the raw ISO 8601 string from the caller; the engine owns parsing
// so a malformed date surfaces as VALIDATION_ERROR like every other precondition.
type Input struct {
	BuildingID           uuid.UUID
	FromOperatorPeriodID *uuid.UUID
	ToOperatorType       domain.OperatorType
	ToOperatorID         uuid.UUID
	EffectiveDate        string
	HandoffNotes         *string
	ActorUserID          *uuid.UUID
}

// Continuity is the building-wide record count returned with each transition: a
// sanity signal that historical data is still reachable after the handoff, not a
// correctness gate.
type Continuity struct {
	IssuesInBuildingHistory     int64 `json:"issues_in_building_history"`
	WorkOrdersInBuildingHistory int64 `json:"work_orders_in_building_history"`
}

// Result is the committed outcome. PreviousPeriod is nil for initial assignment.
type Result struct {
	Building       *domain.Building       `json:"building"`
	PreviousPeriod *domain.OperatorPeriod `json:"previous_period"`
	NextPeriod     *domain.OperatorPeriod `json:"next_period"`
	Continuity     Continuity             `json:"continuity"`
}

// Transition validates and executes one operator handoff. All precondition failures
// surface before any write; the write phase is a single transaction that either
// commits the full close/open/repoint/audit set or leaves no trace.
func (s *Service) Transition(ctx context.Context, in Input) (*Result, error) {
	effective, ok := validation.ParseInstant(in.EffectiveDate)
	if !ok {
		return nil, apperr.New(apperr.Validation, "Effective date must be a valid ISO 8601 instant")
	}
	if in.ToOperatorType != domain.OperatorTypePM && in.ToOperatorType != domain.OperatorTypeHOA {
		return nil, apperr.New(apperr.Validation, "Operator type must be PM or HOA")
	}
	if in.ToOperatorID == uuid.Nil {
		return nil, apperr.New(apperr.Validation, "Target operator id is required")
	}

	db := s.DB.WithContext(ctx)

	var building domain.Building
	if err := db.Where("building_id = ?", in.BuildingID).First(&building).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Building not found")
		}
		return nil, err
	}

	operatorName, err := lookupOperator(db, in.ToOperatorType, in.ToOperatorID)
	if err != nil {
		return nil, err
	}

	// Fail-fast precondition pass against committed state. The same checks run again
	// inside the transaction; this pass exists so racing callers and bad input are
	// rejected before any write is attempted.
	current, err := operatorperiods.ActivePeriodTx(db, in.BuildingID)
	if err != nil {
		return nil, err
	}
	if err := checkPreconditions(current, in.FromOperatorPeriodID, effective); err != nil {
		return nil, err
	}

	var result Result
	err = db.Transaction(func(tx *gorm.DB) error {
		// Re-read inside the transaction: a concurrent transition may have committed
		// between the precondition pass and here, and the CAS must see it.
		prev, err := operatorperiods.ActivePeriodTx(tx, in.BuildingID)
		if err != nil {
			return err
		}
		if err := checkPreconditions(prev, in.FromOperatorPeriodID, effective); err != nil {
			return err
		}

		if prev != nil {
			if err := operatorperiods.ClosePeriodTx(tx, prev, effective); err != nil {
				return err
			}
		}

		next := &domain.OperatorPeriod{
			BuildingID:   in.BuildingID,
			StartDate:    effective,
			HandoffNotes: in.HandoffNotes,
		}
		next.SetOperator(domain.Operator{Type: in.ToOperatorType, OrgID: in.ToOperatorID})
		if err := operatorperiods.OpenPeriodTx(tx, next); err != nil {
			return err
		}

		if err := operatorperiods.RepointBuildingTx(tx, &building, next); err != nil {
			return err
		}

		if err := writeAuditEvent(tx, &building, prev, next, operatorName, in.ActorUserID); err != nil {
			return err
		}

		var issueCount, workOrderCount int64
		if err := tx.Model(&domain.Issue{}).Where("building_id = ?", in.BuildingID).Count(&issueCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.WorkOrder{}).Where("building_id = ?", in.BuildingID).Count(&workOrderCount).Error; err != nil {
			return err
		}

		result = Result{
			Building:       &building,
			PreviousPeriod: prev,
			NextPeriod:     next,
			Continuity: Continuity{
				IssuesInBuildingHistory:     issueCount,
				WorkOrdersInBuildingHistory: workOrderCount,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := log.Info().
		Str("building_id", in.BuildingID.String()).
		Str("next_period_id", result.NextPeriod.PeriodID.String()).
		Str("operator_type", string(in.ToOperatorType))
	if result.PreviousPeriod != nil {
		ev = ev.Str("previous_period_id", result.PreviousPeriod.PeriodID.String())
	}
	ev.Msg("Operator transition committed")

	return &result, nil
}

// checkPreconditions enforces the CAS guard and the monotonic-start rule against the
// given ACTIVE period (nil when the building has none).
func checkPreconditions(current *domain.OperatorPeriod, fromID *uuid.UUID, effective time.Time) error {
	if current == nil {
		if fromID != nil {
			return apperr.New(apperr.Conflict, "Building has no active operator period; the referenced period is stale").
				WithDetails(map[string]interface{}{"from_operator_period_id": fromID.String()})
		}
		return nil
	}
	if fromID == nil {
		return apperr.New(apperr.Conflict, "Building already has an active operator period; pass from_operator_period_id to confirm the handoff").
			WithDetails(map[string]interface{}{"current_period_id": current.PeriodID.String()})
	}
	if *fromID != current.PeriodID {
		return apperr.New(apperr.Conflict, "Another transition was committed first; re-fetch the timeline and retry").
			WithDetails(map[string]interface{}{"current_period_id": current.PeriodID.String()})
	}
	if !effective.After(current.StartDate) {
		return apperr.New(apperr.Validation, "Effective date must be after current period start").
			WithDetails(map[string]interface{}{"current_period_start": current.StartDate})
	}
	return nil
}

// lookupOperator validates the target org exists in the directory matching the
// operator type and returns its display name.
func lookupOperator(db *gorm.DB, opType domain.OperatorType, orgID uuid.UUID) (string, error) {
	switch opType {
	case domain.OperatorTypePM:
		var company domain.ManagementCompany
		if err := db.Where("company_id = ?", orgID).First(&company).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return "", apperr.New(apperr.NotFound, "Target operator not found")
			}
			return "", err
		}
		return company.Name, nil
	case domain.OperatorTypeHOA:
		var hoa domain.HoaOrganization
		if err := db.Where("hoa_id = ?", orgID).First(&hoa).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return "", apperr.New(apperr.NotFound, "Target operator not found")
			}
			return "", err
		}
		return hoa.Name, nil
	}
	return "", apperr.New(apperr.Validation, "Operator type must be PM or HOA")
}

func writeAuditEvent(tx *gorm.DB, building *domain.Building, prev, next *domain.OperatorPeriod, operatorName string, actorID *uuid.UUID) error {
	eventType := domain.TransitionAssigned
	data := map[string]interface{}{
		"to_operator_type": next.OperatorType,
		"to_operator_name": operatorName,
		"effective_date":   next.StartDate,
		"handoff_notes":    next.HandoffNotes,
	}
	if prev != nil {
		eventType = domain.TransitionTransitioned
		data["from_period_id"] = prev.PeriodID
		data["from_operator_type"] = prev.OperatorType
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return tx.Create(&domain.TransitionEvent{
		BuildingID:       building.BuildingID,
		OperatorPeriodID: next.PeriodID,
		EventType:        eventType,
		ActorUserID:      actorID,
		EventData:        datatypes.JSON(b),
	}).Error
}
