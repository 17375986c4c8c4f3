package attribution

import (
	"keystone-backend/internal/application/operatorperiods"
	"keystone-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Binder stamps new issues and work orders with the operator period responsible for
// them. The stamp is written once at creation and never updated, which is what keeps
// "which operator handled this" answerable after later transitions. Both resolvers
// take the caller's transaction handle so the stamp is read in the same transaction
// that persists the record.
type Binder struct{}

// ForIssue resolves the building's current ACTIVE period id, or nil when the
// building has no operator (unassigned bucket). Never fails the enclosing creation
// over a missing period.
func (Binder) ForIssue(tx *gorm.DB, buildingID uuid.UUID) (*uuid.UUID, error) {
	active, err := operatorperiods.ActivePeriodTx(tx, buildingID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, nil
	}
	id := active.PeriodID
	return &id, nil
}

// ForWorkOrder resolves attribution for a new work order. A work order created from
// an issue inherits that issue's period, even when the building has since
// transitioned: follow-up work belongs to the operator that owned the originating
// issue. Standalone work orders bind to the building's current ACTIVE period.
func (b Binder) ForWorkOrder(tx *gorm.DB, buildingID uuid.UUID, issue *domain.Issue) (*uuid.UUID, error) {
	if issue != nil && issue.OperatorPeriodID != nil {
		id := *issue.OperatorPeriodID
		return &id, nil
	}
	return b.ForIssue(tx, buildingID)
}
