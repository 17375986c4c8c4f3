package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OperatorType distinguishes the two kinds of operator organization.
type OperatorType string

const (
	OperatorTypePM  OperatorType = "PM"
	OperatorTypeHOA OperatorType = "HOA"
)

// Period statuses. The transition flow only ever writes Active and Ended;
// Pending, Terminated and Renewed are reserved for contract workflows and are
// accepted on reads but never produced here.
const (
	PeriodActive     = "ACTIVE"
	PeriodPending    = "PENDING"
	PeriodEnded      = "ENDED"
	PeriodTerminated = "TERMINATED"
	PeriodRenewed    = "RENEWED"
)

// Operator is the tagged identity of the organization responsible for a building:
// a management company (PM) or an HOA. Exactly one org id, matching Type.
type Operator struct {
	Type  OperatorType
	OrgID uuid.UUID
}

// PM returns a management-company operator identity.
func PM(companyID uuid.UUID) Operator {
	return Operator{Type: OperatorTypePM, OrgID: companyID}
}

// HOA returns an HOA operator identity.
func HOA(hoaID uuid.UUID) Operator {
	return Operator{Type: OperatorTypeHOA, OrgID: hoaID}
}

// Valid reports whether the operator has a known type and a non-nil org id.
func (o Operator) Valid() bool {
	return (o.Type == OperatorTypePM || o.Type == OperatorTypeHOA) && o.OrgID != uuid.Nil
}

var errPeriodOperatorRef = errors.New("operator period must reference exactly one operator organization matching its type")

// OperatorPeriod is one entry in a building's operator ledger: a time-bounded,
// non-overlapping assignment of one operator to one building. Rows are append-only;
// the only mutation ever applied is closing (status ENDED + end_date) when a later
// period supersedes this one. Exactly one of ManagementCompanyID/HoaOrganizationID is
// set, matching OperatorType; EndDate is null while the period is ACTIVE and equals
// the successor's StartDate once closed.
type OperatorPeriod struct {
	PeriodID            uuid.UUID  `gorm:"column:period_id;type:uuid;primaryKey" json:"period_id"`
	BuildingID          uuid.UUID  `gorm:"column:building_id;type:uuid;not null;index" json:"building_id"`
	OperatorType        OperatorType `gorm:"column:operator_type;type:varchar(10);not null" json:"operator_type"`
	ManagementCompanyID *uuid.UUID `gorm:"column:management_company_id;type:uuid" json:"management_company_id"`
	HoaOrganizationID   *uuid.UUID `gorm:"column:hoa_organization_id;type:uuid" json:"hoa_organization_id"`
	StartDate           time.Time  `gorm:"column:start_date;not null" json:"start_date"`
	EndDate             *time.Time `gorm:"column:end_date" json:"end_date"`
	Status              string     `gorm:"column:status;type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	HandoffNotes        *string    `gorm:"column:handoff_notes" json:"handoff_notes"`
	CreatedAt           time.Time  `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt           time.Time  `gorm:"column:updatedAt" json:"updatedAt"`
}

func (OperatorPeriod) TableName() string {
	return "OperatorPeriods"
}

func (p *OperatorPeriod) BeforeCreate(tx *gorm.DB) error {
	if p.PeriodID == uuid.Nil {
		p.PeriodID = uuid.New()
	}
	return nil
}

// BeforeSave re-checks the exactly-one-operator-reference invariant on every write so
// a period can never be persisted with both or neither org pointer set.
func (p *OperatorPeriod) BeforeSave(tx *gorm.DB) error {
	if !p.Operator().Valid() {
		return errPeriodOperatorRef
	}
	return nil
}

// Operator returns the period's operator identity as a tagged value. A period whose
// columns violate the invariant yields an invalid Operator.
func (p *OperatorPeriod) Operator() Operator {
	switch p.OperatorType {
	case OperatorTypePM:
		if p.ManagementCompanyID != nil && p.HoaOrganizationID == nil {
			return Operator{Type: OperatorTypePM, OrgID: *p.ManagementCompanyID}
		}
	case OperatorTypeHOA:
		if p.HoaOrganizationID != nil && p.ManagementCompanyID == nil {
			return Operator{Type: OperatorTypeHOA, OrgID: *p.HoaOrganizationID}
		}
	}
	return Operator{}
}

// SetOperator projects a tagged operator identity onto the period's columns,
// clearing whichever org pointer does not apply.
func (p *OperatorPeriod) SetOperator(op Operator) {
	p.OperatorType = op.Type
	switch op.Type {
	case OperatorTypePM:
		id := op.OrgID
		p.ManagementCompanyID = &id
		p.HoaOrganizationID = nil
	case OperatorTypeHOA:
		id := op.OrgID
		p.HoaOrganizationID = &id
		p.ManagementCompanyID = nil
	}
}
