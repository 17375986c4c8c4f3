package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Building is a managed property. CurrentOperatorPeriodID is a denormalized pointer to
// the one ACTIVE OperatorPeriod for the building; the period row is the source of truth
// and the pointer is only ever updated inside the same transaction that flips period
// status. ManagementCompanyID is the legacy direct-operator pointer kept for reads that
// predate the period ledger: set when the active operator is a PM, cleared for HOA.
type Building struct {
	BuildingID              uuid.UUID      `gorm:"column:building_id;type:uuid;primaryKey" json:"building_id"`
	Name                    string         `gorm:"column:name;not null" json:"name"`
	AddressLine1            string         `gorm:"column:address_line1;not null" json:"address_line1"`
	AddressLine2            *string        `gorm:"column:address_line2" json:"address_line2"`
	City                    string         `gorm:"column:city;not null" json:"city"`
	State                   string         `gorm:"column:state;not null" json:"state"`
	PostalCode              string         `gorm:"column:postal_code;not null" json:"postal_code"`
	CurrentOperatorPeriodID *uuid.UUID     `gorm:"column:current_operator_period_id;type:uuid" json:"current_operator_period_id"`
	ManagementCompanyID     *uuid.UUID     `gorm:"column:management_company_id;type:uuid" json:"management_company_id"`
	CreatedAt               time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt               time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
	DeletedAt               gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Building) TableName() string {
	return "Buildings"
}

func (b *Building) BeforeCreate(tx *gorm.DB) error {
	if b.BuildingID == uuid.Nil {
		b.BuildingID = uuid.New()
	}
	return nil
}

// Unit is a rentable/ownable unit within a building.
type Unit struct {
	UnitID     uuid.UUID `gorm:"column:unit_id;type:uuid;primaryKey" json:"unit_id"`
	BuildingID uuid.UUID `gorm:"column:building_id;type:uuid;not null;index" json:"building_id"`
	UnitNumber string    `gorm:"column:unit_number;not null" json:"unit_number"`
	Floor      *int      `gorm:"column:floor" json:"floor"`
	Occupied   bool      `gorm:"column:occupied;not null;default:false" json:"occupied"`
	CreatedAt  time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Unit) TableName() string {
	return "Units"
}

func (u *Unit) BeforeCreate(tx *gorm.DB) error {
	if u.UnitID == uuid.Nil {
		u.UnitID = uuid.New()
	}
	return nil
}
