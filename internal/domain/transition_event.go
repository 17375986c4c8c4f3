package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Transition event types.
const (
	TransitionAssigned     = "ASSIGNED"     // first period, no predecessor
	TransitionTransitioned = "TRANSITIONED" // handoff closing a prior period
)

// TransitionEvent is the audit record written inside each committed operator
// transition. OperatorPeriodID references the period that became ACTIVE.
type TransitionEvent struct {
	EventID          uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	BuildingID       uuid.UUID      `gorm:"column:building_id;type:uuid;not null;index" json:"building_id"`
	OperatorPeriodID uuid.UUID      `gorm:"column:operator_period_id;type:uuid;not null" json:"operator_period_id"`
	EventType        string         `gorm:"column:event_type;type:varchar(20);not null" json:"event_type"`
	ActorUserID      *uuid.UUID     `gorm:"column:actor_user_id;type:uuid" json:"actor_user_id"`
	EventData        datatypes.JSON `gorm:"column:event_data;type:json" json:"event_data"`
	CreatedAt        time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (TransitionEvent) TableName() string {
	return "TransitionEvents"
}

func (e *TransitionEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
