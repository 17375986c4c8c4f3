package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Work order statuses.
const (
	WorkOrderPending    = "pending"
	WorkOrderScheduled  = "scheduled"
	WorkOrderInProgress = "in_progress"
	WorkOrderCompleted  = "completed"
	WorkOrderCancelled  = "cancelled"
)

// WorkOrder is scheduled maintenance work, optionally created from an Issue.
// OperatorPeriodID follows the same write-once attribution rule as Issue; a work
// order created from an issue inherits the issue's period rather than the building's
// current one, so follow-up work stays attributed to the operator that owned the
// originating issue.
type WorkOrder struct {
	WorkOrderID      uuid.UUID      `gorm:"column:work_order_id;type:uuid;primaryKey" json:"work_order_id"`
	BuildingID       uuid.UUID      `gorm:"column:building_id;type:uuid;not null;index" json:"building_id"`
	IssueID          *uuid.UUID     `gorm:"column:issue_id;type:uuid" json:"issue_id"`
	OperatorPeriodID *uuid.UUID     `gorm:"column:operator_period_id;type:uuid;index" json:"operator_period_id"`
	Title            string         `gorm:"column:title;not null" json:"title"`
	Description      *string        `gorm:"column:description" json:"description"`
	AssigneeName     *string        `gorm:"column:assignee_name" json:"assignee_name"`
	Status           string         `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	ScheduledFor     *time.Time     `gorm:"column:scheduled_for" json:"scheduled_for"`
	EstimatedCost    *float64       `gorm:"column:estimated_cost;type:decimal(18,2)" json:"estimated_cost"`
	CreatedAt        time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt        time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (WorkOrder) TableName() string {
	return "WorkOrders"
}

func (w *WorkOrder) BeforeCreate(tx *gorm.DB) error {
	if w.WorkOrderID == uuid.Nil {
		w.WorkOrderID = uuid.New()
	}
	return nil
}
