package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Issue statuses and priorities.
const (
	IssueOpen       = "open"
	IssueInProgress = "in_progress"
	IssueResolved   = "resolved"
	IssueClosed     = "closed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Issue is a maintenance problem reported against a building. OperatorPeriodID is
// stamped once at creation with the building's then-ACTIVE period and never changed,
// so attribution survives later operator transitions. Null means the building had no
// active operator when the issue was filed (unassigned bucket).
type Issue struct {
	IssueID          uuid.UUID      `gorm:"column:issue_id;type:uuid;primaryKey" json:"issue_id"`
	BuildingID       uuid.UUID      `gorm:"column:building_id;type:uuid;not null;index" json:"building_id"`
	UnitID           *uuid.UUID     `gorm:"column:unit_id;type:uuid" json:"unit_id"`
	ReporterUserID   *uuid.UUID     `gorm:"column:reporter_user_id;type:uuid" json:"reporter_user_id"`
	OperatorPeriodID *uuid.UUID     `gorm:"column:operator_period_id;type:uuid;index" json:"operator_period_id"`
	Title            string         `gorm:"column:title;not null" json:"title"`
	Description      *string        `gorm:"column:description" json:"description"`
	Status           string         `gorm:"column:status;type:varchar(20);not null;default:'open'" json:"status"`
	Priority         string         `gorm:"column:priority;type:varchar(10);not null;default:'medium'" json:"priority"`
	CreatedAt        time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt        time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Issue) TableName() string {
	return "Issues"
}

func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	if i.IssueID == uuid.Nil {
		i.IssueID = uuid.New()
	}
	return nil
}
