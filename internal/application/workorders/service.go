package workorders

import (
	"context"
	"time"

	"keystone-backend/internal/application/attribution"
	"keystone-backend/internal/domain"
	"keystone-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service encapsulates work-order CRUD. Creation runs transactionally so the
// attribution stamp commits with the row.
type Service struct {
	DB     *gorm.DB
	Binder attribution.Binder
}

// CreateWorkOrderInput mirrors the work-order creation payload. IssueID links the
// order to an originating issue; when set, attribution is inherited from the issue.
type CreateWorkOrderInput struct {
	BuildingID    uuid.UUID
	IssueID       *uuid.UUID
	Title         string
	Description   *string
	AssigneeName  *string
	ScheduledFor  *time.Time
	EstimatedCost *float64
}

var validStatuses = map[string]bool{
	domain.WorkOrderPending:    true,
	domain.WorkOrderScheduled:  true,
	domain.WorkOrderInProgress: true,
	domain.WorkOrderCompleted:  true,
	domain.WorkOrderCancelled:  true,
}

// CreateWorkOrder validates and persists a new work order. Orders created from an
// issue keep that issue's operator-period attribution even when the building has
// since transitioned to a different operator.
func (s *Service) CreateWorkOrder(ctx context.Context, in CreateWorkOrderInput) (*domain.WorkOrder, error) {
	if in.Title == "" {
		return nil, apperr.New(apperr.Validation, "Title is required")
	}

	var order *domain.WorkOrder
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var building domain.Building
		if err := tx.Where("building_id = ?", in.BuildingID).First(&building).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.New(apperr.NotFound, "Building not found")
			}
			return err
		}

		var issue *domain.Issue
		if in.IssueID != nil {
			var found domain.Issue
			if err := tx.Where("issue_id = ? AND building_id = ?", *in.IssueID, in.BuildingID).First(&found).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return apperr.New(apperr.NotFound, "Issue not found in building")
				}
				return err
			}
			issue = &found
		}

		periodID, err := s.Binder.ForWorkOrder(tx, in.BuildingID, issue)
		if err != nil {
			return err
		}

		status := domain.WorkOrderPending
		if in.ScheduledFor != nil {
			status = domain.WorkOrderScheduled
		}
		order = &domain.WorkOrder{
			BuildingID:       in.BuildingID,
			IssueID:          in.IssueID,
			OperatorPeriodID: periodID,
			Title:            in.Title,
			Description:      in.Description,
			AssigneeName:     in.AssigneeName,
			Status:           status,
			ScheduledFor:     in.ScheduledFor,
			EstimatedCost:    in.EstimatedCost,
		}
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetWorkOrder returns one work order by id.
func (s *Service) GetWorkOrder(ctx context.Context, workOrderID uuid.UUID) (*domain.WorkOrder, error) {
	var order domain.WorkOrder
	if err := s.DB.WithContext(ctx).Where("work_order_id = ?", workOrderID).First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Work order not found")
		}
		return nil, err
	}
	return &order, nil
}

// ListByBuilding returns the building's work orders newest first, optionally
// filtered by status.
func (s *Service) ListByBuilding(ctx context.Context, buildingID uuid.UUID, status string) ([]domain.WorkOrder, error) {
	if status != "" && !validStatuses[status] {
		return nil, apperr.New(apperr.Validation, "Invalid status filter")
	}
	q := s.DB.WithContext(ctx).Where("building_id = ?", buildingID).Order(`"createdAt" DESC`)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	list := []domain.WorkOrder{}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatus moves a work order to a new status.
func (s *Service) UpdateStatus(ctx context.Context, workOrderID uuid.UUID, status string) (*domain.WorkOrder, error) {
	if !validStatuses[status] {
		return nil, apperr.New(apperr.Validation, "Invalid status")
	}
	result := s.DB.WithContext(ctx).Model(&domain.WorkOrder{}).
		Where("work_order_id = ?", workOrderID).
		Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperr.New(apperr.NotFound, "Work order not found")
	}
	return s.GetWorkOrder(ctx, workOrderID)
}
