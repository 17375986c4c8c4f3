package issues

import (
	"context"

	"keystone-backend/internal/application/attribution"
	"keystone-backend/internal/domain"
	"keystone-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service encapsulates issue CRUD. Creation runs in a transaction so the
// attribution stamp and the row insert commit together.
type Service struct {
	DB     *gorm.DB
	Binder attribution.Binder
}

// CreateIssueInput mirrors the issue creation payload.
type CreateIssueInput struct {
	BuildingID  uuid.UUID
	UnitID      *uuid.UUID
	Title       string
	Description *string
	Priority    string
	ReporterID  *uuid.UUID
}

var validPriorities = map[string]bool{
	domain.PriorityLow:    true,
	domain.PriorityMedium: true,
	domain.PriorityHigh:   true,
	domain.PriorityUrgent: true,
}

var validIssueStatuses = map[string]bool{
	domain.IssueOpen:       true,
	domain.IssueInProgress: true,
	domain.IssueResolved:   true,
	domain.IssueClosed:     true,
}

// CreateIssue validates and persists a new issue, stamped with the building's
// current operator period (nil stamp when the building has no operator).
func (s *Service) CreateIssue(ctx context.Context, in CreateIssueInput) (*domain.Issue, error) {
	if in.Title == "" {
		return nil, apperr.New(apperr.Validation, "Title is required")
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if !validPriorities[in.Priority] {
		return nil, apperr.New(apperr.Validation, "Invalid priority")
	}

	var issue *domain.Issue
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var building domain.Building
		if err := tx.Where("building_id = ?", in.BuildingID).First(&building).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.New(apperr.NotFound, "Building not found")
			}
			return err
		}
		if in.UnitID != nil {
			var unit domain.Unit
			if err := tx.Where("unit_id = ? AND building_id = ?", *in.UnitID, in.BuildingID).First(&unit).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return apperr.New(apperr.NotFound, "Unit not found in building")
				}
				return err
			}
		}

		periodID, err := s.Binder.ForIssue(tx, in.BuildingID)
		if err != nil {
			return err
		}

		issue = &domain.Issue{
			BuildingID:       in.BuildingID,
			UnitID:           in.UnitID,
			ReporterUserID:   in.ReporterID,
			OperatorPeriodID: periodID,
			Title:            in.Title,
			Description:      in.Description,
			Status:           domain.IssueOpen,
			Priority:         in.Priority,
		}
		return tx.Create(issue).Error
	})
	if err != nil {
		return nil, err
	}
	return issue, nil
}

// GetIssue returns one issue by id.
func (s *Service) GetIssue(ctx context.Context, issueID uuid.UUID) (*domain.Issue, error) {
	var issue domain.Issue
	if err := s.DB.WithContext(ctx).Where("issue_id = ?", issueID).First(&issue).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Issue not found")
		}
		return nil, err
	}
	return &issue, nil
}

// ListByBuilding returns the building's issues newest first, optionally filtered by status.
func (s *Service) ListByBuilding(ctx context.Context, buildingID uuid.UUID, status string) ([]domain.Issue, error) {
	if status != "" && !validIssueStatuses[status] {
		return nil, apperr.New(apperr.Validation, "Invalid status filter")
	}
	q := s.DB.WithContext(ctx).Where("building_id = ?", buildingID).Order(`"createdAt" DESC`)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	list := []domain.Issue{}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatus moves an issue to a new status. The attribution stamp is never part
// of an update.
func (s *Service) UpdateStatus(ctx context.Context, issueID uuid.UUID, status string) (*domain.Issue, error) {
	if !validIssueStatuses[status] {
		return nil, apperr.New(apperr.Validation, "Invalid status")
	}
	result := s.DB.WithContext(ctx).Model(&domain.Issue{}).
		Where("issue_id = ?", issueID).
		Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperr.New(apperr.NotFound, "Issue not found")
	}
	return s.GetIssue(ctx, issueID)
}
