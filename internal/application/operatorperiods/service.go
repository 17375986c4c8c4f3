package operatorperiods

import (
	"context"
	"time"

	"keystone-backend/internal/domain"
	"keystone-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the operator-period store: reads over the per-building period ledger
// plus the in-transaction write helpers the transition engine composes. The ACTIVE
// period row is the source of truth for "who manages this building now"; the
// building's current_operator_period_id pointer is a cache updated only inside the
// same transaction that flips period status (RepointBuilding).
type Service struct {
	DB *gorm.DB
}

// ActivePeriod returns the building's ACTIVE period, or nil when the building has no
// operator assigned.
func (s *Service) ActivePeriod(ctx context.Context, buildingID uuid.UUID) (*domain.OperatorPeriod, error) {
	return ActivePeriodTx(s.DB.WithContext(ctx), buildingID)
}

// PeriodByID returns one period by id.
func (s *Service) PeriodByID(ctx context.Context, periodID uuid.UUID) (*domain.OperatorPeriod, error) {
	var p domain.OperatorPeriod
	if err := s.DB.WithContext(ctx).Where("period_id = ?", periodID).First(&p).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Operator period not found")
		}
		return nil, err
	}
	return &p, nil
}

// ListForBuilding returns the building's periods ordered by (start_date, createdAt)
// ascending, optionally filtered to periods whose start_date falls in [from, to].
func (s *Service) ListForBuilding(ctx context.Context, buildingID uuid.UUID, from, to *time.Time) ([]domain.OperatorPeriod, error) {
	q := s.DB.WithContext(ctx).
		Where("building_id = ?", buildingID).
		Order("start_date ASC, \"createdAt\" ASC")
	if from != nil {
		q = q.Where("start_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("start_date <= ?", *to)
	}
	periods := []domain.OperatorPeriod{}
	if err := q.Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// ActivePeriodTx reads the ACTIVE period inside the caller's transaction (or plain DB).
// nil without error when the building has none.
func ActivePeriodTx(tx *gorm.DB, buildingID uuid.UUID) (*domain.OperatorPeriod, error) {
	var p domain.OperatorPeriod
	err := tx.Where("building_id = ? AND status = ?", buildingID, domain.PeriodActive).First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ClosePeriodTx ends a period: status ENDED, end_date = end. Must run inside the same
// transaction that opens the successor so the ledger can never hold a closed period
// without a new ACTIVE one.
func ClosePeriodTx(tx *gorm.DB, p *domain.OperatorPeriod, end time.Time) error {
	p.Status = domain.PeriodEnded
	p.EndDate = &end
	return tx.Save(p).Error
}

// OpenPeriodTx inserts a new ACTIVE period row.
func OpenPeriodTx(tx *gorm.DB, p *domain.OperatorPeriod) error {
	p.Status = domain.PeriodActive
	p.EndDate = nil
	return tx.Create(p).Error
}

// RepointBuildingTx updates the building's active-period pointer together with the
// legacy direct-operator pointer (set for PM operators, cleared for HOA) so
// pre-ledger readers keep working.
func RepointBuildingTx(tx *gorm.DB, building *domain.Building, next *domain.OperatorPeriod) error {
	updates := map[string]interface{}{
		"current_operator_period_id": next.PeriodID,
	}
	if next.OperatorType == domain.OperatorTypePM {
		updates["management_company_id"] = next.ManagementCompanyID
	} else {
		updates["management_company_id"] = nil
	}
	if err := tx.Model(&domain.Building{}).
		Where("building_id = ?", building.BuildingID).
		Updates(updates).Error; err != nil {
		return err
	}
	building.CurrentOperatorPeriodID = &next.PeriodID
	if next.OperatorType == domain.OperatorTypePM {
		building.ManagementCompanyID = next.ManagementCompanyID
	} else {
		building.ManagementCompanyID = nil
	}
	return nil
}
