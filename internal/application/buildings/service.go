package buildings

import (
	"context"

	"keystone-backend/internal/application/transitions"
	"keystone-backend/internal/domain"
	"keystone-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service encapsulates building onboarding and lookups.
type Service struct {
	DB          *gorm.DB
	Transitions *transitions.Service
}

// OnboardInput mirrors the building onboarding payload. The operator fields are
// optional; when present the first operator period is opened through the transition
// engine's initial-assignment path so onboarding and later handoffs share one code
// path for ledger writes.
type OnboardInput struct {
	Name         string
	AddressLine1 string
	AddressLine2 *string
	City         string
	State        string
	PostalCode   string

	OperatorType  *domain.OperatorType
	OperatorID    *uuid.UUID
	EffectiveDate string
	ActorUserID   *uuid.UUID
}

// Onboard creates a building, optionally assigning its first operator.
func (s *Service) Onboard(ctx context.Context, in OnboardInput) (*domain.Building, *domain.OperatorPeriod, error) {
	if in.Name == "" || in.AddressLine1 == "" || in.City == "" || in.State == "" || in.PostalCode == "" {
		return nil, nil, apperr.New(apperr.Validation, "Name and address fields are required")
	}
	if (in.OperatorType == nil) != (in.OperatorID == nil) {
		return nil, nil, apperr.New(apperr.Validation, "Operator type and operator id must be provided together")
	}

	building := &domain.Building{
		Name:         in.Name,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		City:         in.City,
		State:        in.State,
		PostalCode:   in.PostalCode,
	}
	if err := s.DB.WithContext(ctx).Create(building).Error; err != nil {
		return nil, nil, err
	}

	if in.OperatorType == nil {
		return building, nil, nil
	}

	result, err := s.Transitions.Transition(ctx, transitions.Input{
		BuildingID:     building.BuildingID,
		ToOperatorType: *in.OperatorType,
		ToOperatorID:   *in.OperatorID,
		EffectiveDate:  in.EffectiveDate,
		ActorUserID:    in.ActorUserID,
	})
	if err != nil {
		return nil, nil, err
	}
	return result.Building, result.NextPeriod, nil
}

// GetBuilding returns one building by id.
func (s *Service) GetBuilding(ctx context.Context, buildingID uuid.UUID) (*domain.Building, error) {
	var building domain.Building
	if err := s.DB.WithContext(ctx).Where("building_id = ?", buildingID).First(&building).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Building not found")
		}
		return nil, err
	}
	return &building, nil
}

// ListUnits returns the building's units ordered by unit number.
func (s *Service) ListUnits(ctx context.Context, buildingID uuid.UUID) ([]domain.Unit, error) {
	if _, err := s.GetBuilding(ctx, buildingID); err != nil {
		return nil, err
	}
	units := []domain.Unit{}
	if err := s.DB.WithContext(ctx).
		Where("building_id = ?", buildingID).
		Order("unit_number ASC").
		Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// AddUnit creates a unit in the building.
func (s *Service) AddUnit(ctx context.Context, buildingID uuid.UUID, unitNumber string, floor *int) (*domain.Unit, error) {
	if unitNumber == "" {
		return nil, apperr.New(apperr.Validation, "Unit number is required")
	}
	if _, err := s.GetBuilding(ctx, buildingID); err != nil {
		return nil, err
	}
	unit := &domain.Unit{
		BuildingID: buildingID,
		UnitNumber: unitNumber,
		Floor:      floor,
	}
	if err := s.DB.WithContext(ctx).Create(unit).Error; err != nil {
		return nil, err
	}
	return unit, nil
}
