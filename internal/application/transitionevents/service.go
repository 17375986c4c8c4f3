package transitionevents

import (
	"context"

	"keystone-backend/internal/domain"
	"keystone-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service reads the transition audit ledger. Events are only ever written by the
// transition engine inside its transaction; this service is read-only.
type Service struct {
	DB *gorm.DB
}

// ListForBuilding returns the building's transition events newest first.
func (s *Service) ListForBuilding(ctx context.Context, buildingID uuid.UUID) ([]domain.TransitionEvent, error) {
	var building domain.Building
	if err := s.DB.WithContext(ctx).Where("building_id = ?", buildingID).First(&building).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Building not found")
		}
		return nil, err
	}
	events := []domain.TransitionEvent{}
	if err := s.DB.WithContext(ctx).
		Where("building_id = ?", buildingID).
		Order(`"createdAt" DESC`).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
