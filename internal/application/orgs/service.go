package orgs

import (
	"context"
	"strings"

	"keystone-backend/internal/domain"
	"keystone-backend/internal/pkg/apperr"

	"gorm.io/gorm"
)

// Service is the operator-organization directory: management companies and HOA
// organizations. The transition engine validates handoff targets against it and the
// continuity reads resolve display names through it.
type Service struct {
	DB *gorm.DB
}

// CreateOrgInput covers both org kinds.
type CreateOrgInput struct {
	Name         string
	ContactEmail *string
	ContactPhone *string
}

// CreateManagementCompany registers a PM organization.
func (s *Service) CreateManagementCompany(ctx context.Context, in CreateOrgInput) (*domain.ManagementCompany, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.New(apperr.Validation, "Name is required")
	}
	company := &domain.ManagementCompany{
		Name:         strings.TrimSpace(in.Name),
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
	}
	if err := s.DB.WithContext(ctx).Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

// CreateHoaOrganization registers an HOA organization.
func (s *Service) CreateHoaOrganization(ctx context.Context, in CreateOrgInput) (*domain.HoaOrganization, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.New(apperr.Validation, "Name is required")
	}
	hoa := &domain.HoaOrganization{
		Name:         strings.TrimSpace(in.Name),
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
	}
	if err := s.DB.WithContext(ctx).Create(hoa).Error; err != nil {
		return nil, err
	}
	return hoa, nil
}

// ListManagementCompanies returns all PM organizations ordered by name.
func (s *Service) ListManagementCompanies(ctx context.Context) ([]domain.ManagementCompany, error) {
	list := []domain.ManagementCompany{}
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListHoaOrganizations returns all HOA organizations ordered by name.
func (s *Service) ListHoaOrganizations(ctx context.Context) ([]domain.HoaOrganization, error) {
	list := []domain.HoaOrganization{}
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// OperatorName resolves the display name for an operator identity.
func (s *Service) OperatorName(ctx context.Context, op domain.Operator) (string, error) {
	switch op.Type {
	case domain.OperatorTypePM:
		var company domain.ManagementCompany
		if err := s.DB.WithContext(ctx).Where("company_id = ?", op.OrgID).First(&company).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return "", apperr.New(apperr.NotFound, "Target operator not found")
			}
			return "", err
		}
		return company.Name, nil
	case domain.OperatorTypeHOA:
		var hoa domain.HoaOrganization
		if err := s.DB.WithContext(ctx).Where("hoa_id = ?", op.OrgID).First(&hoa).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return "", apperr.New(apperr.NotFound, "Target operator not found")
			}
			return "", err
		}
		return hoa.Name, nil
	}
	return "", apperr.New(apperr.Validation, "Operator type must be PM or HOA")
}
