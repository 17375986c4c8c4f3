package user

import (
	"context"
	"strings"

	"keystone-backend/internal/domain"
	"keystone-backend/internal/pkg/apperr"
	pkgconst "keystone-backend/internal/pkg/constants"
	"keystone-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service encapsulates user management.
type Service struct {
	DB *gorm.DB
}

// CreateUserInput mirrors the create-user payload. At most one operator-org
// affiliation may be set.
type CreateUserInput struct {
	Fullname            string
	Email               string
	Password            string
	Role                string
	Phone               *string
	ManagementCompanyID *uuid.UUID
	HoaOrganizationID   *uuid.UUID
}

// CreateUser validates and persists a new account with a bcrypt password hash.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if !validation.IsValidFullname(in.Fullname) {
		return nil, apperr.New(apperr.Validation, "Invalid fullname")
	}
	if !validation.IsValidEmail(in.Email) {
		return nil, apperr.New(apperr.Validation, "Invalid email")
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, apperr.New(apperr.Validation, "Password must be at least 8 characters with a letter, number and special character")
	}
	if in.Role == "" {
		in.Role = pkgconst.Tenant
	}
	if !pkgconst.IsValidRole(in.Role) {
		return nil, apperr.New(apperr.Validation, "Invalid role")
	}
	if in.ManagementCompanyID != nil && in.HoaOrganizationID != nil {
		return nil, apperr.New(apperr.Validation, "User may belong to at most one operator organization")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Fullname:            strings.TrimSpace(in.Fullname),
		Email:               strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:               in.Phone,
		PasswordHash:        string(hash),
		Role:                in.Role,
		ManagementCompanyID: in.ManagementCompanyID,
		HoaOrganizationID:   in.HoaOrganizationID,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateRole changes a user's role under governance rules: the target role must be
// a valid enum value, and only a superadmin may grant or revoke superadmin.
func (s *Service) UpdateRole(ctx context.Context, actorRole string, targetID uuid.UUID, newRole string) (*domain.User, error) {
	if !pkgconst.IsValidRole(newRole) {
		return nil, apperr.New(apperr.Validation, "Invalid role")
	}

	var target domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", targetID).First(&target).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "User not found")
		}
		return nil, err
	}

	touchesSuperadmin := newRole == pkgconst.Superadmin || target.Role == pkgconst.Superadmin
	if touchesSuperadmin && actorRole != pkgconst.Superadmin {
		return nil, apperr.New(apperr.Auth, "Only a superadmin may change superadmin roles")
	}

	if err := s.DB.WithContext(ctx).Model(&target).Update("role", newRole).Error; err != nil {
		return nil, err
	}
	target.Role = newRole
	return &target, nil
}

// ListByOperatorOrg returns the users affiliated with one operator org, ordered by
// creation time.
func (s *Service) ListByOperatorOrg(ctx context.Context, op domain.Operator) ([]domain.User, error) {
	q := s.DB.WithContext(ctx).Order(`"createdAt" ASC`)
	switch op.Type {
	case domain.OperatorTypePM:
		q = q.Where("management_company_id = ?", op.OrgID)
	case domain.OperatorTypeHOA:
		q = q.Where("hoa_organization_id = ?", op.OrgID)
	default:
		return nil, apperr.New(apperr.Validation, "Operator type must be PM or HOA")
	}
	users := []domain.User{}
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
