package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ManagementCompany is a property-management operator organization.
type ManagementCompany struct {
	CompanyID    uuid.UUID      `gorm:"column:company_id;type:uuid;primaryKey" json:"company_id"`
	Name         string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	ContactEmail *string        `gorm:"column:contact_email" json:"contact_email"`
	ContactPhone *string        `gorm:"column:contact_phone" json:"contact_phone"`
	CreatedAt    time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ManagementCompany) TableName() string {
	return "ManagementCompanies"
}

func (m *ManagementCompany) BeforeCreate(tx *gorm.DB) error {
	if m.CompanyID == uuid.Nil {
		m.CompanyID = uuid.New()
	}
	return nil
}

// HoaOrganization is a homeowners-association operator organization.
type HoaOrganization struct {
	HoaID        uuid.UUID      `gorm:"column:hoa_id;type:uuid;primaryKey" json:"hoa_id"`
	Name         string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	ContactEmail *string        `gorm:"column:contact_email" json:"contact_email"`
	ContactPhone *string        `gorm:"column:contact_phone" json:"contact_phone"`
	CreatedAt    time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (HoaOrganization) TableName() string {
	return "HoaOrganizations"
}

func (h *HoaOrganization) BeforeCreate(tx *gorm.DB) error {
	if h.HoaID == uuid.Nil {
		h.HoaID = uuid.New()
	}
	return nil
}
