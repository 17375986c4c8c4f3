package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a platform account. Operator-org affiliation (management company or HOA)
// scopes what the user can see in the portfolio views.
type User struct {
	UserID              uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Fullname            string         `gorm:"column:fullname;not null" json:"fullname"`
	Email               string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Phone               *string        `gorm:"column:phone" json:"phone"`
	PasswordHash        string         `gorm:"column:password_hash;not null" json:"-"`
	Role                string         `gorm:"column:role;not null;default:tenant" json:"role"`
	ManagementCompanyID *uuid.UUID     `gorm:"column:management_company_id;type:uuid" json:"management_company_id"`
	HoaOrganizationID   *uuid.UUID     `gorm:"column:hoa_organization_id;type:uuid" json:"hoa_organization_id"`
	CreatedAt           time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt           time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "Users"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
