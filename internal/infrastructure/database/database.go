package database

import (
	"keystone-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN (Postgres pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers (e.g. PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all models, then applies the partial unique index
// that backs the one-ACTIVE-period-per-building invariant at the storage level.
// Range contiguity of periods stays engine-enforced (see transitions service); only
// the active-uniqueness half is expressible as an index.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.ManagementCompany{},
		&domain.HoaOrganization{},
		&domain.Building{},
		&domain.Unit{},
		&domain.OperatorPeriod{},
		&domain.TransitionEvent{},
		&domain.Issue{},
		&domain.WorkOrder{},
	); err != nil {
		return err
	}
	return ensureActivePeriodIndex(db)
}

func ensureActivePeriodIndex(db *gorm.DB) error {
	// sqlite (tests) supports the same partial-index syntax as Postgres.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS one_active_period_per_building
		 ON "OperatorPeriods" (building_id) WHERE status = 'ACTIVE'`,
	).Error
}
