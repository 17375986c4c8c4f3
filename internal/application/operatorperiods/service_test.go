package operatorperiods

import (
	"context"
	"testing"
	"time"

	"keystone-backend/internal/domain"
	"keystone-backend/internal/infrastructure/database"
	"keystone-backend/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPeriodTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return &Service{DB: db}, db
}

func createPeriod(t *testing.T, db *gorm.DB, buildingID uuid.UUID, start string, status string) *domain.OperatorPeriod {
	startDate, err := time.Parse(time.RFC3339, start)
	require.NoError(t, err)
	companyID := uuid.New()
	require.NoError(t, db.Create(&domain.ManagementCompany{CompanyID: companyID, Name: "Co " + companyID.String()}).Error)
	p := &domain.OperatorPeriod{
		BuildingID: buildingID,
		StartDate:  startDate,
		Status:     status,
	}
	p.SetOperator(domain.PM(companyID))
	if status == domain.PeriodEnded {
		end := startDate.AddDate(0, 6, 0)
		p.EndDate = &end
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestActivePeriod(t *testing.T) {
	s, db := setupPeriodTest(t)
	buildingID := uuid.New()

	got, err := s.ActivePeriod(context.Background(), buildingID)
	require.NoError(t, err)
	assert.Nil(t, got)

	createPeriod(t, db, buildingID, "2023-01-01T00:00:00Z", domain.PeriodEnded)
	active := createPeriod(t, db, buildingID, "2023-07-01T00:00:00Z", domain.PeriodActive)

	got, err = s.ActivePeriod(context.Background(), buildingID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, active.PeriodID, got.PeriodID)
}

func TestPeriodByID(t *testing.T) {
	s, db := setupPeriodTest(t)
	p := createPeriod(t, db, uuid.New(), "2023-01-01T00:00:00Z", domain.PeriodActive)

	got, err := s.PeriodByID(context.Background(), p.PeriodID)
	require.NoError(t, err)
	assert.Equal(t, p.PeriodID, got.PeriodID)

	_, err = s.PeriodByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestListForBuilding_OrderAndRange(t *testing.T) {
	s, db := setupPeriodTest(t)
	buildingID := uuid.New()
	p1 := createPeriod(t, db, buildingID, "2022-01-01T00:00:00Z", domain.PeriodEnded)
	p2 := createPeriod(t, db, buildingID, "2023-01-01T00:00:00Z", domain.PeriodEnded)
	p3 := createPeriod(t, db, buildingID, "2024-01-01T00:00:00Z", domain.PeriodActive)
	// Other buildings never leak into the list.
	createPeriod(t, db, uuid.New(), "2023-06-01T00:00:00Z", domain.PeriodActive)

	all, err := s.ListForBuilding(context.Background(), buildingID, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, p1.PeriodID, all[0].PeriodID)
	assert.Equal(t, p2.PeriodID, all[1].PeriodID)
	assert.Equal(t, p3.PeriodID, all[2].PeriodID)

	from := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	ranged, err := s.ListForBuilding(context.Background(), buildingID, &from, &to)
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, p2.PeriodID, ranged[0].PeriodID)

	empty, err := s.ListForBuilding(context.Background(), uuid.New(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCloseAndOpenPeriodTx(t *testing.T) {
	_, db := setupPeriodTest(t)
	buildingID := uuid.New()
	p := createPeriod(t, db, buildingID, "2023-01-01T00:00:00Z", domain.PeriodActive)

	end := time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ClosePeriodTx(db, p, end))

	var reloaded domain.OperatorPeriod
	require.NoError(t, db.First(&reloaded, "period_id = ?", p.PeriodID).Error)
	assert.Equal(t, domain.PeriodEnded, reloaded.Status)
	require.NotNil(t, reloaded.EndDate)
	assert.Equal(t, end, reloaded.EndDate.UTC())

	next := &domain.OperatorPeriod{BuildingID: buildingID, StartDate: end}
	hoaID := uuid.New()
	require.NoError(t, db.Create(&domain.HoaOrganization{HoaID: hoaID, Name: "HOA " + hoaID.String()}).Error)
	next.SetOperator(domain.HOA(hoaID))
	require.NoError(t, OpenPeriodTx(db, next))
	assert.Equal(t, domain.PeriodActive, next.Status)
	assert.Nil(t, next.EndDate)
}

func TestOpenPeriodTx_RejectsInvalidOperatorRef(t *testing.T) {
	_, db := setupPeriodTest(t)
	p := &domain.OperatorPeriod{
		BuildingID:   uuid.New(),
		OperatorType: domain.OperatorTypePM,
		StartDate:    time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	// No org pointer set: BeforeSave must refuse the write.
	err := OpenPeriodTx(db, p)
	require.Error(t, err)
}

func TestRepointBuildingTx(t *testing.T) {
	_, db := setupPeriodTest(t)
	building := &domain.Building{
		Name:         "Cedar Court",
		AddressLine1: "42 Cedar Ave",
		City:         "Portland",
		State:        "OR",
		PostalCode:   "97201",
	}
	require.NoError(t, db.Create(building).Error)

	companyID := uuid.New()
	pmPeriod := &domain.OperatorPeriod{BuildingID: building.BuildingID, StartDate: time.Now().UTC(), Status: domain.PeriodActive}
	pmPeriod.SetOperator(domain.PM(companyID))
	require.NoError(t, db.Create(pmPeriod).Error)

	require.NoError(t, RepointBuildingTx(db, building, pmPeriod))
	var reloaded domain.Building
	require.NoError(t, db.First(&reloaded, "building_id = ?", building.BuildingID).Error)
	require.NotNil(t, reloaded.CurrentOperatorPeriodID)
	assert.Equal(t, pmPeriod.PeriodID, *reloaded.CurrentOperatorPeriodID)
	require.NotNil(t, reloaded.ManagementCompanyID)
	assert.Equal(t, companyID, *reloaded.ManagementCompanyID)

	require.NoError(t, ClosePeriodTx(db, pmPeriod, time.Now().UTC()))
	hoaPeriod := &domain.OperatorPeriod{BuildingID: building.BuildingID, StartDate: time.Now().UTC(), Status: domain.PeriodActive}
	hoaPeriod.SetOperator(domain.HOA(uuid.New()))
	require.NoError(t, db.Create(hoaPeriod).Error)

	require.NoError(t, RepointBuildingTx(db, building, hoaPeriod))
	// Reset before re-scanning: gorm leaves a reused struct's fields untouched for
	// NULL columns, so the stale ManagementCompanyID would survive the second read.
	reloaded = domain.Building{}
	require.NoError(t, db.First(&reloaded, "building_id = ?", building.BuildingID).Error)
	require.NotNil(t, reloaded.CurrentOperatorPeriodID)
	assert.Equal(t, hoaPeriod.PeriodID, *reloaded.CurrentOperatorPeriodID)
	assert.Nil(t, reloaded.ManagementCompanyID)
}
