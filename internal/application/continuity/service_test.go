package continuity

import (
	"context"
	"testing"
	"time"

	"keystone-backend/internal/application/operatorperiods"
	"keystone-backend/internal/application/transitions"
	"keystone-backend/internal/domain"
	"keystone-backend/internal/infrastructure/database"
	"keystone-backend/internal/pkg/apperr"
	pkgconst "keystone-backend/internal/pkg/constants"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type continuityFixture struct {
	svc         *Service
	transitions *transitions.Service
	db          *gorm.DB
	company     *domain.ManagementCompany
	hoa         *domain.HoaOrganization
}

func setupContinuityTest(t *testing.T) *continuityFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	company := &domain.ManagementCompany{Name: "Apex Property Group"}
	require.NoError(t, db.Create(company).Error)
	hoa := &domain.HoaOrganization{Name: "Elm Towers HOA"}
	require.NoError(t, db.Create(hoa).Error)

	return &continuityFixture{
		svc:         &Service{DB: db, Periods: &operatorperiods.Service{DB: db}},
		transitions: &transitions.Service{DB: db},
		db:          db,
		company:     company,
		hoa:         hoa,
	}
}

func (f *continuityFixture) addBuilding(t *testing.T, name string) *domain.Building {
	b := &domain.Building{
		Name:         name,
		AddressLine1: "1 Test St",
		City:         "Denver",
		State:        "CO",
		PostalCode:   "80202",
	}
	require.NoError(t, f.db.Create(b).Error)
	return b
}

func (f *continuityFixture) assign(t *testing.T, b *domain.Building, op domain.Operator, date string, fromID *uuid.UUID) *domain.OperatorPeriod {
	result, err := f.transitions.Transition(context.Background(), transitions.Input{
		BuildingID:           b.BuildingID,
		FromOperatorPeriodID: fromID,
		ToOperatorType:       op.Type,
		ToOperatorID:         op.OrgID,
		EffectiveDate:        date,
	})
	require.NoError(t, err)
	return result.NextPeriod
}

func TestPortfolio_AdminSeesAll(t *testing.T) {
	f := setupContinuityTest(t)
	b1 := f.addBuilding(t, "Birch House")
	b2 := f.addBuilding(t, "Aspen Lofts")
	f.addBuilding(t, "Cedar Court") // no operator

	f.assign(t, b1, domain.PM(f.company.CompanyID), "2024-01-01T00:00:00Z", nil)
	f.assign(t, b2, domain.HOA(f.hoa.HoaID), "2024-02-01T00:00:00Z", nil)

	rows, err := f.svc.Portfolio(context.Background(), Principal{UserID: uuid.New(), Role: pkgconst.Admin})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// Name ascending
	assert.Equal(t, "Aspen Lofts", rows[0].Building.Name)
	assert.Equal(t, "Birch House", rows[1].Building.Name)
	assert.Equal(t, "Cedar Court", rows[2].Building.Name)

	require.NotNil(t, rows[0].CurrentPeriod)
	assert.Equal(t, domain.OperatorTypeHOA, rows[0].CurrentPeriod.OperatorType)
	assert.Equal(t, "Elm Towers HOA", rows[0].CurrentPeriod.OperatorName)
	require.NotNil(t, rows[1].CurrentPeriod)
	assert.Equal(t, "Apex Property Group", rows[1].CurrentPeriod.OperatorName)
	assert.Nil(t, rows[2].CurrentPeriod)
}

func TestPortfolio_ScopedToOperatorAffiliation(t *testing.T) {
	f := setupContinuityTest(t)
	pmBuilding := f.addBuilding(t, "Birch House")
	hoaBuilding := f.addBuilding(t, "Aspen Lofts")
	f.assign(t, pmBuilding, domain.PM(f.company.CompanyID), "2024-01-01T00:00:00Z", nil)
	f.assign(t, hoaBuilding, domain.HOA(f.hoa.HoaID), "2024-02-01T00:00:00Z", nil)

	manager := Principal{UserID: uuid.New(), Role: pkgconst.Manager, ManagementCompanyID: &f.company.CompanyID}
	rows, err := f.svc.Portfolio(context.Background(), manager)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, pmBuilding.BuildingID, rows[0].Building.BuildingID)

	hoaUser := Principal{UserID: uuid.New(), Role: pkgconst.Manager, HoaOrganizationID: &f.hoa.HoaID}
	rows, err = f.svc.Portfolio(context.Background(), hoaUser)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, hoaBuilding.BuildingID, rows[0].Building.BuildingID)
}

func TestPortfolio_ScopeFollowsTransition(t *testing.T) {
	f := setupContinuityTest(t)
	b := f.addBuilding(t, "Birch House")
	p1 := f.assign(t, b, domain.PM(f.company.CompanyID), "2024-01-01T00:00:00Z", nil)

	manager := Principal{UserID: uuid.New(), Role: pkgconst.Manager, ManagementCompanyID: &f.company.CompanyID}
	rows, err := f.svc.Portfolio(context.Background(), manager)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// After handoff to the HOA the old operator no longer sees the building.
	f.assign(t, b, domain.HOA(f.hoa.HoaID), "2024-06-01T00:00:00Z", &p1.PeriodID)
	rows, err = f.svc.Portfolio(context.Background(), manager)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPortfolio_NoAffiliationSeesNothing(t *testing.T) {
	f := setupContinuityTest(t)
	b := f.addBuilding(t, "Birch House")
	f.assign(t, b, domain.PM(f.company.CompanyID), "2024-01-01T00:00:00Z", nil)

	rows, err := f.svc.Portfolio(context.Background(), Principal{UserID: uuid.New(), Role: pkgconst.Tenant})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPortfolio_Counts(t *testing.T) {
	f := setupContinuityTest(t)
	b := f.addBuilding(t, "Birch House")
	p := f.assign(t, b, domain.PM(f.company.CompanyID), "2024-01-01T00:00:00Z", nil)

	require.NoError(t, f.db.Create(&domain.Unit{BuildingID: b.BuildingID, UnitNumber: "101"}).Error)
	require.NoError(t, f.db.Create(&domain.Unit{BuildingID: b.BuildingID, UnitNumber: "102"}).Error)
	require.NoError(t, f.db.Create(&domain.Issue{BuildingID: b.BuildingID, OperatorPeriodID: &p.PeriodID, Title: "Broken door"}).Error)
	require.NoError(t, f.db.Create(&domain.WorkOrder{BuildingID: b.BuildingID, OperatorPeriodID: &p.PeriodID, Title: "Replace door"}).Error)

	rows, err := f.svc.Portfolio(context.Background(), Principal{UserID: uuid.New(), Role: pkgconst.Admin})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].Counts.Issues)
	assert.Equal(t, int64(1), rows[0].Counts.WorkOrders)
	assert.Equal(t, int64(2), rows[0].Counts.Units)
}

func TestTimeline_PerPeriodCounts(t *testing.T) {
	f := setupContinuityTest(t)
	b := f.addBuilding(t, "Birch House")
	p1 := f.assign(t, b, domain.PM(f.company.CompanyID), "2024-01-01T00:00:00Z", nil)

	require.NoError(t, f.db.Create(&domain.Issue{BuildingID: b.BuildingID, OperatorPeriodID: &p1.PeriodID, Title: "Leak"}).Error)
	require.NoError(t, f.db.Create(&domain.Issue{BuildingID: b.BuildingID, OperatorPeriodID: &p1.PeriodID, Title: "Crack"}).Error)
	require.NoError(t, f.db.Create(&domain.WorkOrder{BuildingID: b.BuildingID, OperatorPeriodID: &p1.PeriodID, Title: "Patch"}).Error)

	p2 := f.assign(t, b, domain.HOA(f.hoa.HoaID), "2024-06-01T00:00:00Z", &p1.PeriodID)
	require.NoError(t, f.db.Create(&domain.Issue{BuildingID: b.BuildingID, OperatorPeriodID: &p2.PeriodID, Title: "Noise"}).Error)

	result, err := f.svc.Timeline(context.Background(), b.BuildingID, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Timeline, 2)

	first, second := result.Timeline[0], result.Timeline[1]
	assert.Equal(t, p1.PeriodID, first.PeriodID)
	assert.Equal(t, domain.PeriodEnded, first.Status)
	assert.Equal(t, "Apex Property Group", first.OperatorName)
	assert.Equal(t, int64(2), first.IssueCount)
	assert.Equal(t, int64(1), first.WorkOrderCount)

	assert.Equal(t, p2.PeriodID, second.PeriodID)
	assert.Equal(t, domain.PeriodActive, second.Status)
	assert.Equal(t, "Elm Towers HOA", second.OperatorName)
	assert.Equal(t, int64(1), second.IssueCount)
	assert.Equal(t, int64(0), second.WorkOrderCount)

	// Counts attach to the period a record was filed under, even after it closed.
	again, err := f.svc.Timeline(context.Background(), b.BuildingID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), again.Timeline[0].IssueCount)
}

func TestTimeline_RangeFilter(t *testing.T) {
	f := setupContinuityTest(t)
	b := f.addBuilding(t, "Birch House")
	p1 := f.assign(t, b, domain.PM(f.company.CompanyID), "2022-01-01T00:00:00Z", nil)
	p2 := f.assign(t, b, domain.HOA(f.hoa.HoaID), "2023-01-01T00:00:00Z", &p1.PeriodID)
	f.assign(t, b, domain.PM(f.company.CompanyID), "2024-01-01T00:00:00Z", &p2.PeriodID)

	from := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	result, err := f.svc.Timeline(context.Background(), b.BuildingID, &from, &to)
	require.NoError(t, err)
	require.Len(t, result.Timeline, 1)
	assert.Equal(t, p2.PeriodID, result.Timeline[0].PeriodID)
}

func TestTimeline_BuildingNotFound(t *testing.T) {
	f := setupContinuityTest(t)
	_, err := f.svc.Timeline(context.Background(), uuid.New(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestTimeline_EmptyLedger(t *testing.T) {
	f := setupContinuityTest(t)
	b := f.addBuilding(t, "Birch House")

	result, err := f.svc.Timeline(context.Background(), b.BuildingID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Timeline)
	assert.Equal(t, b.BuildingID, result.Building.BuildingID)
}
