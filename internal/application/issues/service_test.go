package issues

import (
	"context"
	"testing"

	"keystone-backend/internal/application/transitions"
	"keystone-backend/internal/domain"
	"keystone-backend/internal/infrastructure/database"
	"keystone-backend/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupIssueTest(t *testing.T) (*Service, *transitions.Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return &Service{DB: db}, &transitions.Service{DB: db}, db
}

func seedIssueBuilding(t *testing.T, db *gorm.DB) *domain.Building {
	b := &domain.Building{
		Name:         "Birch House",
		AddressLine1: "12 Birch Rd",
		City:         "Austin",
		State:        "TX",
		PostalCode:   "78701",
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

func TestCreateIssue_StampedWithActivePeriod(t *testing.T) {
	s, tr, db := setupIssueTest(t)
	b := seedIssueBuilding(t, db)
	company := &domain.ManagementCompany{Name: "Apex Property Group"}
	require.NoError(t, db.Create(company).Error)

	result, err := tr.Transition(context.Background(), transitions.Input{
		BuildingID:     b.BuildingID,
		ToOperatorType: domain.OperatorTypePM,
		ToOperatorID:   company.CompanyID,
		EffectiveDate:  "2024-01-01T00:00:00Z",
	})
	require.NoError(t, err)

	issue, err := s.CreateIssue(context.Background(), CreateIssueInput{
		BuildingID: b.BuildingID,
		Title:      "Water heater down",
	})
	require.NoError(t, err)
	require.NotNil(t, issue.OperatorPeriodID)
	assert.Equal(t, result.NextPeriod.PeriodID, *issue.OperatorPeriodID)
	assert.Equal(t, domain.IssueOpen, issue.Status)
	assert.Equal(t, domain.PriorityMedium, issue.Priority)
}

func TestCreateIssue_NoActivePeriodLeavesStampNil(t *testing.T) {
	s, _, db := setupIssueTest(t)
	b := seedIssueBuilding(t, db)

	issue, err := s.CreateIssue(context.Background(), CreateIssueInput{
		BuildingID: b.BuildingID,
		Title:      "Broken gate",
	})
	require.NoError(t, err)
	assert.Nil(t, issue.OperatorPeriodID)
}

func TestCreateIssue_StampSurvivesTransition(t *testing.T) {
	s, tr, db := setupIssueTest(t)
	b := seedIssueBuilding(t, db)
	company := &domain.ManagementCompany{Name: "Apex Property Group"}
	require.NoError(t, db.Create(company).Error)
	hoa := &domain.HoaOrganization{Name: "Birch House HOA"}
	require.NoError(t, db.Create(hoa).Error)

	first, err := tr.Transition(context.Background(), transitions.Input{
		BuildingID:     b.BuildingID,
		ToOperatorType: domain.OperatorTypePM,
		ToOperatorID:   company.CompanyID,
		EffectiveDate:  "2024-01-01T00:00:00Z",
	})
	require.NoError(t, err)

	issue, err := s.CreateIssue(context.Background(), CreateIssueInput{
		BuildingID: b.BuildingID,
		Title:      "Water heater down",
	})
	require.NoError(t, err)

	fromID := first.NextPeriod.PeriodID
	_, err = tr.Transition(context.Background(), transitions.Input{
		BuildingID:           b.BuildingID,
		FromOperatorPeriodID: &fromID,
		ToOperatorType:       domain.OperatorTypeHOA,
		ToOperatorID:         hoa.HoaID,
		EffectiveDate:        "2024-06-01T00:00:00Z",
	})
	require.NoError(t, err)

	// The stamp is write-once: still the period that was ACTIVE at creation.
	reloaded, err := s.GetIssue(context.Background(), issue.IssueID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.OperatorPeriodID)
	assert.Equal(t, first.NextPeriod.PeriodID, *reloaded.OperatorPeriodID)
}

func TestCreateIssue_Validation(t *testing.T) {
	s, _, db := setupIssueTest(t)
	b := seedIssueBuilding(t, db)

	_, err := s.CreateIssue(context.Background(), CreateIssueInput{BuildingID: b.BuildingID})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = s.CreateIssue(context.Background(), CreateIssueInput{
		BuildingID: b.BuildingID,
		Title:      "Bad priority",
		Priority:   "catastrophic",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = s.CreateIssue(context.Background(), CreateIssueInput{
		BuildingID: uuid.New(),
		Title:      "Ghost building",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	unknownUnit := uuid.New()
	_, err = s.CreateIssue(context.Background(), CreateIssueInput{
		BuildingID: b.BuildingID,
		UnitID:     &unknownUnit,
		Title:      "Ghost unit",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestListByBuilding_StatusFilter(t *testing.T) {
	s, _, db := setupIssueTest(t)
	b := seedIssueBuilding(t, db)

	first, err := s.CreateIssue(context.Background(), CreateIssueInput{BuildingID: b.BuildingID, Title: "One"})
	require.NoError(t, err)
	_, err = s.CreateIssue(context.Background(), CreateIssueInput{BuildingID: b.BuildingID, Title: "Two"})
	require.NoError(t, err)

	_, err = s.UpdateStatus(context.Background(), first.IssueID, domain.IssueResolved)
	require.NoError(t, err)

	all, err := s.ListByBuilding(context.Background(), b.BuildingID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	resolved, err := s.ListByBuilding(context.Background(), b.BuildingID, domain.IssueResolved)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, first.IssueID, resolved[0].IssueID)

	_, err = s.ListByBuilding(context.Background(), b.BuildingID, "bogus")
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestUpdateStatus(t *testing.T) {
	s, _, db := setupIssueTest(t)
	b := seedIssueBuilding(t, db)

	issue, err := s.CreateIssue(context.Background(), CreateIssueInput{BuildingID: b.BuildingID, Title: "One"})
	require.NoError(t, err)

	updated, err := s.UpdateStatus(context.Background(), issue.IssueID, domain.IssueInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueInProgress, updated.Status)

	_, err = s.UpdateStatus(context.Background(), uuid.New(), domain.IssueClosed)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = s.UpdateStatus(context.Background(), issue.IssueID, "bogus")
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}
