package continuity

import (
	"context"
	"time"

	"keystone-backend/internal/application/operatorperiods"
	"keystone-backend/internal/domain"
	"keystone-backend/internal/pkg/apperr"
	pkgconst "keystone-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the read side of operator continuity: the portfolio view (current
// operator per visible building) and the per-building timeline (full period history
// with per-period record counts). Pure reads; nothing here ever mutates period
// status, end dates, or building pointers.
type Service struct {
	DB      *gorm.DB
	Periods *operatorperiods.Service
}

// Principal scopes portfolio reads. Admin roles see every building; everyone else
// sees only buildings whose ACTIVE period's operator org matches their affiliation.
type Principal struct {
	UserID              uuid.UUID
	Role                string
	ManagementCompanyID *uuid.UUID
	HoaOrganizationID   *uuid.UUID
}

// PeriodSummary is the current-period annotation on a portfolio row.
type PeriodSummary struct {
	PeriodID     uuid.UUID           `json:"period_id"`
	OperatorType domain.OperatorType `json:"operator_type"`
	OperatorName string              `json:"operator_name"`
	Status       string              `json:"status"`
	StartDate    time.Time           `json:"start_date"`
	EndDate      *time.Time          `json:"end_date"`
}

// BuildingCounts are the lightweight per-building totals on a portfolio row.
type BuildingCounts struct {
	Issues     int64 `json:"issues"`
	WorkOrders int64 `json:"work_orders"`
	Units      int64 `json:"units"`
}

// BuildingWithOperator is one portfolio row.
type BuildingWithOperator struct {
	Building      domain.Building `json:"building"`
	CurrentPeriod *PeriodSummary  `json:"current_period"`
	Counts        BuildingCounts  `json:"counts"`
}

// TimelinePeriod is one ledger entry in the timeline view, with counts scoped to
// records attributed to that period (not building totals).
type TimelinePeriod struct {
	domain.OperatorPeriod
	OperatorName   string `json:"operator_name"`
	IssueCount     int64  `json:"issue_count"`
	WorkOrderCount int64  `json:"work_order_count"`
}

// TimelineResult is the timeline view for one building.
type TimelineResult struct {
	Building *domain.Building `json:"building"`
	Timeline []TimelinePeriod `json:"timeline"`
}

// Portfolio lists the buildings the principal may see, each annotated with its
// current operator period and counts, ordered by building name ascending.
func (s *Service) Portfolio(ctx context.Context, p Principal) ([]BuildingWithOperator, error) {
	db := s.DB.WithContext(ctx)

	buildings := []domain.Building{}
	q := db.Model(&domain.Building{}).Order(`"Buildings".name ASC`)
	if !pkgconst.IsAdminRole(p.Role) {
		switch {
		case p.ManagementCompanyID != nil:
			q = q.Joins(`JOIN "OperatorPeriods" ap ON ap.building_id = "Buildings".building_id AND ap.status = ?`, domain.PeriodActive).
				Where("ap.management_company_id = ?", *p.ManagementCompanyID)
		case p.HoaOrganizationID != nil:
			q = q.Joins(`JOIN "OperatorPeriods" ap ON ap.building_id = "Buildings".building_id AND ap.status = ?`, domain.PeriodActive).
				Where("ap.hoa_organization_id = ?", *p.HoaOrganizationID)
		default:
			// No operator affiliation: nothing to show.
			return []BuildingWithOperator{}, nil
		}
	}
	if err := q.Find(&buildings).Error; err != nil {
		return nil, err
	}
	if len(buildings) == 0 {
		return []BuildingWithOperator{}, nil
	}

	ids := make([]uuid.UUID, 0, len(buildings))
	for _, b := range buildings {
		ids = append(ids, b.BuildingID)
	}

	activeByBuilding, err := s.activePeriods(db, ids)
	if err != nil {
		return nil, err
	}
	names, err := s.operatorNames(db, activeByBuilding)
	if err != nil {
		return nil, err
	}
	issueCounts, err := countByColumn(db, &domain.Issue{}, "building_id", ids)
	if err != nil {
		return nil, err
	}
	workOrderCounts, err := countByColumn(db, &domain.WorkOrder{}, "building_id", ids)
	if err != nil {
		return nil, err
	}
	unitCounts, err := countByColumn(db, &domain.Unit{}, "building_id", ids)
	if err != nil {
		return nil, err
	}

	out := make([]BuildingWithOperator, 0, len(buildings))
	for _, b := range buildings {
		row := BuildingWithOperator{
			Building: b,
			Counts: BuildingCounts{
				Issues:     issueCounts[b.BuildingID],
				WorkOrders: workOrderCounts[b.BuildingID],
				Units:      unitCounts[b.BuildingID],
			},
		}
		if ap, ok := activeByBuilding[b.BuildingID]; ok {
			row.CurrentPeriod = &PeriodSummary{
				PeriodID:     ap.PeriodID,
				OperatorType: ap.OperatorType,
				OperatorName: names[ap.Operator().OrgID],
				Status:       ap.Status,
				StartDate:    ap.StartDate,
				EndDate:      ap.EndDate,
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// Timeline returns the building summary plus every period ordered by
// (start_date, createdAt) ascending, each with counts of issues/work orders
// attributed to that period. from/to filter on period start_date.
func (s *Service) Timeline(ctx context.Context, buildingID uuid.UUID, from, to *time.Time) (*TimelineResult, error) {
	db := s.DB.WithContext(ctx)

	var building domain.Building
	if err := db.Where("building_id = ?", buildingID).First(&building).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Building not found")
		}
		return nil, err
	}

	periods, err := s.Periods.ListForBuilding(ctx, buildingID, from, to)
	if err != nil {
		return nil, err
	}

	periodIDs := make([]uuid.UUID, 0, len(periods))
	for i := range periods {
		periodIDs = append(periodIDs, periods[i].PeriodID)
	}

	issueCounts := map[uuid.UUID]int64{}
	workOrderCounts := map[uuid.UUID]int64{}
	if len(periodIDs) > 0 {
		issueCounts, err = countByColumn(db, &domain.Issue{}, "operator_period_id", periodIDs)
		if err != nil {
			return nil, err
		}
		workOrderCounts, err = countByColumn(db, &domain.WorkOrder{}, "operator_period_id", periodIDs)
		if err != nil {
			return nil, err
		}
	}

	names, err := s.operatorNamesForPeriods(db, periods)
	if err != nil {
		return nil, err
	}

	timeline := make([]TimelinePeriod, 0, len(periods))
	for _, p := range periods {
		timeline = append(timeline, TimelinePeriod{
			OperatorPeriod: p,
			OperatorName:   names[p.Operator().OrgID],
			IssueCount:     issueCounts[p.PeriodID],
			WorkOrderCount: workOrderCounts[p.PeriodID],
		})
	}
	return &TimelineResult{Building: &building, Timeline: timeline}, nil
}

func (s *Service) activePeriods(db *gorm.DB, buildingIDs []uuid.UUID) (map[uuid.UUID]domain.OperatorPeriod, error) {
	rows := []domain.OperatorPeriod{}
	if err := db.Where("building_id IN ? AND status = ?", buildingIDs, domain.PeriodActive).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]domain.OperatorPeriod, len(rows))
	for _, p := range rows {
		out[p.BuildingID] = p
	}
	return out, nil
}

func (s *Service) operatorNames(db *gorm.DB, periods map[uuid.UUID]domain.OperatorPeriod) (map[uuid.UUID]string, error) {
	list := make([]domain.OperatorPeriod, 0, len(periods))
	for _, p := range periods {
		list = append(list, p)
	}
	return s.operatorNamesForPeriods(db, list)
}

// operatorNamesForPeriods resolves display names for every operator org referenced by
// the given periods, one query per directory table.
func (s *Service) operatorNamesForPeriods(db *gorm.DB, periods []domain.OperatorPeriod) (map[uuid.UUID]string, error) {
	var pmIDs, hoaIDs []uuid.UUID
	for _, p := range periods {
		op := p.Operator()
		switch op.Type {
		case domain.OperatorTypePM:
			pmIDs = append(pmIDs, op.OrgID)
		case domain.OperatorTypeHOA:
			hoaIDs = append(hoaIDs, op.OrgID)
		}
	}
	names := map[uuid.UUID]string{}
	if len(pmIDs) > 0 {
		companies := []domain.ManagementCompany{}
		if err := db.Where("company_id IN ?", pmIDs).Find(&companies).Error; err != nil {
			return nil, err
		}
		for _, c := range companies {
			names[c.CompanyID] = c.Name
		}
	}
	if len(hoaIDs) > 0 {
		hoas := []domain.HoaOrganization{}
		if err := db.Where("hoa_id IN ?", hoaIDs).Find(&hoas).Error; err != nil {
			return nil, err
		}
		for _, h := range hoas {
			names[h.HoaID] = h.Name
		}
	}
	return names, nil
}

// countByColumn groups rows of model by the given uuid column over the id set.
func countByColumn(db *gorm.DB, model interface{}, column string, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []struct {
		Key   uuid.UUID `gorm:"column:key"`
		Total int64     `gorm:"column:total"`
	}
	if err := db.Model(model).
		Select(column+" AS key, COUNT(*) AS total").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Total
	}
	return out, nil
}
