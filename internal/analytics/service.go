package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/drytrack/drytrack-backend/internal/analytics/query"
	"github.com/drytrack/drytrack-backend/internal/analytics/types"
	pkgaccess "github.com/drytrack/drytrack-backend/pkg/access"
	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/db"
	"github.com/drytrack/drytrack-backend/pkg/db/models"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
)

// Dashboard views accepted by the barangay dashboard.
const (
	ViewMonth  = "month"
	ViewFarmer = "farmer"
	ViewTotal  = "total"
	ViewBatch  = "batch"
)

// Service provides role-scoped dashboards and yield analytics over drying records.
type Service interface {
	// Dashboard is the home chart: batches for farmers, full months for
	// barangay staff, barangays for municipal officers.
	Dashboard(ctx context.Context, principal *pkgauth.Principal) (*types.Dashboard, error)
	// BarangayDashboard is the staff chart selected by view.
	BarangayDashboard(ctx context.Context, principal *pkgauth.Principal, view string) (*types.Dashboard, error)
	// Yield sums final weight per period for the principal's scope. audience
	// is the only role the calling view serves.
	Yield(ctx context.Context, principal *pkgauth.Principal, audience enums.Role, period enums.Period) (*types.Yield, error)
	MunicipalityDashboard(ctx context.Context, principal *pkgauth.Principal, municipalityID uint) (*types.MunicipalityDashboard, error)
	MunicipalityYield(ctx context.Context, principal *pkgauth.Principal, municipalityID uint, period enums.Period) (*types.Yield, error)
}

type recordSource interface {
	ListAllScoped(ctx context.Context, principal *pkgauth.Principal) ([]models.DryingRecord, error)
	ListByMunicipality(ctx context.Context, municipalityID uint) ([]models.DryingRecord, error)
}

type localitySource interface {
	FindMunicipality(ctx context.Context, id uint) (*models.Municipality, error)
	FindBarangay(ctx context.Context, id uint) (*models.Barangay, error)
	ListBarangaysByMunicipality(ctx context.Context, municipalityID uint) ([]models.Barangay, error)
}

type ServiceParams struct {
	Records    recordSource
	Localities localitySource
}

type service struct {
	records    recordSource
	localities localitySource
}

func NewService(params ServiceParams) (Service, error) {
	if params.Records == nil {
		return nil, fmt.Errorf("record source required")
	}
	if params.Localities == nil {
		return nil, fmt.Errorf("locality source required")
	}
	return &service{records: params.Records, localities: params.Localities}, nil
}

func (s *service) Dashboard(ctx context.Context, principal *pkgauth.Principal) (*types.Dashboard, error) {
	if err := gate(principal, enums.ActionViewDashboard); err != nil {
		return nil, err
	}
	view := ViewBatch
	switch principal.Role {
	case enums.RoleBarangay:
		view = ViewMonth
	case enums.RoleMunicipal:
		view = ViewTotal
	}
	return s.dashboard(ctx, principal, view)
}

func (s *service) BarangayDashboard(ctx context.Context, principal *pkgauth.Principal, view string) (*types.Dashboard, error) {
	if err := gate(principal, enums.ActionViewDashboard); err != nil {
		return nil, err
	}
	if !principal.Role.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff only")
	}
	view = strings.ToLower(strings.TrimSpace(view))
	switch view {
	case ViewMonth, ViewFarmer, ViewTotal:
	default:
		view = ViewMonth
		if principal.Role == enums.RoleMunicipal {
			view = ViewTotal
		}
	}
	return s.dashboard(ctx, principal, view)
}

func (s *service) dashboard(ctx context.Context, principal *pkgauth.Principal, view string) (*types.Dashboard, error) {
	rows, err := s.scopedRows(ctx, principal)
	if err != nil {
		return nil, err
	}
	return &types.Dashboard{
		View:   view,
		Role:   principal.Role,
		Series: query.Aggregate(rows, groupingFor(view)),
	}, nil
}

func groupingFor(view string) enums.GroupBy {
	switch view {
	case ViewMonth:
		return enums.GroupByFullMonth
	case ViewFarmer:
		return enums.GroupByFarmer
	case ViewTotal:
		return enums.GroupByBarangay
	default:
		return enums.GroupByBatch
	}
}

func (s *service) Yield(ctx context.Context, principal *pkgauth.Principal, audience enums.Role, period enums.Period) (*types.Yield, error) {
	if err := gate(principal, enums.ActionViewAnalytics); err != nil {
		return nil, err
	}
	if principal.Role != audience {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("view is for %s accounts", audience))
	}
	rows, err := s.scopedRows(ctx, principal)
	if err != nil {
		return nil, err
	}
	return yield(rows, period), nil
}

func (s *service) MunicipalityDashboard(ctx context.Context, principal *pkgauth.Principal, municipalityID uint) (*types.MunicipalityDashboard, error) {
	municipality, err := s.openMunicipality(ctx, principal, enums.ActionViewDashboard, municipalityID)
	if err != nil {
		return nil, err
	}
	barangays, err := s.localities.ListBarangaysByMunicipality(ctx, municipality.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list barangays")
	}
	rows, err := s.records.ListByMunicipality(ctx, municipality.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list municipality records")
	}

	out := &types.MunicipalityDashboard{
		Municipality: types.LocalityRef{ID: municipality.ID, Name: municipality.Name},
		Barangays:    make([]types.LocalityRef, 0, len(barangays)),
		Series:       query.Aggregate(rows, enums.GroupByBarangay),
	}
	for _, b := range barangays {
		out.Barangays = append(out.Barangays, types.LocalityRef{ID: b.ID, Name: b.Name})
	}
	return out, nil
}

func (s *service) MunicipalityYield(ctx context.Context, principal *pkgauth.Principal, municipalityID uint, period enums.Period) (*types.Yield, error) {
	municipality, err := s.openMunicipality(ctx, principal, enums.ActionViewAnalytics, municipalityID)
	if err != nil {
		return nil, err
	}
	rows, err := s.records.ListByMunicipality(ctx, municipality.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list municipality records")
	}
	return yield(rows, period), nil
}

// openMunicipality loads municipalityID when principal belongs to it: a
// municipal officer's own municipality or a barangay's parent municipality.
func (s *service) openMunicipality(ctx context.Context, principal *pkgauth.Principal, action enums.Action, municipalityID uint) (*models.Municipality, error) {
	if err := gate(principal, action); err != nil {
		return nil, err
	}
	municipality, err := s.localities.FindMunicipality(ctx, municipalityID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "municipality not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load municipality")
	}

	var own uint
	switch principal.Role {
	case enums.RoleMunicipal:
		if principal.MunicipalityID != nil {
			own = *principal.MunicipalityID
		}
	case enums.RoleBarangay:
		if principal.BarangayID == nil {
			break
		}
		barangay, err := s.localities.FindBarangay(ctx, *principal.BarangayID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load barangay")
		}
		own = barangay.MunicipalityID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff only")
	}
	if own != municipality.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "municipality is outside your scope")
	}
	return municipality, nil
}

func (s *service) scopedRows(ctx context.Context, principal *pkgauth.Principal) ([]models.DryingRecord, error) {
	rows, err := s.records.ListAllScoped(ctx, principal)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list drying records")
	}
	return rows, nil
}

func yield(rows []models.DryingRecord, period enums.Period) *types.Yield {
	series := query.Aggregate(rows, period.GroupBy())
	return &types.Yield{
		Period: period,
		Totals: series.Totals(types.MeasureFinalWeight),
		Total:  series.Sum(types.MeasureFinalWeight).InexactFloat64(),
	}
}

func gate(principal *pkgauth.Principal, action enums.Action) error {
	if principal == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !pkgaccess.Authorize(principal.Role, action) {
		return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("role %s may not %s", principal.Role, action))
	}
	return nil
}
