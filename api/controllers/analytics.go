package controllers

import (
	"net/http"

	"github.com/drytrack/drytrack-backend/api/responses"
	"github.com/drytrack/drytrack-backend/api/validators"
	"github.com/drytrack/drytrack-backend/api/views"
	"github.com/drytrack/drytrack-backend/internal/analytics"
	"github.com/drytrack/drytrack-backend/internal/analytics/types"
	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	"github.com/drytrack/drytrack-backend/pkg/logger"
)

const periodFlagMaxLen = 10

var periods = []string{enums.PeriodMonth.String(), enums.PeriodYear.String()}

type yieldQuery struct {
	heading string
	param   string
	def     enums.Period
	fetch   func(r *http.Request, p *pkgauth.Principal, period enums.Period) (*types.Yield, error)
}

// MunicipalAnalytics sums final weight across the officer's municipality,
// by year unless view=month.
func MunicipalAnalytics(svc analytics.Service, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return yieldHandler(svc, renderer, logg, yieldQuery{
		heading: "Municipal yield",
		param:   "view",
		def:     enums.PeriodYear,
		fetch: func(r *http.Request, p *pkgauth.Principal, period enums.Period) (*types.Yield, error) {
			return svc.Yield(r.Context(), p, enums.RoleMunicipal, period)
		},
	})
}

func BarangayAnalytics(svc analytics.Service, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return yieldHandler(svc, renderer, logg, yieldQuery{
		heading: "Barangay yield",
		param:   "period",
		def:     enums.PeriodMonth,
		fetch: func(r *http.Request, p *pkgauth.Principal, period enums.Period) (*types.Yield, error) {
			return svc.Yield(r.Context(), p, enums.RoleBarangay, period)
		},
	})
}

func FarmerAnalytics(svc analytics.Service, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return yieldHandler(svc, renderer, logg, yieldQuery{
		heading: "My yield",
		param:   "period",
		def:     enums.PeriodMonth,
		fetch: func(r *http.Request, p *pkgauth.Principal, period enums.Period) (*types.Yield, error) {
			return svc.Yield(r.Context(), p, enums.RoleFarmer, period)
		},
	})
}

// MunicipalityAnalytics is the yield of one municipality by id.
func MunicipalityAnalytics(svc analytics.Service, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return yieldHandler(svc, renderer, logg, yieldQuery{
		heading: "Municipality yield",
		param:   "view",
		def:     enums.PeriodYear,
		fetch: func(r *http.Request, p *pkgauth.Principal, period enums.Period) (*types.Yield, error) {
			id, err := validators.ParseIDParam(r, "id")
			if err != nil {
				return nil, err
			}
			return svc.MunicipalityYield(r.Context(), p, id, period)
		},
	})
}

func yieldHandler(svc analytics.Service, renderer *views.Renderer, logg *logger.Logger, q yieldQuery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "analytics service")
			return
		}
		p, ok := principal(w, r, logg)
		if !ok {
			return
		}

		period := enums.ParsePeriod(validators.SanitizeFlag(r.URL.Query().Get(q.param), periodFlagMaxLen), q.def)
		result, err := q.fetch(r, p, period)
		if err != nil {
			responses.Fail(w, r, logg, err)
			return
		}
		if responses.WantsJSON(r) {
			responses.WriteSuccess(w, result)
			return
		}
		render(w, r, logg, renderer, http.StatusOK, "analytics", views.Page{
			Title:     q.heading,
			Principal: p,
			Data: views.AnalyticsData{
				Heading: q.heading,
				Param:   q.param,
				Period:  result.Period.String(),
				Periods: periods,
				Rows:    views.TotalsRows(result.Totals),
				Total:   result.Total,
			},
		})
	}
}

// MunicipalityDashboard lists a municipality's barangays with their totals.
func MunicipalityDashboard(svc analytics.Service, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "analytics service")
			return
		}
		p, ok := principal(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.Fail(w, r, logg, err)
			return
		}

		dash, err := svc.MunicipalityDashboard(r.Context(), p, id)
		if err != nil {
			responses.Fail(w, r, logg, err)
			return
		}
		if responses.WantsJSON(r) {
			responses.WriteSuccess(w, dash)
			return
		}
		render(w, r, logg, renderer, http.StatusOK, "dashboard", views.Page{
			Title:     dash.Municipality.Name,
			Principal: p,
			Data: views.DashboardData{
				View:         analytics.ViewTotal,
				Rows:         views.SeriesRows(dash.Series),
				Municipality: &dash.Municipality,
				Barangays:    dash.Barangays,
			},
		})
	}
}
