package controllers

import (
	"net/http"

	"github.com/drytrack/drytrack-backend/api/responses"
	"github.com/drytrack/drytrack-backend/api/views"
	"github.com/drytrack/drytrack-backend/internal/analytics"
	pkgaccess "github.com/drytrack/drytrack-backend/pkg/access"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	"github.com/drytrack/drytrack-backend/pkg/logger"
)

var dashboardViews = []string{analytics.ViewMonth, analytics.ViewFarmer, analytics.ViewTotal}

// Dashboard renders the role default chart: batches for farmers, full months
// for barangay staff and barangays for municipal officers.
func Dashboard(svc analytics.Service, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "analytics service")
			return
		}
		p, ok := principal(w, r, logg)
		if !ok {
			return
		}

		dash, err := svc.Dashboard(r.Context(), p)
		if err != nil {
			responses.Fail(w, r, logg, err)
			return
		}
		if responses.WantsJSON(r) {
			responses.WriteSuccess(w, dash)
			return
		}
		render(w, r, logg, renderer, http.StatusOK, "dashboard", views.Page{
			Title:     "Dashboard",
			Principal: p,
			Data:      views.DashboardData{View: dash.View, Rows: views.SeriesRows(dash.Series)},
		})
	}
}

// BarangayDashboard is the staff chart switchable by the view flag.
func BarangayDashboard(svc analytics.Service, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "analytics service")
			return
		}
		p, ok := principal(w, r, logg)
		if !ok {
			return
		}
		if p.Role == enums.RoleFarmer && !responses.WantsJSON(r) {
			responses.Redirect(w, r, pkgaccess.PathRecords)
			return
		}

		dash, err := svc.BarangayDashboard(r.Context(), p, r.URL.Query().Get("view"))
		if err != nil {
			responses.Fail(w, r, logg, err)
			return
		}
		if responses.WantsJSON(r) {
			responses.WriteSuccess(w, dash)
			return
		}
		render(w, r, logg, renderer, http.StatusOK, "dashboard", views.Page{
			Title:     "Barangay dashboard",
			Principal: p,
			Data: views.DashboardData{
				View:  dash.View,
				Views: dashboardViews,
				Rows:  views.SeriesRows(dash.Series),
			},
		})
	}
}
