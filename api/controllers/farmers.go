package controllers

import (
	"net/http"

	"github.com/drytrack/drytrack-backend/api/responses"
	"github.com/drytrack/drytrack-backend/api/validators"
	"github.com/drytrack/drytrack-backend/api/views"
	"github.com/drytrack/drytrack-backend/internal/farmers"
	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/logger"
)

const pathFarmers = "/farmers"

func FarmersList(svc farmers.Service, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "farmers service")
			return
		}
		p, ok := principal(w, r, logg)
		if !ok {
			return
		}
		page, err := farmersPage(r, svc, p)
		if err != nil {
			responses.Fail(w, r, logg, err)
			return
		}
		if responses.WantsJSON(r) {
			responses.WriteSuccess(w, map[string]any{"farmers": page.Data.(views.FarmersData).Farmers})
			return
		}
		render(w, r, logg, renderer, http.StatusOK, "farmers", page)
	}
}

// AddFarmer registers a farmer into the acting staff user's barangay.
func AddFarmer(svc farmers.Service, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "farmers service")
			return
		}
		p, ok := principal(w, r, logg)
		if !ok {
			return
		}

		var body farmers.AddFarmerRequest
		err := validators.DecodeRequest(w, r, &body)
		var created *farmers.FarmerDTO
		if err == nil {
			created, err = svc.Add(r.Context(), p, body)
		}
		if err != nil {
			if responses.WantsJSON(r) {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			page, listErr := farmersPage(r, svc, p)
			if listErr != nil {
				responses.Fail(w, r, logg, err)
				return
			}
			rerender(w, r, logg, renderer, "farmers", page, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "farmer_id", created.ID), "farmers.created")
		}
		if responses.WantsJSON(r) {
			responses.WriteSuccessStatus(w, http.StatusCreated, created)
			return
		}
		responses.Redirect(w, r, pathFarmers)
	}
}

func farmersPage(r *http.Request, svc farmers.Service, p *pkgauth.Principal) (views.Page, error) {
	list, err := svc.ListForPrincipal(r.Context(), p)
	if err != nil {
		return views.Page{}, err
	}
	return views.Page{
		Title:     "Farmers",
		Principal: p,
		Data:      views.FarmersData{Farmers: list},
	}, nil
}
