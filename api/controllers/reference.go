package controllers

import (
	"context"
	"net/http"

	"github.com/drytrack/drytrack-backend/api/responses"
	"github.com/drytrack/drytrack-backend/internal/farmers"
	"github.com/drytrack/drytrack-backend/internal/localities"
	"github.com/drytrack/drytrack-backend/internal/users"
	"github.com/drytrack/drytrack-backend/pkg/db/models"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"github.com/drytrack/drytrack-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type userLister interface {
	List(ctx context.Context) ([]models.User, error)
}

type localityLister interface {
	ListMunicipalities(ctx context.Context) ([]models.Municipality, error)
	ListBarangays(ctx context.Context) ([]models.Barangay, error)
}

// UsersList serves the staff directory used by offline clients.
func UsersList(repo userLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			unavailable(w, r, logg, "users repository")
			return
		}
		rows, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users"))
			return
		}
		out := make([]*users.UserDTO, 0, len(rows))
		for i := range rows {
			out = append(out, users.FromModel(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{"users": out})
	}
}

func BarangaysList(repo localityLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			unavailable(w, r, logg, "localities repository")
			return
		}
		rows, err := repo.ListBarangays(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list barangays"))
			return
		}
		out := make([]localities.BarangayDTO, 0, len(rows))
		for i := range rows {
			out = append(out, localities.BarangayFromModel(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{"barangays": out})
	}
}

func MunicipalitiesList(repo localityLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			unavailable(w, r, logg, "localities repository")
			return
		}
		rows, err := repo.ListMunicipalities(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list municipalities"))
			return
		}
		out := make([]localities.MunicipalityDTO, 0, len(rows))
		for i := range rows {
			out = append(out, localities.MunicipalityFromModel(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{"municipalities": out})
	}
}

// FarmerProfile looks up a farmer's public fields by username.
func FarmerProfile(svc farmers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "farmers service")
			return
		}
		profile, err := svc.PublicProfile(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
