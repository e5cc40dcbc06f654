package controllers

import (
	"net/http"
	"strconv"

	"github.com/drytrack/drytrack-backend/api/responses"
	"github.com/drytrack/drytrack-backend/api/validators"
	"github.com/drytrack/drytrack-backend/api/views"
	"github.com/drytrack/drytrack-backend/internal/records"
	pkgaccess "github.com/drytrack/drytrack-backend/pkg/access"
	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"github.com/drytrack/drytrack-backend/pkg/logger"
	"github.com/drytrack/drytrack-backend/pkg/pagination"
)

// RecordsList returns the records visible to the principal, newest first.
func RecordsList(svc records.Service, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "records service")
			return
		}
		p, ok := principal(w, r, logg)
		if !ok {
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.Fail(w, r, logg, err)
			return
		}
		page, err := svc.List(r.Context(), p, pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")})
		if err != nil {
			responses.Fail(w, r, logg, err)
			return
		}
		if responses.WantsJSON(r) {
			responses.WriteSuccess(w, page)
			return
		}
		render(w, r, logg, renderer, http.StatusOK, "records", views.Page{
			Title:     "Records",
			Principal: p,
			Data: views.RecordsData{
				Records:    page.Records,
				NextCursor: page.NextCursor,
				CanEdit:    pkgaccess.Authorize(p.Role, enums.ActionEditRecord),
			},
		})
	}
}

func AddRecordPage(svc records.Service, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "records service")
			return
		}
		p, ok := principal(w, r, logg)
		if !ok {
			return
		}
		page, err := addRecordPage(r, svc, p)
		if err != nil {
			responses.Fail(w, r, logg, err)
			return
		}
		render(w, r, logg, renderer, http.StatusOK, "add_record", page)
	}
}

// AddRecord stores one interactively entered record. Barangay staff pick the
// farmer; a farmer always records for themself.
func AddRecord(svc records.Service, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "records service")
			return
		}
		p, ok := principal(w, r, logg)
		if !ok {
			return
		}

		var form records.RecordForm
		err := validators.DecodeRequest(w, r, &form)
		var created *records.RecordDTO
		if err == nil {
			created, err = svc.Create(r.Context(), p, form)
		}
		if err != nil {
			if responses.WantsJSON(r) {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			page, pageErr := addRecordPage(r, svc, p)
			if pageErr != nil {
				responses.Fail(w, r, logg, pageErr)
				return
			}
			// An unknown farmer_id is a bad pick on the form, not a missing page.
			rerender(w, r, logg, renderer, "add_record", page, err, pkgerrors.CodeNotFound)
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "record_id", created.ID), "records.created")
		}
		if responses.WantsJSON(r) {
			responses.WriteSuccessStatus(w, http.StatusCreated, created)
			return
		}
		responses.Redirect(w, r, pkgaccess.PathRecords)
	}
}

func addRecordPage(r *http.Request, svc records.Service, p *pkgauth.Principal) (views.Page, error) {
	options, err := svc.FarmerOptions(r.Context(), p)
	if err != nil {
		return views.Page{}, err
	}
	return views.Page{
		Title:     "Add record",
		Principal: p,
		Data: views.RecordFormData{
			Farmers:    options,
			PickFarmer: p.Role == enums.RoleBarangay,
		},
	}, nil
}

func EditRecordPage(svc records.Service, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "records service")
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
		record, err := svc.Get(r.Context(), p, id)
		if err != nil {
			responses.Fail(w, r, logg, err)
			return
		}
		if responses.WantsJSON(r) {
			responses.WriteSuccess(w, record)
			return
		}
		render(w, r, logg, renderer, http.StatusOK, "edit_record", views.Page{
			Title:     "Edit record",
			Principal: p,
			Form:      recordFormValues(record),
			Data:      views.RecordFormData{Record: record},
		})
	}
}

// EditRecord overwrites the measured fields of a record in scope. The
// farmer and barangay snapshot is left untouched.
func EditRecord(svc records.Service, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "records service")
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

		var form records.RecordForm
		err = validators.DecodeRequest(w, r, &form)
		var updated *records.RecordDTO
		if err == nil {
			updated, err = svc.Update(r.Context(), p, id, form)
		}
		if err != nil {
			if responses.WantsJSON(r) {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			current, getErr := svc.Get(r.Context(), p, id)
			if getErr != nil {
				responses.Fail(w, r, logg, getErr)
				return
			}
			rerender(w, r, logg, renderer, "edit_record", views.Page{
				Title:     "Edit record",
				Principal: p,
				Data:      views.RecordFormData{Record: current},
			}, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "record_id", updated.ID), "records.updated")
		}
		if responses.WantsJSON(r) {
			responses.WriteSuccess(w, updated)
			return
		}
		responses.Redirect(w, r, pkgaccess.PathRecords)
	}
}

func DeleteRecord(svc records.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "records service")
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
		if err := svc.Delete(r.Context(), p, id); err != nil {
			responses.Fail(w, r, logg, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "record_id", id), "records.deleted")
		}
		if responses.WantsJSON(r) {
			responses.WriteSuccess(w, map[string]any{"deleted": id})
			return
		}
		responses.Redirect(w, r, pkgaccess.PathRecords)
	}
}

func recordFormValues(rec *records.RecordDTO) map[string]string {
	if rec == nil {
		return nil
	}
	number := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	text := func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	}
	return map[string]string{
		"batch_name":       rec.BatchName,
		"initial_weight":   number(rec.InitialWeight),
		"final_weight":     number(rec.FinalWeight),
		"temperature":      number(rec.Temperature),
		"humidity":         number(rec.Humidity),
		"sensor_value":     number(rec.SensorValue),
		"initial_moisture": number(rec.InitialMoisture),
		"final_moisture":   number(rec.FinalMoisture),
		"drying_time":      rec.DryingTime,
		"shelf_life":       text(rec.ShelfLife),
		"due_date":         text(rec.DueDate),
		"date_planted":     text(rec.DatePlanted),
		"date_harvested":   text(rec.DateHarvested),
		"date_dried":       text(rec.DateDried),
	}
}
