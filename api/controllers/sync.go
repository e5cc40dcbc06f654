package controllers

import (
	"net/http"

	"github.com/drytrack/drytrack-backend/api/responses"
	"github.com/drytrack/drytrack-backend/api/validators"
	"github.com/drytrack/drytrack-backend/internal/records"
	"github.com/drytrack/drytrack-backend/pkg/logger"
)

type syncResponse struct {
	Message  string                 `json:"message"`
	Count    int                    `json:"count"`
	Accepted []uint                 `json:"accepted"`
	Skipped  []records.SkippedDraft `json:"skipped"`
}

// RecordsSync bulk-ingests drafts from offline clients. Drafts whose uuid is
// already stored are skipped, so resubmitting a payload is harmless.
func RecordsSync(svc records.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "records service")
			return
		}

		var payload records.SyncPayload
		if err := validators.DecodeJSONPayload(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Sync(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, syncResponse{
			Message:  "Records synced.",
			Count:    len(result.Accepted),
			Accepted: result.Accepted,
			Skipped:  result.Skipped,
		})
	}
}

// RecordsFetch lists a farmer's records by the farmer's external uuid.
func RecordsFetch(svc records.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "records service")
			return
		}

		rows, err := svc.FetchByFarmerUUID(r.Context(), r.URL.Query().Get("farmer_uuid"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"records": rows})
	}
}
