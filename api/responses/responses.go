package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"
	"strings"

	pkgaccess "github.com/drytrack/drytrack-backend/pkg/access"
	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"github.com/drytrack/drytrack-backend/pkg/logger"
	"github.com/drytrack/drytrack-backend/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Status: types.StatusSuccess, Data: data})
}

// WriteError maps err onto its typed code and writes the JSON error envelope.
// Untyped errors are reported as internal failures.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	payload := types.ErrorEnvelope{
		Status:  types.StatusError,
		Code:    string(typed.Code()),
		Message: typed.PublicMessage(),
	}
	if meta.DetailsAllowed {
		payload.Details = typed.Details()
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.error")
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

// Fail answers an API client with the JSON error envelope. Browsers are sent
// to the login page when unauthenticated, to their role landing page when the
// gate denies them, and get a plain text error page otherwise.
func Fail(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error) {
	if WantsJSON(r) {
		WriteError(r.Context(), logg, w, err)
		return
	}
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeUnauthorized:
		Redirect(w, r, pkgaccess.PathLogin)
		return
	case pkgerrors.CodeForbidden:
		var role enums.Role
		if p, ok := pkgauth.PrincipalFromContext(r.Context()); ok {
			role = p.Role
		}
		Redirect(w, r, pkgaccess.LandingPage(role))
		return
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	status := pkgerrors.MetadataFor(typed.Code()).HTTPStatus
	if logg != nil {
		ctx := logg.WithFields(r.Context(), pkgerrors.Dump(err).Fields())
		if status >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.error")
		}
	}
	http.Error(w, typed.PublicMessage(), status)
}

// Redirect sends a browser to location with 303 so a POST is followed by a GET.
func Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// WantsJSON reports whether the caller is an API client rather than a browser.
// Requests declaring a JSON body or preferring a JSON response qualify.
func WantsJSON(r *http.Request) bool {
	if r == nil {
		return false
	}
	if ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && ct == "application/json" {
		return true
	}
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if mt == "application/json" {
			return true
		}
		if mt == "text/html" {
			return false
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
