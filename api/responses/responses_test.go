package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"github.com/drytrack/drytrack-backend/pkg/logger"
	"github.com/drytrack/drytrack-backend/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", got)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Status != types.StatusSuccess {
		t.Fatalf("unexpected status %q", body.Status)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"field": "demo"})
	WriteError(context.Background(), logger.Nop(), w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Status != types.StatusError {
		t.Fatalf("unexpected status %q", body.Status)
	}
	if body.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", body.Code)
	}
	if body.Message != "bad input" {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if body.Details == nil {
		t.Fatalf("expected details in public payload")
	}
}

func TestWriteErrorExposesPersistenceCause(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("disk full"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %s", body.Code)
	}
	if body.Message != "unexpected error: disk full" {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if body.Details != nil {
		t.Fatalf("details should be omitted for internal errors")
	}
}

func TestWriteErrorHidesDependencyMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "redis at 10.0.0.3 refused"))

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if w.Code != http.StatusServiceUnavailable || body.Message != "dependency unavailable" {
		t.Fatalf("unexpected response %d %q", w.Code, body.Message)
	}
}

func TestWantsJSON(t *testing.T) {
	cases := []struct {
		name   string
		header map[string]string
		want   bool
	}{
		{name: "browser", header: map[string]string{"Accept": "text/html,application/xhtml+xml,*/*;q=0.8"}, want: false},
		{name: "accept json", header: map[string]string{"Accept": "application/json"}, want: true},
		{name: "json body", header: map[string]string{"Content-Type": "application/json; charset=utf-8"}, want: true},
		{name: "form post", header: map[string]string{"Content-Type": "application/x-www-form-urlencoded"}, want: false},
		{name: "no headers", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/records", nil)
			for k, v := range tc.header {
				r.Header.Set(k, v)
			}
			if got := WantsJSON(r); got != tc.want {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}

func TestRedirectUsesSeeOther(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/add_record", nil)
	Redirect(w, r, "/records")
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/records" {
		t.Fatalf("unexpected redirect %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestFailBrowserRedirects(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/records", nil)
	Fail(w, r, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Fatalf("expected login redirect got %d %q", w.Code, w.Header().Get("Location"))
	}

	farmer := &pkgauth.Principal{Ref: pkgauth.FarmerRef(1), Role: enums.RoleFarmer}
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/farmers", nil)
	r = r.WithContext(pkgauth.WithPrincipal(r.Context(), farmer))
	Fail(w, r, nil, pkgerrors.New(pkgerrors.CodeForbidden, "barangay staff only"))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("expected landing redirect got %d %q", w.Code, w.Header().Get("Location"))
	}

	w = httptest.NewRecorder()
	Fail(w, httptest.NewRequest(http.MethodGet, "/edit_record/9", nil), nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestFailJSONUsesEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/records", nil)
	r.Header.Set("Accept", "application/json")
	Fail(w, r, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}
