package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/drytrack/drytrack-backend/api/views"
	"github.com/drytrack/drytrack-backend/internal/analytics/types"
	"github.com/drytrack/drytrack-backend/internal/auth"
	"github.com/drytrack/drytrack-backend/internal/records"
	"github.com/drytrack/drytrack-backend/internal/users"
	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/config"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"github.com/drytrack/drytrack-backend/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionCfg = config.SessionConfig{CookieName: "drytrack_session"}

func newRenderer(t *testing.T) *views.Renderer {
	t.Helper()
	renderer, err := views.New()
	require.NoError(t, err)
	return renderer
}

func withPrincipal(r *http.Request, p *pkgauth.Principal) *http.Request {
	return r.WithContext(pkgauth.WithPrincipal(r.Context(), p))
}

func formRequest(method, target string, values url.Values) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	resp := httptest.NewRecorder()
	HealthReady(cfg, nil, stubPinger{}, stubPinger{})(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "test", resp.Header().Get("X-DryTrack-Env"))

	resp = httptest.NewRecorder()
	HealthReady(cfg, nil, stubPinger{}, stubPinger{err: errors.New("conn refused")})(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

type stubAuth struct {
	login    *auth.LoginResponse
	err      error
	loggedIn string
	revoked  string
}

func (s *stubAuth) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.loggedIn = req.Email
	return s.login, s.err
}

func (s *stubAuth) LoginWithEmail(ctx context.Context, email string) (*auth.LoginResponse, error) {
	s.loggedIn = email
	return s.login, s.err
}

func (s *stubAuth) Logout(ctx context.Context, sessionID string) error {
	s.revoked = sessionID
	return nil
}

func (s *stubAuth) Resolve(ctx context.Context, ref pkgauth.PrincipalRef) (*pkgauth.Principal, error) {
	return &pkgauth.Principal{Ref: ref}, nil
}

func TestAuthLoginBrowserSetsCookieAndRedirects(t *testing.T) {
	svc := &stubAuth{login: &auth.LoginResponse{Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}}
	r := formRequest(http.MethodPost, "/login", url.Values{"email": {"alice"}, "password": {"secret1"}})
	resp := httptest.NewRecorder()

	AuthLogin(svc, sessionCfg, newRenderer(t), nil)(resp, r)

	require.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/", resp.Header().Get("Location"))
	assert.Equal(t, "alice", svc.loggedIn)
	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "drytrack_session", cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAuthLoginBrowserFailureRerendersForm(t *testing.T) {
	svc := &stubAuth{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	r := formRequest(http.MethodPost, "/login", url.Values{"email": {"alice"}, "password": {"wrong"}})
	resp := httptest.NewRecorder()

	AuthLogin(svc, sessionCfg, newRenderer(t), nil)(resp, r)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "invalid credentials")
	assert.Contains(t, body, `value="alice"`)
	assert.NotContains(t, body, "wrong")
}

func TestAuthLoginJSON(t *testing.T) {
	svc := &stubAuth{login: &auth.LoginResponse{Token: "tok", Role: enums.RoleFarmer, PrincipalID: "farmer-1"}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"alice","password":"secret1"}`))
	r.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	AuthLogin(svc, sessionCfg, nil, nil)(resp, r)

	require.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "tok", body.Data["token"])
	assert.Equal(t, "farmer-1", body.Data["principal"])
}

type stubProvider struct {
	email string
	err   error
}

func (s stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.test/auth?state=" + state
}

func (s stubProvider) Email(ctx context.Context, code string) (string, error) {
	return s.email, s.err
}

func TestGoogleLoginWithoutProviderRedirectsToLogin(t *testing.T) {
	resp := httptest.NewRecorder()
	GoogleLogin(nil, &stubAuth{}, sessionCfg, nil)(resp, httptest.NewRequest(http.MethodGet, "/login/google", nil))
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/login", resp.Header().Get("Location"))
}

func TestGoogleLoginRoundTrip(t *testing.T) {
	svc := &stubAuth{login: &auth.LoginResponse{Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}}
	handler := GoogleLogin(stubProvider{email: "staff@example.com"}, svc, sessionCfg, nil)

	start := httptest.NewRecorder()
	handler(start, httptest.NewRequest(http.MethodGet, "/login/google", nil))
	require.Equal(t, http.StatusFound, start.Code)
	var state *http.Cookie
	for _, c := range start.Result().Cookies() {
		if c.Name == oauthStateCookie {
			state = c
		}
	}
	require.NotNil(t, state)
	assert.Contains(t, start.Header().Get("Location"), "state="+state.Value)

	mismatch := httptest.NewRequest(http.MethodGet, "/login/google?code=abc&state=other", nil)
	mismatch.AddCookie(state)
	resp := httptest.NewRecorder()
	handler(resp, mismatch)
	assert.Equal(t, "/login", resp.Header().Get("Location"))
	assert.Empty(t, svc.loggedIn)

	callback := httptest.NewRequest(http.MethodGet, "/login/google?code=abc&state="+state.Value, nil)
	callback.AddCookie(state)
	resp = httptest.NewRecorder()
	handler(resp, callback)
	assert.Equal(t, "/", resp.Header().Get("Location"))
	assert.Equal(t, "staff@example.com", svc.loggedIn)
}

type stubRegister struct{ err error }

func (s stubRegister) SignUpBarangay(ctx context.Context, req auth.SignUpRequest) (*users.UserDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &users.UserDTO{ID: 1, Email: req.Email, Role: enums.RoleBarangay}, nil
}

func (s stubRegister) SignUpMunicipal(ctx context.Context, req auth.MunicipalSignUpRequest) (*users.UserDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &users.UserDTO{ID: 2, Email: req.Email, Role: enums.RoleMunicipal}, nil
}

func TestAuthSignUp(t *testing.T) {
	values := url.Values{
		"email":         {"staff@example.com"},
		"barangay_name": {"San Isidro"},
		"municipality":  {"Tarlac"},
		"password1":     {"secret1"},
		"password2":     {"secret1"},
	}
	resp := httptest.NewRecorder()
	AuthSignUp(stubRegister{}, newRenderer(t), nil)(resp, formRequest(http.MethodPost, "/sign-up", values))
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/login", resp.Header().Get("Location"))

	resp = httptest.NewRecorder()
	conflict := stubRegister{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	AuthSignUp(conflict, newRenderer(t), nil)(resp, formRequest(http.MethodPost, "/sign-up", values))
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "email already registered")
}

type stubRecords struct {
	records.Service
	syncResult *records.SyncResult
	created    *records.RecordDTO
	createErr  error
	options    []records.FarmerOption
	optionsErr error
	page       *records.Page
	listParams pagination.Params
}

func (s *stubRecords) Sync(ctx context.Context, payload records.SyncPayload) (*records.SyncResult, error) {
	return s.syncResult, nil
}

func (s *stubRecords) Create(ctx context.Context, p *pkgauth.Principal, form records.RecordForm) (*records.RecordDTO, error) {
	return s.created, s.createErr
}

func (s *stubRecords) FarmerOptions(ctx context.Context, p *pkgauth.Principal) ([]records.FarmerOption, error) {
	return s.options, s.optionsErr
}

func (s *stubRecords) List(ctx context.Context, p *pkgauth.Principal, params pagination.Params) (*records.Page, error) {
	s.listParams = params
	return s.page, nil
}

func TestRecordsSync(t *testing.T) {
	svc := &stubRecords{syncResult: &records.SyncResult{
		Accepted: []uint{4, 5},
		Skipped:  []records.SkippedDraft{{Index: 2, UUID: "x", Reason: records.SkipInvalidUUID}},
	}}
	r := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(`{"records":[]}`))
	r.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	RecordsSync(svc, nil)(resp, r)

	require.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Data syncResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Records synced.", body.Data.Message)
	assert.Equal(t, 2, body.Data.Count)
	require.Len(t, body.Data.Skipped, 1)
	assert.Equal(t, records.SkipInvalidUUID, body.Data.Skipped[0].Reason)
}

func TestRecordsSyncRejectsMalformedBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(`{"records":`))
	resp := httptest.NewRecorder()
	RecordsSync(&stubRecords{}, nil)(resp, r)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAddRecordBrowserValidationRerenders(t *testing.T) {
	svc := &stubRecords{options: []records.FarmerOption{{ID: 3, Name: "Alice Cruz"}}}
	staff := &pkgauth.Principal{Ref: pkgauth.UserRef(1), Role: enums.RoleBarangay}
	r := withPrincipal(formRequest(http.MethodPost, "/add_record", url.Values{"batch_name": {"B-1"}, "farmer_id": {"3"}}), staff)
	resp := httptest.NewRecorder()

	AddRecord(svc, newRenderer(t), nil)(resp, r)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "Alice Cruz")
	assert.Contains(t, body, `value="B-1"`)
}

func TestAddRecordBrowserUnknownFarmerRerenders(t *testing.T) {
	svc := &stubRecords{
		options:   []records.FarmerOption{{ID: 3, Name: "Alice Cruz"}},
		createErr: pkgerrors.New(pkgerrors.CodeNotFound, "farmer not found"),
	}
	staff := &pkgauth.Principal{Ref: pkgauth.UserRef(1), Role: enums.RoleBarangay}
	r := withPrincipal(formRequest(http.MethodPost, "/add_record", url.Values{
		"batch_name": {"B-2"}, "farmer_id": {"99"}, "initial_weight": {"100"}, "final_weight": {"80"},
	}), staff)
	resp := httptest.NewRecorder()

	AddRecord(svc, newRenderer(t), nil)(resp, r)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "farmer not found")
	assert.Contains(t, body, "Alice Cruz")
	assert.Contains(t, body, `value="B-2"`)
}

func TestAddRecordReportsFormReloadFailure(t *testing.T) {
	svc := &stubRecords{
		optionsErr: pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("connection reset"), "list farmer options"),
	}
	staff := &pkgauth.Principal{Ref: pkgauth.UserRef(1), Role: enums.RoleBarangay}
	// The missing weights fail validation, then reloading the farmer list fails too.
	r := withPrincipal(formRequest(http.MethodPost, "/add_record", url.Values{"batch_name": {"B-3"}, "farmer_id": {"3"}}), staff)
	resp := httptest.NewRecorder()

	AddRecord(svc, newRenderer(t), nil)(resp, r)

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "list farmer options: connection reset")
}

func TestAddRecordJSONCreated(t *testing.T) {
	svc := &stubRecords{created: &records.RecordDTO{ID: 11, BatchName: "B-1"}}
	farmer := &pkgauth.Principal{Ref: pkgauth.FarmerRef(3), Role: enums.RoleFarmer}
	r := httptest.NewRequest(http.MethodPost, "/add_record", strings.NewReader(`{"batch_name":"B-1","initial_weight":100,"final_weight":80}`))
	r.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	AddRecord(svc, nil, nil)(resp, withPrincipal(r, farmer))

	assert.Equal(t, http.StatusCreated, resp.Code)
}

func TestRecordsListPassesPagination(t *testing.T) {
	svc := &stubRecords{page: &records.Page{Records: []records.RecordDTO{{ID: 1, BatchName: "B-9"}}}}
	farmer := &pkgauth.Principal{Ref: pkgauth.FarmerRef(3), Role: enums.RoleFarmer}
	r := withPrincipal(httptest.NewRequest(http.MethodGet, "/records?limit=5&cursor=abc", nil), farmer)
	resp := httptest.NewRecorder()

	RecordsList(svc, newRenderer(t), nil)(resp, r)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, pagination.Params{Limit: 5, Cursor: "abc"}, svc.listParams)
	assert.Contains(t, resp.Body.String(), "B-9")
}

type stubAnalytics struct {
	period   enums.Period
	audience enums.Role
}

func (s *stubAnalytics) Dashboard(ctx context.Context, p *pkgauth.Principal) (*types.Dashboard, error) {
	return &types.Dashboard{View: "batch", Role: p.Role}, nil
}

func (s *stubAnalytics) BarangayDashboard(ctx context.Context, p *pkgauth.Principal, view string) (*types.Dashboard, error) {
	return &types.Dashboard{View: view, Role: p.Role}, nil
}

func (s *stubAnalytics) Yield(ctx context.Context, p *pkgauth.Principal, audience enums.Role, period enums.Period) (*types.Yield, error) {
	s.period, s.audience = period, audience
	return &types.Yield{Period: period}, nil
}

func (s *stubAnalytics) MunicipalityDashboard(ctx context.Context, p *pkgauth.Principal, id uint) (*types.MunicipalityDashboard, error) {
	return &types.MunicipalityDashboard{Municipality: types.LocalityRef{ID: id, Name: "Tarlac"}}, nil
}

func (s *stubAnalytics) MunicipalityYield(ctx context.Context, p *pkgauth.Principal, id uint, period enums.Period) (*types.Yield, error) {
	s.period = period
	return &types.Yield{Period: period}, nil
}

func TestBarangayDashboardRedirectsFarmer(t *testing.T) {
	farmer := &pkgauth.Principal{Ref: pkgauth.FarmerRef(3), Role: enums.RoleFarmer}
	resp := httptest.NewRecorder()
	BarangayDashboard(&stubAnalytics{}, newRenderer(t), nil)(resp, withPrincipal(httptest.NewRequest(http.MethodGet, "/barangay_dashboard", nil), farmer))
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/records", resp.Header().Get("Location"))
}

func TestYieldPeriodDefaults(t *testing.T) {
	municipal := &pkgauth.Principal{Ref: pkgauth.UserRef(1), Role: enums.RoleMunicipal}
	barangay := &pkgauth.Principal{Ref: pkgauth.UserRef(2), Role: enums.RoleBarangay}

	cases := []struct {
		name     string
		handler  func(*stubAnalytics) http.HandlerFunc
		target   string
		p        *pkgauth.Principal
		period   enums.Period
		audience enums.Role
	}{
		{"municipal default", func(s *stubAnalytics) http.HandlerFunc { return MunicipalAnalytics(s, nil, nil) }, "/analytics", municipal, enums.PeriodYear, enums.RoleMunicipal},
		{"municipal month", func(s *stubAnalytics) http.HandlerFunc { return MunicipalAnalytics(s, nil, nil) }, "/analytics?view=MONTH", municipal, enums.PeriodMonth, enums.RoleMunicipal},
		{"barangay default", func(s *stubAnalytics) http.HandlerFunc { return BarangayAnalytics(s, nil, nil) }, "/barangay_analytics", barangay, enums.PeriodMonth, enums.RoleBarangay},
		{"barangay unknown", func(s *stubAnalytics) http.HandlerFunc { return BarangayAnalytics(s, nil, nil) }, "/barangay_analytics?period=week", barangay, enums.PeriodMonth, enums.RoleBarangay},
		{"farmer year", func(s *stubAnalytics) http.HandlerFunc { return FarmerAnalytics(s, nil, nil) }, "/farmer_analytics?period=year", barangay, enums.PeriodYear, enums.RoleFarmer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubAnalytics{}
			r := withPrincipal(httptest.NewRequest(http.MethodGet, tc.target, nil), tc.p)
			r.Header.Set("Accept", "application/json")
			resp := httptest.NewRecorder()
			tc.handler(svc)(resp, r)
			require.Equal(t, http.StatusOK, resp.Code)
			assert.Equal(t, tc.period, svc.period)
			assert.Equal(t, tc.audience, svc.audience)
		})
	}
}
