package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drytrack/drytrack-backend/api/controllers"
	"github.com/drytrack/drytrack-backend/api/middleware"
	"github.com/drytrack/drytrack-backend/api/views"
	"github.com/drytrack/drytrack-backend/internal/analytics"
	"github.com/drytrack/drytrack-backend/internal/auth"
	"github.com/drytrack/drytrack-backend/internal/farmers"
	"github.com/drytrack/drytrack-backend/internal/localities"
	"github.com/drytrack/drytrack-backend/internal/records"
	"github.com/drytrack/drytrack-backend/internal/users"
	"github.com/drytrack/drytrack-backend/pkg/auth/session"
	"github.com/drytrack/drytrack-backend/pkg/config"
	"github.com/drytrack/drytrack-backend/pkg/db"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	"github.com/drytrack/drytrack-backend/pkg/logger"
	"github.com/drytrack/drytrack-backend/pkg/metrics"
	"github.com/drytrack/drytrack-backend/pkg/redis"
)

// Params carries everything the router wires into handlers. Nil stores turn
// the matching middleware into a pass-through.
type Params struct {
	Config *config.Config
	Logger *logger.Logger
	Views  *views.Renderer

	DBPinger    db.Pinger
	RedisPinger redis.Pinger
	RateLimits  redis.RateLimitStore
	Idempotency redis.IdempotencyStore
	Sessions    session.Checker
	Metrics     *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	Auth       auth.Service
	Register   auth.RegisterService
	Google     auth.IdentityProvider
	Records    records.Service
	Analytics  analytics.Service
	Farmers    farmers.Service
	Users      *users.Repository
	Localities *localities.Repository
}

func NewRouter(p Params) http.Handler {
	cfg, logg, page := p.Config, p.Logger, p.Views

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.Metrics),
	)

	loginLimit := middleware.AuthRateLimit(middleware.LoginRateLimitPolicy(cfg.AuthRateLimit), p.RateLimits, logg)
	registerLimit := middleware.AuthRateLimit(middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit), p.RateLimits, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DBPinger, p.RedisPinger))
	})
	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	// Offline field clients: no session, cross-origin.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
		r.With(middleware.Idempotency(p.Idempotency, cfg.Sync.IdempotencyTTL, logg)).Post("/sync", controllers.RecordsSync(p.Records, logg))
		r.Options("/sync", preflight)
		r.Get("/fetch", controllers.RecordsFetch(p.Records, logg))
		r.Options("/fetch", preflight)
	})

	r.Get("/farmers/{username}", controllers.FarmerProfile(p.Farmers, logg))
	r.Get("/users", controllers.UsersList(p.Users, logg))
	r.Get("/barangays", controllers.BarangaysList(p.Localities, logg))
	r.Get("/municipalities", controllers.MunicipalitiesList(p.Localities, logg))

	r.Get("/login", controllers.LoginPage(page, logg))
	r.With(loginLimit).Post("/login", controllers.AuthLogin(p.Auth, cfg.Session, page, logg))
	r.Get("/login/google", controllers.GoogleLogin(p.Google, p.Auth, cfg.Session, logg))
	r.Get("/login/google/callback", controllers.GoogleLogin(p.Google, p.Auth, cfg.Session, logg))
	r.Get("/sign-up", controllers.SignUpPage(page, logg))
	r.With(registerLimit).Post("/sign-up", controllers.AuthSignUp(p.Register, page, logg))
	r.Get("/sign-up-municipal", controllers.SignUpMunicipalPage(page, logg))
	r.With(registerLimit).Post("/sign-up-municipal", controllers.AuthSignUpMunicipal(p.Register, page, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, cfg.Session.CookieName, p.Sessions, p.Auth, logg))

		r.Get("/logout", controllers.AuthLogout(p.Auth, cfg.Session, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, cfg.Session, logg))

		r.With(middleware.Authorize(enums.ActionViewDashboard, logg)).Get("/", controllers.Dashboard(p.Analytics, page, logg))
		r.With(middleware.Authorize(enums.ActionViewDashboard, logg)).Get("/barangay_dashboard", controllers.BarangayDashboard(p.Analytics, page, logg))

		r.With(middleware.Authorize(enums.ActionViewRecords, logg)).Get("/records", controllers.RecordsList(p.Records, page, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(enums.ActionAddRecord, logg))
			r.Get("/add_record", controllers.AddRecordPage(p.Records, page, logg))
			r.Post("/add_record", controllers.AddRecord(p.Records, page, logg))
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(enums.ActionEditRecord, logg))
			r.Get("/edit_record/{id}", controllers.EditRecordPage(p.Records, page, logg))
			r.Post("/edit_record/{id}", controllers.EditRecord(p.Records, page, logg))
		})
		r.With(middleware.Authorize(enums.ActionDeleteRecord, logg)).Post("/delete_record/{id}", controllers.DeleteRecord(p.Records, logg))

		r.With(middleware.Authorize(enums.ActionManageFarmers, logg)).Get("/farmers", controllers.FarmersList(p.Farmers, page, logg))
		r.With(middleware.Authorize(enums.ActionCreateFarmer, logg)).Post("/add-farmer", controllers.AddFarmer(p.Farmers, page, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(enums.ActionViewAnalytics, logg))
			r.With(middleware.RequireRole(logg, enums.RoleMunicipal)).Get("/analytics", controllers.MunicipalAnalytics(p.Analytics, page, logg))
			r.With(middleware.RequireRole(logg, enums.RoleBarangay)).Get("/barangay_analytics", controllers.BarangayAnalytics(p.Analytics, page, logg))
			r.With(middleware.RequireRole(logg, enums.RoleFarmer)).Get("/farmer_analytics", controllers.FarmerAnalytics(p.Analytics, page, logg))

			staff := middleware.RequireRole(logg, enums.RoleBarangay, enums.RoleMunicipal)
			r.With(staff).Get("/municipality_dashboard/{id}", controllers.MunicipalityDashboard(p.Analytics, page, logg))
			r.With(staff).Get("/municipality_analytics/{id}", controllers.MunicipalityAnalytics(p.Analytics, page, logg))
		})
	})

	return r
}

func preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
