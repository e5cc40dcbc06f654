package controllers

import (
	"net/http"
	"time"

	"github.com/drytrack/drytrack-backend/api/middleware"
	"github.com/drytrack/drytrack-backend/api/responses"
	"github.com/drytrack/drytrack-backend/api/validators"
	"github.com/drytrack/drytrack-backend/api/views"
	"github.com/drytrack/drytrack-backend/internal/auth"
	pkgaccess "github.com/drytrack/drytrack-backend/pkg/access"
	"github.com/drytrack/drytrack-backend/pkg/config"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"github.com/drytrack/drytrack-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	oauthStateCookie = "drytrack_oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

func LoginPage(renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, logg, renderer, http.StatusOK, "login", views.Page{Title: "Log in"})
	}
}

// AuthLogin accepts an email (staff) or username (farmer) with a password,
// opens a session and sets the session cookie.
func AuthLogin(svc auth.Service, cfg config.SessionConfig, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth service")
			return
		}

		page := views.Page{Title: "Log in"}
		var body auth.LoginRequest
		if err := validators.DecodeRequest(w, r, &body); err != nil {
			failForm(w, r, logg, renderer, "login", page, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			failForm(w, r, logg, renderer, "login", page, err)
			return
		}

		setSessionCookie(w, cfg, result.Token, result.ExpiresAt)
		if responses.WantsJSON(r) {
			responses.WriteSuccess(w, result)
			return
		}
		responses.Redirect(w, r, pkgaccess.PathHome)
	}
}

// AuthLogout revokes the current session and clears the cookie.
func AuthLogout(svc auth.Service, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth service")
			return
		}
		if err := svc.Logout(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
			responses.Fail(w, r, logg, err)
			return
		}
		clearCookie(w, cfg.CookieName, cfg.CookieSecure)
		if responses.WantsJSON(r) {
			responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
			return
		}
		responses.Redirect(w, r, pkgaccess.PathLogin)
	}
}

// GoogleLogin starts the provider round trip, and on the callback leg turns
// the verified email into a session for the matching staff user.
func GoogleLogin(provider auth.IdentityProvider, svc auth.Service, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if provider == nil || svc == nil {
			responses.Redirect(w, r, pkgaccess.PathLogin)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			state := uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     oauthStateCookie,
				Value:    state,
				Path:     "/",
				MaxAge:   int(oauthStateTTL.Seconds()),
				HttpOnly: true,
				Secure:   cfg.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
			http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
			return
		}

		stored, err := r.Cookie(oauthStateCookie)
		clearCookie(w, oauthStateCookie, cfg.CookieSecure)
		if err != nil || stored.Value == "" || stored.Value != r.URL.Query().Get("state") {
			if logg != nil {
				logg.Warn(r.Context(), "auth.google.state_mismatch")
			}
			responses.Redirect(w, r, pkgaccess.PathLogin)
			return
		}

		email, err := provider.Email(r.Context(), code)
		if err != nil {
			if logg != nil {
				logg.Error(r.Context(), "auth.google.exchange_failed", err)
			}
			responses.Redirect(w, r, pkgaccess.PathLogin)
			return
		}

		result, err := svc.LoginWithEmail(r.Context(), email)
		if err != nil {
			if logg != nil {
				logg.Warn(logg.WithFields(r.Context(), pkgerrors.Dump(err).Fields()), "auth.google.rejected")
			}
			responses.Redirect(w, r, pkgaccess.PathLogin)
			return
		}
		setSessionCookie(w, cfg, result.Token, result.ExpiresAt)
		responses.Redirect(w, r, pkgaccess.PathHome)
	}
}

func SignUpPage(renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, logg, renderer, http.StatusOK, "sign_up", views.Page{Title: "Barangay sign up"})
	}
}

// AuthSignUp registers barangay staff.
func AuthSignUp(reg auth.RegisterService, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil {
			unavailable(w, r, logg, "register service")
			return
		}

		page := views.Page{Title: "Barangay sign up"}
		var body auth.SignUpRequest
		if err := validators.DecodeRequest(w, r, &body); err != nil {
			failForm(w, r, logg, renderer, "sign_up", page, err)
			return
		}

		user, err := reg.SignUpBarangay(r.Context(), body)
		if err != nil {
			failForm(w, r, logg, renderer, "sign_up", page, err)
			return
		}
		registered(r, logg, user.ID)
		if responses.WantsJSON(r) {
			responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"user": user})
			return
		}
		responses.Redirect(w, r, pkgaccess.PathLogin)
	}
}

func SignUpMunicipalPage(renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, logg, renderer, http.StatusOK, "sign_up_municipal", views.Page{Title: "Municipal sign up"})
	}
}

// AuthSignUpMunicipal registers a municipal officer.
func AuthSignUpMunicipal(reg auth.RegisterService, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil {
			unavailable(w, r, logg, "register service")
			return
		}

		page := views.Page{Title: "Municipal sign up"}
		var body auth.MunicipalSignUpRequest
		if err := validators.DecodeRequest(w, r, &body); err != nil {
			failForm(w, r, logg, renderer, "sign_up_municipal", page, err)
			return
		}

		user, err := reg.SignUpMunicipal(r.Context(), body)
		if err != nil {
			failForm(w, r, logg, renderer, "sign_up_municipal", page, err)
			return
		}
		registered(r, logg, user.ID)
		if responses.WantsJSON(r) {
			responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"user": user})
			return
		}
		responses.Redirect(w, r, pkgaccess.PathLogin)
	}
}

// failForm answers API clients with the error envelope and shows browsers
// the form again.
func failForm(w http.ResponseWriter, r *http.Request, logg *logger.Logger, renderer *views.Renderer, name string, page views.Page, err error) {
	if responses.WantsJSON(r) {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	rerender(w, r, logg, renderer, name, page, err)
}

func registered(r *http.Request, logg *logger.Logger, userID uint) {
	if logg != nil {
		logg.Info(logg.WithField(r.Context(), "user_id", userID), "auth.signup.created")
	}
}

func setSessionCookie(w http.ResponseWriter, cfg config.SessionConfig, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
