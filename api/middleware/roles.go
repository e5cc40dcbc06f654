package middleware

import (
	"net/http"

	pkgaccess "github.com/drytrack/drytrack-backend/pkg/access"
	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"github.com/drytrack/drytrack-backend/pkg/logger"
)

// Authorize runs the access gate for action against the session principal.
func Authorize(action enums.Action, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := pkgauth.PrincipalFromContext(r.Context())
			if !ok {
				deny(w, r, logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			if !pkgaccess.Authorize(principal.Role, action) {
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "action", action.String()), "access.denied")
				}
				deny(w, r, logg, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to "+action.String()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole restricts a route to the listed roles.
func RequireRole(logg *logger.Logger, roles ...enums.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := pkgauth.PrincipalFromContext(r.Context())
			if !ok {
				deny(w, r, logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			deny(w, r, logg, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
		})
	}
}
