package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/drytrack/drytrack-backend/api/responses"
	"github.com/drytrack/drytrack-backend/api/validators"
	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/auth/session"
	"github.com/drytrack/drytrack-backend/pkg/config"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"github.com/drytrack/drytrack-backend/pkg/logger"
)

type principalResolver interface {
	Resolve(ctx context.Context, ref pkgauth.PrincipalRef) (*pkgauth.Principal, error)
}

// Auth validates the session token from the cookie or bearer header, checks
// the session is still registered and seeds the context with the resolved
// principal. Browsers without a valid session are sent to the login page.
func Auth(cfg config.JWTConfig, cookieName string, checker session.Checker, resolver principalResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := validators.SessionToken(r, cookieName)
			if token == "" {
				deny(w, r, logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseSessionToken(cfg, token)
			if err != nil {
				deny(w, r, logg, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				deny(w, r, logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}
			ref, err := claims.PrincipalRef()
			if err != nil {
				deny(w, r, logg, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid subject"))
				return
			}

			if checker != nil {
				bound, err := checker.Principal(r.Context(), claims.ID)
				if err != nil {
					if errors.Is(err, session.ErrSessionNotFound) {
						deny(w, r, logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
						return
					}
					deny(w, r, logg, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if bound != ref {
					deny(w, r, logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "session does not match token"))
					return
				}
			}

			principal, err := resolver.Resolve(r.Context(), ref)
			if err != nil {
				deny(w, r, logg, err)
				return
			}

			ctx := pkgauth.WithPrincipal(r.Context(), principal)
			ctx = WithSessionID(ctx, claims.ID)
			if logg != nil {
				ctx = logg.WithPrincipal(ctx, principal.Ref.String())
				ctx = logg.WithActorRole(ctx, principal.Role.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error) {
	responses.Fail(w, r, logg, err)
}
