package controllers

import (
	"net/http"

	"github.com/drytrack/drytrack-backend/api/responses"
	"github.com/drytrack/drytrack-backend/api/views"
	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"github.com/drytrack/drytrack-backend/pkg/logger"
)

// principal returns the authenticated actor or writes the unauthorized response.
func principal(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*pkgauth.Principal, bool) {
	p, ok := pkgauth.PrincipalFromContext(r.Context())
	if !ok || p == nil {
		responses.Fail(w, r, logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return nil, false
	}
	return p, true
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.Fail(w, r, logg, pkgerrors.New(pkgerrors.CodeInternal, name+" unavailable"))
}

// render writes an HTML page, falling back to the error path when the
// template itself fails.
func render(w http.ResponseWriter, r *http.Request, logg *logger.Logger, renderer *views.Renderer, status int, name string, page views.Page) {
	if renderer == nil {
		unavailable(w, r, logg, "views")
		return
	}
	if page.Principal == nil {
		page.Principal, _ = pkgauth.PrincipalFromContext(r.Context())
	}
	if err := renderer.Render(w, status, name, page); err != nil {
		responses.Fail(w, r, logg, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render page"))
	}
}

// rerender shows a submitted form again with the failure message. Validation,
// conflict, forbidden and unauthorized outcomes are shown inline, plus any
// extra codes the caller names; anything else takes the normal error path.
func rerender(w http.ResponseWriter, r *http.Request, logg *logger.Logger, renderer *views.Renderer, name string, page views.Page, err error, extra ...pkgerrors.Code) {
	code := pkgerrors.CodeOf(err)
	if !inlineCode(code, extra) {
		responses.Fail(w, r, logg, err)
		return
	}
	if logg != nil {
		logg.Warn(logg.WithFields(r.Context(), pkgerrors.Dump(err).Fields()), "form.rejected")
	}
	page.Flash = flashMessage(err)
	page.Form = formValues(r)
	render(w, r, logg, renderer, pkgerrors.MetadataFor(code).HTTPStatus, name, page)
}

func inlineCode(code pkgerrors.Code, extra []pkgerrors.Code) bool {
	switch code {
	case pkgerrors.CodeValidation, pkgerrors.CodeConflict, pkgerrors.CodeForbidden, pkgerrors.CodeUnauthorized:
		return true
	}
	for _, c := range extra {
		if c == code {
			return true
		}
	}
	return false
}

func flashMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.PublicMessage()
	}
	return "unexpected error"
}

// formValues echoes the submitted form back into the template, minus secrets.
func formValues(r *http.Request) map[string]string {
	out := map[string]string{}
	if r.PostForm == nil {
		return out
	}
	for key, values := range r.PostForm {
		switch key {
		case "password", "password1", "password2":
			continue
		}
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	return out
}
