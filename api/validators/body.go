package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes bounds every decoded request body.
const MaxBodyBytes = 8 << 20

var (
	validate    = newValidator()
	formDecoder = form.NewDecoder()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			tag := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
			if tag != "" && tag != "-" {
				return tag
			}
		}
		return f.Name
	})
	return v
}

// DecodeRequest fills dest from a JSON body or an HTML form post, picked by
// Content-Type, then validates it.
func DecodeRequest(w http.ResponseWriter, r *http.Request, dest any) error {
	if isJSON(r) {
		return DecodeJSONBody(w, r, dest)
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}
	if err := formDecoder.Decode(dest, r.PostForm); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body").WithDetails(formDecodeDetails(err))
	}
	return Validate(dest)
}

func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dest any) error {
	if err := decodeJSON(w, r, dest, true); err != nil {
		return err
	}
	return Validate(dest)
}

// DecodeJSONPayload decodes without rejecting unknown fields or running struct
// validation. Offline clients send extra bookkeeping keys on sync drafts.
func DecodeJSONPayload(w http.ResponseWriter, r *http.Request, dest any) error {
	return decodeJSON(w, r, dest, false)
}

func Validate(dest any) error {
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any, strict bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer func() {
		io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.New(pkgerrors.CodeValidation, "request body is empty")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	return nil
}

func isJSON(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "application/json"
}

func formDecodeDetails(err error) map[string]string {
	details := map[string]string{}
	var decodeErrs form.DecodeErrors
	if errors.As(err, &decodeErrs) {
		for field, fieldErr := range decodeErrs {
			details[field] = fieldErr.Error()
		}
		return details
	}
	details["error"] = err.Error()
	return details
}

func formatValidationErrors(err error) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := map[string]string{}
		fields := make([]string, 0, len(errs))
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
			fields = append(fields, fieldErr.Field()+" "+details[fieldErr.Field()])
		}
		return pkgerrors.New(pkgerrors.CodeValidation, strings.Join(fields, "; ")).WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "eqfield":
		return fmt.Sprintf("must match %s", fe.Param())
	}
	return "is invalid"
}
