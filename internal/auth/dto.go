package auth

import (
	"time"

	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/enums"
)

// LoginRequest carries the login form. Email holds either a staff email or a
// farmer username; an "@" selects the staff lookup.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResponse describes an issued session.
type LoginResponse struct {
	Token       string               `json:"token"`
	SessionID   string               `json:"-"`
	Principal   pkgauth.PrincipalRef `json:"-"`
	PrincipalID string               `json:"principal"`
	Role        enums.Role           `json:"role"`
	DisplayName string               `json:"display_name"`
	ExpiresAt   time.Time            `json:"expires_at"`
}

// SignUpRequest registers barangay staff.
type SignUpRequest struct {
	Email        string `json:"email" form:"email" validate:"required,email"`
	FullName     string `json:"full_name" form:"full_name" validate:"max=150"`
	BarangayName string `json:"barangay_name" form:"barangay_name" validate:"required,max=150"`
	Municipality string `json:"municipality" form:"municipality" validate:"required,max=150"`
	Password1    string `json:"password1" form:"password1" validate:"required,min=6"`
	Password2    string `json:"password2" form:"password2" validate:"required"`
}

// MunicipalSignUpRequest registers a municipal officer.
type MunicipalSignUpRequest struct {
	Email        string `json:"email" form:"email" validate:"required,email"`
	FullName     string `json:"full_name" form:"full_name" validate:"max=150"`
	Municipality string `json:"municipality" form:"municipality" validate:"required,max=150"`
	Password1    string `json:"password1" form:"password1" validate:"required,min=6"`
	Password2    string `json:"password2" form:"password2" validate:"required"`
}

const (
	defaultBarangayFullName  = "Barangay Staff"
	defaultMunicipalFullName = "Municipal Officer"
)
