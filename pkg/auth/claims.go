package auth

import (
	"github.com/drytrack/drytrack-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenPayload captures the data available when minting a session JWT.
type SessionTokenPayload struct {
	Principal PrincipalRef
	Role      enums.Role
	JTI       string
}

// SessionTokenClaims is the typed JWT stored in the session cookie. The
// registered subject carries the tagged principal id.
type SessionTokenClaims struct {
	Role enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// PrincipalRef decodes the subject claim.
func (c *SessionTokenClaims) PrincipalRef() (PrincipalRef, error) {
	return ParsePrincipalRef(c.Subject)
}
