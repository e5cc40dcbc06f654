package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/drytrack/drytrack-backend/pkg/enums"
)

// PrincipalRef identifies a principal across the disjoint user and farmer id
// namespaces. Its string form is "user-<id>" or "farmer-<id>".
type PrincipalRef struct {
	Kind enums.PrincipalKind
	ID   uint
}

func UserRef(id uint) PrincipalRef {
	return PrincipalRef{Kind: enums.PrincipalKindUser, ID: id}
}

func FarmerRef(id uint) PrincipalRef {
	return PrincipalRef{Kind: enums.PrincipalKindFarmer, ID: id}
}

func (r PrincipalRef) String() string {
	return fmt.Sprintf("%s-%d", r.Kind, r.ID)
}

func (r PrincipalRef) IsFarmer() bool { return r.Kind == enums.PrincipalKindFarmer }

// ParsePrincipalRef decodes a tagged principal id.
func ParsePrincipalRef(value string) (PrincipalRef, error) {
	tag, rawID, ok := strings.Cut(strings.TrimSpace(value), "-")
	if !ok {
		return PrincipalRef{}, fmt.Errorf("principal id %q missing type tag", value)
	}
	kind, err := enums.ParsePrincipalKind(tag)
	if err != nil {
		return PrincipalRef{}, err
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		return PrincipalRef{}, fmt.Errorf("principal id %q has invalid numeric part", value)
	}
	return PrincipalRef{Kind: kind, ID: uint(id)}, nil
}

// Principal is the resolved, authenticated actor of a request.
type Principal struct {
	Ref            PrincipalRef
	Role           enums.Role
	DisplayName    string
	BarangayID     *uint
	MunicipalityID *uint
}

// FarmerID returns the farmer id when the principal is a farmer.
func (p *Principal) FarmerID() (uint, bool) {
	if p == nil || !p.Ref.IsFarmer() {
		return 0, false
	}
	return p.Ref.ID, true
}

// UserID returns the staff user id when the principal is a user.
func (p *Principal) UserID() (uint, bool) {
	if p == nil || p.Ref.Kind != enums.PrincipalKindUser {
		return 0, false
	}
	return p.Ref.ID, true
}

type principalKey struct{}

// WithPrincipal stores the resolved principal on the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal placed by the session middleware.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
