package auth

import (
	"context"
	"testing"

	"github.com/drytrack/drytrack-backend/pkg/enums"
)

func TestPrincipalRefRoundTrip(t *testing.T) {
	for _, ref := range []PrincipalRef{UserRef(12), FarmerRef(4)} {
		parsed, err := ParsePrincipalRef(ref.String())
		if err != nil {
			t.Fatalf("parse %q: %v", ref, err)
		}
		if parsed != ref {
			t.Fatalf("expected %+v got %+v", ref, parsed)
		}
	}
	if UserRef(12).String() != "user-12" || FarmerRef(4).String() != "farmer-4" {
		t.Fatal("unexpected tagged form")
	}
}

func TestParsePrincipalRefRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "12", "admin-1", "user-", "user-abc", "farmer-0", "user-1-2"} {
		if _, err := ParsePrincipalRef(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestPrincipalAccessors(t *testing.T) {
	farmer := &Principal{Ref: FarmerRef(5), Role: enums.RoleFarmer}
	if id, ok := farmer.FarmerID(); !ok || id != 5 {
		t.Fatalf("expected farmer id 5, got %d %v", id, ok)
	}
	if _, ok := farmer.UserID(); ok {
		t.Fatal("farmer has no user id")
	}

	staff := &Principal{Ref: UserRef(2), Role: enums.RoleBarangay}
	if id, ok := staff.UserID(); !ok || id != 2 {
		t.Fatalf("expected user id 2, got %d %v", id, ok)
	}

	ctx := WithPrincipal(context.Background(), staff)
	got, ok := PrincipalFromContext(ctx)
	if !ok || got != staff {
		t.Fatal("expected principal from context")
	}
	if _, ok := PrincipalFromContext(context.Background()); ok {
		t.Fatal("expected no principal on empty context")
	}
}
