package enums

import "fmt"

// PrincipalKind tags which identifier namespace a principal id lives in.
type PrincipalKind string

const (
	PrincipalKindUser   PrincipalKind = "user"
	PrincipalKindFarmer PrincipalKind = "farmer"
)

var validPrincipalKinds = []PrincipalKind{
	PrincipalKindUser,
	PrincipalKindFarmer,
}

func (k PrincipalKind) String() string {
	return string(k)
}

func (k PrincipalKind) IsValid() bool {
	for _, candidate := range validPrincipalKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

func ParsePrincipalKind(value string) (PrincipalKind, error) {
	for _, candidate := range validPrincipalKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid principal kind %q", value)
}
