package types

import "github.com/drytrack/drytrack-backend/pkg/enums"

// Dashboard is a role-scoped weight comparison chart.
type Dashboard struct {
	View   string     `json:"view"`
	Role   enums.Role `json:"role"`
	Series Series     `json:"series"`
}

// Yield is a final-weight sum per calendar bucket.
type Yield struct {
	Period enums.Period `json:"period"`
	Totals Totals       `json:"totals"`
	Total  float64      `json:"total"`
}

type LocalityRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// MunicipalityDashboard lists a municipality's barangays and their totals.
type MunicipalityDashboard struct {
	Municipality LocalityRef   `json:"municipality"`
	Barangays    []LocalityRef `json:"barangays"`
	Series       Series        `json:"series"`
}
