// Package access holds the authorization gate: a pure decision table over
// role and action. Callers turn a denial into a redirect or an error response.
package access

import "github.com/drytrack/drytrack-backend/pkg/enums"

const (
	PathLogin             = "/login"
	PathHome              = "/"
	PathBarangayDashboard = "/barangay_dashboard"
	PathRecords           = "/records"
)

// Authorize reports whether role may perform action. Unknown roles and
// unknown actions are denied.
func Authorize(role enums.Role, action enums.Action) bool {
	switch role {
	case enums.RoleBarangay:
		switch action {
		case enums.ActionViewDashboard, enums.ActionViewRecords, enums.ActionViewAnalytics,
			enums.ActionAddRecord, enums.ActionEditRecord, enums.ActionDeleteRecord,
			enums.ActionManageFarmers, enums.ActionCreateFarmer:
			return true
		}
	case enums.RoleMunicipal:
		switch action {
		case enums.ActionViewDashboard, enums.ActionViewRecords, enums.ActionViewAnalytics:
			return true
		}
	case enums.RoleFarmer:
		switch action {
		case enums.ActionViewDashboard, enums.ActionViewRecords, enums.ActionViewAnalytics,
			enums.ActionAddRecord, enums.ActionEditRecord, enums.ActionDeleteRecord:
			return true
		}
	}
	return false
}

// LandingPage is where a denied browser request is sent for role.
func LandingPage(role enums.Role) string {
	switch role {
	case enums.RoleMunicipal, enums.RoleBarangay:
		return PathBarangayDashboard
	case enums.RoleFarmer:
		return PathHome
	default:
		return PathLogin
	}
}
