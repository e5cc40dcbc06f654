package enums

import "fmt"

// Action names a resource operation checked by the access gate.
type Action string

const (
	ActionViewDashboard Action = "view_dashboard"
	ActionViewRecords   Action = "view_records"
	ActionAddRecord     Action = "add_record"
	ActionEditRecord    Action = "edit_record"
	ActionDeleteRecord  Action = "delete_record"
	ActionManageFarmers Action = "manage_farmers"
	ActionCreateFarmer  Action = "create_farmer"
	ActionViewAnalytics Action = "view_analytics"
)

var validActions = []Action{
	ActionViewDashboard,
	ActionViewRecords,
	ActionAddRecord,
	ActionEditRecord,
	ActionDeleteRecord,
	ActionManageFarmers,
	ActionCreateFarmer,
	ActionViewAnalytics,
}

// String implements fmt.Stringer.
func (a Action) String() string {
	return string(a)
}

// IsValid reports whether the action is known.
func (a Action) IsValid() bool {
	for _, candidate := range validActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAction converts raw input into an Action.
func ParseAction(value string) (Action, error) {
	for _, candidate := range validActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid action %q", value)
}
