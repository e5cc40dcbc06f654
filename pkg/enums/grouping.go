package enums

import (
	"fmt"
	"strings"
)

// GroupBy selects the dimension records are folded on.
type GroupBy string

const (
	GroupByBatch     GroupBy = "batch"
	GroupByBarangay  GroupBy = "barangay"
	GroupByFarmer    GroupBy = "farmer"
	GroupByMonth     GroupBy = "month"
	GroupByFullMonth GroupBy = "full_month"
	GroupByYear      GroupBy = "year"
)

var validGroupBys = []GroupBy{
	GroupByBatch,
	GroupByBarangay,
	GroupByFarmer,
	GroupByMonth,
	GroupByFullMonth,
	GroupByYear,
}

func (g GroupBy) String() string {
	return string(g)
}

func (g GroupBy) IsValid() bool {
	for _, candidate := range validGroupBys {
		if candidate == g {
			return true
		}
	}
	return false
}

// IsCalendar reports whether keys are derived from date_dried.
func (g GroupBy) IsCalendar() bool {
	return g == GroupByMonth || g == GroupByFullMonth || g == GroupByYear
}

func ParseGroupBy(value string) (GroupBy, error) {
	for _, candidate := range validGroupBys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid group by %q", value)
}

// Period is the time bucket analytics views accept through view/period flags.
type Period string

const (
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

func (p Period) String() string {
	return string(p)
}

func (p Period) IsValid() bool {
	return p == PeriodMonth || p == PeriodYear
}

// GroupBy maps the period onto its calendar grouping.
func (p Period) GroupBy() GroupBy {
	if p == PeriodYear {
		return GroupByYear
	}
	return GroupByMonth
}

// ParsePeriod normalizes a query flag, falling back to def when empty or unknown.
func ParsePeriod(value string, def Period) Period {
	p := Period(strings.ToLower(strings.TrimSpace(value)))
	if p.IsValid() {
		return p
	}
	return def
}
