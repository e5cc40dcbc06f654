// Package query folds drying records into keyed weight buckets.
package query

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/drytrack/drytrack-backend/internal/analytics/types"
	"github.com/drytrack/drytrack-backend/pkg/db/models"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

const UnnamedBatch = "(Unnamed Batch)"

const (
	monthLayout     = "Jan 2006"
	fullMonthLayout = "January 2006"
	yearLayout      = "2006"
)

// Aggregate folds rows by the given dimension in a single pass. Rows with no
// value for the dimension are left out. Non-finite weights contribute nothing
// but the row still counts toward its bucket.
func Aggregate(rows []models.DryingRecord, by enums.GroupBy) types.Series {
	index := make(map[string]int)
	buckets := make([]types.Bucket, 0)

	for i := range rows {
		key, ok := GroupKey(&rows[i], by)
		if !ok {
			continue
		}
		pos, seen := index[key]
		if !seen {
			pos = len(buckets)
			index[key] = pos
			buckets = append(buckets, types.Bucket{
				Key:           key,
				InitialWeight: decimal.Zero,
				FinalWeight:   decimal.Zero,
			})
		}
		b := &buckets[pos]
		b.Records++
		if v, ok := finite(rows[i].InitialWeight); ok {
			b.InitialWeight = b.InitialWeight.Add(v)
		}
		if v, ok := finite(rows[i].FinalWeight); ok {
			b.FinalWeight = b.FinalWeight.Add(v)
		}
	}

	sorted := Order(buckets, by)
	return types.Series{GroupBy: by, Buckets: buckets, Chronological: by.IsCalendar() && sorted}
}

// GroupKey derives the bucket key of r.
func GroupKey(r *models.DryingRecord, by enums.GroupBy) (string, bool) {
	switch by {
	case enums.GroupByBatch:
		if name := strings.TrimSpace(r.BatchName); name != "" {
			return name, true
		}
		return UnnamedBatch, true
	case enums.GroupByBarangay:
		return nonEmpty(r.BarangayName)
	case enums.GroupByFarmer:
		return nonEmpty(r.FarmerName)
	case enums.GroupByMonth, enums.GroupByFullMonth, enums.GroupByYear:
		if r.DateDried == nil {
			return "", false
		}
		return r.DateDried.Format(layoutFor(by)), true
	}
	return "", false
}

// Order sorts buckets in place. Calendar keys are sorted by the date they
// parse back to; if any key does not parse the first-seen order is kept and
// Order returns false. Other keys sort lexicographically.
func Order(buckets []types.Bucket, by enums.GroupBy) bool {
	if !by.IsCalendar() {
		sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
		return true
	}
	layout := layoutFor(by)
	parsed := make(map[string]time.Time, len(buckets))
	for _, b := range buckets {
		t, err := time.Parse(layout, b.Key)
		if err != nil {
			return false
		}
		parsed[b.Key] = t
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return parsed[buckets[i].Key].Before(parsed[buckets[j].Key])
	})
	return true
}

func layoutFor(by enums.GroupBy) string {
	switch by {
	case enums.GroupByFullMonth:
		return fullMonthLayout
	case enums.GroupByYear:
		return yearLayout
	default:
		return monthLayout
	}
}

func nonEmpty(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	v := strings.TrimSpace(*s)
	return v, v != ""
}

func finite(v float64) (decimal.Decimal, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(v), true
}
