package query

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/drytrack/drytrack-backend/internal/analytics/types"
	"github.com/drytrack/drytrack-backend/pkg/db/models"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dried(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func str(s string) *string { return &s }

func sampleRows() []models.DryingRecord {
	return []models.DryingRecord{
		{BatchName: "Wet season", InitialWeight: 100.1, FinalWeight: 80.2, DateDried: dried(2024, 3, 2), BarangayName: str("Cristo Rey"), FarmerName: str("Alice Cruz")},
		{BatchName: "", InitialWeight: 50.25, FinalWeight: 40, DateDried: dried(2024, 1, 15), BarangayName: str("Sto. Rosario"), FarmerName: str("Bob Santos")},
		{BatchName: "Wet season", InitialWeight: 20.3, FinalWeight: 17.7, DateDried: dried(2024, 2, 9), BarangayName: str("Cristo Rey"), FarmerName: str("Alice Cruz")},
		{BatchName: "Dry season", InitialWeight: 0.1, FinalWeight: 0.2, DateDried: dried(2023, 12, 31), BarangayName: str("Cristo Rey"), FarmerName: str("Alice Cruz")},
	}
}

func TestAggregateSumMatchesUngroupedTotal(t *testing.T) {
	rows := sampleRows()
	want := decimal.Zero
	for _, r := range rows {
		want = want.Add(decimal.NewFromFloat(r.InitialWeight))
	}
	for _, by := range []enums.GroupBy{enums.GroupByBatch, enums.GroupByBarangay, enums.GroupByFarmer, enums.GroupByMonth, enums.GroupByFullMonth, enums.GroupByYear} {
		series := Aggregate(rows, by)
		assert.True(t, want.Equal(series.Sum(types.MeasureInitialWeight)), "group by %s", by)
		records := 0
		for _, b := range series.Buckets {
			records += b.Records
		}
		assert.Equal(t, len(rows), records, "group by %s", by)
	}
}

func TestAggregateBatchFallsBackToPlaceholder(t *testing.T) {
	series := Aggregate(sampleRows(), enums.GroupByBatch)
	assert.Equal(t, []string{UnnamedBatch, "Dry season", "Wet season"}, series.Keys())

	wet, ok := series.Bucket("Wet season")
	require.True(t, ok)
	assert.Equal(t, "120.4", wet.InitialWeight.String())
	assert.Equal(t, 2, wet.Records)
}

func TestAggregateCalendarKeysAreChronological(t *testing.T) {
	rows := []models.DryingRecord{
		{FinalWeight: 3, DateDried: dried(2024, 3, 1)},
		{FinalWeight: 1, DateDried: dried(2024, 1, 1)},
		{FinalWeight: 2, DateDried: dried(2024, 2, 1)},
	}
	series := Aggregate(rows, enums.GroupByMonth)
	assert.Equal(t, []string{"Jan 2024", "Feb 2024", "Mar 2024"}, series.Keys())
	assert.True(t, series.Chronological)

	full := Aggregate(sampleRows(), enums.GroupByFullMonth)
	assert.Equal(t, []string{"December 2023", "January 2024", "February 2024", "March 2024"}, full.Keys())

	years := Aggregate(sampleRows(), enums.GroupByYear)
	assert.Equal(t, []string{"2023", "2024"}, years.Keys())
}

func TestAggregateSkipsRowsWithoutDimension(t *testing.T) {
	rows := []models.DryingRecord{
		{InitialWeight: 5, FinalWeight: 4},
		{InitialWeight: 6, FinalWeight: 5, DateDried: dried(2024, 5, 10), BarangayName: str("  ")},
	}
	assert.Len(t, Aggregate(rows, enums.GroupByMonth).Buckets, 1)
	assert.Empty(t, Aggregate(rows, enums.GroupByBarangay).Buckets)
	assert.Empty(t, Aggregate(rows, enums.GroupByFarmer).Buckets)
}

func TestAggregateIgnoresNonFiniteWeights(t *testing.T) {
	rows := []models.DryingRecord{
		{BatchName: "A", InitialWeight: math.NaN(), FinalWeight: 4},
		{BatchName: "A", InitialWeight: 6, FinalWeight: math.Inf(1)},
	}
	series := Aggregate(rows, enums.GroupByBatch)
	require.Len(t, series.Buckets, 1)
	assert.Equal(t, "6", series.Buckets[0].InitialWeight.String())
	assert.Equal(t, "4", series.Buckets[0].FinalWeight.String())
	assert.Equal(t, 2, series.Buckets[0].Records)
}

func TestOrderKeepsFirstSeenOrderWhenAKeyDoesNotParse(t *testing.T) {
	buckets := []types.Bucket{{Key: "Mar 2024"}, {Key: "sometime"}, {Key: "Jan 2024"}}
	sorted := Order(buckets, enums.GroupByMonth)
	assert.False(t, sorted)
	assert.Equal(t, "Mar 2024", buckets[0].Key)
	assert.Equal(t, "sometime", buckets[1].Key)
	assert.Equal(t, "Jan 2024", buckets[2].Key)
}

func TestSeriesJSONPreservesOrder(t *testing.T) {
	rows := []models.DryingRecord{
		{InitialWeight: 10, FinalWeight: 8, DateDried: dried(2024, 6, 1)},
		{InitialWeight: 100, FinalWeight: 80, DateDried: dried(2024, 5, 10)},
	}
	series := Aggregate(rows, enums.GroupByMonth)

	raw, err := json.Marshal(series.Totals(types.MeasureFinalWeight))
	require.NoError(t, err)
	assert.Equal(t, `{"May 2024":80,"Jun 2024":8}`, string(raw))

	raw, err = json.Marshal(series)
	require.NoError(t, err)
	assert.JSONEq(t, `{"May 2024":{"initial_weight":100,"final_weight":80},"Jun 2024":{"initial_weight":10,"final_weight":8}}`, string(raw))
	assert.Regexp(t, `^\{"May 2024"`, string(raw))
}
