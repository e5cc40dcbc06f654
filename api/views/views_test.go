package views

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/drytrack/drytrack-backend/internal/analytics/types"
	"github.com/drytrack/drytrack-backend/internal/records"
	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryPageRenders(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	farmer := &pkgauth.Principal{Ref: pkgauth.FarmerRef(1), Role: enums.RoleFarmer, DisplayName: "Alice Reyes"}
	name := "Alice Reyes"
	record := records.RecordDTO{ID: 4, BatchName: "B-4", FarmerName: &name}
	pages := map[string]Page{
		"login":             {Title: "Log in"},
		"sign_up":           {Title: "Sign up"},
		"sign_up_municipal": {Title: "Sign up"},
		"dashboard":         {Title: "Dashboard", Principal: farmer, Data: DashboardData{View: "batch"}},
		"records":           {Title: "Records", Principal: farmer, Data: RecordsData{Records: []records.RecordDTO{record}, CanEdit: true}},
		"add_record":        {Title: "Add record", Principal: farmer, Data: RecordFormData{}},
		"edit_record":       {Title: "Edit record", Principal: farmer, Data: RecordFormData{Record: &record}},
		"farmers":           {Title: "Farmers", Data: FarmersData{}},
		"analytics":         {Title: "Analytics", Data: AnalyticsData{Param: "period", Periods: []string{"month", "year"}}},
	}
	for name, page := range pages {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, r.Render(w, http.StatusOK, name, page))
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
			assert.Contains(t, w.Body.String(), page.Title)
		})
	}
}

func TestRecordsPageShowsSnapshotName(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	name := "Alice Reyes"
	w := httptest.NewRecorder()
	require.NoError(t, r.Render(w, http.StatusOK, "records", Page{
		Title: "Records",
		Data:  RecordsData{Records: []records.RecordDTO{{ID: 9, BatchName: "B-9", FarmerName: &name}}},
	}))
	body := w.Body.String()
	assert.Contains(t, body, "Alice Reyes")
	assert.False(t, strings.Contains(body, "/edit_record/9"), "edit links hidden when not editable")
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	assert.Error(t, r.Render(httptest.NewRecorder(), http.StatusOK, "_record_fields", Page{}))
}

func TestRowsFlattenInOrder(t *testing.T) {
	series := types.Series{Buckets: []types.Bucket{
		{Key: "Jan 2024", InitialWeight: decimal.NewFromInt(10), FinalWeight: decimal.NewFromInt(8), Records: 1},
		{Key: "Feb 2024", InitialWeight: decimal.NewFromInt(5), FinalWeight: decimal.NewFromInt(4), Records: 2},
	}}
	rows := SeriesRows(series)
	require.Len(t, rows, 2)
	assert.Equal(t, ChartRow{Key: "Jan 2024", InitialWeight: 10, FinalWeight: 8, Records: 1}, rows[0])

	totals := TotalsRows(series.Totals(types.MeasureFinalWeight))
	require.Len(t, totals, 2)
	assert.Equal(t, "Feb 2024", totals[1].Key)
	assert.Equal(t, 4.0, totals[1].FinalWeight)
}
