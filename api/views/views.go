// Package views renders the server-side HTML pages served to browsers.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/drytrack/drytrack-backend/internal/analytics/types"
	"github.com/drytrack/drytrack-backend/internal/farmers"
	"github.com/drytrack/drytrack-backend/internal/records"
	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
)

//go:embed templates/*.html
var files embed.FS

const (
	layoutFile   = "templates/layout.html"
	partialsGlob = "templates/_*.html"
)

// Page is the data every template receives.
type Page struct {
	Title     string
	Principal *pkgauth.Principal
	Flash     string
	Form      map[string]string
	Data      any
}

// ChartRow is one bucket of a dashboard or yield table.
type ChartRow struct {
	Key           string
	InitialWeight float64
	FinalWeight   float64
	Records       int
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	base, err := template.New(path.Base(layoutFile)).Funcs(funcs).ParseFS(files, layoutFile, partialsGlob)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	entries, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		if entry == layoutFile || strings.HasPrefix(path.Base(entry), "_") {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		page, err := clone.ParseFS(files, entry)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry, err)
		}
		pages[strings.TrimSuffix(path.Base(entry), ".html")] = page
	}
	return &Renderer{pages: pages}, nil
}

// Render executes the named page into a buffer first so a template failure
// never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// SeriesRows flattens a weight series for tables.
func SeriesRows(series types.Series) []ChartRow {
	rows := make([]ChartRow, 0, len(series.Buckets))
	for _, b := range series.Buckets {
		initial, _ := b.InitialWeight.Float64()
		final, _ := b.FinalWeight.Float64()
		rows = append(rows, ChartRow{Key: b.Key, InitialWeight: initial, FinalWeight: final, Records: b.Records})
	}
	return rows
}

// TotalsRows flattens yield totals; only FinalWeight is set.
func TotalsRows(totals types.Totals) []ChartRow {
	keys := totals.Keys()
	rows := make([]ChartRow, 0, len(keys))
	for _, key := range keys {
		value, _ := totals.Get(key)
		rows = append(rows, ChartRow{Key: key, FinalWeight: value})
	}
	return rows
}

var funcs = template.FuncMap{
	"weight": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"deref": func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	},
	"isStaff": func(p *pkgauth.Principal) bool {
		return p != nil && p.Role.IsStaff()
	},
	"isRole": func(p *pkgauth.Principal, role string) bool {
		return p != nil && p.Role.String() == role
	},
}

// DashboardData backs dashboard.html.
type DashboardData struct {
	View         string
	Views        []string
	Rows         []ChartRow
	Municipality *types.LocalityRef
	Barangays    []types.LocalityRef
}

// RecordsData backs records.html.
type RecordsData struct {
	Records    []records.RecordDTO
	NextCursor string
	CanEdit    bool
}

// RecordFormData backs add_record.html and edit_record.html.
type RecordFormData struct {
	Record     *records.RecordDTO
	Farmers    []records.FarmerOption
	PickFarmer bool
}

// FarmersData backs farmers.html.
type FarmersData struct {
	Farmers []farmers.FarmerDTO
}

// AnalyticsData backs analytics.html.
type AnalyticsData struct {
	Heading string
	Param   string
	Period  string
	Periods []string
	Rows    []ChartRow
	Total   float64
}
