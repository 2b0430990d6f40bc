// Package report turns stored survey responses into console, CSV, JSON,
// XLSX, PNG, GeoJSON and HTML artifacts.
//
// Every percentage is computed against the population of the section that
// prints it: all responses, or for geographic sections the respondents whose
// postal code has at least two digits. Each section states its base.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/couchcryptid/wine-survey/internal/observability"
)

// Kind selects which report Run produces.
type Kind string

const (
	KindSummary   Kind = "summary"
	KindSegments  Kind = "segments"
	KindGeography Kind = "geography"
	KindExecutive Kind = "executive"
	KindAll       Kind = "all"
)

// Kinds lists the individual reports in the order KindAll runs them.
var Kinds = []Kind{KindSummary, KindSegments, KindGeography, KindExecutive}

// ParseKind validates a report name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == KindAll {
		return k, nil
	}
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown report %q", s)
}

// Output file names.
const (
	ProfilesCSVFile     = "wine-survey-profiles.csv"
	SummaryJSONFile     = "summary.json"
	WorkbookFile        = "wine-survey.xlsx"
	RegionChartFile     = "regions.png"
	ExecutiveJSONFile   = "executive-summary.json"
	ExecutiveTextFile   = "executive-summary.txt"
	GeoJSONFile         = "respondents.geojson"
	MapHTMLFile         = "respondents-map.html"
	CoordinatesJSONFile = "respondents-coordinates.json"
)

// Source is the read side of the response store.
type Source interface {
	Count(ctx context.Context) (int, error)
	CountBy(ctx context.Context, field domain.FieldID) ([]domain.KeyCount, error)
	All(ctx context.Context) ([]*domain.SurveyResponse, error)
	WithPostalCode(ctx context.Context) ([]*domain.SurveyResponse, error)
	CreatedBetween(ctx context.Context, from, to time.Time) (int, error)
}

// Reporter runs reports against a Source.
type Reporter struct {
	source  Source
	table   *domain.PrefixTable
	dir     string
	out     io.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a Reporter that prints to out and writes files under dir.
func New(source Source, table *domain.PrefixTable, dir string, out io.Writer, metrics *observability.Metrics, logger *slog.Logger) *Reporter {
	return &Reporter{
		source:  source,
		table:   table,
		dir:     dir,
		out:     out,
		metrics: metrics,
		logger:  logger,
	}
}

// Run produces one report, or every report for KindAll. A failed report is
// printed and the next one still runs; the returned error joins them.
// Connection failures stop the run immediately.
func (r *Reporter) Run(ctx context.Context, kind Kind) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	kinds := []Kind{kind}
	if kind == KindAll {
		kinds = Kinds
	}

	var errs []error
	for _, k := range kinds {
		var err error
		switch k {
		case KindSummary:
			_, err = r.Summary(ctx)
		case KindSegments:
			_, err = r.Segments(ctx)
		case KindGeography:
			_, err = r.Geography(ctx)
		case KindExecutive:
			_, err = r.Executive(ctx)
		default:
			err = fmt.Errorf("unknown report %q", k)
		}
		if err == nil {
			continue
		}
		if errors.Is(err, domain.ErrDatabaseConnection) {
			return err
		}
		r.failed(string(k), "report", err)
		errs = append(errs, fmt.Errorf("%s: %w", k, err))
	}
	return errors.Join(errs...)
}

// section runs fn and reports its failure without propagating it.
func (r *Reporter) section(report, name string, fn func() error) bool {
	if err := fn(); err != nil {
		r.failed(report, name, err)
		return false
	}
	return true
}

func (r *Reporter) failed(report, section string, err error) {
	r.metrics.ReportFailures.WithLabelValues(report, section).Inc()
	r.logger.Warn("report section failed", "report", report, "section", section, "error", err)
	r.printf("  ! %s failed: %v\n", section, err)
}

func (r *Reporter) path(name string) string {
	return filepath.Join(r.dir, name)
}

func (r *Reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *Reporter) heading(title string) {
	r.printf("\n=== %s ===\n", title)
}

func (r *Reporter) wrote(path string) {
	r.printf("  wrote %s\n", path)
	r.logger.Info("report artifact written", "path", path)
}

func printBuckets(w io.Writer, buckets []domain.Bucket) {
	if len(buckets) == 0 {
		fmt.Fprintln(w, "  (no answers)")
		return
	}
	for _, b := range buckets {
		fmt.Fprintf(w, "  %s: %d (%.1f%%)\n", b.Key, b.Count, b.Percentage)
	}
}

func printShares(w io.Writer, shares []domain.SegmentShare) {
	for _, s := range shares {
		fmt.Fprintf(w, "  %s: %d (%.1f%%)\n", s.Label, s.Count, s.Percentage)
	}
}

// regionOf labels a response's postal-code region, or "" when the code has
// fewer than two digits.
func regionOf(table *domain.PrefixTable, r *domain.SurveyResponse) string {
	return table.RegionLabel(r.PostalCode)
}

// stateOf returns the state of a response's prefix, or OtherStates.
func stateOf(table *domain.PrefixTable, r *domain.SurveyResponse) string {
	prefix, ok := domain.PostalPrefix(r.PostalCode)
	if !ok {
		return ""
	}
	if e, ok := table.Lookup(prefix); ok && e.State != "" {
		return e.State
	}
	return OtherStates
}

// OtherStates groups prefixes missing from the table.
const OtherStates = "Other"

// withValidPostalCode keeps responses whose postal code has a prefix.
func withValidPostalCode(responses []*domain.SurveyResponse) []*domain.SurveyResponse {
	return domain.Filter(responses, func(r *domain.SurveyResponse) bool {
		_, ok := domain.PostalPrefix(r.PostalCode)
		return ok
	})
}
