// Command validate cross-checks exported artifacts against the response
// store: the profile CSV written by the segment report and the GeoJSON
// written by geomap. It verifies row counts, ids, region consistency and
// feature properties.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv reports/wine-survey-profiles.csv \
//	  -geojson maps/respondents.geojson
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/wine-survey/internal/adapter/store"
	"github.com/couchcryptid/wine-survey/internal/config"
	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/couchcryptid/wine-survey/internal/report"
	"github.com/google/go-cmp/cmp"
)

// Bounding box of Brazil, padded by the maximum jitter.
const (
	minLat = -34.0
	maxLat = 5.5
	minLon = -74.1
	maxLon = -34.7
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to the profile CSV export")
	geoPath := flag.String("geojson", "", "path to the respondents GeoJSON")
	flag.Parse()

	if *csvPath == "" && *geoPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *geoPath); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, geoPath string) int {
	fmt.Println("=== Survey Export Validation ===")
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		return 1
	}
	table, err := domain.LoadPrefixTableFile(cfg.PostalTablePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load prefix table: %v\n", err)
		return 1
	}

	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open store: %v\n", err)
		return 1
	}
	defer st.Close()

	stored, err := st.All(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read store: %v\n", err)
		return 1
	}
	byID := make(map[string]*domain.SurveyResponse, len(stored))
	for _, r := range stored {
		byID[r.ID] = r
	}

	var phases []*phase
	var profiles []report.Profile
	var features []report.RespondentFeature

	if csvPath != "" {
		profiles, err = report.ReadProfilesFile(csvPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load CSV: %v\n", err)
			return 1
		}
		phases = append(phases,
			validateProfileRows(profiles, byID),
			validateProfileFields(profiles, byID),
		)
	}
	if geoPath != "" {
		features, err = report.ReadGeoJSONFile(geoPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load GeoJSON: %v\n", err)
			return 1
		}
		phases = append(phases,
			validateFeatureIDs(features, byID),
			validateFeatureProperties(features, byID, table),
		)
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d stored, %d CSV rows, %d GeoJSON features\n",
		len(stored), len(profiles), len(features))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Profile CSV ──

func validateProfileRows(profiles []report.Profile, byID map[string]*domain.SurveyResponse) *phase {
	p := &phase{name: "Profile CSV: rows match store"}

	if len(profiles) != len(byID) {
		p.errorf("row count: CSV has %d, store has %d", len(profiles), len(byID))
	}

	seen := make(map[string]bool, len(profiles))
	for i, prof := range profiles {
		if seen[prof.ID] {
			p.errorf("row %d: duplicate id %s", i+2, prof.ID)
		}
		seen[prof.ID] = true
		if _, ok := byID[prof.ID]; !ok {
			p.errorf("row %d: id %s not in store", i+2, prof.ID)
		}
	}
	for id := range byID {
		if !seen[id] {
			p.errorf("store id %s missing from CSV", id)
		}
	}
	return p
}

func validateProfileFields(profiles []report.Profile, byID map[string]*domain.SurveyResponse) *phase {
	p := &phase{name: "Profile CSV: fields match answers"}

	for i, prof := range profiles {
		r, ok := byID[prof.ID]
		if !ok {
			continue
		}
		want := report.ProfileOf(r)

		if prefix, valid := domain.PostalPrefix(r.PostalCode); valid {
			if prof.Region != prefix {
				p.errorf("row %d (%s): region %q, postal code %q has prefix %q", i+2, prof.ID, prof.Region, r.PostalCode, prefix)
			}
		} else if prof.Region != domain.NotInformed {
			p.errorf("row %d (%s): region %q for a missing postal code, want %q", i+2, prof.ID, prof.Region, domain.NotInformed)
		}

		if diff := cmp.Diff(want, prof); diff != "" {
			p.errorf("row %d (%s): mismatch (-store +csv):\n%s", i+2, prof.ID, diff)
		}
	}
	return p
}

// ── GeoJSON ──

func validateFeatureIDs(features []report.RespondentFeature, byID map[string]*domain.SurveyResponse) *phase {
	p := &phase{name: "GeoJSON: features match store"}

	withCode := 0
	for _, r := range byID {
		if _, ok := domain.PostalPrefix(r.PostalCode); ok {
			withCode++
		}
	}
	if len(features) > withCode {
		p.errorf("feature count %d exceeds the %d respondents with a postal code", len(features), withCode)
	}

	seen := make(map[string]bool, len(features))
	for i, f := range features {
		if f.ID == "" {
			p.errorf("feature %d: missing id", i)
			continue
		}
		if seen[f.ID] {
			p.errorf("feature %d: duplicate id %s", i, f.ID)
		}
		seen[f.ID] = true
		if _, ok := byID[f.ID]; !ok {
			p.errorf("feature %d: id %s not in store", i, f.ID)
		}
		if f.Lat < minLat || f.Lat > maxLat || f.Lon < minLon || f.Lon > maxLon {
			p.errorf("feature %d (%s): point (%.5f, %.5f) outside Brazil", i, f.ID, f.Lat, f.Lon)
		}
	}
	return p
}

func validateFeatureProperties(features []report.RespondentFeature, byID map[string]*domain.SurveyResponse, table *domain.PrefixTable) *phase {
	p := &phase{name: "GeoJSON: properties match answers"}

	for i, f := range features {
		r, ok := byID[f.ID]
		if !ok {
			continue
		}
		prefix, valid := domain.PostalPrefix(r.PostalCode)
		if !valid {
			p.errorf("feature %d (%s): stored postal code %q has no prefix", i, f.ID, r.PostalCode)
			continue
		}

		checks := []struct {
			key  string
			want string
		}{
			{"id", r.ID},
			{"postalCode", domain.NormalizePostalCode(r.PostalCode)},
			{"prefix", prefix},
			{"region", table.RegionLabel(r.PostalCode)},
			{"ageRange", r.AgeRange},
			{"gender", r.Gender},
			{"frequency", r.Frequency},
			{"priceRange", r.PriceRange},
		}
		for _, c := range checks {
			got, _ := f.Properties[c.key].(string)
			if got != c.want {
				p.errorf("feature %d (%s): %s = %q, want %q", i, f.ID, c.key, got, c.want)
			}
		}

		for _, pii := range []string{"name", "email", "phone"} {
			if _, leaked := f.Properties[pii]; leaked {
				p.errorf("feature %d (%s): carries contact field %q", i, f.ID, pii)
			}
		}
	}
	return p
}
