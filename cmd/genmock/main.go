// Command genmock generates deterministic synthetic survey responses. The
// responses are written as a JSON fixture and, with -insert, stored in the
// configured database so the report and geomap commands have data to run
// against.
//
// Usage:
//
//	go run ./cmd/genmock -n 300 -seed 42 -out data/mock/responses.json -insert
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/wine-survey/internal/adapter/store"
	"github.com/couchcryptid/wine-survey/internal/config"
	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/couchcryptid/wine-survey/internal/mockdata"
)

// Generated timestamps start here so fixtures are stable across runs.
var baseDate = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	n := flag.Int("n", 200, "number of responses to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	out := flag.String("out", "", "output path for the JSON fixture")
	insert := flag.Bool("insert", false, "store the responses in DATABASE_URL")
	flag.Parse()

	if *n <= 0 || (*out == "" && !*insert) {
		flag.Usage()
		return fmt.Errorf("need -n > 0 and at least one of -out, -insert")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	table, err := domain.LoadPrefixTableFile(cfg.PostalTablePath)
	if err != nil {
		return err
	}

	responses := mockdata.Generate(*n, *seed, table, baseDate)
	log.Printf("generated %d responses (seed %d)", len(responses), *seed)

	if *out != "" {
		if err := writeJSON(*out, responses); err != nil {
			return fmt.Errorf("writing fixture: %w", err)
		}
		log.Printf("wrote fixture: %s", *out)
	}

	if *insert {
		if err := insertAll(cfg.DatabaseURL, responses); err != nil {
			return err
		}
		log.Printf("inserted %d responses", len(responses))
	}

	printStats(responses, table)
	return nil
}

func insertAll(dsn string, responses []*domain.SurveyResponse) error {
	st, err := store.Open(dsn)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	for _, r := range responses {
		if err := st.Create(ctx, r); err != nil {
			return fmt.Errorf("insert %s: %w", r.ID, err)
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(responses []*domain.SurveyResponse, table *domain.PrefixTable) {
	withCode := domain.Filter(responses, func(r *domain.SurveyResponse) bool {
		_, ok := domain.PostalPrefix(r.PostalCode)
		return ok
	})
	unknown := domain.CountWhere(withCode, func(r *domain.SurveyResponse) bool {
		prefix, _ := domain.PostalPrefix(r.PostalCode)
		_, ok := table.Lookup(prefix)
		return !ok
	})

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(responses))
	fmt.Printf("With postal code: %d (unknown prefix: %d)\n", len(withCode), unknown)

	regions := domain.GroupAndCount(withCode, func(r *domain.SurveyResponse) string {
		return table.RegionLabel(r.PostalCode)
	})
	fmt.Printf("Regions (%d):\n", len(regions))
	for _, b := range domain.Top(regions, 10) {
		fmt.Printf("  %-40s %4d (%.1f%%)\n", b.Key, b.Count, b.Percentage)
	}

	fmt.Println("Frequency:")
	for _, b := range domain.GroupAndCount(responses, func(r *domain.SurveyResponse) string { return r.Frequency }) {
		fmt.Printf("  %-40s %4d (%.1f%%)\n", b.Key, b.Count, b.Percentage)
	}
}
