// Command geomap places respondents on a map from their postal codes and
// writes GeoJSON, an HTML map and a coordinates file.
//
// Offline mode uses the embedded prefix table. Online mode asks ViaCEP for
// the address and Nominatim for coordinates, one Nominatim request per
// GEOCODE_INTERVAL. Both services receive GEOCODE_USER_AGENT.
//
// Usage:
//
//	go run ./cmd/geomap -mode offline -out maps
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/couchcryptid/wine-survey/internal/adapter/nominatim"
	"github.com/couchcryptid/wine-survey/internal/adapter/store"
	"github.com/couchcryptid/wine-survey/internal/adapter/viacep"
	"github.com/couchcryptid/wine-survey/internal/config"
	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/couchcryptid/wine-survey/internal/observability"
	"github.com/couchcryptid/wine-survey/internal/pipeline"
	"github.com/couchcryptid/wine-survey/internal/report"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	mode := flag.String("mode", "offline", "geocoding mode: offline or online")
	out := flag.String("out", cfg.ReportOutputDir, "directory for the map artifacts")
	flag.Parse()

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	table := domain.DefaultPrefixTable()
	if cfg.PostalTablePath != "" {
		if table, err = domain.LoadPrefixTableFile(cfg.PostalTablePath); err != nil {
			return err
		}
	}

	var (
		locator domain.Locator
		method  string
		cache   *domain.LocationCache
	)
	switch *mode {
	case "offline":
		locator, method = domain.NewResolver(table), report.MethodOffline
	case "online":
		cache = domain.NewLocationCache()
		addresses := viacep.NewClient(viacep.Options{
			BaseURL:   cfg.ViaCEPBaseURL,
			UserAgent: cfg.GeocodeUserAgent,
			Timeout:   cfg.ViaCEPTimeout,
		}, metrics, logger)
		places := nominatim.NewClient(nominatim.Options{
			BaseURL:   cfg.NominatimBaseURL,
			UserAgent: cfg.GeocodeUserAgent,
			Timeout:   cfg.NominatimTimeout,
			Interval:  cfg.GeocodeInterval,
		}, metrics, logger)
		locator = domain.NewOnlineResolver(addresses, places, cache, table, logger)
		method = report.MethodOnline
		logger.Info("online geocoding enabled", "interval", cfg.GeocodeInterval, "user_agent", cfg.GeocodeUserAgent)
	default:
		flag.Usage()
		return fmt.Errorf("unknown mode %q", *mode)
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(st, locator, logger, metrics,
		report.ConsoleLoader{Out: os.Stdout},
		report.GeoJSONLoader{Path: filepath.Join(*out, report.GeoJSONFile)},
		report.MapLoader{Path: filepath.Join(*out, report.MapHTMLFile), Method: method},
		report.CoordinatesLoader{Path: filepath.Join(*out, report.CoordinatesJSONFile), Method: method},
	)
	res, err := p.Run(ctx)
	if err != nil {
		return err
	}

	if cache != nil {
		hits, misses := cache.Stats()
		metrics.GeocodeCache.WithLabelValues("hit").Add(float64(hits))
		metrics.GeocodeCache.WithLabelValues("miss").Add(float64(misses))
		logger.Info("geocode cache", "entries", cache.Len(), "hits", hits, "misses", misses)
	}

	fmt.Printf("\nExtracted %d respondents with a postal code: %d placed, %d skipped\n",
		res.Extracted, len(res.Located), len(res.Skipped))
	for reason, n := range res.SkipCounts() {
		fmt.Printf("  skipped (%s): %d\n", reason, n)
	}
	for _, name := range []string{report.GeoJSONFile, report.MapHTMLFile, report.CoordinatesJSONFile} {
		fmt.Printf("  wrote %s\n", filepath.Join(*out, name))
	}
	return nil
}
