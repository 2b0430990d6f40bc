// Command report prints survey analytics and writes the report artifacts.
//
// Usage:
//
//	go run ./cmd/report -report all -out reports
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/wine-survey/internal/adapter/store"
	"github.com/couchcryptid/wine-survey/internal/config"
	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/couchcryptid/wine-survey/internal/observability"
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

	kindFlag := flag.String("report", string(report.KindAll), "report to run: summary, segments, geography, executive or all")
	out := flag.String("out", cfg.ReportOutputDir, "directory for CSV, JSON, XLSX and PNG artifacts")
	flag.Parse()

	kind, err := report.ParseKind(*kindFlag)
	if err != nil {
		flag.Usage()
		return err
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	table := domain.DefaultPrefixTable()
	if cfg.PostalTablePath != "" {
		if table, err = domain.LoadPrefixTableFile(cfg.PostalTablePath); err != nil {
			return err
		}
	}

	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := report.New(st, table, *out, os.Stdout, observability.NewMetrics(), logger)
	err = r.Run(ctx, kind)
	switch {
	case errors.Is(err, domain.ErrDatabaseConnection):
		return err
	case err != nil:
		// Failed sections were already printed.
		logger.Warn("report finished with errors", "error", err)
		fmt.Printf("\nReport %q finished with errors. Artifacts in %s\n", kind, *out)
		return nil
	}
	fmt.Printf("\nReport %q complete. Artifacts in %s\n", kind, *out)
	return nil
}
