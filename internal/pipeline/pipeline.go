package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/couchcryptid/wine-survey/internal/observability"
)

// Extractor reads the respondents that gave a postal code.
type Extractor interface {
	WithPostalCode(ctx context.Context) ([]*domain.SurveyResponse, error)
}

// Loader receives every respondent the run managed to place.
type Loader interface {
	Load(ctx context.Context, located []domain.LocatedRespondent) error
}

// Skipped is a respondent left off the map.
type Skipped struct {
	SurveyID   string
	PostalCode string
	Reason     string
	Err        error
}

// Result summarizes one run.
type Result struct {
	Extracted int
	Located   []domain.LocatedRespondent
	Skipped   []Skipped
	Duration  time.Duration
}

// Pipeline runs extract, locate and load once over the response store.
type Pipeline struct {
	extractor Extractor
	locator   *Locator
	loaders   []Loader
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline. Every loader receives the same located set.
func New(e Extractor, l domain.Locator, logger *slog.Logger, metrics *observability.Metrics, loaders ...Loader) *Pipeline {
	return &Pipeline{
		extractor: e,
		locator:   NewLocator(l, logger),
		loaders:   loaders,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run places every extracted respondent. Per-record failures are logged,
// counted and skipped; only extract and load failures or cancellation
// abort the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	responses, err := p.extractor.WithPostalCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract respondents: %w", err)
	}
	p.logger.Info("pipeline started", "respondents", len(responses))

	res := &Result{Extracted: len(responses)}
	for i, r := range responses {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		located, err := p.locator.Locate(ctx, r)
		if err != nil {
			skip := Skipped{
				SurveyID:   r.ID,
				PostalCode: r.PostalCode,
				Reason:     SkipReason(err),
				Err:        err,
			}
			p.logger.Warn("respondent skipped",
				"survey_id", skip.SurveyID,
				"postal_code", skip.PostalCode,
				"reason", skip.Reason,
				"error", err,
			)
			p.metrics.RecordsSkipped.WithLabelValues(skip.Reason).Inc()
			res.Skipped = append(res.Skipped, skip)
			continue
		}

		p.metrics.RecordsLocated.Inc()
		res.Located = append(res.Located, located)
		if (i+1)%50 == 0 {
			p.logger.Info("pipeline progress", "processed", i+1, "total", len(responses))
		}
	}

	for _, l := range p.loaders {
		if err := l.Load(ctx, res.Located); err != nil {
			return res, fmt.Errorf("load located respondents: %w", err)
		}
	}

	res.Duration = time.Since(start)
	p.metrics.RunDuration.Observe(res.Duration.Seconds())
	p.logger.Info("pipeline finished",
		"located", len(res.Located),
		"skipped", len(res.Skipped),
		"duration", res.Duration,
	)
	return res, nil
}

// SkipCounts tallies skipped respondents per reason.
func (r *Result) SkipCounts() map[string]int {
	counts := make(map[string]int)
	for _, s := range r.Skipped {
		counts[s.Reason]++
	}
	return counts
}
