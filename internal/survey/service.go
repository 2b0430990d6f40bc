// Package survey implements response submission and listing on top of the
// response store.
package survey

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/couchcryptid/wine-survey/internal/observability"
	"github.com/google/uuid"
)

// RecentLimit caps how many responses List returns.
const RecentLimit = 100

// Repository is the persistence the service needs.
type Repository interface {
	Create(ctx context.Context, r *domain.SurveyResponse) error
	Recent(ctx context.Context, limit int) ([]*domain.SurveyResponse, error)
	Count(ctx context.Context) (int, error)
	CountBy(ctx context.Context, field domain.FieldID) ([]domain.KeyCount, error)
}

// Publisher announces stored responses. It is optional.
type Publisher interface {
	PublishSubmitted(ctx context.Context, event domain.SurveySubmittedEvent) error
}

// ValidationError lists the titles of required questions left blank and of
// choice questions answered outside their options.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid answers: "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

// Listing is the read view served to the dashboard.
type Listing struct {
	Surveys       []*domain.SurveyResponse `json:"surveys"`
	Total         int                      `json:"total"`
	WineTypeStats []domain.Bucket          `json:"wineTypeStats"`
}

// Service validates, stores and announces survey responses.
type Service struct {
	repo      Repository
	publisher Publisher
	table     *domain.PrefixTable
	metrics   *observability.Metrics
	logger    *slog.Logger
	newID     func() string
}

// NewService creates a Service. publisher may be nil.
func NewService(repo Repository, publisher Publisher, table *domain.PrefixTable, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		table:     table,
		metrics:   metrics,
		logger:    logger,
		newID:     func() string { return uuid.NewString() },
	}
}

// Submit validates r, assigns its id and timestamps, stores it and publishes
// a submission event. A *ValidationError is returned when required answers
// are missing or a choice answer is not one of the offered options. Publish failures are logged and do not fail the submission.
func (s *Service) Submit(ctx context.Context, r *domain.SurveyResponse) (string, error) {
	if v := domain.Validate(r); !v.OK() {
		s.metrics.Submissions.WithLabelValues("invalid").Inc()
		return "", &ValidationError{Missing: v.Missing, Invalid: v.Invalid}
	}

	now := domain.Now()
	r.ID = s.newID()
	r.CompletedAt = now
	r.CreatedAt = now

	if err := s.repo.Create(ctx, r); err != nil {
		s.metrics.Submissions.WithLabelValues("error").Inc()
		return "", fmt.Errorf("store survey: %w", err)
	}
	s.metrics.Submissions.WithLabelValues("stored").Inc()
	s.logger.Info("survey stored", "survey_id", r.ID, "mobile", r.Metadata.Mobile)

	s.publish(ctx, r)
	return r.ID, nil
}

func (s *Service) publish(ctx context.Context, r *domain.SurveyResponse) {
	if s.publisher == nil {
		return
	}
	event := domain.SurveySubmittedEvent{
		SurveyID:    r.ID,
		AgeRange:    r.AgeRange,
		Gender:      r.Gender,
		Region:      s.table.RegionLabel(r.PostalCode),
		Frequency:   r.Frequency,
		PriceRange:  r.PriceRange,
		WineType:    r.WineType,
		Mobile:      r.Metadata.Mobile,
		CompletedAt: r.CompletedAt,
	}
	if err := s.publisher.PublishSubmitted(ctx, event); err != nil {
		s.metrics.EventsEmitted.WithLabelValues("error").Inc()
		s.logger.Warn("publish submission event failed", "survey_id", r.ID, "error", err)
		return
	}
	s.metrics.EventsEmitted.WithLabelValues("success").Inc()
}

// List returns the most recent responses with the total count and the wine
// type distribution over every stored response.
func (s *Service) List(ctx context.Context) (*Listing, error) {
	recent, err := s.repo.Recent(ctx, RecentLimit)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountBy(ctx, domain.FieldWineType)
	if err != nil {
		return nil, err
	}
	return &Listing{
		Surveys:       recent,
		Total:         total,
		WineTypeStats: domain.RankCounts(counts, total),
	}, nil
}
