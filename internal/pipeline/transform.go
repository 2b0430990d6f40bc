package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/wine-survey/internal/domain"
)

// Skip reasons, also used as metric labels.
const (
	ReasonInvalidPostalCode = "invalid_postal_code"
	ReasonNotFound          = "not_found"
	ReasonNoCoordinates     = "no_coordinates"
	ReasonExternalService   = "external_service"
	ReasonOther             = "other"
)

// errNoCoordinates marks a region that was named but could not be placed.
var errNoCoordinates = errors.New("region has no coordinates")

// Locator attaches a location to a response.
type Locator struct {
	locator domain.Locator
	logger  *slog.Logger
}

// NewLocator wraps a domain locator.
func NewLocator(l domain.Locator, logger *slog.Logger) *Locator {
	return &Locator{locator: l, logger: logger}
}

// Locate places r. A region without coordinates is an error, since it
// cannot be drawn.
func (l *Locator) Locate(ctx context.Context, r *domain.SurveyResponse) (domain.LocatedRespondent, error) {
	loc, err := l.locator.Locate(ctx, r.PostalCode)
	if err != nil {
		return domain.LocatedRespondent{}, err
	}
	if !loc.HasCoordinates {
		return domain.LocatedRespondent{}, fmt.Errorf("%s: %w", loc.Region, errNoCoordinates)
	}
	l.logger.Debug("respondent located",
		"survey_id", r.ID,
		"region", loc.Region,
		"approximate", loc.Approximate,
	)
	return domain.LocatedRespondent{Response: r, Location: loc}, nil
}

// SkipReason classifies a Locate error.
func SkipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidPostalCode):
		return ReasonInvalidPostalCode
	case errors.Is(err, domain.ErrRegionNotFound):
		return ReasonNotFound
	case errors.Is(err, errNoCoordinates):
		return ReasonNoCoordinates
	case errors.Is(err, domain.ErrExternalService):
		return ReasonExternalService
	default:
		return ReasonOther
	}
}
