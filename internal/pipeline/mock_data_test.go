package pipeline_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/couchcryptid/wine-survey/internal/mockdata"
	"github.com/couchcryptid/wine-survey/internal/observability"
	"github.com/couchcryptid/wine-survey/internal/pipeline"
	"github.com/couchcryptid/wine-survey/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_WithMockData(t *testing.T) {
	table := domain.DefaultPrefixTable()
	all := mockdata.Generate(300, 2024, table, time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC))
	withCode := domain.Filter(all, func(r *domain.SurveyResponse) bool { return r.PostalCode != "" })

	var console bytes.Buffer
	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{responses: withCode}, domain.NewResolver(table),
		discardLogger(), observability.NewMetricsForTesting(), ldr, report.ConsoleLoader{Out: &console})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(withCode), res.Extracted)
	assert.Equal(t, res.Extracted, len(res.Located)+len(res.Skipped))
	for reason := range res.SkipCounts() {
		assert.Equal(t, pipeline.ReasonNoCoordinates, reason)
	}

	for _, l := range res.Located {
		prefix, ok := domain.PostalPrefix(l.Response.PostalCode)
		require.True(t, ok)
		entry, found := table.Lookup(prefix)
		require.True(t, found)
		assert.Equal(t, entry.Name, l.Location.Region)
		assert.InDelta(t, entry.Lat, l.Location.Lat, domain.JitterDegrees)
		assert.InDelta(t, entry.Lon, l.Location.Lon, domain.JitterDegrees)
	}

	assert.Contains(t, console.String(), "Located respondents:")
}
