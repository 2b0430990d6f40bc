package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/couchcryptid/wine-survey/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// --- fakes ---

type fakeSource struct {
	responses  []*domain.SurveyResponse
	countErr   error
	allErr     error
	countByErr map[domain.FieldID]error
}

func (f *fakeSource) Count(context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.responses), nil
}

func (f *fakeSource) CountBy(_ context.Context, id domain.FieldID) ([]domain.KeyCount, error) {
	if err := f.countByErr[id]; err != nil {
		return nil, err
	}
	buckets := domain.GroupAndCountMulti(f.responses, domain.MustField(id).Values)
	out := make([]domain.KeyCount, len(buckets))
	for i, b := range buckets {
		out[i] = domain.KeyCount{Key: b.Key, Count: b.Count}
	}
	return out, nil
}

func (f *fakeSource) All(context.Context) ([]*domain.SurveyResponse, error) {
	return f.responses, f.allErr
}

func (f *fakeSource) WithPostalCode(context.Context) ([]*domain.SurveyResponse, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	return domain.Filter(f.responses, func(r *domain.SurveyResponse) bool { return r.PostalCode != "" }), nil
}

func (f *fakeSource) CreatedBetween(_ context.Context, from, to time.Time) (int, error) {
	return domain.CountWhere(f.responses, func(r *domain.SurveyResponse) bool {
		return !r.CreatedAt.Before(from) && r.CreatedAt.Before(to)
	}), nil
}

// --- fixtures ---

// fixtureResponses returns four respondents: two in São Paulo - Centro,
// one in Rio de Janeiro - Zona Sul and one without a postal code.
func fixtureResponses() []*domain.SurveyResponse {
	return []*domain.SurveyResponse{
		{
			ID: "a", AgeRange: "26 – 35 anos", Gender: "Feminino", MaritalStatus: "Solteiro(a)",
			PostalCode: "01310-100", Frequency: "Quinzenal",
			WineStyle: domain.StringList{"Seco"}, WineType: domain.StringList{"Tinto", "Branco"},
			PriceRange: "R$ 101 – R$ 200", PreferredOrigins: domain.StringList{"Chile", "Argentina"},
			Email: "a@example.com", CommunicationPreference: "Sim, pode me chamar no WhatsApp",
			CreatedAt: testNow.AddDate(0, 0, -20),
		},
		{
			ID: "b", AgeRange: "36 – 45 anos", Gender: "Masculino", MaritalStatus: "Casado(a)/em união estável",
			PostalCode: "01415-000", Frequency: "Uma vez por semana",
			WineStyle: domain.StringList{"Seco"}, WineType: domain.StringList{"Tinto"},
			PriceRange: "Acima de R$ 200", PreferredOrigins: domain.StringList{"Chile"},
			Email: "b@example.com", Phone: "11999990000", CommunicationPreference: "Sim, prefiro por e-mail",
			CreatedAt: testNow.AddDate(0, 0, -10),
		},
		{
			ID: "c", AgeRange: "26 – 35 anos", Gender: "Feminino", MaritalStatus: "Solteiro(a)",
			PostalCode: "22071-000", Frequency: "Mensal",
			WineStyle: domain.StringList{"Suave"}, WineType: domain.StringList{"Rosé"},
			PriceRange: "R$ 51 – R$ 80", PreferredOrigins: domain.StringList{"França"},
			CommunicationPreference: "Não, obrigado(a)",
			CreatedAt:               testNow.AddDate(0, 0, -3),
		},
		{
			ID: "d", AgeRange: "46 – 60 anos", Gender: "Masculino", MaritalStatus: "Divorciado(a)",
			Frequency: "Raramente",
			WineStyle: domain.StringList{"Seco"}, WineType: domain.StringList{"Branco", "Tinto"},
			PriceRange: "Até R$ 40", PreferredOrigins: domain.StringList{"Brasil"},
			CommunicationPreference: "Sim, pode me chamar no WhatsApp",
			CreatedAt:               testNow.AddDate(0, 0, -1),
		},
	}
}

func withFakeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(testNow))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func newTestReporter(t *testing.T, src Source) (*Reporter, *bytes.Buffer) {
	t.Helper()
	withFakeClock(t)
	var out bytes.Buffer
	r := New(src, domain.DefaultPrefixTable(), t.TempDir(), &out,
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return r, &out
}

// --- tests ---

func TestParseKind(t *testing.T) {
	for _, s := range []string{"summary", "Segments", " geography ", "executive", "all"} {
		_, err := ParseKind(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseKind("weekly")
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	r, out := newTestReporter(t, &fakeSource{responses: fixtureResponses()})

	s, err := r.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, s.Total)
	var wineTypes []domain.Bucket
	for _, d := range s.Sections["Preferences"] {
		if d.Field == domain.FieldWineType {
			wineTypes = d.Buckets
		}
	}
	assert.Equal(t, []domain.Bucket{
		{Key: "Tinto", Count: 3, Percentage: 75},
		{Key: "Branco", Count: 2, Percentage: 50},
		{Key: "Rosé", Count: 1, Percentage: 25},
	}, wineTypes)

	assert.Equal(t, 3, s.RegionBase)
	assert.Equal(t, []domain.Bucket{
		{Key: "São Paulo - Centro", Count: 2, Percentage: 66.7},
		{Key: "Rio de Janeiro - Zona Sul", Count: 1, Percentage: 33.3},
	}, s.Regions)

	assert.Equal(t, 2, s.WithEmail)
	assert.Equal(t, 1, s.WithPhone)
	assert.Equal(t, 2, s.LastWeek)
	require.NotNil(t, s.FirstAt)
	assert.Equal(t, testNow.AddDate(0, 0, -20), *s.FirstAt)

	assert.Contains(t, out.String(), "Total responses: 4")
	assert.Contains(t, out.String(), "Tinto: 3 (75.0%)")
	assert.Contains(t, out.String(), "base: respondents with a postal code")
}

func TestSummary_Empty(t *testing.T) {
	r, out := newTestReporter(t, &fakeSource{})

	s, err := r.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, s.Total)
	assert.Contains(t, out.String(), "No responses stored yet.")
}

func TestSummary_SectionFailureContinues(t *testing.T) {
	src := &fakeSource{
		responses:  fixtureResponses(),
		countByErr: map[domain.FieldID]error{domain.FieldGender: domain.ErrDatabaseQuery},
	}
	r, out := newTestReporter(t, src)

	s, err := r.Summary(context.Background())
	require.NoError(t, err)

	assert.NotContains(t, s.Sections, "Demographics")
	assert.Contains(t, s.Sections, "Consumption")
	assert.Contains(t, out.String(), "! Demographics failed")
}

func TestRun_ConnectionFailureStops(t *testing.T) {
	r, _ := newTestReporter(t, &fakeSource{countErr: domain.ErrDatabaseConnection})

	err := r.Run(context.Background(), KindAll)
	assert.True(t, errors.Is(err, domain.ErrDatabaseConnection))
}

func TestRun_QueryFailureContinues(t *testing.T) {
	src := &fakeSource{responses: fixtureResponses(), allErr: domain.ErrDatabaseQuery}
	r, out := newTestReporter(t, src)

	err := r.Run(context.Background(), KindAll)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDatabaseQuery))
	// Summary still ran its grouped sections.
	assert.Contains(t, out.String(), "Tinto: 3 (75.0%)")
	assert.Contains(t, out.String(), "! report failed")
}

func TestRun_AllWritesArtifacts(t *testing.T) {
	r, out := newTestReporter(t, &fakeSource{responses: fixtureResponses()})

	require.NoError(t, r.Run(context.Background(), KindAll))

	for _, name := range []string{
		ProfilesCSVFile, SummaryJSONFile, WorkbookFile, RegionChartFile, ExecutiveJSONFile, ExecutiveTextFile,
	} {
		assert.FileExists(t, filepath.Join(r.dir, name))
	}
	assert.NotContains(t, out.String(), "failed")
}
