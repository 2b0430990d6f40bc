package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	httpadapter "github.com/couchcryptid/wine-survey/internal/adapter/http"
	"github.com/couchcryptid/wine-survey/internal/adapter/store"
	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/couchcryptid/wine-survey/internal/observability"
	"github.com/couchcryptid/wine-survey/internal/survey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const iphoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type failingService struct {
	err error
}

func (f *failingService) Submit(context.Context, *domain.SurveyResponse) (string, error) {
	return "", f.err
}

func (f *failingService) List(context.Context) (*survey.Listing, error) {
	return nil, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (*httpadapter.Server, *store.Store) {
	t.Helper()
	st, err := store.Open("sqlite://" + filepath.Join(t.TempDir(), "survey.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc := survey.NewService(st, nil, domain.DefaultPrefixTable(), observability.NewMetricsForTesting(), discardLogger())
	return httpadapter.NewServer(":0", svc, st, discardLogger()), st
}

func submissionBody(t *testing.T, overrides map[string]any) *bytes.Reader {
	t.Helper()
	body := map[string]any{
		"ageRange":                "46 – 60 anos",
		"gender":                  "Feminino",
		"maritalStatus":           "Casado(a)/em união estável",
		"householdSize":           "4",
		"cep":                     "30130-010",
		"frequency":               "Duas vezes por semana",
		"wineStyle":               []string{"Seco"},
		"wineType":                "Tinto",
		"classification":          "Vinhos finos",
		"priceRange":              "Acima de R$ 200",
		"alcoholFreeWine":         "Não",
		"grapeVarieties":          "Cabernet Sauvignon",
		"tryNewVarieties":         "Sim",
		"preferredOrigins":        []string{"Portugal", "França"},
		"purchaseChannels":        []string{"Lojas especializadas (adegas, empórios)"},
		"attractiveFactors":       []string{"Rótulos exclusivos"},
		"wineEvents":              "Sim",
		"cannedWines":             "Já conheço, mas não consumo",
		"naturalWines":            "Conheço e gosto",
		"name":                    "Carla",
		"email":                   "carla@example.com",
		"phone":                   "31977776666",
		"communicationPreference": "Sim, pode me chamar no WhatsApp",
	}
	for k, v := range overrides {
		body[k] = v
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenStoreReachable(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := httpadapter.NewServer(":0", &failingService{}, &mockReadiness{err: fmt.Errorf("not ready yet")}, discardLogger())
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSubmitSurvey_PersistsWithMetadata(t *testing.T) {
	srv, st := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/survey", submissionBody(t, nil))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", iphoneUA)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Success  bool   `json:"success"`
		Message  string `json:"message"`
		SurveyID string `json:"surveyId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, httpadapter.SubmittedMessage, body.Message)
	require.NotEmpty(t, body.SurveyID)

	stored, err := st.Get(context.Background(), body.SurveyID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.StringList{"Tinto"}, stored.WineType)
	assert.Equal(t, domain.StringList{"Portugal", "França"}, stored.PreferredOrigins)
	assert.Equal(t, "203.0.113.7", stored.Metadata.IPAddress)
	assert.Equal(t, iphoneUA, stored.Metadata.UserAgent)
	assert.True(t, stored.Metadata.Mobile)
	assert.Contains(t, stored.Metadata.Browser, "Safari")
	assert.False(t, stored.CompletedAt.IsZero())
}

func TestSubmitSurvey_MissingFields(t *testing.T) {
	srv, st := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/survey", submissionBody(t, map[string]any{
		"gender":           "",
		"preferredOrigins": []string{},
	}))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Success bool     `json:"success"`
		Missing []string `json:"missing"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, []string{"Sexo", "Origens preferidas"}, body.Missing)

	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSubmitSurvey_AnswerOutsideOptions(t *testing.T) {
	srv, st := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/survey", submissionBody(t, map[string]any{
		"preferredOrigins": []string{"Chile; Argentina", "Brasil"},
		"wineType":         "Laranja",
	}))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Success bool     `json:"success"`
		Error   string   `json:"error"`
		Missing []string `json:"missing"`
		Invalid []string `json:"invalid"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "invalid answers", body.Error)
	assert.Empty(t, body.Missing)
	assert.Equal(t, []string{"Tipo mais consumido", "Origens preferidas"}, body.Invalid)

	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSubmitSurvey_MalformedJSON(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/survey", bytes.NewBufferString("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitSurvey_StoreFailureIs500(t *testing.T) {
	srv := httpadapter.NewServer(":0", &failingService{err: domain.ErrDatabaseQuery}, &mockReadiness{}, discardLogger())
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/survey", submissionBody(t, nil)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestListSurveys(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, wine := range []string{"Tinto", "Branco", "Tinto"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/survey",
			submissionBody(t, map[string]any{"wineType": wine})))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/survey", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Surveys   []domain.SurveyResponse `json:"surveys"`
		Analytics struct {
			Total         int             `json:"total"`
			WineTypeStats []domain.Bucket `json:"wineTypeStats"`
		} `json:"analytics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Surveys, 3)
	assert.Equal(t, 3, body.Analytics.Total)
	assert.Equal(t, []domain.Bucket{
		{Key: "Tinto", Count: 2, Percentage: 66.7},
		{Key: "Branco", Count: 1, Percentage: 33.3},
	}, body.Analytics.WineTypeStats)
}

func TestListSurveys_Failure(t *testing.T) {
	srv := httpadapter.NewServer(":0", &failingService{err: domain.ErrDatabaseQuery}, &mockReadiness{}, discardLogger())
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/survey", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestQuestions(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/questions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Fields []struct {
			ID       string   `json:"id"`
			Type     string   `json:"type"`
			Required bool     `json:"required"`
			Options  []string `json:"options"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Fields, len(domain.Questionnaire))
	assert.Equal(t, "ageRange", body.Fields[0].ID)
	assert.Equal(t, "single", body.Fields[0].Type)
	assert.True(t, body.Fields[0].Required)
	assert.Equal(t, domain.AgeRanges, body.Fields[0].Options)
}

func TestUnsupportedMethodIs405(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/survey", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
