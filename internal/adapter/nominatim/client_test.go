package nominatim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/couchcryptid/wine-survey/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	return NewClient(opts, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Geocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Avenida Paulista, São Paulo, SP, Brasil", q.Get("q"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "1", q.Get("limit"))
		assert.Equal(t, "br", q.Get("countrycodes"))
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"-23.5614","lon":"-46.6559","display_name":"Avenida Paulista, Bela Vista","importance":0.61}]`))
	}))
	defer srv.Close()

	c := testClient(Options{BaseURL: srv.URL, UserAgent: "test-agent/1.0"})
	result, err := c.Geocode(context.Background(), "Avenida Paulista, São Paulo, SP, Brasil")
	require.NoError(t, err)

	assert.True(t, result.Found())
	assert.Equal(t, -23.5614, result.Lat)
	assert.Equal(t, -46.6559, result.Lon)
	assert.Equal(t, "Avenida Paulista, Bela Vista", result.FormattedAddress)
	assert.Equal(t, 0.61, result.Importance)
}

func TestClient_Geocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	result, err := testClient(Options{BaseURL: srv.URL}).Geocode(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.False(t, result.Found())
	assert.Empty(t, result.FormattedAddress)
}

func TestClient_Geocode_DefaultUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := testClient(Options{BaseURL: srv.URL}).Geocode(context.Background(), "x")
	require.NoError(t, err)
}

func TestClient_Geocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient(Options{BaseURL: srv.URL}).Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.True(t, errors.Is(err, domain.ErrExternalService))
}

func TestClient_Geocode_BadCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":"north","lon":"-46.6"}]`))
	}))
	defer srv.Close()

	_, err := testClient(Options{BaseURL: srv.URL}).Geocode(context.Background(), "x")
	assert.True(t, errors.Is(err, domain.ErrExternalService))
}

func TestClient_Geocode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := testClient(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}).Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExternalService))
}

func TestClient_Geocode_Throttled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := testClient(Options{BaseURL: srv.URL, Interval: 100 * time.Millisecond})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Geocode(context.Background(), "x")
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, time.Since(start), 190*time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Geocode_CancelledWhileThrottled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := testClient(Options{BaseURL: srv.URL, Interval: time.Hour})
	_, err := c.Geocode(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Geocode(ctx, "second")
	assert.True(t, errors.Is(err, domain.ErrExternalService))
}
