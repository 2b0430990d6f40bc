// Package viacep looks up Brazilian postal codes with the ViaCEP API.
package viacep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/couchcryptid/wine-survey/internal/observability"
)

const (
	// DefaultBaseURL is the public ViaCEP endpoint.
	DefaultBaseURL = "https://viacep.com.br"
	// DefaultUserAgent identifies the application when none is configured.
	DefaultUserAgent = "WineSurvey/1.0 (contato@example.com)"
	service          = "viacep"
)

// Client implements domain.AddressLookup.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// NewClient creates a ViaCEP client with a fixed per-request timeout.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		metrics:    metrics,
		logger:     logger,
	}
}

// LookupPostalCode fetches the address registered for an eight-digit code.
func (c *Client) LookupPostalCode(ctx context.Context, code string) (domain.PostalAddress, error) {
	u := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.PostalAddress{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GeocodeAPIDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(service, "error").Inc()
		return domain.PostalAddress{}, fmt.Errorf("viacep request: %w: %w", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.GeocodeRequests.WithLabelValues(service, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.PostalAddress{}, fmt.Errorf("viacep API error: status %d: %s: %w", resp.StatusCode, body, domain.ErrExternalService)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(service, "error").Inc()
		return domain.PostalAddress{}, fmt.Errorf("decode response: %w: %w", domain.ErrExternalService, err)
	}

	if payload.Error {
		c.metrics.GeocodeRequests.WithLabelValues(service, "empty").Inc()
		c.logger.Debug("postal code unknown to viacep", "postal_code", code)
		return domain.PostalAddress{}, fmt.Errorf("viacep has no address for %s: %w", code, domain.ErrRegionNotFound)
	}

	c.metrics.GeocodeRequests.WithLabelValues(service, "success").Inc()
	return domain.PostalAddress{
		PostalCode: domain.NormalizePostalCode(payload.PostalCode),
		Street:     payload.Street,
		District:   payload.District,
		City:       payload.City,
		State:      payload.State,
	}, nil
}

// ViaCEP API response type.

type response struct {
	PostalCode string   `json:"cep"`
	Street     string   `json:"logradouro"`
	District   string   `json:"bairro"`
	City       string   `json:"localidade"`
	State      string   `json:"uf"`
	Error      apiError `json:"erro"`
}

// apiError decodes the "erro" flag, which ViaCEP sends as true or "true".
type apiError bool

func (e *apiError) UnmarshalJSON(data []byte) error {
	v := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	*e = apiError(v == "true")
	return nil
}
