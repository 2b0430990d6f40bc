//go:build smoke

package nominatim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the public Nominatim API and respect its one request per
// second policy.
// Run with: go test -tags=smoke ./internal/adapter/nominatim/ -v -count=1

func TestSmoke_Geocode(t *testing.T) {
	c := testClient(Options{BaseURL: DefaultBaseURL, Timeout: 10 * time.Second, Interval: time.Second})

	result, err := c.Geocode(context.Background(), "Campinas, SP, Brasil")
	require.NoError(t, err)

	require.True(t, result.Found())
	assert.InDelta(t, -22.9, result.Lat, 0.2)
	assert.InDelta(t, -47.06, result.Lon, 0.2)
}
