package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// ApproximateAddress replaces the street of respondents placed at their
// city centre.
const ApproximateAddress = "Approximated by city"

// LocationCache memoizes online lookups, failures included, for the
// lifetime of one batch run. Entries are never evicted or invalidated.
type LocationCache struct {
	mu      sync.Mutex
	entries map[string]CachedLocation
	hits    int
	misses  int
}

// CachedLocation is one memoized lookup outcome.
type CachedLocation struct {
	Result RegionResult
	Err    error
}

// NewLocationCache creates an empty cache.
func NewLocationCache() *LocationCache {
	return &LocationCache{entries: make(map[string]CachedLocation)}
}

// Get returns the memoized outcome for key.
func (c *LocationCache) Get(key string) (CachedLocation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return CachedLocation{}, false
	}
	c.hits++
	return e, true
}

// Put records the outcome for key.
func (c *LocationCache) Put(key string, result RegionResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = CachedLocation{Result: result, Err: err}
}

// Len returns the number of memoized keys.
func (c *LocationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit and miss counts since creation.
func (c *LocationCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// OnlineResolver places complete postal codes by chaining an address lookup
// with street-level geocoding, falling back to the city centre.
type OnlineResolver struct {
	addresses AddressLookup
	places    PlaceGeocoder
	cache     *LocationCache
	table     *PrefixTable
	logger    *slog.Logger
}

// NewOnlineResolver wires the lookup chain. The table only supplies region
// labels; cache must outlive every Locate call of the run.
func NewOnlineResolver(addresses AddressLookup, places PlaceGeocoder, cache *LocationCache, table *PrefixTable, logger *slog.Logger) *OnlineResolver {
	return &OnlineResolver{
		addresses: addresses,
		places:    places,
		cache:     cache,
		table:     table,
		logger:    logger,
	}
}

// Locate implements Locator. Every outcome, failures included, is memoized
// under the raw postal code.
func (o *OnlineResolver) Locate(ctx context.Context, raw string) (RegionResult, error) {
	if cached, ok := o.cache.Get(raw); ok {
		return cached.Result, cached.Err
	}
	result, err := o.resolve(ctx, raw)
	o.cache.Put(raw, result, err)
	return result, err
}

func (o *OnlineResolver) resolve(ctx context.Context, raw string) (RegionResult, error) {
	code := NormalizePostalCode(raw)
	if len(code) != PostalCodeDigits {
		return RegionResult{}, fmt.Errorf("postal code %q: %w", raw, ErrInvalidPostalCode)
	}

	addr, err := o.addresses.LookupPostalCode(ctx, code)
	if err != nil {
		return RegionResult{}, fmt.Errorf("lookup postal code %s: %w", code, err)
	}

	base := RegionResult{
		PostalCode: code,
		Prefix:     code[:2],
		Region:     o.table.RegionLabel(code),
		Address:    addr.Street,
		District:   addr.District,
		City:       addr.City,
		State:      addr.State,
	}

	if addr.Street != "" {
		geo, err := o.places.Geocode(ctx, joinPlace(addr.Street, addr.District, addr.City, addr.State, "Brasil"))
		if err != nil {
			return RegionResult{}, fmt.Errorf("geocode street for %s: %w", code, err)
		}
		if geo.Found() {
			base.Lat, base.Lon, base.HasCoordinates = geo.Lat, geo.Lon, true
			return base, nil
		}
	}

	if addr.City == "" {
		return RegionResult{}, fmt.Errorf("postal code %s has no city: %w", code, ErrRegionNotFound)
	}

	geo, err := o.places.Geocode(ctx, joinPlace(addr.City, addr.State, "Brasil"))
	if err != nil {
		return RegionResult{}, fmt.Errorf("geocode city for %s: %w", code, err)
	}
	if !geo.Found() {
		return RegionResult{}, fmt.Errorf("no coordinates for %s: %w", code, ErrRegionNotFound)
	}

	o.logger.Debug("placed at city centre",
		"postal_code", code,
		"city", addr.City,
		"state", addr.State,
	)
	base.Address = ApproximateAddress
	base.Lat, base.Lon, base.HasCoordinates = geo.Lat, geo.Lon, true
	base.Approximate = true
	return base, nil
}

func joinPlace(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
