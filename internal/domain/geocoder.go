package domain

import "context"

// PostalAddress is what an address-by-postal-code service knows about a CEP.
type PostalAddress struct {
	PostalCode string
	Street     string
	District   string
	City       string
	State      string
}

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	Importance       float64 // provider ranking score, higher is better
}

// Found reports whether the provider returned a place.
func (r GeocodingResult) Found() bool {
	return r.Lat != 0 || r.Lon != 0
}

// AddressLookup resolves a complete postal code to a street address.
// Implementations return an error wrapping ErrRegionNotFound when the
// service does not know the code and ErrExternalService on transport or
// status failures.
type AddressLookup interface {
	LookupPostalCode(ctx context.Context, code string) (PostalAddress, error)
}

// PlaceGeocoder converts a free-form place query into coordinates. An empty
// result with a nil error means no match.
type PlaceGeocoder interface {
	Geocode(ctx context.Context, query string) (GeocodingResult, error)
}
