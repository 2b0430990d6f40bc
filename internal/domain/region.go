package domain

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed postal_prefixes.yaml
var defaultPrefixYAML []byte

// JitterDegrees bounds the random offset added to table centroids so that
// respondents sharing a prefix do not stack on one pixel.
const JitterDegrees = 0.01

// RegionEntry is one row of the postal-prefix table.
type RegionEntry struct {
	Prefix   string  `yaml:"prefix" json:"prefix"`
	Name     string  `yaml:"name" json:"name"`
	City     string  `yaml:"city" json:"city"`
	District string  `yaml:"district" json:"district"`
	State    string  `yaml:"state" json:"state"`
	Lat      float64 `yaml:"lat" json:"lat"`
	Lon      float64 `yaml:"lon" json:"lon"`
}

// PrefixTable maps two-digit postal prefixes to regions.
type PrefixTable struct {
	entries map[string]RegionEntry
}

type prefixDocument struct {
	Regions []RegionEntry `yaml:"regions"`
}

// LoadPrefixTable parses a YAML document of the form {regions: [...]}.
func LoadPrefixTable(r io.Reader) (*PrefixTable, error) {
	var doc prefixDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode prefix table: %w", err)
	}
	t := &PrefixTable{entries: make(map[string]RegionEntry, len(doc.Regions))}
	for i, e := range doc.Regions {
		if len(e.Prefix) != 2 || NormalizePostalCode(e.Prefix) != e.Prefix {
			return nil, fmt.Errorf("prefix table entry %d: prefix %q is not two digits", i, e.Prefix)
		}
		if _, dup := t.entries[e.Prefix]; dup {
			return nil, fmt.Errorf("prefix table entry %d: duplicate prefix %q", i, e.Prefix)
		}
		if e.Name == "" {
			return nil, fmt.Errorf("prefix table entry %d: missing name", i)
		}
		t.entries[e.Prefix] = e
	}
	return t, nil
}

// LoadPrefixTableFile reads the table from path, or returns the embedded
// table when path is empty.
func LoadPrefixTableFile(path string) (*PrefixTable, error) {
	if path == "" {
		return DefaultPrefixTable(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open prefix table: %w", err)
	}
	defer f.Close()
	return LoadPrefixTable(f)
}

// DefaultPrefixTable returns the table embedded in the binary.
func DefaultPrefixTable() *PrefixTable {
	t, err := LoadPrefixTable(bytes.NewReader(defaultPrefixYAML))
	if err != nil {
		panic("embedded prefix table: " + err.Error())
	}
	return t
}

// Lookup returns the entry registered for a two-digit prefix.
func (t *PrefixTable) Lookup(prefix string) (RegionEntry, bool) {
	e, ok := t.entries[prefix]
	return e, ok
}

// Entries returns every entry ordered by prefix.
func (t *PrefixTable) Entries() []RegionEntry {
	out := make([]RegionEntry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out
}

// Len returns the number of registered prefixes.
func (t *PrefixTable) Len() int { return len(t.entries) }

// RegionLabel names a postal code's region without coordinates. Unknown
// prefixes get the generic label; codes with fewer than two digits get "".
func (t *PrefixTable) RegionLabel(raw string) string {
	prefix, ok := PostalPrefix(raw)
	if !ok {
		return ""
	}
	if e, ok := t.Lookup(prefix); ok {
		return e.Name
	}
	return GenericRegionLabel(prefix)
}

// GenericRegionLabel is the label used for prefixes missing from the table.
func GenericRegionLabel(prefix string) string {
	return "Region " + prefix
}

// RegionResult is where a postal code was placed.
type RegionResult struct {
	PostalCode string  `json:"postalCode"`
	Prefix     string  `json:"prefix"`
	Region     string  `json:"region"`
	Address    string  `json:"address,omitempty"`
	District   string  `json:"district,omitempty"`
	City       string  `json:"city,omitempty"`
	State      string  `json:"state,omitempty"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	// HasCoordinates is false for unknown prefixes.
	HasCoordinates bool `json:"hasCoordinates"`
	// Approximate marks city-level placement by the online resolver.
	Approximate bool `json:"approximate,omitempty"`
}

// Locator places a raw postal code. The offline table resolver and the
// online service chain both satisfy it.
type Locator interface {
	Locate(ctx context.Context, raw string) (RegionResult, error)
}

// Resolver places postal codes using the prefix table alone.
type Resolver struct {
	table *PrefixTable
	rand  func() float64
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRandom replaces the uniform [0, 1) source used for jitter.
func WithRandom(f func() float64) ResolverOption {
	return func(r *Resolver) { r.rand = f }
}

// NewResolver creates an offline resolver over table.
func NewResolver(table *PrefixTable, opts ...ResolverOption) *Resolver {
	r := &Resolver{table: table, rand: rand.Float64}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve normalizes raw and looks up its two-digit prefix. Known prefixes
// get the table centroid shifted by up to JitterDegrees on each axis.
// Unknown prefixes get a generic label and no coordinates.
func (r *Resolver) Resolve(raw string) (RegionResult, error) {
	code := NormalizePostalCode(raw)
	prefix, ok := PostalPrefix(code)
	if !ok {
		return RegionResult{}, fmt.Errorf("postal code %q: %w", raw, ErrInvalidPostalCode)
	}

	entry, ok := r.table.Lookup(prefix)
	if !ok {
		return RegionResult{
			PostalCode: code,
			Prefix:     prefix,
			Region:     GenericRegionLabel(prefix),
		}, nil
	}

	return RegionResult{
		PostalCode:     code,
		Prefix:         prefix,
		Region:         entry.Name,
		District:       entry.District,
		City:           entry.City,
		State:          entry.State,
		Lat:            entry.Lat + r.jitter(),
		Lon:            entry.Lon + r.jitter(),
		HasCoordinates: true,
	}, nil
}

// Locate implements Locator.
func (r *Resolver) Locate(_ context.Context, raw string) (RegionResult, error) {
	return r.Resolve(raw)
}

func (r *Resolver) jitter() float64 {
	return (r.rand() - 0.5) * 2 * JitterDegrees
}

// LocatedRespondent is a response placed at a coordinate.
type LocatedRespondent struct {
	Response *SurveyResponse
	Location RegionResult
}
