package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// RespondentFeature is the decoded form of one GeoJSON feature.
type RespondentFeature struct {
	ID         string
	Lon, Lat   float64
	Properties map[string]interface{}
}

// RespondentFeatures builds one Point feature per located respondent.
// Contact details are left out.
func RespondentFeatures(located []domain.LocatedRespondent) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(located))}
	for _, l := range located {
		r, loc := l.Response, l.Location
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       r.ID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{loc.Lon, loc.Lat}),
			Properties: map[string]interface{}{
				"id":               r.ID,
				"postalCode":       loc.PostalCode,
				"prefix":           loc.Prefix,
				"region":           loc.Region,
				"district":         loc.District,
				"city":             loc.City,
				"state":            loc.State,
				"approximate":      loc.Approximate,
				"ageRange":         r.AgeRange,
				"gender":           r.Gender,
				"maritalStatus":    r.MaritalStatus,
				"frequency":        r.Frequency,
				"priceRange":       r.PriceRange,
				"wineStyle":        cleanList(r.WineStyle),
				"wineType":         cleanList(r.WineType),
				"preferredOrigins": cleanList(r.PreferredOrigins),
				"completedAt":      r.CompletedAt,
			},
		})
	}
	return fc
}

// WriteGeoJSON encodes located as a FeatureCollection.
func WriteGeoJSON(w io.Writer, located []domain.LocatedRespondent) error {
	data, err := json.MarshalIndent(RespondentFeatures(located), "", "  ")
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// ReadGeoJSON decodes a FeatureCollection of Point features.
func ReadGeoJSON(r io.Reader) ([]RespondentFeature, error) {
	var fc geojson.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	out := make([]RespondentFeature, 0, len(fc.Features))
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(*geom.Point)
		if !ok {
			return nil, fmt.Errorf("feature %d: geometry is %T, want point", i, f.Geometry)
		}
		out = append(out, RespondentFeature{ID: f.ID, Lon: pt.X(), Lat: pt.Y(), Properties: f.Properties})
	}
	return out, nil
}

// ReadGeoJSONFile is ReadGeoJSON over a file.
func ReadGeoJSONFile(path string) ([]RespondentFeature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadGeoJSON(f)
}

// GeoJSONLoader writes the respondents GeoJSON file.
type GeoJSONLoader struct {
	Path string
}

func (l GeoJSONLoader) Load(_ context.Context, located []domain.LocatedRespondent) error {
	return writeFileWith(l.Path, func(w io.Writer) error {
		return WriteGeoJSON(w, located)
	})
}
