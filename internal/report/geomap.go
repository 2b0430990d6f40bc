package report

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/wine-survey/internal/domain"
)

//go:embed templates/map.html.tmpl
var templateFS embed.FS

var mapTemplate = template.Must(template.ParseFS(templateFS, "templates/map.html.tmpl"))

// Geocoding methods recorded in the coordinates file.
const (
	MethodOffline = "offline_prefix_table"
	MethodOnline  = "online_viacep_nominatim"
)

// Map centre used when nothing was located.
const (
	defaultCenterLat = -23.5505
	defaultCenterLon = -46.6333
)

// CityStats describes every located respondent of one city.
type CityStats struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Premium  int    `json:"premium"`
	Frequent int    `json:"frequent"`
	Male     int    `json:"male"`
	Female   int    `json:"female"`
}

// MapCluster is one marker: the respondents sharing a coordinate rounded to
// two decimals.
type MapCluster struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Count     int       `json:"count"`
	Color     string    `json:"color"`
	Size      int       `json:"size"`
	Regions   []string  `json:"regions"`
	CityStats CityStats `json:"cityStats"`
}

// MarkerColor shades a marker by how many respondents it holds.
func MarkerColor(n int) string {
	switch {
	case n >= 20:
		return "#8B0000"
	case n >= 10:
		return "#A0522D"
	case n >= 5:
		return "#CD853F"
	case n >= 3:
		return "#D2691E"
	default:
		return "#722F37"
	}
}

// MarkerSize is the marker diameter in pixels.
func MarkerSize(n int) int {
	return min(50, 25+2*n)
}

func cityKey(loc domain.RegionResult) string {
	switch {
	case loc.City != "" && loc.State != "":
		return loc.City + ", " + loc.State
	case loc.City != "":
		return loc.City
	default:
		return loc.Region
	}
}

func clusterKey(loc domain.RegionResult) string {
	return fmt.Sprintf("%.0f,%.0f", math.Round(loc.Lat*100), math.Round(loc.Lon*100))
}

// BuildCityStats counts located respondents per city.
func BuildCityStats(located []domain.LocatedRespondent) map[string]*CityStats {
	premium := domain.SegmentRule(domain.SegmentPremium).Match
	frequent := domain.SegmentRule(domain.SegmentEnthusiast).Match
	stats := make(map[string]*CityStats)
	for _, l := range located {
		key := cityKey(l.Location)
		s, ok := stats[key]
		if !ok {
			s = &CityStats{Name: key}
			stats[key] = s
		}
		s.Count++
		if premium(l.Response) {
			s.Premium++
		}
		if frequent(l.Response) {
			s.Frequent++
		}
		switch l.Response.Gender {
		case "Masculino":
			s.Male++
		case "Feminino":
			s.Female++
		}
	}
	return stats
}

// BuildMapClusters groups located respondents into markers in the order
// their coordinates first appear. A marker sits on its first respondent.
func BuildMapClusters(located []domain.LocatedRespondent) []MapCluster {
	cities := BuildCityStats(located)
	index := make(map[string]int)
	var clusters []MapCluster
	for _, l := range located {
		key := clusterKey(l.Location)
		i, ok := index[key]
		if !ok {
			i = len(clusters)
			index[key] = i
			clusters = append(clusters, MapCluster{
				Lat:       l.Location.Lat,
				Lon:       l.Location.Lon,
				CityStats: *cities[cityKey(l.Location)],
			})
		}
		c := &clusters[i]
		c.Count++
		if !contains(c.Regions, l.Location.Region) {
			c.Regions = append(c.Regions, l.Location.Region)
		}
	}
	for i := range clusters {
		clusters[i].Color = MarkerColor(clusters[i].Count)
		clusters[i].Size = MarkerSize(clusters[i].Count)
	}
	return clusters
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

type mapPage struct {
	Title       string
	Method      string
	GeneratedAt time.Time
	Located     int
	Cities      int
	Premium     int
	Frequent    int
	CenterLat   float64
	CenterLon   float64
	Clusters    []MapCluster
}

// WriteMap renders the Leaflet map page for located.
func WriteMap(w io.Writer, located []domain.LocatedRespondent, method string, now time.Time) error {
	page := mapPage{
		Title:       "Wine Survey Respondents",
		Method:      method,
		GeneratedAt: now,
		Located:     len(located),
		Cities:      len(BuildCityStats(located)),
		CenterLat:   defaultCenterLat,
		CenterLon:   defaultCenterLon,
		Clusters:    BuildMapClusters(located),
	}
	if page.Clusters == nil {
		page.Clusters = []MapCluster{}
	}
	for _, l := range located {
		if domain.SegmentRule(domain.SegmentPremium).Match(l.Response) {
			page.Premium++
		}
		if domain.SegmentRule(domain.SegmentEnthusiast).Match(l.Response) {
			page.Frequent++
		}
	}
	if err := mapTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	return nil
}

// MapLoader writes the HTML map.
type MapLoader struct {
	Path   string
	Method string
}

func (l MapLoader) Load(_ context.Context, located []domain.LocatedRespondent) error {
	return writeFileWith(l.Path, func(w io.Writer) error {
		return WriteMap(w, located, l.Method, domain.Now())
	})
}

// CoordinatesFile is the document written by CoordinatesLoader.
type CoordinatesFile struct {
	Timestamp   time.Time              `json:"timestamp"`
	Total       int                    `json:"total"`
	Method      string                 `json:"method"`
	Respondents []RespondentCoordinate `json:"respondents"`
}

// RespondentCoordinate is where one respondent was placed.
type RespondentCoordinate struct {
	ID string `json:"id"`
	domain.RegionResult
}

// CoordinatesLoader writes every placement as JSON.
type CoordinatesLoader struct {
	Path   string
	Method string
}

func (l CoordinatesLoader) Load(_ context.Context, located []domain.LocatedRespondent) error {
	doc := CoordinatesFile{
		Timestamp:   domain.Now(),
		Total:       len(located),
		Method:      l.Method,
		Respondents: make([]RespondentCoordinate, len(located)),
	}
	for i, lr := range located {
		doc.Respondents[i] = RespondentCoordinate{ID: lr.Response.ID, RegionResult: lr.Location}
	}
	return writeJSONFile(l.Path, doc)
}

func writeFileWith(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
