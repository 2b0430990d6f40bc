package report

import (
	"context"
	"fmt"
	"io"

	"github.com/couchcryptid/wine-survey/internal/domain"
)

const (
	topCities          = 10
	highDensityCity    = 5
	wideSpreadCities   = 10
	stateConcentration = 80.0
)

// PlacementSummary describes where the located respondents are. Percentages
// use Located as base.
type PlacementSummary struct {
	Located     int
	States      []domain.Bucket
	Cities      []domain.Bucket
	HighDensity []domain.Bucket
	Insights    []string
}

// SummarizePlacements groups located respondents by state and city.
func SummarizePlacements(located []domain.LocatedRespondent) PlacementSummary {
	s := PlacementSummary{
		Located: len(located),
		States: domain.GroupAndCount(located, func(l domain.LocatedRespondent) string {
			return l.Location.State
		}),
		Cities: domain.GroupAndCount(located, func(l domain.LocatedRespondent) string {
			return cityKey(l.Location)
		}),
	}
	s.HighDensity = domain.Filter(s.Cities, func(b domain.Bucket) bool { return b.Count >= highDensityCity })

	for _, st := range s.States {
		if st.Key == dominantState && st.Percentage > stateConcentration {
			s.Insights = append(s.Insights, fmt.Sprintf("Strong concentration in São Paulo (%.1f%%): room to expand", st.Percentage))
		}
	}
	if n := len(s.HighDensity); n > 0 {
		s.Insights = append(s.Insights, fmt.Sprintf("%d high-density cities: focus on local events", n))
	}
	if len(s.Cities) >= wideSpreadCities {
		s.Insights = append(s.Insights, fmt.Sprintf("Wide geographic spread (%d cities): solid base for expansion", len(s.Cities)))
	}
	return s
}

// ConsoleLoader prints the placement summary.
type ConsoleLoader struct {
	Out io.Writer
}

func (l ConsoleLoader) Load(_ context.Context, located []domain.LocatedRespondent) error {
	s := SummarizePlacements(located)
	w := l.Out
	fmt.Fprintf(w, "\n=== GEOGRAPHIC PLACEMENT ===\n")
	fmt.Fprintf(w, "Located respondents: %d (base for every percentage below)\n", s.Located)
	fmt.Fprintf(w, "Distinct cities: %d, distinct states: %d\n", len(s.Cities), len(s.States))

	fmt.Fprintf(w, "\nBy state:\n")
	printBuckets(w, s.States)

	fmt.Fprintf(w, "\nTop %d cities:\n", topCities)
	printBuckets(w, domain.Top(s.Cities, topCities))

	if len(s.HighDensity) > 0 {
		fmt.Fprintf(w, "\nHigh-density cities (%d+ respondents):\n", highDensityCity)
		printBuckets(w, s.HighDensity)
	}
	if len(s.Insights) > 0 {
		fmt.Fprintf(w, "\nInsights:\n")
		for _, in := range s.Insights {
			fmt.Fprintf(w, "  - %s\n", in)
		}
	}
	return nil
}
