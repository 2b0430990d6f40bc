package report

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/wine-survey/internal/domain"
)

// Thresholds of the geographic report.
const (
	minProfileRespondents     = 2
	minOpportunityRespondents = 3
	solidRegionRespondents    = 5
	premiumRegionShare        = 30.0
	frequentRegionShare       = 60.0
	concentratedStateShare    = 70.0
	solidGeographicBase       = 30
	dominantState             = "SP"
)

// RegionProfile summarizes the preferences of one region.
type RegionProfile struct {
	Region       string          `json:"region"`
	Respondents  int             `json:"respondents"`
	TopWineTypes []domain.Bucket `json:"topWineTypes"`
	TopOrigins   []domain.Bucket `json:"topOrigins"`
	PriceRange   string          `json:"priceRange,omitempty"`
}

// Opportunity flags a region worth targeting.
type Opportunity struct {
	Region        string   `json:"region"`
	Respondents   int      `json:"respondents"`
	PremiumShare  float64  `json:"premiumShare"`
	FrequentShare float64  `json:"frequentShare"`
	Actions       []string `json:"actions"`
}

// Coverage is how many respondents could be placed geographically.
type Coverage struct {
	Total          int     `json:"total"`
	WithPostalCode int     `json:"withPostalCode"`
	Percentage     float64 `json:"percentage"`
	Regions        int     `json:"regions"`
}

// GeographyReport is the regional breakdown of respondents. Every percentage
// uses Base, the respondents with a valid postal code.
type GeographyReport struct {
	GeneratedAt   time.Time       `json:"generatedAt"`
	Base          int             `json:"base"`
	Regions       []domain.Bucket `json:"regions"`
	Profiles      []RegionProfile `json:"profiles"`
	Opportunities []Opportunity   `json:"opportunities"`
	Coverage      Coverage        `json:"coverage"`
	States        []domain.Bucket `json:"states"`
	Insights      []string        `json:"insights"`
}

// BuildGeography groups responses by the region of their postal prefix.
func BuildGeography(responses []*domain.SurveyResponse, table *domain.PrefixTable, now time.Time) *GeographyReport {
	located := withValidPostalCode(responses)
	rep := &GeographyReport{
		GeneratedAt: now,
		Base:        len(located),
		Regions: domain.GroupAndCount(located, func(r *domain.SurveyResponse) string {
			return regionOf(table, r)
		}),
		States: domain.GroupAndCount(located, func(r *domain.SurveyResponse) string {
			return stateOf(table, r)
		}),
	}

	byRegion := make(map[string][]*domain.SurveyResponse)
	for _, r := range located {
		label := regionOf(table, r)
		byRegion[label] = append(byRegion[label], r)
	}

	for _, b := range rep.Regions {
		group := byRegion[b.Key]
		if len(group) >= minProfileRespondents {
			rep.Profiles = append(rep.Profiles, regionProfile(b.Key, group))
		}
		if len(group) >= minOpportunityRespondents {
			rep.Opportunities = append(rep.Opportunities, regionOpportunity(b.Key, group))
		}
	}

	rep.Coverage = Coverage{
		Total:          len(responses),
		WithPostalCode: len(located),
		Percentage:     domain.Percent(len(located), len(responses)),
		Regions:        len(rep.Regions),
	}
	rep.Insights = geographicInsights(rep)
	return rep
}

func regionProfile(region string, group []*domain.SurveyResponse) RegionProfile {
	p := RegionProfile{
		Region:       region,
		Respondents:  len(group),
		TopWineTypes: domain.Top(domain.GroupAndCountMulti(group, listOf(domain.FieldWineType)), 3),
		TopOrigins:   domain.Top(domain.GroupAndCountMulti(group, listOf(domain.FieldPreferredOrigins)), 3),
	}
	answered := domain.Filter(group, func(r *domain.SurveyResponse) bool {
		return strings.TrimSpace(r.PriceRange) != ""
	})
	if prices := domain.GroupAndCount(answered, scalarOf(domain.FieldPriceRange)); len(prices) > 0 {
		p.PriceRange = prices[0].Key
	}
	return p
}

func regionOpportunity(region string, group []*domain.SurveyResponse) Opportunity {
	o := Opportunity{
		Region:        region,
		Respondents:   len(group),
		PremiumShare:  domain.Share(group, domain.SegmentPremium),
		FrequentShare: domain.Share(group, domain.SegmentEnthusiast),
		Actions:       []string{},
	}
	if o.PremiumShare > premiumRegionShare {
		o.Actions = append(o.Actions, "High purchasing power: focus on premium wines")
	}
	if o.FrequentShare > frequentRegionShare {
		o.Actions = append(o.Actions, "Many frequent consumers: create a loyalty program")
	}
	if o.Respondents >= solidRegionRespondents {
		o.Actions = append(o.Actions, "Solid customer base: consider local events")
	}
	return o
}

func geographicInsights(rep *GeographyReport) []string {
	var insights []string
	var sp domain.Bucket
	for _, s := range rep.States {
		if s.Key == dominantState {
			sp = s
		}
	}
	if sp.Percentage > concentratedStateShare {
		insights = append(insights, "Strong concentration in São Paulo: expand to other states")
	}
	if sp.Count > 0 {
		insights = append(insights, "Significant presence in SP: use local logistics")
	}
	if rep.Base >= solidGeographicBase {
		insights = append(insights, "Geographic base large enough for statistical analysis")
	}
	return insights
}

// Geography prints the regional report and writes the region chart.
func (r *Reporter) Geography(ctx context.Context) (*GeographyReport, error) {
	r.heading("GEOGRAPHIC ANALYSIS")

	responses, err := r.source.All(ctx)
	if err != nil {
		return nil, err
	}
	rep := BuildGeography(responses, r.table, domain.Now())
	r.printf("Base: %d respondents with a valid postal code\n", rep.Base)
	if rep.Base == 0 {
		r.printf("No respondents with a postal code.\n")
		return rep, nil
	}

	r.heading("Distribution by region")
	printBuckets(r.out, rep.Regions)

	r.heading("Preferences by region")
	for _, p := range rep.Profiles {
		r.printf("  %s (%d respondents)\n", p.Region, p.Respondents)
		r.printf("    wine types: %s\n", countList(p.TopWineTypes))
		r.printf("    origins: %s\n", countList(p.TopOrigins))
		if p.PriceRange != "" {
			r.printf("    predominant price range: %s\n", p.PriceRange)
		}
	}

	r.heading("Opportunities by region")
	for _, o := range rep.Opportunities {
		r.printf("  %s: %.1f%% premium, %.1f%% frequent\n", o.Region, o.PremiumShare, o.FrequentShare)
		for _, a := range o.Actions {
			r.printf("    - %s\n", a)
		}
	}

	r.heading("Coverage")
	r.printf("  %d/%d respondents with a postal code (%.1f%%) across %d regions\n",
		rep.Coverage.WithPostalCode, rep.Coverage.Total, rep.Coverage.Percentage, rep.Coverage.Regions)

	r.heading("Distribution by state")
	printBuckets(r.out, rep.States)

	r.heading("Insights")
	for _, in := range rep.Insights {
		r.printf("  - %s\n", in)
	}

	r.section(string(KindGeography), "chart", func() error {
		path := r.path(RegionChartFile)
		if err := WriteRegionChart(path, rep.Regions, rep.Base); err != nil {
			return err
		}
		r.wrote(path)
		return nil
	})
	return rep, nil
}

func countList(buckets []domain.Bucket) string {
	if len(buckets) == 0 {
		return "-"
	}
	parts := make([]string, len(buckets))
	for i, b := range buckets {
		parts[i] = b.Key + " (" + strconv.Itoa(b.Count) + ")"
	}
	return strings.Join(parts, ", ")
}
