package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/couchcryptid/wine-survey/internal/domain"
)

// Recommendation thresholds, in percent of the relevant base.
const (
	premiumShareThreshold  = 25.0
	frequentShareThreshold = 50.0
	spShareThreshold       = 80.0
	whatsAppThreshold      = 40.0
	redWineThreshold       = 60.0
	redWine                = "Tinto"
	mainRegionsShown       = 5
)

// ExecutiveSummary consolidates every report into one document.
type ExecutiveSummary struct {
	GeneratedAt     time.Time            `json:"timestamp"`
	TotalResponses  int                  `json:"totalResponses"`
	Demographic     ExecutiveDemographic `json:"demographic"`
	Consumption     ExecutiveConsumption `json:"consumption"`
	Geographic      ExecutiveGeographic  `json:"geographic"`
	Opportunities   ExecutiveOpportunity `json:"opportunities"`
	Recommendations []string             `json:"recommendations"`
}

type ExecutiveDemographic struct {
	PrimaryAgeGroup string          `json:"primaryAgeGroup"`
	Gender          []domain.Bucket `json:"genderDistribution"`
	MaritalStatus   []domain.Bucket `json:"maritalStatus"`
}

type ExecutiveConsumption struct {
	Frequency []domain.Bucket `json:"frequencyProfile"`
	Price     []domain.Bucket `json:"priceSegmentation"`
	WineTypes []domain.Bucket `json:"winePreferences"`
}

// ExecutiveGeographic percentages use Base.
type ExecutiveGeographic struct {
	Base        int             `json:"base"`
	States      []domain.Bucket `json:"stateDistribution"`
	MainRegions []domain.Bucket `json:"mainRegions"`
}

type ExecutiveOpportunity struct {
	PremiumSegment        float64         `json:"premiumSegment"`
	FrequentConsumers     float64         `json:"frequentConsumers"`
	CommunicationChannels []domain.Bucket `json:"communicationChannels"`
}

// Executive builds the executive summary, prints it and writes its JSON and
// text renditions.
func (r *Reporter) Executive(ctx context.Context) (*ExecutiveSummary, error) {
	const name = string(KindExecutive)
	r.heading("EXECUTIVE SUMMARY")

	total, err := r.source.Count(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		r.printf("No responses stored yet.\n")
		return &ExecutiveSummary{GeneratedAt: domain.Now()}, nil
	}
	responses, err := r.source.All(ctx)
	if err != nil {
		return nil, err
	}

	s := BuildExecutive(responses, r.table, domain.Now())
	s.TotalResponses = total

	var failedSections bool
	dist := func(id domain.FieldID) []domain.Bucket {
		counts, err := r.source.CountBy(ctx, id)
		if err != nil {
			r.failed(name, string(id), err)
			failedSections = true
			return []domain.Bucket{}
		}
		return domain.RankCounts(counts, total)
	}
	ages := dist(domain.FieldAgeRange)
	s.Demographic.PrimaryAgeGroup = "N/A"
	if len(ages) > 0 {
		s.Demographic.PrimaryAgeGroup = ages[0].Key
	}
	s.Demographic.Gender = dist(domain.FieldGender)
	s.Demographic.MaritalStatus = dist(domain.FieldMaritalStatus)
	s.Consumption.Frequency = dist(domain.FieldFrequency)
	s.Consumption.Price = dist(domain.FieldPriceRange)
	s.Opportunities.CommunicationChannels = dist(domain.FieldCommunicationPreference)
	if failedSections {
		r.logger.Warn("executive summary built with missing distributions")
	}

	if err := writeExecutiveText(r.out, s); err != nil {
		r.logger.Warn("print executive summary", "error", err)
	}

	r.section(name, "json", func() error {
		path := r.path(ExecutiveJSONFile)
		if err := writeJSONFile(path, s); err != nil {
			return err
		}
		r.wrote(path)
		return nil
	})
	r.section(name, "text", func() error {
		path := r.path(ExecutiveTextFile)
		if err := writeFileWith(path, func(w io.Writer) error { return writeExecutiveText(w, s) }); err != nil {
			return err
		}
		r.wrote(path)
		return nil
	})
	return s, nil
}

// BuildExecutive computes the parts of the summary derived from the
// responses themselves: wine preferences, geography, segment shares and
// recommendations. Distributions served by grouped queries are left empty.
func BuildExecutive(responses []*domain.SurveyResponse, table *domain.PrefixTable, now time.Time) *ExecutiveSummary {
	geo := BuildGeography(responses, table, now)
	s := &ExecutiveSummary{
		GeneratedAt:    now,
		TotalResponses: len(responses),
		Consumption: ExecutiveConsumption{
			WineTypes: domain.GroupAndCountMulti(responses, listOf(domain.FieldWineType)),
		},
		Geographic: ExecutiveGeographic{
			Base:        geo.Base,
			States:      geo.States,
			MainRegions: domain.Top(geo.Regions, mainRegionsShown),
		},
		Opportunities: ExecutiveOpportunity{
			PremiumSegment:    domain.Share(responses, domain.SegmentPremium),
			FrequentConsumers: domain.Share(responses, domain.SegmentEnthusiast),
		},
	}
	s.Recommendations = executiveRecommendations(responses, s)
	return s
}

func executiveRecommendations(responses []*domain.SurveyResponse, s *ExecutiveSummary) []string {
	recs := []string{}
	if s.Opportunities.PremiumSegment > premiumShareThreshold {
		recs = append(recs, "Develop a premium line of special wines above R$ 100")
	}
	if s.Opportunities.FrequentConsumers > frequentShareThreshold {
		recs = append(recs, "Launch a loyalty program for frequent consumers")
	}
	for _, st := range s.Geographic.States {
		if st.Key == dominantState && st.Percentage > spShareThreshold {
			recs = append(recs, "Expand operations to Rio de Janeiro and Minas Gerais")
		}
	}
	if domain.Share(responses, domain.SegmentPrefersWhatsApp) > whatsAppThreshold {
		recs = append(recs, "Focus communication on WhatsApp and digital media")
	}
	for _, wt := range s.Consumption.WineTypes {
		if wt.Key == redWine && wt.Percentage > redWineThreshold {
			recs = append(recs, "Broaden the red wine portfolio, especially Argentinian and Chilean labels")
		}
	}
	return recs
}

func writeExecutiveText(w io.Writer, s *ExecutiveSummary) error {
	var b strings.Builder
	b.WriteString("WINE SURVEY EXECUTIVE SUMMARY\n")
	b.WriteString("=============================\n\n")
	fmt.Fprintf(&b, "Total responses: %d (base for every percentage unless stated)\n", s.TotalResponses)
	fmt.Fprintf(&b, "Generated: %s\n\n", s.GeneratedAt.Format("2006-01-02"))

	b.WriteString("DEMOGRAPHICS\n")
	fmt.Fprintf(&b, "  Primary age group: %s\n", s.Demographic.PrimaryAgeGroup)
	printBuckets(&b, s.Demographic.Gender)

	b.WriteString("\nCONSUMPTION\n")
	fmt.Fprintf(&b, "  Frequent consumers (weekly): %.1f%%\n", s.Opportunities.FrequentConsumers)
	fmt.Fprintf(&b, "  Premium segment (R$ 101+): %.1f%%\n", s.Opportunities.PremiumSegment)
	if len(s.Consumption.WineTypes) > 0 {
		fmt.Fprintf(&b, "  Main preference: %s\n", s.Consumption.WineTypes[0].Key)
	}

	fmt.Fprintf(&b, "\nGEOGRAPHY (base: %d respondents with a postal code)\n", s.Geographic.Base)
	printBuckets(&b, domain.Top(s.Geographic.MainRegions, 3))

	b.WriteString("\nCOMMUNICATION CHANNELS\n")
	printBuckets(&b, s.Opportunities.CommunicationChannels)

	b.WriteString("\nRECOMMENDATIONS\n")
	if len(s.Recommendations) == 0 {
		b.WriteString("  (no threshold reached)\n")
	}
	for i, rec := range s.Recommendations {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, rec)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write executive summary: %w", err)
	}
	return nil
}
