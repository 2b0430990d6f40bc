package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/wine-survey/internal/domain"
)

// SegmentReport sizes the marketing segments and derives recommendations.
type SegmentReport struct {
	GeneratedAt     time.Time                  `json:"generatedAt"`
	Total           int                        `json:"totalResponses"`
	Price           []domain.SegmentShare      `json:"priceSegments"`
	Frequency       []domain.SegmentShare      `json:"frequencySegments"`
	Demographic     []domain.SegmentShare      `json:"demographicSegments"`
	Communication   []domain.SegmentShare      `json:"communicationSegments"`
	Combinations    []domain.Bucket            `json:"wineTypeCombinations"`
	AgeGroups       []AgePreference            `json:"ageGroupPreferences"`
	Demographics    map[string][]domain.Bucket `json:"demographics"`
	Consumption     map[string][]domain.Bucket `json:"consumption"`
	Recommendations []string                   `json:"recommendations"`
	Profiles        []Profile                  `json:"-"`
}

// AgePreference is the most consumed wine type within one age range.
type AgePreference struct {
	AgeRange    string `json:"ageRange"`
	Respondents int    `json:"respondents"`
	TopWineType string `json:"topWineType"`
}

// combinationSeparator joins the wine types of a multi-type respondent.
const combinationSeparator = " + "

// BuildSegments computes the segment report over responses.
func BuildSegments(responses []*domain.SurveyResponse, now time.Time) *SegmentReport {
	rep := &SegmentReport{
		GeneratedAt:   now,
		Total:         len(responses),
		Price:         domain.MeasureSegments(responses, domain.RulesIn(domain.GroupPrice)),
		Frequency:     domain.MeasureSegments(responses, domain.RulesIn(domain.GroupFrequency)),
		Demographic:   domain.MeasureSegments(responses, domain.RulesIn(domain.GroupDemographic)),
		Communication: domain.MeasureSegments(responses, domain.RulesIn(domain.GroupCommunication)),
		Combinations:  wineTypeCombinations(responses),
		AgeGroups:     agePreferences(responses),
		Profiles:      Profiles(responses),
	}
	rep.Demographics = map[string][]domain.Bucket{
		"gender":   domain.GroupAndCount(responses, scalarOf(domain.FieldGender)),
		"ageRange": domain.GroupAndCount(responses, scalarOf(domain.FieldAgeRange)),
	}
	rep.Consumption = map[string][]domain.Bucket{
		"frequency":  domain.GroupAndCount(responses, scalarOf(domain.FieldFrequency)),
		"priceRange": domain.GroupAndCount(responses, scalarOf(domain.FieldPriceRange)),
	}
	rep.Recommendations = segmentRecommendations(responses, rep)
	return rep
}

func scalarOf(id domain.FieldID) func(*domain.SurveyResponse) string {
	f := domain.MustField(id)
	return f.Scalar
}

func listOf(id domain.FieldID) func(*domain.SurveyResponse) []string {
	return domain.MustField(id).Values
}

// wineTypeCombinations counts respondents naming more than one wine type,
// keyed by their sorted types. At most five combinations are kept.
func wineTypeCombinations(responses []*domain.SurveyResponse) []domain.Bucket {
	multi := domain.Filter(responses, func(r *domain.SurveyResponse) bool {
		return len(cleanList(r.WineType)) > 1
	})
	combos := domain.GroupAndCount(multi, func(r *domain.SurveyResponse) string {
		types := cleanList(r.WineType)
		slices.Sort(types)
		return strings.Join(slices.Compact(types), combinationSeparator)
	})
	// Share of all respondents, not only multi-type ones.
	for i := range combos {
		combos[i].Percentage = domain.Percent(combos[i].Count, len(responses))
	}
	return domain.Top(combos, 5)
}

func agePreferences(responses []*domain.SurveyResponse) []AgePreference {
	var out []AgePreference
	for _, age := range domain.AgeRanges {
		group := domain.Filter(responses, func(r *domain.SurveyResponse) bool { return r.AgeRange == age })
		if len(group) == 0 {
			continue
		}
		top := "N/A"
		if types := domain.GroupAndCountMulti(group, listOf(domain.FieldWineType)); len(types) > 0 {
			top = types[0].Key
		}
		out = append(out, AgePreference{AgeRange: age, Respondents: len(group), TopWineType: top})
	}
	return out
}

func segmentRecommendations(responses []*domain.SurveyResponse, rep *SegmentReport) []string {
	if len(responses) == 0 {
		return nil
	}
	var recs []string

	if top := largestShare(rep.Demographic); top.Count > 0 {
		recs = append(recs, fmt.Sprintf("Focus campaigns on %s (%.1f%% of respondents)", strings.ToLower(top.Label), top.Percentage))
	}
	if top := largestShare(rep.Communication); top.Count > 0 {
		recs = append(recs, fmt.Sprintf("Prioritize the channel respondents prefer: %s (%.1f%%)", strings.ToLower(top.Label), top.Percentage))
	}
	if origins := domain.Top(domain.GroupAndCountMulti(responses, listOf(domain.FieldPreferredOrigins)), 2); len(origins) > 0 {
		recs = append(recs, "Invest in wines from "+strings.Join(domain.Keys(origins), " and ")+" (most preferred origins)")
	}
	styles := domain.GroupAndCountMulti(responses, listOf(domain.FieldWineStyle))
	types := domain.GroupAndCountMulti(responses, listOf(domain.FieldWineType))
	if len(styles) > 0 && len(types) > 0 {
		recs = append(recs, fmt.Sprintf("Develop the %s %s line (dominant preference)",
			strings.ToLower(types[0].Key), strings.ToLower(styles[0].Key)))
	}
	if top := largestShare(rep.Price); top.Count > 0 {
		recs = append(recs, fmt.Sprintf("Build offers for the %s bracket (%.1f%% of the market)", top.Label, top.Percentage))
	}
	if enthusiasts := domain.Share(responses, domain.SegmentEnthusiast); enthusiasts > 0 {
		recs = append(recs, fmt.Sprintf("Run campaigns for weekly consumers (%.1f%% drink weekly or more)", enthusiasts))
	}
	return recs
}

func largestShare(shares []domain.SegmentShare) domain.SegmentShare {
	var best domain.SegmentShare
	for _, s := range shares {
		if s.Count > best.Count {
			best = s
		}
	}
	return best
}

// Segments prints the segment report and exports the profile CSV, the
// summary JSON and the workbook.
func (r *Reporter) Segments(ctx context.Context) (*SegmentReport, error) {
	const name = string(KindSegments)
	r.heading("CUSTOMER SEGMENTS")

	responses, err := r.source.All(ctx)
	if err != nil {
		return nil, err
	}
	rep := BuildSegments(responses, domain.Now())
	r.printf("%d respondent profiles loaded (base for every percentage below)\n", rep.Total)
	if rep.Total == 0 {
		r.printf("No responses stored yet.\n")
		return rep, nil
	}

	r.heading("Purchasing power")
	printShares(r.out, rep.Price)
	r.heading("Consumption frequency")
	printShares(r.out, rep.Frequency)
	r.heading("Demographic profile")
	printShares(r.out, rep.Demographic)
	r.heading("Communication")
	printShares(r.out, rep.Communication)

	r.heading("Most popular wine type combinations")
	printBuckets(r.out, rep.Combinations)

	r.heading("Preferences by age range")
	for _, a := range rep.AgeGroups {
		r.printf("  %s (%d): prefer %s\n", a.AgeRange, a.Respondents, a.TopWineType)
	}

	r.heading("Recommendations")
	for i, rec := range rep.Recommendations {
		r.printf("  %d. %s\n", i+1, rec)
	}

	r.heading("Exports")
	r.section(name, "profiles.csv", func() error {
		path := r.path(ProfilesCSVFile)
		if err := writeProfilesFile(path, rep.Profiles); err != nil {
			return err
		}
		r.wrote(path)
		return nil
	})
	r.section(name, "summary.json", func() error {
		path := r.path(SummaryJSONFile)
		if err := writeJSONFile(path, rep); err != nil {
			return err
		}
		r.wrote(path)
		return nil
	})
	r.section(name, "workbook", func() error {
		path := r.path(WorkbookFile)
		if err := WriteWorkbook(path, rep); err != nil {
			return err
		}
		r.wrote(path)
		return nil
	})
	return rep, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
