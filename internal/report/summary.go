package report

import (
	"context"
	"time"

	"github.com/couchcryptid/wine-survey/internal/domain"
)

// Distribution is one question's answers counted over a base population.
type Distribution struct {
	Field   domain.FieldID  `json:"field"`
	Title   string          `json:"title"`
	Buckets []domain.Bucket `json:"buckets"`
}

// Summary is the per-section overview of all responses.
type Summary struct {
	GeneratedAt time.Time                 `json:"generatedAt"`
	Total       int                       `json:"totalResponses"`
	Sections    map[string][]Distribution `json:"sections"`
	Regions     []domain.Bucket           `json:"regions"`
	RegionBase  int                       `json:"regionBase"`
	WithEmail   int                       `json:"withEmail"`
	WithPhone   int                       `json:"withPhone"`
	FirstAt     *time.Time                `json:"firstResponseAt,omitempty"`
	LastAt      *time.Time                `json:"lastResponseAt,omitempty"`
	LastWeek    int                       `json:"lastSevenDays"`
}

type summarySection struct {
	name   string
	fields []domain.FieldID
}

var summarySections = []summarySection{
	{"Demographics", []domain.FieldID{domain.FieldAgeRange, domain.FieldGender, domain.FieldMaritalStatus, domain.FieldHouseholdSize}},
	{"Consumption", []domain.FieldID{domain.FieldFrequency, domain.FieldClassification, domain.FieldPriceRange, domain.FieldAlcoholFreeWine}},
	{"Preferences", []domain.FieldID{domain.FieldWineStyle, domain.FieldWineType, domain.FieldPreferredOrigins, domain.FieldPurchaseChannels, domain.FieldAttractiveFactors, domain.FieldTryNewVarieties}},
	{"Novelties", []domain.FieldID{domain.FieldWineEvents, domain.FieldCannedWines, domain.FieldNaturalWines}},
	{"Contact", []domain.FieldID{domain.FieldCommunicationPreference}},
}

// Summary prints answer counts per form section. Each section queries the
// store on its own; a failed query is printed and the next section runs.
func (r *Reporter) Summary(ctx context.Context) (*Summary, error) {
	const name = string(KindSummary)
	r.heading("SURVEY SUMMARY")

	total, err := r.source.Count(ctx)
	if err != nil {
		return nil, err
	}
	s := &Summary{
		GeneratedAt: domain.Now(),
		Total:       total,
		Sections:    make(map[string][]Distribution),
	}
	r.printf("Total responses: %d\n", total)
	if total == 0 {
		r.printf("No responses stored yet.\n")
		return s, nil
	}

	for _, sec := range summarySections {
		r.heading(sec.name + " (base: all responses)")
		r.section(name, sec.name, func() error {
			dists, err := r.distributions(ctx, sec.fields, total)
			if err != nil {
				return err
			}
			s.Sections[sec.name] = dists
			for _, d := range dists {
				r.printf("%s\n", d.Title)
				printBuckets(r.out, d.Buckets)
			}
			return nil
		})
	}

	r.heading("Regions (base: respondents with a postal code)")
	r.section(name, "Regions", func() error {
		responses, err := r.source.WithPostalCode(ctx)
		if err != nil {
			return err
		}
		valid := withValidPostalCode(responses)
		s.RegionBase = len(valid)
		s.Regions = domain.GroupAndCount(valid, func(resp *domain.SurveyResponse) string {
			return regionOf(r.table, resp)
		})
		r.printf("Base: %d respondents\n", s.RegionBase)
		printBuckets(r.out, s.Regions)
		return nil
	})

	r.heading("Contact and timeline")
	r.section(name, "Timeline", func() error {
		all, err := r.source.All(ctx)
		if err != nil {
			return err
		}
		s.WithEmail = domain.CountWhere(all, func(resp *domain.SurveyResponse) bool { return resp.Email != "" })
		s.WithPhone = domain.CountWhere(all, func(resp *domain.SurveyResponse) bool { return resp.Phone != "" })
		if len(all) > 0 {
			first, last := all[0].CreatedAt, all[len(all)-1].CreatedAt
			s.FirstAt, s.LastAt = &first, &last
		}

		now := domain.Now()
		s.LastWeek, err = r.source.CreatedBetween(ctx, now.AddDate(0, 0, -7), now.Add(time.Second))
		if err != nil {
			return err
		}

		r.printf("With e-mail: %d (%.1f%%)\n", s.WithEmail, domain.Percent(s.WithEmail, total))
		r.printf("With phone: %d (%.1f%%)\n", s.WithPhone, domain.Percent(s.WithPhone, total))
		if s.FirstAt != nil {
			r.printf("First response: %s\n", s.FirstAt.Format("2006-01-02"))
			r.printf("Last response: %s\n", s.LastAt.Format("2006-01-02"))
		}
		r.printf("Responses in the last 7 days: %d\n", s.LastWeek)
		return nil
	})

	return s, nil
}

func (r *Reporter) distributions(ctx context.Context, fields []domain.FieldID, total int) ([]Distribution, error) {
	out := make([]Distribution, 0, len(fields))
	for _, id := range fields {
		counts, err := r.source.CountBy(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, Distribution{
			Field:   id,
			Title:   domain.MustField(id).Title,
			Buckets: domain.RankCounts(counts, total),
		})
	}
	return out, nil
}
