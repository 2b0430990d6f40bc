package domain

// SegmentID names a composite respondent segment.
type SegmentID string

const (
	SegmentPremium         SegmentID = "premium"
	SegmentMidRange        SegmentID = "mid_range"
	SegmentEconomy         SegmentID = "economy"
	SegmentEnthusiast      SegmentID = "enthusiast"
	SegmentRegular         SegmentID = "regular"
	SegmentOccasional      SegmentID = "occasional"
	SegmentMatureMen       SegmentID = "mature_men"
	SegmentMatureWomen     SegmentID = "mature_women"
	SegmentMarriedMen      SegmentID = "married_men_36_60"
	SegmentPrefersWhatsApp SegmentID = "whatsapp"
	SegmentPrefersEmail    SegmentID = "email"
)

// SegmentGroup clusters rules that partition the same answer.
type SegmentGroup string

const (
	GroupPrice         SegmentGroup = "price"
	GroupFrequency     SegmentGroup = "frequency"
	GroupDemographic   SegmentGroup = "demographic"
	GroupCommunication SegmentGroup = "communication"
)

// Rule is a named predicate over a response.
type Rule struct {
	ID    SegmentID
	Group SegmentGroup
	Label string
	Match func(*SurveyResponse) bool
}

// Answer label sets the rules compare against.
var (
	PremiumPrices  = []string{"R$ 101 – R$ 200", "Acima de R$ 200"}
	MidRangePrices = []string{"R$ 51 – R$ 80", "R$ 81 – R$ 100"}
	EconomyPrices  = []string{"Até R$ 40", "R$ 41 – R$ 50"}

	WeeklyFrequencies  = []string{"Uma vez por semana", "Duas vezes por semana"}
	RegularFrequencies = []string{"Quinzenal", "Mensal"}

	MatureAges = []string{"36 – 45 anos", "46 – 60 anos"}
)

const (
	genderMale            = "Masculino"
	genderFemale          = "Feminino"
	maritalMarried        = "Casado(a)/em união estável"
	communicationWhatsApp = "Sim, pode me chamar no WhatsApp"
	communicationEmail    = "Sim, prefiro por e-mail"
	frequencyRarely       = "Raramente"
)

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}

// Rules is the segment table shared by every report.
var Rules = []Rule{
	{ID: SegmentPremium, Group: GroupPrice, Label: "Premium (R$ 101+)",
		Match: func(r *SurveyResponse) bool { return oneOf(r.PriceRange, PremiumPrices) }},
	{ID: SegmentMidRange, Group: GroupPrice, Label: "Mid-range (R$ 51-100)",
		Match: func(r *SurveyResponse) bool { return oneOf(r.PriceRange, MidRangePrices) }},
	{ID: SegmentEconomy, Group: GroupPrice, Label: "Economy (up to R$ 50)",
		Match: func(r *SurveyResponse) bool { return oneOf(r.PriceRange, EconomyPrices) }},

	{ID: SegmentEnthusiast, Group: GroupFrequency, Label: "Enthusiasts (weekly or more)",
		Match: func(r *SurveyResponse) bool { return oneOf(r.Frequency, WeeklyFrequencies) }},
	{ID: SegmentRegular, Group: GroupFrequency, Label: "Regulars (fortnightly/monthly)",
		Match: func(r *SurveyResponse) bool { return oneOf(r.Frequency, RegularFrequencies) }},
	{ID: SegmentOccasional, Group: GroupFrequency, Label: "Occasional (rarely)",
		Match: func(r *SurveyResponse) bool { return r.Frequency == frequencyRarely }},

	{ID: SegmentMatureMen, Group: GroupDemographic, Label: "Men 36-60",
		Match: func(r *SurveyResponse) bool { return r.Gender == genderMale && oneOf(r.AgeRange, MatureAges) }},
	{ID: SegmentMatureWomen, Group: GroupDemographic, Label: "Women 36-60",
		Match: func(r *SurveyResponse) bool { return r.Gender == genderFemale && oneOf(r.AgeRange, MatureAges) }},
	{ID: SegmentMarriedMen, Group: GroupDemographic, Label: "Married men 36-60",
		Match: func(r *SurveyResponse) bool {
			return r.Gender == genderMale && oneOf(r.AgeRange, MatureAges) && r.MaritalStatus == maritalMarried
		}},

	{ID: SegmentPrefersWhatsApp, Group: GroupCommunication, Label: "Prefers WhatsApp",
		Match: func(r *SurveyResponse) bool { return r.CommunicationPreference == communicationWhatsApp }},
	{ID: SegmentPrefersEmail, Group: GroupCommunication, Label: "Prefers e-mail",
		Match: func(r *SurveyResponse) bool { return r.CommunicationPreference == communicationEmail }},
}

// SegmentRule returns the rule registered under id.
func SegmentRule(id SegmentID) Rule {
	for _, r := range Rules {
		if r.ID == id {
			return r
		}
	}
	panic("unknown segment: " + string(id))
}

// RulesIn returns the rules of one group in table order.
func RulesIn(g SegmentGroup) []Rule {
	var out []Rule
	for _, r := range Rules {
		if r.Group == g {
			out = append(out, r)
		}
	}
	return out
}

// SegmentShare is the size of one segment within a population.
type SegmentShare struct {
	ID         SegmentID `json:"id"`
	Label      string    `json:"label"`
	Count      int       `json:"count"`
	Percentage float64   `json:"percentage"`
}

// MeasureSegments applies rules to responses. Percentages use
// len(responses) as denominator.
func MeasureSegments(responses []*SurveyResponse, rules []Rule) []SegmentShare {
	out := make([]SegmentShare, 0, len(rules))
	for _, rule := range rules {
		n := CountWhere(responses, rule.Match)
		out = append(out, SegmentShare{
			ID:         rule.ID,
			Label:      rule.Label,
			Count:      n,
			Percentage: Percent(n, len(responses)),
		})
	}
	return out
}

// Share returns the percentage of responses matching the segment.
func Share(responses []*SurveyResponse, id SegmentID) float64 {
	return Percent(CountWhere(responses, SegmentRule(id).Match), len(responses))
}
