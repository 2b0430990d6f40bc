// Package mockdata generates deterministic synthetic survey responses for
// demos and tests.
package mockdata

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/google/uuid"
)

// Share of generated respondents that skip the optional postal code, and of
// those who give a prefix missing from the table.
const (
	blankPostalCodeRate   = 0.10
	unknownPostalCodeRate = 0.05
	secondWineTypeRate    = 0.20
	unknownPrefix         = "99"
)

var firstNames = []string{"Ana", "Bruno", "Carla", "Diego", "Elisa", "Felipe", "Gabriela", "Henrique", "Isabela", "João", "Larissa", "Marcos"}

var lastNames = []string{"Silva", "Souza", "Oliveira", "Santos", "Pereira", "Costa", "Almeida", "Ferreira"}

var userAgents = []struct {
	ua     string
	mobile bool
}{
	{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1", true},
	{"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Mobile Safari/537.36", true},
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36", false},
	{"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15", false},
}

// Generator draws answers from the questionnaire options.
type Generator struct {
	rng      *rand.Rand
	seed     uint64
	prefixes []string
	start    time.Time
}

// New creates a Generator. The same seed and table always yield the same
// responses.
func New(seed uint64, table *domain.PrefixTable, start time.Time) *Generator {
	entries := table.Entries()
	prefixes := make([]string, len(entries))
	for i, e := range entries {
		prefixes[i] = e.Prefix
	}
	return &Generator{
		rng:      rand.New(rand.NewPCG(seed, seed^0x5eed)),
		seed:     seed,
		prefixes: prefixes,
		start:    start,
	}
}

// Generate returns n complete responses created one after another from the
// generator's start time.
func Generate(n int, seed uint64, table *domain.PrefixTable, start time.Time) []*domain.SurveyResponse {
	g := New(seed, table, start)
	out := make([]*domain.SurveyResponse, n)
	at := start
	for i := range out {
		at = at.Add(time.Duration(1+g.rng.IntN(180)) * time.Minute)
		out[i] = g.Response(i, at)
	}
	return out
}

// Response builds the i-th respondent, completed at at.
func (g *Generator) Response(i int, at time.Time) *domain.SurveyResponse {
	first, last := g.pick(firstNames), g.pick(lastNames)
	agent := userAgents[g.rng.IntN(len(userAgents))]

	wineTypes := domain.StringList{g.pick(domain.WineTypes)}
	if g.rng.Float64() < secondWineTypeRate {
		wineTypes = append(wineTypes, g.pickOther(domain.WineTypes, wineTypes[0]))
	}

	return &domain.SurveyResponse{
		ID:                      uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("wine-survey-mock/%d/%d", g.seed, i))).String(),
		AgeRange:                g.pick(domain.AgeRanges),
		Gender:                  g.pick(domain.Genders),
		MaritalStatus:           g.pick(domain.Marital),
		HouseholdSize:           g.pick(domain.Household),
		PostalCode:              g.postalCode(),
		Frequency:               g.pick(domain.Frequencies),
		WineStyle:               g.pickSome(domain.WineStyles, 2),
		WineType:                wineTypes,
		Classification:          g.pick(domain.Classifications),
		PriceRange:              g.pick(domain.PriceRanges),
		AlcoholFreeWine:         g.pick(domain.YesNo),
		GrapeVarieties:          g.pick([]string{"Cabernet Sauvignon", "Malbec", "Merlot", "Pinot Noir", "Chardonnay", "Sauvignon Blanc"}),
		TryNewVarieties:         g.pick(domain.YesNo),
		PreferredOrigins:        g.pickSome(domain.Origins, 3),
		PurchaseChannels:        g.pickSome(domain.PurchaseOutlet, 3),
		AttractiveFactors:       g.pickSome(domain.AttractiveFactorOptions, 3),
		WineEvents:              g.pick(domain.YesNo),
		CannedWines:             g.pick(domain.Awareness),
		NaturalWines:            g.pick(domain.Awareness),
		Name:                    first + " " + last,
		Email:                   fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(ascii(first)), strings.ToLower(last), i+1),
		Phone:                   fmt.Sprintf("11 9%04d-%04d", g.rng.IntN(10000), g.rng.IntN(10000)),
		CommunicationPreference: g.pick(domain.Communications),
		Metadata: domain.SubmissionMetadata{
			UserAgent: agent.ua,
			IPAddress: fmt.Sprintf("198.51.100.%d", 1+g.rng.IntN(254)),
			Mobile:    agent.mobile,
		},
		CompletedAt: at,
		CreatedAt:   at,
	}
}

func (g *Generator) postalCode() string {
	p := g.rng.Float64()
	switch {
	case p < blankPostalCodeRate:
		return ""
	case p < blankPostalCodeRate+unknownPostalCodeRate || len(g.prefixes) == 0:
		return fmt.Sprintf("%s%03d-%03d", unknownPrefix, g.rng.IntN(1000), g.rng.IntN(1000))
	default:
		return fmt.Sprintf("%s%03d-%03d", g.pick(g.prefixes), g.rng.IntN(1000), g.rng.IntN(1000))
	}
}

func (g *Generator) pick(options []string) string {
	return options[g.rng.IntN(len(options))]
}

func (g *Generator) pickOther(options []string, not string) string {
	for {
		if v := g.pick(options); v != not {
			return v
		}
	}
}

// pickSome returns between one and limit distinct options in form order.
func (g *Generator) pickSome(options []string, limit int) domain.StringList {
	n := 1 + g.rng.IntN(limit)
	chosen := make(map[int]bool, n)
	for len(chosen) < n {
		chosen[g.rng.IntN(len(options))] = true
	}
	out := make(domain.StringList, 0, n)
	for i, o := range options {
		if chosen[i] {
			out = append(out, o)
		}
	}
	return out
}

func ascii(s string) string {
	return strings.NewReplacer("ã", "a", "á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ç", "c").Replace(s)
}
