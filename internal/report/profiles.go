package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/wine-survey/internal/domain"
)

// listSeparator joins multi-valued answers inside one CSV cell.
const listSeparator = ";"

// ProfileColumns is the fixed column order of the profile export.
var ProfileColumns = []string{
	"id",
	"age_range",
	"gender",
	"marital_status",
	"region",
	"frequency",
	"price_range",
	"wine_types",
	"origins",
	"communication",
}

// Profile is the flattened view of one respondent used by the segment report
// and its exports. Region is the two-digit postal prefix.
type Profile struct {
	ID            string   `json:"id"`
	AgeRange      string   `json:"ageRange"`
	Gender        string   `json:"gender"`
	MaritalStatus string   `json:"maritalStatus"`
	Region        string   `json:"region"`
	Frequency     string   `json:"frequency"`
	PriceRange    string   `json:"priceRange"`
	WineTypes     []string `json:"wineTypes"`
	Origins       []string `json:"origins"`
	Communication string   `json:"communication"`
}

// ProfileOf flattens r. Blank scalar answers become domain.NotInformed.
func ProfileOf(r *domain.SurveyResponse) Profile {
	region := domain.NotInformed
	if prefix, ok := domain.PostalPrefix(r.PostalCode); ok {
		region = prefix
	}
	return Profile{
		ID:            r.ID,
		AgeRange:      orNotInformed(r.AgeRange),
		Gender:        orNotInformed(r.Gender),
		MaritalStatus: orNotInformed(r.MaritalStatus),
		Region:        region,
		Frequency:     orNotInformed(r.Frequency),
		PriceRange:    orNotInformed(r.PriceRange),
		WineTypes:     cleanList(r.WineType),
		Origins:       cleanList(r.PreferredOrigins),
		Communication: orNotInformed(r.CommunicationPreference),
	}
}

// Profiles flattens every response.
func Profiles(responses []*domain.SurveyResponse) []Profile {
	out := make([]Profile, len(responses))
	for i, r := range responses {
		out[i] = ProfileOf(r)
	}
	return out
}

// WriteProfilesCSV writes a header row and one row per profile.
func WriteProfilesCSV(w io.Writer, profiles []Profile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ProfileColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range profiles {
		if err := cw.Write(p.record()); err != nil {
			return fmt.Errorf("write csv row %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadProfilesCSV parses a profile export. List cells are split on ";" in
// their original order.
func ReadProfilesCSV(r io.Reader) ([]Profile, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(ProfileColumns)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty csv")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, col := range ProfileColumns {
		if header[i] != col {
			return nil, fmt.Errorf("csv column %d is %q, want %q", i+1, header[i], col)
		}
	}

	var out []Profile
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(out)+2, err)
		}
		out = append(out, Profile{
			ID:            rec[0],
			AgeRange:      rec[1],
			Gender:        rec[2],
			MaritalStatus: rec[3],
			Region:        rec[4],
			Frequency:     rec[5],
			PriceRange:    rec[6],
			WineTypes:     splitList(rec[7]),
			Origins:       splitList(rec[8]),
			Communication: rec[9],
		})
	}
}

// ReadProfilesFile opens and parses a profile export.
func ReadProfilesFile(path string) ([]Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadProfilesCSV(f)
}

func writeProfilesFile(path string, profiles []Profile) error {
	return writeFileWith(path, func(w io.Writer) error {
		return WriteProfilesCSV(w, profiles)
	})
}

func (p Profile) record() []string {
	return []string{
		p.ID,
		p.AgeRange,
		p.Gender,
		p.MaritalStatus,
		p.Region,
		p.Frequency,
		p.PriceRange,
		strings.Join(p.WineTypes, listSeparator),
		strings.Join(p.Origins, listSeparator),
		p.Communication,
	}
}

func orNotInformed(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return domain.NotInformed
	}
	return s
}

func cleanList(l domain.StringList) []string {
	out := make([]string, 0, len(l))
	for _, v := range l {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func splitList(cell string) []string {
	if cell == "" {
		return []string{}
	}
	return strings.Split(cell, listSeparator)
}
