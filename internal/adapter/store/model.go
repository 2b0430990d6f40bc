package store

import (
	"sort"
	"time"

	"github.com/couchcryptid/wine-survey/internal/domain"
)

// surveyRow is the survey_responses table. List answers are JSON documents
// in text columns so every supported dialect stores them the same way.
type surveyRow struct {
	ID string `gorm:"column:id;primaryKey;size:36"`

	AgeRange      string `gorm:"column:age_range;size:64"`
	Gender        string `gorm:"column:gender;size:64"`
	MaritalStatus string `gorm:"column:marital_status;size:64"`
	HouseholdSize string `gorm:"column:household_size;size:32"`
	PostalCode    string `gorm:"column:postal_code;size:16;index"`

	Frequency       string   `gorm:"column:frequency;size:64"`
	WineStyle       []string `gorm:"column:wine_style;type:text;serializer:json"`
	WineType        []string `gorm:"column:wine_type;type:text;serializer:json"`
	Classification  string   `gorm:"column:classification;size:64"`
	PriceRange      string   `gorm:"column:price_range;size:64"`
	AlcoholFreeWine string   `gorm:"column:alcohol_free_wine;size:16"`

	GrapeVarieties    string   `gorm:"column:grape_varieties;type:text"`
	TryNewVarieties   string   `gorm:"column:try_new_varieties;size:16"`
	PreferredOrigins  []string `gorm:"column:preferred_origins;type:text;serializer:json"`
	PurchaseChannels  []string `gorm:"column:purchase_channels;type:text;serializer:json"`
	AttractiveFactors []string `gorm:"column:attractive_factors;type:text;serializer:json"`

	WineEvents   string `gorm:"column:wine_events;size:16"`
	CannedWines  string `gorm:"column:canned_wines;size:64"`
	NaturalWines string `gorm:"column:natural_wines;size:64"`

	Name                    string `gorm:"column:name;size:255"`
	Email                   string `gorm:"column:email;size:255"`
	Phone                   string `gorm:"column:phone;size:64"`
	CommunicationPreference string `gorm:"column:communication_preference;size:64"`

	UserAgent string `gorm:"column:user_agent;type:text"`
	IPAddress string `gorm:"column:ip_address;size:64"`
	Browser   string `gorm:"column:browser;size:128"`
	OS        string `gorm:"column:os;size:128"`
	Mobile    bool   `gorm:"column:mobile"`

	CompletedAt time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
}

func (surveyRow) TableName() string { return "survey_responses" }

var listColumns = map[string]bool{
	"wine_style":         true,
	"wine_type":          true,
	"preferred_origins":  true,
	"purchase_channels":  true,
	"attractive_factors": true,
}

func isListColumn(column string) bool { return listColumns[column] }

func fromDomain(r *domain.SurveyResponse) surveyRow {
	return surveyRow{
		ID:                      r.ID,
		AgeRange:                r.AgeRange,
		Gender:                  r.Gender,
		MaritalStatus:           r.MaritalStatus,
		HouseholdSize:           r.HouseholdSize,
		PostalCode:              r.PostalCode,
		Frequency:               r.Frequency,
		WineStyle:               nonNil(r.WineStyle),
		WineType:                nonNil(r.WineType),
		Classification:          r.Classification,
		PriceRange:              r.PriceRange,
		AlcoholFreeWine:         r.AlcoholFreeWine,
		GrapeVarieties:          r.GrapeVarieties,
		TryNewVarieties:         r.TryNewVarieties,
		PreferredOrigins:        nonNil(r.PreferredOrigins),
		PurchaseChannels:        nonNil(r.PurchaseChannels),
		AttractiveFactors:       nonNil(r.AttractiveFactors),
		WineEvents:              r.WineEvents,
		CannedWines:             r.CannedWines,
		NaturalWines:            r.NaturalWines,
		Name:                    r.Name,
		Email:                   r.Email,
		Phone:                   r.Phone,
		CommunicationPreference: r.CommunicationPreference,
		UserAgent:               r.Metadata.UserAgent,
		IPAddress:               r.Metadata.IPAddress,
		Browser:                 r.Metadata.Browser,
		OS:                      r.Metadata.OS,
		Mobile:                  r.Metadata.Mobile,
		CompletedAt:             r.CompletedAt.UTC(),
		CreatedAt:               r.CreatedAt.UTC(),
	}
}

func (row surveyRow) toDomain() *domain.SurveyResponse {
	return &domain.SurveyResponse{
		ID:                      row.ID,
		AgeRange:                row.AgeRange,
		Gender:                  row.Gender,
		MaritalStatus:           row.MaritalStatus,
		HouseholdSize:           row.HouseholdSize,
		PostalCode:              row.PostalCode,
		Frequency:               row.Frequency,
		WineStyle:               row.WineStyle,
		WineType:                row.WineType,
		Classification:          row.Classification,
		PriceRange:              row.PriceRange,
		AlcoholFreeWine:         row.AlcoholFreeWine,
		GrapeVarieties:          row.GrapeVarieties,
		TryNewVarieties:         row.TryNewVarieties,
		PreferredOrigins:        row.PreferredOrigins,
		PurchaseChannels:        row.PurchaseChannels,
		AttractiveFactors:       row.AttractiveFactors,
		WineEvents:              row.WineEvents,
		CannedWines:             row.CannedWines,
		NaturalWines:            row.NaturalWines,
		Name:                    row.Name,
		Email:                   row.Email,
		Phone:                   row.Phone,
		CommunicationPreference: row.CommunicationPreference,
		Metadata: domain.SubmissionMetadata{
			UserAgent: row.UserAgent,
			IPAddress: row.IPAddress,
			Browser:   row.Browser,
			OS:        row.OS,
			Mobile:    row.Mobile,
		},
		CompletedAt: row.CompletedAt.UTC(),
		CreatedAt:   row.CreatedAt.UTC(),
	}
}

func toDomainList(rows []surveyRow) []*domain.SurveyResponse {
	out := make([]*domain.SurveyResponse, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out
}

func nonNil(l domain.StringList) []string {
	if l == nil {
		return []string{}
	}
	return l
}

func sortBucketsByLabel(buckets []domain.Bucket) {
	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
}
