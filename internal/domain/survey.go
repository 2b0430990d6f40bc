package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// SurveyResponse is one completed questionnaire plus submission metadata.
type SurveyResponse struct {
	ID string `json:"id"`

	// Demographics.
	AgeRange      string `json:"ageRange"`
	Gender        string `json:"gender"`
	MaritalStatus string `json:"maritalStatus"`
	HouseholdSize string `json:"householdSize"`
	PostalCode    string `json:"cep"`

	// Consumption habits.
	Frequency       string     `json:"frequency"`
	WineStyle       StringList `json:"wineStyle"`
	WineType        StringList `json:"wineType"`
	Classification  string     `json:"classification"`
	PriceRange      string     `json:"priceRange"`
	AlcoholFreeWine string     `json:"alcoholFreeWine"`

	// Preferences.
	GrapeVarieties    string     `json:"grapeVarieties"`
	TryNewVarieties   string     `json:"tryNewVarieties"`
	PreferredOrigins  StringList `json:"preferredOrigins"`
	PurchaseChannels  StringList `json:"purchaseChannels"`
	AttractiveFactors StringList `json:"attractiveFactors"`

	// Novelties.
	WineEvents   string `json:"wineEvents"`
	CannedWines  string `json:"cannedWines"`
	NaturalWines string `json:"naturalWines"`

	// Contact.
	Name                    string `json:"name"`
	Email                   string `json:"email"`
	Phone                   string `json:"phone"`
	CommunicationPreference string `json:"communicationPreference"`

	Metadata    SubmissionMetadata `json:"metadata"`
	CompletedAt time.Time          `json:"completedAt"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// SubmissionMetadata describes the client that submitted a response.
type SubmissionMetadata struct {
	UserAgent string `json:"userAgent,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	Browser   string `json:"browser,omitempty"`
	OS        string `json:"os,omitempty"`
	Mobile    bool   `json:"mobile"`
}

// StringList is a multi-valued answer. It decodes from either a JSON array of
// strings or a single JSON string, since some single-choice questions are
// stored as lists.
type StringList []string

// UnmarshalJSON accepts null, "value" or ["a", "b"].
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*l = StringList{}
			return nil
		}
		*l = StringList{s}
		return nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("expected string or array of strings: %w", err)
	}
	*l = values
	return nil
}

// Contains reports whether v is one of the list's values.
func (l StringList) Contains(v string) bool {
	for _, s := range l {
		if s == v {
			return true
		}
	}
	return false
}

// SurveySubmittedEvent is the PII-free notification published after a
// response is stored. Contact fields and network metadata are omitted.
type SurveySubmittedEvent struct {
	SurveyID    string    `json:"surveyId"`
	AgeRange    string    `json:"ageRange"`
	Gender      string    `json:"gender"`
	Region      string    `json:"region"`
	Frequency   string    `json:"frequency"`
	PriceRange  string    `json:"priceRange"`
	WineType    []string  `json:"wineType"`
	Mobile      bool      `json:"mobile"`
	CompletedAt time.Time `json:"completedAt"`
}
