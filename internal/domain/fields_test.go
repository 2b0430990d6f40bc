package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeResponse() *SurveyResponse {
	return &SurveyResponse{
		AgeRange:                "36 – 45 anos",
		Gender:                  "Masculino",
		MaritalStatus:           "Casado(a)/em união estável",
		HouseholdSize:           "3",
		PostalCode:              "01310-100",
		Frequency:               "Uma vez por semana",
		WineStyle:               StringList{"Seco"},
		WineType:                StringList{"Tinto"},
		Classification:          "Vinhos finos",
		PriceRange:              "R$ 101 – R$ 200",
		AlcoholFreeWine:         "Não",
		GrapeVarieties:          "Malbec",
		TryNewVarieties:         "Sim",
		PreferredOrigins:        StringList{"Chile", "Argentina"},
		PurchaseChannels:        StringList{"Supermercados"},
		AttractiveFactors:       StringList{"Menor preço"},
		WineEvents:              "Sim",
		CannedWines:             "Conheço e gosto",
		NaturalWines:            "Não conheço, mas quero conhecer",
		Name:                    "Ana",
		Email:                   "ana@example.com",
		Phone:                   "(11) 99999-0000",
		CommunicationPreference: "Sim, pode me chamar no WhatsApp",
	}
}

func TestValidate_Complete(t *testing.T) {
	assert.True(t, Validate(completeResponse()).OK())
}

func TestValidate_ReportsMissingTitlesInFormOrder(t *testing.T) {
	r := completeResponse()
	r.Gender = "  "
	r.PreferredOrigins = StringList{}
	r.WineType = StringList{""}
	r.Email = ""

	assert.Equal(t, []string{
		"Sexo",
		"Tipo mais consumido",
		"Origens preferidas",
		"E-mail",
	}, Validate(r).Missing)
}

func TestValidate_PostalCodeOptional(t *testing.T) {
	r := completeResponse()
	r.PostalCode = ""
	assert.True(t, Validate(r).OK())
}

func TestValidate_RejectsAnswersOutsideOptions(t *testing.T) {
	r := completeResponse()
	r.Frequency = "Todo dia"
	r.PreferredOrigins = StringList{"Chile; Argentina", "Brasil"}
	r.GrapeVarieties = "Malbec; Merlot"

	v := Validate(r)

	assert.Empty(t, v.Missing)
	assert.Equal(t, []string{
		"Frequência de consumo de vinhos/espumantes",
		"Origens preferidas",
	}, v.Invalid)
	assert.False(t, v.OK())
}

func TestValidate_ChecksEveryListEntry(t *testing.T) {
	r := completeResponse()
	r.WineStyle = StringList{"Seco", "  "}
	assert.True(t, Validate(r).OK(), "blank list entries are ignored")

	r.WineStyle = StringList{"seco"}
	assert.Equal(t, []string{"Estilo de vinho preferido"}, Validate(r).Invalid)
}

func TestQuestionnaire_Consistency(t *testing.T) {
	seenIDs := map[FieldID]bool{}
	seenColumns := map[string]bool{}
	for _, f := range Questionnaire {
		assert.False(t, seenIDs[f.ID], "duplicate id %s", f.ID)
		assert.False(t, seenColumns[f.Column], "duplicate column %s", f.Column)
		seenIDs[f.ID] = true
		seenColumns[f.Column] = true

		assert.NotNil(t, f.Values, f.ID)
		if f.Kind != KindText {
			assert.NotEmpty(t, f.Options, f.ID)
		}
	}
}

func TestField(t *testing.T) {
	f, ok := Field(FieldPriceRange)
	require.True(t, ok)
	assert.Equal(t, "price_range", f.Column)
	assert.Equal(t, "R$ 101 – R$ 200", f.Scalar(completeResponse()))

	_, ok = Field("unknown")
	assert.False(t, ok)
	assert.Panics(t, func() { MustField("unknown") })
}

func TestQuestionnaire_JSONHidesAccessors(t *testing.T) {
	data, err := json.Marshal(MustField(FieldGender))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"gender","section":"demographics","title":"Sexo","type":"single",
		"options":["Feminino","Masculino","Prefiro não informar"],"required":true}`, string(data))
}

func TestStringList_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want StringList
	}{
		{"string", `"Tinto"`, StringList{"Tinto"}},
		{"array", `["Tinto","Branco"]`, StringList{"Tinto", "Branco"}},
		{"empty string", `""`, StringList{}},
		{"null", `null`, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got StringList
			require.NoError(t, json.Unmarshal([]byte(tc.in), &got))
			assert.Equal(t, tc.want, got)
		})
	}

	var bad StringList
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestSurveyResponse_DecodesWineTypeEitherWay(t *testing.T) {
	var a, b SurveyResponse
	require.NoError(t, json.Unmarshal([]byte(`{"wineType":"Rosé","cep":"01310-100"}`), &a))
	require.NoError(t, json.Unmarshal([]byte(`{"wineType":["Rosé"]}`), &b))

	assert.Equal(t, a.WineType, b.WineType)
	assert.Equal(t, "01310-100", a.PostalCode)
	assert.True(t, a.WineType.Contains("Rosé"))
}
