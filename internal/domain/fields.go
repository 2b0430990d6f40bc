package domain

import (
	"slices"
	"strings"
)

// FieldKind is how an answer is entered and stored.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindSingle   FieldKind = "single"
	KindMultiple FieldKind = "multiple"
)

// Section groups fields into one step of the form.
type Section string

const (
	SectionDemographics Section = "demographics"
	SectionConsumption  Section = "consumption"
	SectionPreferences  Section = "preferences"
	SectionNovelties    Section = "novelties"
	SectionContact      Section = "contact"
)

// FieldID is the JSON key of an answer.
type FieldID string

const (
	FieldAgeRange                FieldID = "ageRange"
	FieldGender                  FieldID = "gender"
	FieldMaritalStatus           FieldID = "maritalStatus"
	FieldHouseholdSize           FieldID = "householdSize"
	FieldPostalCode              FieldID = "cep"
	FieldFrequency               FieldID = "frequency"
	FieldWineStyle               FieldID = "wineStyle"
	FieldWineType                FieldID = "wineType"
	FieldClassification          FieldID = "classification"
	FieldPriceRange              FieldID = "priceRange"
	FieldAlcoholFreeWine         FieldID = "alcoholFreeWine"
	FieldGrapeVarieties          FieldID = "grapeVarieties"
	FieldTryNewVarieties         FieldID = "tryNewVarieties"
	FieldPreferredOrigins        FieldID = "preferredOrigins"
	FieldPurchaseChannels        FieldID = "purchaseChannels"
	FieldAttractiveFactors       FieldID = "attractiveFactors"
	FieldWineEvents              FieldID = "wineEvents"
	FieldCannedWines             FieldID = "cannedWines"
	FieldNaturalWines            FieldID = "naturalWines"
	FieldName                    FieldID = "name"
	FieldEmail                   FieldID = "email"
	FieldPhone                   FieldID = "phone"
	FieldCommunicationPreference FieldID = "communicationPreference"
)

// FieldDescriptor describes one question of the form.
type FieldDescriptor struct {
	ID       FieldID   `json:"id"`
	Section  Section   `json:"section"`
	Title    string    `json:"title"`
	Kind     FieldKind `json:"type"`
	Options  []string  `json:"options,omitempty"`
	Required bool      `json:"required"`
	// Column is the store column holding the answer.
	Column string `json:"-"`
	// Values returns the answer as a list; scalar answers yield one element
	// (possibly empty).
	Values func(*SurveyResponse) []string `json:"-"`
}

// Scalar returns the first value of the answer or "" when there is none.
func (f FieldDescriptor) Scalar(r *SurveyResponse) string {
	v := f.Values(r)
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// Answer options, in the order the form presents them.
var (
	AgeRanges = []string{"18 – 25 anos", "26 – 35 anos", "36 – 45 anos", "46 – 60 anos", "Acima de 60 anos"}
	Genders   = []string{"Feminino", "Masculino", "Prefiro não informar"}
	Marital   = []string{"Solteiro(a)", "Casado(a)/em união estável", "Divorciado(a)", "Viúvo(a)"}
	Household = []string{"1", "2", "3", "4", "5 ou mais"}

	Frequencies     = []string{"Uma vez por semana", "Duas vezes por semana", "Quinzenal", "Mensal", "Raramente"}
	WineStyles      = []string{"Seco", "Meio seco", "Suave"}
	WineTypes       = []string{"Branco", "Rosé", "Tinto", "Espumante"}
	Classifications = []string{"Vinhos de mesa", "Vinhos finos", "Ambos"}
	PriceRanges     = []string{"Até R$ 40", "R$ 41 – R$ 50", "R$ 51 – R$ 80", "R$ 81 – R$ 100", "R$ 101 – R$ 200", "Acima de R$ 200"}
	YesNo           = []string{"Sim", "Não"}

	Origins        = []string{"Argentina", "Brasil", "Chile", "Espanha", "França", "Portugal", "Uruguai"}
	PurchaseOutlet = []string{
		"Supermercados",
		"Lojas especializadas (adegas, empórios)",
		"Delivery (iFood, Rappi, etc.)",
		"E-commerce/clube de assinatura",
		"Lojas de conveniência",
		"WhatsApp/revendedores",
		"Conhecido que vende com preço especial",
		"Eventos/feiras",
		"Degustações/jantares harmonizados",
	}
	AttractiveFactorOptions = []string{"Menor preço", "Entrega grátis", "Bom atendimento", "Rótulos exclusivos", "Marcas conhecidas", "Degustar antes de comprar"}

	Awareness      = []string{"Conheço e gosto", "Não conheço, mas quero conhecer", "Já conheço, mas não consumo"}
	Communications = []string{"Sim, pode me chamar no WhatsApp", "Sim, prefiro por e-mail", "Não, obrigado(a)"}
)

func scalar(get func(*SurveyResponse) string) func(*SurveyResponse) []string {
	return func(r *SurveyResponse) []string { return []string{get(r)} }
}

func list(get func(*SurveyResponse) StringList) func(*SurveyResponse) []string {
	return func(r *SurveyResponse) []string { return get(r) }
}

// Questionnaire is the ordered list of every question.
var Questionnaire = []FieldDescriptor{
	{ID: FieldAgeRange, Section: SectionDemographics, Title: "Faixa etária", Kind: KindSingle, Options: AgeRanges, Required: true, Column: "age_range",
		Values: scalar(func(r *SurveyResponse) string { return r.AgeRange })},
	{ID: FieldGender, Section: SectionDemographics, Title: "Sexo", Kind: KindSingle, Options: Genders, Required: true, Column: "gender",
		Values: scalar(func(r *SurveyResponse) string { return r.Gender })},
	{ID: FieldMaritalStatus, Section: SectionDemographics, Title: "Estado civil", Kind: KindSingle, Options: Marital, Required: true, Column: "marital_status",
		Values: scalar(func(r *SurveyResponse) string { return r.MaritalStatus })},
	{ID: FieldHouseholdSize, Section: SectionDemographics, Title: "Quantas pessoas moram na sua casa?", Kind: KindSingle, Options: Household, Required: true, Column: "household_size",
		Values: scalar(func(r *SurveyResponse) string { return r.HouseholdSize })},
	{ID: FieldPostalCode, Section: SectionDemographics, Title: "CEP", Kind: KindText, Column: "postal_code",
		Values: scalar(func(r *SurveyResponse) string { return r.PostalCode })},

	{ID: FieldFrequency, Section: SectionConsumption, Title: "Frequência de consumo de vinhos/espumantes", Kind: KindSingle, Options: Frequencies, Required: true, Column: "frequency",
		Values: scalar(func(r *SurveyResponse) string { return r.Frequency })},
	{ID: FieldWineStyle, Section: SectionConsumption, Title: "Estilo de vinho preferido", Kind: KindMultiple, Options: WineStyles, Required: true, Column: "wine_style",
		Values: list(func(r *SurveyResponse) StringList { return r.WineStyle })},
	// Asked as a single choice, stored as a list.
	{ID: FieldWineType, Section: SectionConsumption, Title: "Tipo mais consumido", Kind: KindSingle, Options: WineTypes, Required: true, Column: "wine_type",
		Values: list(func(r *SurveyResponse) StringList { return r.WineType })},
	{ID: FieldClassification, Section: SectionConsumption, Title: "Classificação preferida", Kind: KindSingle, Options: Classifications, Required: true, Column: "classification",
		Values: scalar(func(r *SurveyResponse) string { return r.Classification })},
	{ID: FieldPriceRange, Section: SectionConsumption, Title: "Faixa de preço que costuma investir por garrafa", Kind: KindSingle, Options: PriceRanges, Required: true, Column: "price_range",
		Values: scalar(func(r *SurveyResponse) string { return r.PriceRange })},
	{ID: FieldAlcoholFreeWine, Section: SectionConsumption, Title: "Consome vinho sem álcool?", Kind: KindSingle, Options: YesNo, Required: true, Column: "alcohol_free_wine",
		Values: scalar(func(r *SurveyResponse) string { return r.AlcoholFreeWine })},

	{ID: FieldGrapeVarieties, Section: SectionPreferences, Title: "Variedades que mais consome", Kind: KindText, Required: true, Column: "grape_varieties",
		Values: scalar(func(r *SurveyResponse) string { return r.GrapeVarieties })},
	{ID: FieldTryNewVarieties, Section: SectionPreferences, Title: "Gostaria de conhecer novas variedades?", Kind: KindSingle, Options: YesNo, Required: true, Column: "try_new_varieties",
		Values: scalar(func(r *SurveyResponse) string { return r.TryNewVarieties })},
	{ID: FieldPreferredOrigins, Section: SectionPreferences, Title: "Origens preferidas", Kind: KindMultiple, Options: Origins, Required: true, Column: "preferred_origins",
		Values: list(func(r *SurveyResponse) StringList { return r.PreferredOrigins })},
	{ID: FieldPurchaseChannels, Section: SectionPreferences, Title: "Onde costuma comprar vinhos?", Kind: KindMultiple, Options: PurchaseOutlet, Required: true, Column: "purchase_channels",
		Values: list(func(r *SurveyResponse) StringList { return r.PurchaseChannels })},
	{ID: FieldAttractiveFactors, Section: SectionPreferences, Title: "O que é mais atrativo ao escolher um vinho?", Kind: KindMultiple, Options: AttractiveFactorOptions, Required: true, Column: "attractive_factors",
		Values: list(func(r *SurveyResponse) StringList { return r.AttractiveFactors })},

	{ID: FieldWineEvents, Section: SectionNovelties, Title: "Costuma ir a eventos de vinhos?", Kind: KindSingle, Options: YesNo, Required: true, Column: "wine_events",
		Values: scalar(func(r *SurveyResponse) string { return r.WineEvents })},
	{ID: FieldCannedWines, Section: SectionNovelties, Title: "Conhece vinhos em lata?", Kind: KindSingle, Options: Awareness, Required: true, Column: "canned_wines",
		Values: scalar(func(r *SurveyResponse) string { return r.CannedWines })},
	{ID: FieldNaturalWines, Section: SectionNovelties, Title: "Conhece vinhos naturais ou biodinâmicos?", Kind: KindSingle, Options: Awareness, Required: true, Column: "natural_wines",
		Values: scalar(func(r *SurveyResponse) string { return r.NaturalWines })},

	{ID: FieldName, Section: SectionContact, Title: "Nome", Kind: KindText, Required: true, Column: "name",
		Values: scalar(func(r *SurveyResponse) string { return r.Name })},
	{ID: FieldEmail, Section: SectionContact, Title: "E-mail", Kind: KindText, Required: true, Column: "email",
		Values: scalar(func(r *SurveyResponse) string { return r.Email })},
	{ID: FieldPhone, Section: SectionContact, Title: "Telefone/WhatsApp", Kind: KindText, Required: true, Column: "phone",
		Values: scalar(func(r *SurveyResponse) string { return r.Phone })},
	{ID: FieldCommunicationPreference, Section: SectionContact, Title: "Gostaria de receber promoções e novidades?", Kind: KindSingle, Options: Communications, Required: true, Column: "communication_preference",
		Values: scalar(func(r *SurveyResponse) string { return r.CommunicationPreference })},
}

// Field returns the descriptor for id.
func Field(id FieldID) (FieldDescriptor, bool) {
	for _, f := range Questionnaire {
		if f.ID == id {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// MustField is Field for ids known at compile time.
func MustField(id FieldID) FieldDescriptor {
	f, ok := Field(id)
	if !ok {
		panic("unknown survey field: " + string(id))
	}
	return f
}

// Validation lists the titles of questions that failed, in form order.
type Validation struct {
	// Missing holds required questions left blank.
	Missing []string
	// Invalid holds choice questions answered with a label the form does
	// not offer.
	Invalid []string
}

// OK reports whether every question passed.
func (v Validation) OK() bool { return len(v.Missing) == 0 && len(v.Invalid) == 0 }

// Validate checks r against the questionnaire. Text and single-choice
// answers are blank when empty after trimming; list answers are blank when
// they hold no non-empty value. Non-blank choice answers must match one of
// the field's options exactly.
func Validate(r *SurveyResponse) Validation {
	var v Validation
	for _, f := range Questionnaire {
		values := f.Values(r)
		if !answered(values) {
			if f.Required {
				v.Missing = append(v.Missing, f.Title)
			}
			continue
		}
		if len(f.Options) > 0 && !allOffered(values, f.Options) {
			v.Invalid = append(v.Invalid, f.Title)
		}
	}
	return v
}

func answered(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

func allOffered(values, options []string) bool {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" && !slices.Contains(options, v) {
			return false
		}
	}
	return true
}
