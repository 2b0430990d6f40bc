// Package domain models wine and sparkling-wine preference survey responses.
//
// # Questionnaire
//
// The form is split into five steps (demographics, consumption habits,
// preferences, novelties, contact). Every answer is described by a
// [FieldDescriptor] in [Questionnaire]; the descriptor list drives required
// field validation, database column selection for GROUP BY queries and the
// questionnaire served to the browser.
//
// Answers are stored verbatim as the option labels shown to respondents
// ("R$ 101 – R$ 200", "Uma vez por semana"). Segment rules compare against
// those labels through [Rules] rather than through substring matching.
//
// # Postal Codes (CEP)
//
// Brazilian postal codes have eight digits, usually written "01310-100".
// Respondents type them freely, so every consumer first strips non-digits via
// [NormalizePostalCode]. The first two digits identify a broad region
// ("01" is central São Paulo, "20" is central Rio de Janeiro); the offline
// resolver only needs those two digits, the online resolver needs all eight.
//
//	"01310-100" → "01310100" → prefix "01" → São Paulo - Centro
//
// # Percentages
//
// Every percentage is count / population × 100 rounded to one decimal, where
// population is the full set of records handed to the aggregator. Reports
// state their population ("base: 42 responses") next to each distribution.
package domain
