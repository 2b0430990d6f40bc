package report

import (
	"path/filepath"
	"testing"

	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuildSegments(t *testing.T) {
	rep := BuildSegments(fixtureResponses(), testNow)

	assert.Equal(t, 4, rep.Total)
	assert.Equal(t, []domain.SegmentShare{
		{ID: domain.SegmentPremium, Label: "Premium (R$ 101+)", Count: 2, Percentage: 50},
		{ID: domain.SegmentMidRange, Label: "Mid-range (R$ 51-100)", Count: 1, Percentage: 25},
		{ID: domain.SegmentEconomy, Label: "Economy (up to R$ 50)", Count: 1, Percentage: 25},
	}, rep.Price)
	assert.Equal(t, 1, rep.Frequency[0].Count)

	assert.Equal(t, []domain.Bucket{{Key: "Branco + Tinto", Count: 2, Percentage: 50}}, rep.Combinations)

	assert.Equal(t, []AgePreference{
		{AgeRange: "26 – 35 anos", Respondents: 2, TopWineType: "Tinto"},
		{AgeRange: "36 – 45 anos", Respondents: 1, TopWineType: "Tinto"},
		{AgeRange: "46 – 60 anos", Respondents: 1, TopWineType: "Branco"},
	}, rep.AgeGroups)

	require.NotEmpty(t, rep.Recommendations)
	assert.Contains(t, rep.Recommendations, "Invest in wines from Chile and Argentina (most preferred origins)")
	assert.Contains(t, rep.Recommendations, "Develop the tinto seco line (dominant preference)")
	assert.Len(t, rep.Profiles, 4)
}

func TestBuildSegments_Empty(t *testing.T) {
	rep := BuildSegments(nil, testNow)

	assert.Zero(t, rep.Total)
	assert.Empty(t, rep.Combinations)
	assert.Empty(t, rep.Recommendations)
	for _, s := range rep.Price {
		assert.Zero(t, s.Percentage)
	}
}

func TestWriteWorkbook(t *testing.T) {
	rep := BuildSegments(fixtureResponses(), testNow)
	path := filepath.Join(t.TempDir(), WorkbookFile)

	require.NoError(t, WriteWorkbook(path, rep))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetProfiles, SheetSegments, SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetProfiles)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, ProfileColumns, rows[0])
	assert.Equal(t, "a", rows[1][0])
	assert.Equal(t, "01", rows[1][4])
	assert.Equal(t, "Tinto;Branco", rows[1][7])

	segments, err := f.GetRows(SheetSegments)
	require.NoError(t, err)
	assert.Equal(t, []string{"group", "segment", "count", "percentage"}, segments[0])
	assert.Equal(t, []string{"price", "Premium (R$ 101+)", "2", "50"}, segments[1])

	total, err := f.GetCellValue(SheetSummary, "B1")
	require.NoError(t, err)
	assert.Equal(t, "4", total)
}
