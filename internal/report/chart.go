package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/couchcryptid/wine-survey/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// maxChartBars bounds how many regions the chart shows.
const maxChartBars = 15

var barColor = color.RGBA{R: 114, G: 47, B: 55, A: 255}

// WriteRegionChart renders the respondent count of each region as a PNG bar
// chart at path. base is printed in the title.
func WriteRegionChart(path string, regions []domain.Bucket, base int) error {
	if len(regions) == 0 {
		return errors.New("no regions to chart")
	}
	regions = domain.Top(regions, maxChartBars)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Respondents by region (base: %d)", base)
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "Respondents"

	values := make(plotter.Values, len(regions))
	labels := make([]string, len(regions))
	for i, b := range regions {
		values[i] = float64(b.Count)
		labels[i] = b.Key
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Min = 0

	if err := p.Save(12*vg.Inch, 7*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}
