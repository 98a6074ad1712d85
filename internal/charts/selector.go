package charts

import (
	"fmt"
	"strconv"

	"github.com/spacesedan/sentiview/internal/models"
)

const (
	PolarityTitle     = "Sentiment Polarity"
	DistributionTitle = "Sentiment Distribution"

	// polarity in [NeutralLow, NeutralHigh] is neutral
	NeutralLow  = -0.3
	NeutralHigh = 0.3
)

var PolarityRange = [2]float64{-1, 1}

// PolarityBands returns red [-1, -0.3), gray [-0.3, 0.3], green (0.3, 1].
func PolarityBands() []Band {
	return []Band{
		{Min: PolarityRange[0], Max: NeutralLow, MinInclusive: true, Color: ColorRed},
		{Min: NeutralLow, Max: NeutralHigh, MinInclusive: true, MaxInclusive: true, Color: ColorGray},
		{Min: NeutralHigh, Max: PolarityRange[1], MaxInclusive: true, Color: ColorGreen},
	}
}

// Select maps a validated result to its chart. It is total over the result variants.
func Select(result models.AnalysisResult) ChartSpec {
	switch r := models.Concrete(result).(type) {
	case models.TextBlobResult:
		return GaugeSpec{
			Title:    PolarityTitle,
			Value:    r.Polarity,
			Range:    PolarityRange,
			Bands:    PolarityBands(),
			BarColor: ColorDarkBlue,
		}
	case models.TransformersResult:
		return BarSpec{
			Title:      DistributionTitle,
			Categories: []string{"Positive", "Negative"},
			Values:     []int{r.PositiveChunks, r.NegativeChunks},
			Colors:     []Color{ColorGreen, ColorRed},
		}
	default:
		panic(fmt.Sprintf("charts: unsupported result type %T", result))
	}
}

type Metric struct {
	Label string
	Value string
}

// Metrics is the method-specific detail view shown next to the chart.
func Metrics(result models.AnalysisResult) []Metric {
	switch r := models.Concrete(result).(type) {
	case models.TextBlobResult:
		return []Metric{
			{Label: "Subjectivity", Value: FormatScore(r.Subjectivity)},
		}
	case models.TransformersResult:
		return []Metric{
			{Label: "Average Positive Score", Value: FormatScore(r.AvgPositiveScore)},
			{Label: "Average Negative Score", Value: FormatScore(r.AvgNegativeScore)},
		}
	default:
		panic(fmt.Sprintf("charts: unsupported result type %T", result))
	}
}

// FormatScore renders a score with two decimals.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
