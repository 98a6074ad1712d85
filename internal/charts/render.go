package charts

import (
	"fmt"
	"io"
	"math"

	"github.com/samber/lo"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 640
	gaugeHeight = 220
	barHeight   = 400
	barWidth    = 120
)

var palette = map[Color]drawing.Color{
	ColorRed:      drawing.ColorFromHex("d62728"),
	ColorGray:     drawing.ColorFromHex("9e9e9e"),
	ColorGreen:    drawing.ColorFromHex("2ca02c"),
	ColorDarkBlue: drawing.ColorFromHex("00008b"),
}

func paint(c Color) drawing.Color {
	if d, ok := palette[c]; ok {
		return d
	}
	return chart.ColorBlack
}

func RenderSVG(spec ChartSpec, w io.Writer) error {
	return render(spec, chart.SVG, w)
}

func RenderPNG(spec ChartSpec, w io.Writer) error {
	return render(spec, chart.PNG, w)
}

func render(spec ChartSpec, rp chart.RendererProvider, w io.Writer) error {
	switch s := spec.(type) {
	case GaugeSpec:
		g := gaugeChart(s)
		if err := g.Render(rp, w); err != nil {
			return fmt.Errorf("failed to render gauge: %w", err)
		}
	case BarSpec:
		b, err := barChart(s)
		if err != nil {
			return err
		}
		if err := b.Render(rp, w); err != nil {
			return fmt.Errorf("failed to render bar chart: %w", err)
		}
	default:
		return fmt.Errorf("unsupported chart spec %T", spec)
	}
	return nil
}

// gaugeChart draws the bands as a filled strip over the gauge range with a
// vertical marker at the value.
func gaugeChart(g GaugeSpec) chart.Chart {
	series := make([]chart.Series, 0, len(g.Bands)+2)
	for _, b := range g.Bands {
		c := paint(b.Color)
		series = append(series, chart.ContinuousSeries{
			Name:    string(b.Color),
			XValues: []float64{b.Min, b.Max},
			YValues: []float64{1, 1},
			Style: chart.Style{
				StrokeColor: c,
				StrokeWidth: 1,
				FillColor:   c.WithAlpha(150),
			},
		})
	}

	marker := paint(g.BarColor)
	series = append(series,
		chart.ContinuousSeries{
			Name:    "value",
			XValues: []float64{g.Value, g.Value},
			YValues: []float64{0, 1},
			Style: chart.Style{
				StrokeColor: marker,
				StrokeWidth: 5,
			},
		},
		chart.AnnotationSeries{
			Annotations: []chart.Value2{
				{XValue: g.Value, YValue: 0.5, Label: FormatScore(g.Value)},
			},
		},
	)

	return chart.Chart{
		Title:      g.Title,
		Width:      chartWidth,
		Height:     gaugeHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16}},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: g.Range[0], Max: g.Range[1]},
			Ticks: gaugeTicks(g),
		},
		YAxis: chart.YAxis{
			Style: chart.Style{Hidden: true},
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: series,
	}
}

func gaugeTicks(g GaugeSpec) []chart.Tick {
	edges := []float64{g.Range[0]}
	for _, b := range g.Bands {
		edges = append(edges, b.Min, b.Max)
	}
	edges = append(edges, g.Range[1])

	return lo.Map(lo.Uniq(edges), func(v float64, _ int) chart.Tick {
		return chart.Tick{Value: v, Label: fmt.Sprintf("%g", v)}
	})
}

func barChart(b BarSpec) (chart.BarChart, error) {
	if len(b.Categories) != len(b.Values) || len(b.Values) != len(b.Colors) {
		return chart.BarChart{}, fmt.Errorf("bar spec has %d categories, %d values and %d colors",
			len(b.Categories), len(b.Values), len(b.Colors))
	}

	// fixed zero-based axis so equal or all-zero counts still have a range
	top := 1.0
	bars := make([]chart.Value, len(b.Values))
	for i, v := range b.Values {
		top = math.Max(top, float64(v))
		c := paint(b.Colors[i])
		bars[i] = chart.Value{
			Label: b.Categories[i],
			Value: float64(v),
			Style: chart.Style{FillColor: c, StrokeColor: c},
		}
	}

	return chart.BarChart{
		Title:      b.Title,
		Width:      chartWidth,
		Height:     barHeight,
		BarWidth:   barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: math.Ceil(top * 1.1)},
		},
		Bars: bars,
	}, nil
}
