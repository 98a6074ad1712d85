package charts

import "github.com/samber/lo"

type Color string

const (
	ColorRed      Color = "red"
	ColorGray     Color = "gray"
	ColorGreen    Color = "green"
	ColorDarkBlue Color = "darkblue"
)

// ChartSpec is one of GaugeSpec or BarSpec.
type ChartSpec interface {
	ChartTitle() string
	isChartSpec()
}

// Band is a colored interval of a gauge axis.
type Band struct {
	Min          float64
	Max          float64
	MinInclusive bool
	MaxInclusive bool
	Color        Color
}

func (b Band) Contains(v float64) bool {
	aboveMin := v > b.Min || (b.MinInclusive && v == b.Min)
	belowMax := v < b.Max || (b.MaxInclusive && v == b.Max)
	return aboveMin && belowMax
}

type GaugeSpec struct {
	Title    string
	Value    float64
	Range    [2]float64
	Bands    []Band
	BarColor Color
}

func (g GaugeSpec) ChartTitle() string { return g.Title }
func (GaugeSpec) isChartSpec()         {}

// BandFor returns the band containing v. Bands do not overlap.
func (g GaugeSpec) BandFor(v float64) (Band, bool) {
	return lo.Find(g.Bands, func(b Band) bool {
		return b.Contains(v)
	})
}

type BarSpec struct {
	Title      string
	Categories []string
	Values     []int
	Colors     []Color
}

func (b BarSpec) ChartTitle() string { return b.Title }
func (BarSpec) isChartSpec()         {}
