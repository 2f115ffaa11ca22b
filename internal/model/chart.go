package model

// Shape is the layout of a rendered chart.
type Shape int

const (
	ShapeLine Shape = iota
	ShapeLineVolume
	ShapeCandlestick
	ShapeDual
)

func (s Shape) String() string {
	switch s {
	case ShapeLine:
		return "line"
	case ShapeLineVolume:
		return "line+volume"
	case ShapeCandlestick:
		return "candlestick"
	case ShapeDual:
		return "dual"
	default:
		return "unknown"
	}
}

// ChartSpec is built per command invocation and discarded after rendering.
type ChartSpec struct {
	Symbols []string // labels, one per series; empty uses the series symbols
	Shape   Shape
	Volume  bool // stacked volume panel under a dual-axis chart
	Title   string
}
