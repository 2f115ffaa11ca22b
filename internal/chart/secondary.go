package chart

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// secondaryLine is a line scaled against its own y range and labelled on the
// right edge of the data area. It only widens the host plot's x range.
type secondaryLine struct {
	xys    plotter.XYs
	ymin   float64
	ymax   float64
	ticker plot.Ticker
	draw.LineStyle
	Labels draw.TextStyle
}

func newSecondaryLine(xys plotter.XYs, ticker plot.Ticker, labels draw.TextStyle) *secondaryLine {
	s := &secondaryLine{xys: xys, ticker: ticker, LineStyle: plotter.DefaultLineStyle, Labels: labels}
	s.Labels.XAlign = draw.XLeft
	s.Labels.YAlign = draw.YCenter

	s.ymin, s.ymax = math.Inf(1), math.Inf(-1)
	for _, p := range xys {
		s.ymin = math.Min(s.ymin, p.Y)
		s.ymax = math.Max(s.ymax, p.Y)
	}
	if s.ymin == s.ymax {
		s.ymin--
		s.ymax++
	}
	return s
}

func (s *secondaryLine) norm(y float64) float64 {
	return (y - s.ymin) / (s.ymax - s.ymin)
}

// labelWidth returns the horizontal room the right-hand labels need.
func (s *secondaryLine) labelWidth() vg.Length {
	var w vg.Length
	for _, t := range s.ticker.Ticks(s.ymin, s.ymax) {
		if t.IsMinor() {
			continue
		}
		if lw := s.Labels.Width(t.Label); lw > w {
			w = lw
		}
	}
	return w + tickLength*2
}

const tickLength = 4

func (s *secondaryLine) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, _ := plt.Transforms(&c)

	pts := make([]vg.Point, len(s.xys))
	for i, p := range s.xys {
		pts[i] = vg.Point{X: trX(p.X), Y: c.Y(s.norm(p.Y))}
	}
	c.StrokeLines(s.LineStyle, c.ClipLinesXY(pts)...)

	edge := c.Max.X
	c.StrokeLine2(plt.Y.LineStyle, edge, c.Min.Y, edge, c.Max.Y)
	for _, t := range s.ticker.Ticks(s.ymin, s.ymax) {
		if t.IsMinor() || t.Value < s.ymin || t.Value > s.ymax {
			continue
		}
		y := c.Y(s.norm(t.Value))
		c.StrokeLine2(plt.Y.Tick.LineStyle, edge, y, edge+vg.Points(tickLength), y)
		c.FillText(s.Labels, vg.Point{X: edge + vg.Points(tickLength*1.5), Y: y}, t.Label)
	}
}

// DataRange reports an empty y range so the primary axis keeps its own scale.
func (s *secondaryLine) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax, _, _ = plotter.XYRange(s.xys)
	return xmin, xmax, math.Inf(1), math.Inf(-1)
}

func (s *secondaryLine) Thumbnail(c *draw.Canvas) {
	y := c.Center().Y
	c.StrokeLine2(s.LineStyle, c.Min.X, y, c.Max.X, y)
}
