package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"StonkBot/internal/model"
)

var (
	upColor   = color.RGBA{R: 38, G: 166, B: 154, A: 255}
	downColor = color.RGBA{R: 239, G: 83, B: 80, A: 255}
)

// candlesticks draws one OHLC glyph per bar. X values are Unix seconds.
type candlesticks struct {
	bars []model.OHLCV
	// BodyRatio is the body width as a fraction of the smallest bar spacing.
	BodyRatio float64
	Wick      draw.LineStyle
}

func newCandlesticks(bars []model.OHLCV) *candlesticks {
	return &candlesticks{
		bars:      bars,
		BodyRatio: 0.6,
		Wick:      draw.LineStyle{Color: color.Black, Width: vg.Points(0.5)},
	}
}

// spacing returns the smallest gap between consecutive bars in seconds.
func (cs *candlesticks) spacing() float64 {
	gap := math.Inf(1)
	for i := 1; i < len(cs.bars); i++ {
		if d := float64(cs.bars[i].Time.Unix() - cs.bars[i-1].Time.Unix()); d > 0 && d < gap {
			gap = d
		}
	}
	if math.IsInf(gap, 1) {
		return 60
	}
	return gap
}

func (cs *candlesticks) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	half := cs.spacing() * cs.BodyRatio / 2

	for _, b := range cs.bars {
		x := float64(b.Time.Unix())
		cx := trX(x)

		c.StrokeLines(cs.Wick, c.ClipLinesXY([]vg.Point{{X: cx, Y: trY(b.Low)}, {X: cx, Y: trY(b.High)}})...)

		fill := upColor
		if b.Close < b.Open {
			fill = downColor
		}
		left, right := trX(x-half), trX(x+half)
		top, bottom := trY(math.Max(b.Open, b.Close)), trY(math.Min(b.Open, b.Close))
		if top-bottom < vg.Points(0.5) {
			top = bottom + vg.Points(0.5)
		}
		body := c.ClipPolygonXY([]vg.Point{
			{X: left, Y: bottom},
			{X: left, Y: top},
			{X: right, Y: top},
			{X: right, Y: bottom},
		})
		c.FillPolygon(fill, body)
	}
}

func (cs *candlesticks) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, b := range cs.bars {
		x := float64(b.Time.Unix())
		xmin = math.Min(xmin, x)
		xmax = math.Max(xmax, x)
		ymin = math.Min(ymin, b.Low)
		ymax = math.Max(ymax, b.High)
	}
	return xmin, xmax, ymin, ymax
}
