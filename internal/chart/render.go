// Package chart renders price series to PNG images.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"StonkBot/internal/model"
)

// ErrEmptySeries is returned when a series has no points to draw.
var ErrEmptySeries = errors.New("chart: empty series")

var (
	firebrick = color.RGBA{R: 178, G: 34, B: 34, A: 255}
	royalBlue = color.RGBA{R: 65, G: 105, B: 225, A: 255}
)

// Renderer draws chart specs to PNG. A Renderer holds no drawing state, so
// one value can serve concurrent invocations.
type Renderer struct {
	Width    vg.Length
	Height   vg.Length
	Location *time.Location
}

// NewRenderer creates a renderer with a 10x6 inch canvas.
func NewRenderer(loc *time.Location) *Renderer {
	return &Renderer{Width: 10 * vg.Inch, Height: 6 * vg.Inch, Location: loc}
}

// Render draws the series in the layout of spec.Shape and returns the PNG
// bytes positioned at the start.
func (r *Renderer) Render(spec model.ChartSpec, series ...model.Series) (*bytes.Reader, error) {
	want := 1
	if spec.Shape == model.ShapeDual {
		want = 2
	}
	if len(series) != want {
		return nil, fmt.Errorf("chart: %s needs %d series, got %d", spec.Shape, want, len(series))
	}
	if len(spec.Symbols) != 0 && len(spec.Symbols) != len(series) {
		return nil, fmt.Errorf("chart: %d symbols for %d series", len(spec.Symbols), len(series))
	}
	series = append([]model.Series(nil), series...)
	for i := range series {
		if len(series[i].Points) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptySeries, series[i].Symbol)
		}
		if len(spec.Symbols) != 0 {
			series[i].Symbol = spec.Symbols[i]
		}
	}
	if spec.Title == "" {
		names := make([]string, len(series))
		for i, s := range series {
			names[i] = s.Symbol
		}
		spec.Title = Title(spec.Shape, names...)
	}

	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}

	img := vgimg.New(r.Width, r.Height)
	dc := draw.New(img)

	var err error
	switch spec.Shape {
	case model.ShapeLine:
		err = r.drawLine(dc, spec, series[0], loc)
	case model.ShapeLineVolume:
		err = r.drawLineVolume(dc, spec, series[0], loc)
	case model.ShapeCandlestick:
		err = r.drawCandlestick(dc, spec, series[0], loc)
	case model.ShapeDual:
		err = r.drawDual(dc, spec, series[0], series[1], loc)
	default:
		err = fmt.Errorf("chart: unknown shape %d", spec.Shape)
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("chart: encode png: %w", err)
	}
	return bytes.NewReader(buf.Bytes()), nil
}

func newPlot(title string, loc *time.Location) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Tick.Marker = timeTicks(loc)
	p.Y.Tick.Marker = dollarTicks{}
	p.Add(plotter.NewGrid())
	return p
}

func newVolumePlot(loc *time.Location) *plot.Plot {
	p := plot.New()
	p.Title.Text = "Volume"
	p.X.Tick.Marker = timeTicks(loc)
	p.Y.Tick.Marker = volumeTicks{}
	return p
}

// Title returns the heading drawn above a chart of shape for symbols.
func Title(shape model.Shape, symbols ...string) string {
	upper := make([]string, len(symbols))
	for i, s := range symbols {
		upper[i] = strings.ToUpper(s)
	}
	switch {
	case shape == model.ShapeDual && len(upper) == 2:
		return fmt.Sprintf("Price comparison of %s and %s", upper[0], upper[1])
	case len(upper) == 0:
		return ""
	case shape == model.ShapeLine:
		return "Stock Price For " + upper[0]
	default:
		return upper[0] + " Price Graph"
	}
}

func closes(s model.Series) plotter.XYs {
	xys := make(plotter.XYs, len(s.Points))
	for i, p := range s.Points {
		xys[i] = plotter.XY{X: float64(p.Time.Unix()), Y: Round2(p.Close)}
	}
	return xys
}

func volumes(s model.Series) plotter.XYs {
	xys := make(plotter.XYs, len(s.Points))
	for i, p := range s.Points {
		xys[i] = plotter.XY{X: float64(p.Time.Unix()), Y: p.Volume}
	}
	return xys
}

// rounded returns a copy of the bars with prices rounded to cents.
func rounded(bars []model.OHLCV) []model.OHLCV {
	out := make([]model.OHLCV, len(bars))
	for i, b := range bars {
		out[i] = model.OHLCV{
			Time:   b.Time,
			Open:   Round2(b.Open),
			High:   Round2(b.High),
			Low:    Round2(b.Low),
			Close:  Round2(b.Close),
			Volume: b.Volume,
		}
	}
	return out
}

func coloredLine(xys plotter.XYs, c color.Color, width vg.Length) (*plotter.Line, error) {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	l.Color = c
	l.Width = width
	return l, nil
}

func (r *Renderer) drawLine(dc draw.Canvas, spec model.ChartSpec, s model.Series, loc *time.Location) error {
	p := newPlot(spec.Title, loc)
	p.X.Label.Text = "Date & Military Time"
	p.Y.Label.Text = "Price"

	l, err := coloredLine(closes(s), royalBlue, vg.Points(1.5))
	if err != nil {
		return err
	}
	p.Add(l)
	p.Draw(dc)
	return nil
}

func (r *Renderer) drawLineVolume(dc draw.Canvas, spec model.ChartSpec, s model.Series, loc *time.Location) error {
	price := newPlot(spec.Title, loc)
	l, err := coloredLine(closes(s), royalBlue, vg.Points(1.5))
	if err != nil {
		return err
	}
	price.Add(l)

	vol := newVolumePlot(loc)
	vl, err := coloredLine(volumes(s), royalBlue, vg.Points(1))
	if err != nil {
		return err
	}
	vol.Add(vl)

	stack(dc, price, vol)
	return nil
}

func (r *Renderer) drawCandlestick(dc draw.Canvas, spec model.ChartSpec, s model.Series, loc *time.Location) error {
	price := newPlot(spec.Title, loc)
	bg, err := coloredLine(closes(s), color.Black, vg.Points(0.5))
	if err != nil {
		return err
	}
	price.Add(bg, newCandlesticks(rounded(s.Points)))

	vol := newVolumePlot(loc)
	vl, err := coloredLine(volumes(s), royalBlue, vg.Points(1))
	if err != nil {
		return err
	}
	vol.Add(vl)

	stack(dc, price, vol)
	return nil
}

func (r *Renderer) drawDual(dc draw.Canvas, spec model.ChartSpec, a, b model.Series, loc *time.Location) error {
	nameA, nameB := strings.ToUpper(a.Symbol), strings.ToUpper(b.Symbol)
	price := newPlot(spec.Title, loc)
	price.Y.Label.Text = nameA + " price"
	price.Y.Label.TextStyle.Color = firebrick
	price.Y.Tick.Label.Color = firebrick

	la, err := coloredLine(closes(a), firebrick, vg.Points(1.5))
	if err != nil {
		return err
	}
	lb := newSecondaryLine(closes(b), dollarTicks{}, price.Y.Tick.Label)
	lb.Color = royalBlue
	lb.Width = vg.Points(1.5)
	lb.Labels.Color = royalBlue
	price.Add(la, lb)
	price.Legend.Add("Price of "+nameA, la)
	price.Legend.Add("Price of "+nameB, lb)
	price.Legend.Top = true

	reserve := lb.labelWidth()

	if !spec.Volume {
		price.Draw(draw.Crop(dc, 0, -reserve, 0, 0))
		return nil
	}

	vol := newVolumePlot(loc)
	va, err := coloredLine(volumes(a), firebrick, vg.Points(1))
	if err != nil {
		return err
	}
	vb := newSecondaryLine(volumes(b), volumeTicks{}, vol.Y.Tick.Label)
	vb.Color = royalBlue
	vb.Labels.Color = royalBlue
	vol.Add(va, vb)
	if w := vb.labelWidth(); w > reserve {
		reserve = w
	}

	stack(draw.Crop(dc, 0, -reserve, 0, 0), price, vol)
	return nil
}

// stack draws price over the top three quarters of dc and vol below it,
// sharing the x range and left edge.
func stack(dc draw.Canvas, price, vol *plot.Plot) {
	vol.X.Min, vol.X.Max = price.X.Min, price.X.Max
	price.HideX()

	tiles := draw.Tiles{
		Rows:      4,
		Cols:      1,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(8),
		PadY:      vg.Points(2),
	}
	canvases := plot.Align([][]*plot.Plot{{price}, {price}, {price}, {vol}}, tiles, dc)

	top := canvases[0][0]
	top.Min = canvases[2][0].Min
	price.Draw(top)
	vol.Draw(canvases[3][0])
}
