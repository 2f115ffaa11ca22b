package chart

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"

	"StonkBot/internal/model"
)

func series(symbol string, n int, base float64) model.Series {
	start := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	pts := make([]model.OHLCV, n)
	for i := range pts {
		p := base + math.Sin(float64(i)/3)*base*0.02
		pts[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * 5 * time.Minute),
			Open:   p - 0.4,
			High:   p + 1.1,
			Low:    p - 1.3,
			Close:  p + 0.123456,
			Volume: float64(1000 + i*37),
		}
	}
	return model.Series{Symbol: symbol, Points: pts}
}

func eastern(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestRender_Shapes(t *testing.T) {
	r := NewRenderer(eastern(t))
	cases := []struct {
		name   string
		spec   model.ChartSpec
		series []model.Series
	}{
		{"line", model.ChartSpec{Shape: model.ShapeLine}, []model.Series{series("spy", 40, 500)}},
		{"line+volume", model.ChartSpec{Shape: model.ShapeLineVolume}, []model.Series{series("btc", 60, 60000)}},
		{"candlestick", model.ChartSpec{Shape: model.ShapeCandlestick}, []model.Series{series("aapl", 30, 180)}},
		{"dual", model.ChartSpec{Shape: model.ShapeDual}, []model.Series{series("spy", 40, 500), series("qqq", 40, 430)}},
		{"dual+volume", model.ChartSpec{Shape: model.ShapeDual, Volume: true}, []model.Series{series("btc", 24, 60000), series("eth", 24, 3000)}},
		{"single point", model.ChartSpec{Shape: model.ShapeCandlestick}, []model.Series{series("spy", 1, 500)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := r.Render(tc.spec, tc.series...)
			require.NoError(t, err)

			// cursor at start
			assert.Equal(t, out.Size(), int64(out.Len()))

			var buf bytes.Buffer
			_, err = out.WriteTo(&buf)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))

			img, err := png.Decode(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, 960, img.Bounds().Dx())
			assert.Equal(t, 576, img.Bounds().Dy())
		})
	}
}

func TestRender_SeriesCount(t *testing.T) {
	r := NewRenderer(time.UTC)

	_, err := r.Render(model.ChartSpec{Shape: model.ShapeDual}, series("spy", 10, 500))
	assert.Error(t, err)

	_, err = r.Render(model.ChartSpec{Shape: model.ShapeLine}, series("spy", 10, 500), series("qqq", 10, 400))
	assert.Error(t, err)
}

func TestRender_Empty(t *testing.T) {
	r := NewRenderer(time.UTC)
	_, err := r.Render(model.ChartSpec{Shape: model.ShapeLine}, model.Series{Symbol: "SPY"})
	assert.True(t, errors.Is(err, ErrEmptySeries))
}

func TestRender_SymbolLabels(t *testing.T) {
	r := NewRenderer(time.UTC)
	in := []model.Series{series("spy", 10, 500), series("qqq", 10, 400)}

	_, err := r.Render(model.ChartSpec{Shape: model.ShapeDual, Symbols: []string{"SPY"}}, in...)
	assert.Error(t, err)

	out, err := r.Render(model.ChartSpec{Shape: model.ShapeDual, Symbols: []string{"SPY", "QQQ"}}, in...)
	require.NoError(t, err)
	assert.Positive(t, out.Len())
	assert.Equal(t, "spy", in[0].Symbol, "caller's series are left untouched")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Stock Price For SPY", Title(model.ShapeLine, "spy"))
	assert.Equal(t, "BTC Price Graph", Title(model.ShapeLineVolume, "btc"))
	assert.Equal(t, "AAPL Price Graph", Title(model.ShapeCandlestick, "AAPL"))
	assert.Equal(t, "Price comparison of SPY and QQQ", Title(model.ShapeDual, "spy", "qqq"))
	assert.Empty(t, Title(model.ShapeLine))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 123.46, Round2(123.4567))
	assert.Equal(t, 0.01, Round2(0.005))
	assert.Equal(t, -2.35, Round2(-2.345))
	assert.Equal(t, 100.0, Round2(100))
	assert.True(t, math.IsNaN(Round2(math.NaN())))
	assert.True(t, math.IsInf(Round2(math.Inf(1)), 1))
}

func TestRounded(t *testing.T) {
	out := rounded([]model.OHLCV{{Open: 1.004, High: 2.555, Low: 0.999, Close: 123.4567, Volume: 10.123}})
	assert.Equal(t, model.OHLCV{Open: 1, High: 2.56, Low: 1, Close: 123.46, Volume: 10.123}, out[0])
}

func TestDollars(t *testing.T) {
	assert.Equal(t, "$123.46", Dollars(123.4567))
	assert.Equal(t, "$5.00", Dollars(5))
	assert.Equal(t, "-$1.50", Dollars(-1.5))
}

func TestAbbreviate(t *testing.T) {
	assert.Equal(t, "950", Abbreviate(950))
	assert.Equal(t, "1.5K", Abbreviate(1500))
	assert.Equal(t, "2.3M", Abbreviate(2_300_000))
	assert.Equal(t, "4.0B", Abbreviate(4e9))
}

func TestDollarTicks(t *testing.T) {
	for _, tk := range (dollarTicks{}).Ticks(100, 110) {
		if tk.IsMinor() {
			continue
		}
		assert.Regexp(t, `^\$\d+\.\d{2}$`, tk.Label)
	}
}

func TestTimeTicks_Eastern(t *testing.T) {
	loc := eastern(t)
	ticks := timeTicks(loc).Ticks(1709562600, 1709562600+6*3600)
	var labels []plot.Tick
	for _, tk := range ticks {
		if !tk.IsMinor() {
			labels = append(labels, tk)
		}
	}
	require.NotEmpty(t, labels)
	want := time.Unix(int64(labels[0].Value), 0).In(loc).Format(TimeFormat)
	assert.Equal(t, want, labels[0].Label)
}

func TestCandlesticks_DataRange(t *testing.T) {
	cs := newCandlesticks([]model.OHLCV{
		{Time: time.Unix(100, 0), Open: 10, High: 12, Low: 9, Close: 11},
		{Time: time.Unix(160, 0), Open: 11, High: 15, Low: 8, Close: 9},
	})
	xmin, xmax, ymin, ymax := cs.DataRange()
	assert.Equal(t, 100.0, xmin)
	assert.Equal(t, 160.0, xmax)
	assert.Equal(t, 8.0, ymin)
	assert.Equal(t, 15.0, ymax)
	assert.Equal(t, 60.0, cs.spacing())
}

func TestSecondaryLine_DataRangeKeepsPrimaryScale(t *testing.T) {
	s := newSecondaryLine(closes(series("qqq", 5, 400)), dollarTicks{}, plot.New().Y.Tick.Label)
	xmin, xmax, ymin, ymax := s.DataRange()
	assert.Less(t, xmin, xmax)
	assert.True(t, math.IsInf(ymin, 1))
	assert.True(t, math.IsInf(ymax, -1))
	assert.InDelta(t, 0.0, s.norm(s.ymin), 1e-12)
	assert.InDelta(t, 1.0, s.norm(s.ymax), 1e-12)
}
