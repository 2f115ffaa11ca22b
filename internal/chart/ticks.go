package chart

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/plot"
)

// TimeFormat is the label layout of the time axis.
const TimeFormat = "Jan 02 15:04"

func timeTicks(loc *time.Location) plot.Ticker {
	return plot.TimeTicks{Format: TimeFormat, Time: plot.UnixTimeIn(loc)}
}

// dollarTicks labels the default major ticks as prices.
type dollarTicks struct{}

func (dollarTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].IsMinor() {
			continue
		}
		ticks[i].Label = Dollars(ticks[i].Value)
	}
	return ticks
}

// volumeTicks labels the default major ticks with K/M/B suffixes.
type volumeTicks struct{}

func (volumeTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].IsMinor() {
			continue
		}
		ticks[i].Label = Abbreviate(ticks[i].Value)
	}
	return ticks
}

// Round2 rounds v half away from zero to two decimal places.
// NaN and infinities are returned unchanged.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Dollars formats v as a price with a $ prefix and two decimals.
func Dollars(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("$%v", v)
	}
	d := decimal.NewFromFloat(v)
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// Abbreviate formats a volume with a magnitude suffix.
func Abbreviate(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
