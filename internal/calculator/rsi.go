package calculator

import (
	"errors"

	"StonkBot/internal/model"
)

// RSI computes the Wilder-smoothed relative strength index over period.
// Requires at least period+1 bars.
func RSI(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) < period+1 {
		return 0, ErrInsufficientData
	}

	c := closes(bars)

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		if d := c[i] - c[i-1]; d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(c); i++ {
		gain, loss := 0.0, 0.0
		if d := c[i] - c[i-1]; d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), nil
}
