package calculator

import (
	"errors"

	"StonkBot/internal/model"
)

// ErrInsufficientData is returned when a series is shorter than the indicator period.
var ErrInsufficientData = errors.New("not enough data")

// SMA computes the simple moving average of the last period prices.
func SMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period), nil
}

// MA200 returns the 200-bar simple moving average of the closes.
func MA200(bars []model.OHLCV) (float64, error) {
	return SMA(closes(bars), 200)
}

func closes(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
