package calculator

import (
	"errors"

	"github.com/rs/zerolog/log"

	"StonkBot/internal/model"
)

// Summarize computes the stats command indicators from daily bars.
// Indicators that cannot be computed fall back to the current price (or 50 for RSI).
func Summarize(symbol string, daily []model.OHLCV) (*model.MarketStats, error) {
	if len(daily) == 0 {
		return nil, errors.New("no daily bars provided")
	}
	current := daily[len(daily)-1].Close
	st := &model.MarketStats{Symbol: symbol, CurrentPrice: current}
	logger := log.With().Str("component", "calculator").Str("symbol", symbol).Logger()

	if ma, err := MA200(daily); err != nil {
		logger.Debug().Err(err).Msg("MA200 unavailable, using current price")
		st.MA200 = current
	} else {
		st.MA200 = ma
	}

	if rsi, err := RSI(daily, 14); err != nil {
		logger.Debug().Err(err).Msg("RSI unavailable, defaulting to 50")
		st.DailyRSI = 50
	} else {
		st.DailyRSI = rsi
	}

	// Range only fails on empty input, which was rejected above.
	st.High52w, st.Low52w, _ = Range(daily, Bars52Week)
	st.High30d, st.Low30d, _ = Range(daily, Bars30Day)

	if pos, err := Position(current, st.High52w, st.Low52w); err != nil {
		st.Position52w = 0.5
	} else {
		st.Position52w = pos
	}
	return st, nil
}
