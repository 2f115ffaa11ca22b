package model

import (
	"fmt"
	"time"
)

// OHLCV represents a single sampling bucket of a price series.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// AssetClass selects which upstream provider serves a query.
type AssetClass int

const (
	Equity AssetClass = iota
	Crypto
)

func (a AssetClass) String() string {
	switch a {
	case Equity:
		return "equity"
	case Crypto:
		return "crypto"
	default:
		return fmt.Sprintf("asset(%d)", int(a))
	}
}

// Interval is the sampling granularity of a series.
type Interval string

const (
	Minute     Interval = "1m"
	FiveMinute Interval = "5m"
	Hour       Interval = "1h"
	Day        Interval = "1d"
)

// SeriesQuery describes one upstream history request.
//
// Equity queries use either Period (a named lookback such as "1y") or Window
// (an explicit span ending at End). Crypto queries use Buckets, a count of
// Interval-sized buckets ending at End.
type SeriesQuery struct {
	Symbol   string
	Asset    AssetClass
	Interval Interval
	Period   string
	Window   time.Duration
	Buckets  int
	End      time.Time
	PrePost  bool
}

// Start returns the beginning of an explicit window query.
func (q SeriesQuery) Start() time.Time {
	return q.End.Add(-q.Window)
}

// Series is a fetched price history for one symbol.
type Series struct {
	Symbol string
	Points []OHLCV
}
