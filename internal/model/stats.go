package model

// MarketStats holds the indicators reported by the stats command.
type MarketStats struct {
	Symbol       string
	CurrentPrice float64
	MA200        float64
	DailyRSI     float64
	High52w      float64
	Low52w       float64
	High30d      float64
	Low30d       float64
	Position52w  float64 // 0.0 ~ 1.0
}
