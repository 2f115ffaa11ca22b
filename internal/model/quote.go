package model

// Quote is the subset of a quote lookup shown by the price commands.
type Quote struct {
	Symbol        string
	Open          float64
	Ask           float64
	Bid           float64
	Volume        int64
	AverageVolume int64
	Beta          float64
}

// Profile describes the company behind a ticker.
type Profile struct {
	Symbol            string
	LongName          string
	Sector            string
	Phone             string
	FullTimeEmployees int64
	MarketCap         int64
	Summary           string
}

// Recommendation is one period of analyst recommendation counts.
type Recommendation struct {
	Period     string
	StrongBuy  int
	Buy        int
	Hold       int
	Sell       int
	StrongSell int
}
