package notifier

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"StonkBot/internal/model"
)

// FormatPrice formats the daily price summary of the price command.
func FormatPrice(q *model.Quote) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Opening Price: $%s\n", num(q.Open)))
	b.WriteString(fmt.Sprintf("Latest ask price: $%s\n", num(q.Ask)))
	b.WriteString(fmt.Sprintf("Latest bid price: $%s\n", num(q.Bid)))
	b.WriteString(fmt.Sprintf("Volume: %s\n", humanize.Comma(q.Volume)))
	b.WriteString(fmt.Sprintf("Average volume: %s\n", humanize.Comma(q.AverageVolume)))
	b.WriteString(fmt.Sprintf("Beta: %s", truncate(num(q.Beta), 5)))
	return b.String()
}

// FormatSpot formats the current ask/bid/volume line of the sp command.
func FormatSpot(symbol string, q *model.Quote) string {
	return fmt.Sprintf("Current Price Info for $%s:\n\tAsk: $%s\n\tBid: $%s\n\tVolume: $%d",
		strings.ToUpper(symbol), num(q.Ask), num(q.Bid), q.Volume)
}

// FormatCryptoPrice formats the cp command reply.
func FormatCryptoPrice(symbol string, price float64) string {
	return fmt.Sprintf("Current Price for %s is: $%s", strings.ToUpper(symbol), num(price))
}

// FormatProfile formats the whois command reply. Missing fields stay blank.
func FormatProfile(p *model.Profile) string {
	employees, marketCap := "", ""
	if p.FullTimeEmployees > 0 {
		employees = humanize.Comma(p.FullTimeEmployees)
	}
	if p.MarketCap > 0 {
		marketCap = "$" + humanize.Comma(p.MarketCap)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Name: %s\n", p.LongName))
	b.WriteString(fmt.Sprintf("Sector: %s\n", p.Sector))
	b.WriteString(fmt.Sprintf("Phone Number: %s\n", p.Phone))
	b.WriteString(fmt.Sprintf("Full Time Employees: %s\n", employees))
	b.WriteString(fmt.Sprintf("Market Cap: %s\n", marketCap))
	b.WriteString(fmt.Sprintf("Summary: %s", p.Summary))
	return b.String()
}

// FormatRecommendations renders the most recent periods (at most five) as a
// fixed-width table in a code block.
func FormatRecommendations(recs []model.Recommendation) string {
	if len(recs) > 5 {
		recs = recs[len(recs)-5:]
	}
	var b strings.Builder
	b.WriteString("```\n")
	b.WriteString(fmt.Sprintf("%-8s %9s %5s %5s %5s %10s\n", "Period", "StrongBuy", "Buy", "Hold", "Sell", "StrongSell"))
	for _, r := range recs {
		b.WriteString(fmt.Sprintf("%-8s %9d %5d %5d %5d %10d\n", r.Period, r.StrongBuy, r.Buy, r.Hold, r.Sell, r.StrongSell))
	}
	b.WriteString("```")
	return b.String()
}

// FormatKimchi formats the ETH price gap between Korean and US exchanges.
func FormatKimchi(premium, usd, krwInUSD float64) string {
	return fmt.Sprintf("The current kimchi premium is $%.2f\n\tThe current USD price is $%.2f\n\tThe current KRW price (converted into USD) is $%.2f",
		premium, usd, krwInUSD)
}

// FormatStats formats the indicator summary of the stats command.
func FormatStats(st *model.MarketStats) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(":bar_chart: **%s stats**\n\n", strings.ToUpper(st.Symbol)))

	b.WriteString(fmt.Sprintf("Current price: $%.2f\n", st.CurrentPrice))
	ma200Dev := 0.0
	if st.MA200 > 0 {
		ma200Dev = (st.CurrentPrice - st.MA200) / st.MA200 * 100
	}
	b.WriteString(fmt.Sprintf("MA200: $%.2f (%+.1f%%)\n", st.MA200, ma200Dev))
	b.WriteString(fmt.Sprintf("RSI(14): %.0f%s\n", st.DailyRSI, rsiNote(st.DailyRSI)))
	b.WriteString(fmt.Sprintf("52-week range: $%.2f - $%.2f (at %.0f%%)\n", st.Low52w, st.High52w, st.Position52w*100))
	b.WriteString(fmt.Sprintf("30-day range: $%.2f - $%.2f", st.Low30d, st.High30d))
	return b.String()
}

func rsiNote(rsi float64) string {
	switch {
	case rsi >= 70:
		return " (overbought)"
	case rsi <= 30:
		return " (oversold)"
	default:
		return ""
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
