package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"StonkBot/internal/collector"
	"StonkBot/internal/notifier"
)

var errNotConfigured = errors.New("service not configured")

func (d *Dispatcher) registerMarket() {
	d.Register(&Command{Name: "price", Args: 1, Text: true, Run: d.price})
	d.Register(&Command{Name: "sp", Args: 1, Text: true, Run: d.stockPrice})
	d.Register(&Command{Name: "whois", Args: 1, Text: true, Run: d.whois})
	d.Register(&Command{Name: "expert", Args: 1, Text: true, Run: d.expert})
	d.Register(&Command{Name: "cp", Args: 1, Text: true, Run: d.cryptoPrice})
	d.Register(&Command{Name: "kimchi", Text: true, Run: d.kimchi})
	d.Register(&Command{Name: "stats", Args: 1, Text: true, Run: d.stats})
}

func (d *Dispatcher) price(ctx context.Context, c *Call) error {
	company := c.Inv.Args[0]
	if err := c.Reply(ctx, "Getting price information for "+company+"..."); err != nil {
		return err
	}
	apology := fmt.Sprintf("Couldn't get the stock's price for %s!", strings.ToUpper(company))
	if d.svc.Quotes == nil {
		return fail(apology, errNotConfigured)
	}
	q, err := d.svc.Quotes.FetchQuote(ctx, strings.ToUpper(company))
	if err != nil {
		return fail(apology, err)
	}
	return c.Reply(ctx, notifier.FormatPrice(q))
}

func (d *Dispatcher) stockPrice(ctx context.Context, c *Call) error {
	company := strings.ToUpper(c.Inv.Args[0])
	apology := fmt.Sprintf("Couldn't get the stock's price for %s!", company)
	if d.svc.Quotes == nil {
		return fail(apology, errNotConfigured)
	}
	q, err := d.svc.Quotes.FetchQuote(ctx, company)
	if err != nil {
		return fail(apology, err)
	}
	return c.Reply(ctx, notifier.FormatSpot(company, q))
}

func (d *Dispatcher) whois(ctx context.Context, c *Call) error {
	company := c.Inv.Args[0]
	if err := c.Reply(ctx, "Getting general information for "+company+"..."); err != nil {
		return err
	}
	apology := fmt.Sprintf("Some returned data was incorrect for %s!", strings.ToUpper(company))
	if d.svc.Quotes == nil {
		return fail(apology, errNotConfigured)
	}
	p, err := d.svc.Quotes.FetchProfile(ctx, strings.ToUpper(company))
	if err != nil {
		return fail(apology, err)
	}
	return c.Reply(ctx, notifier.FormatProfile(p))
}

func (d *Dispatcher) expert(ctx context.Context, c *Call) error {
	company := strings.ToUpper(c.Inv.Args[0])
	if err := c.Reply(ctx, "Let me get expert opinions on "+company+" for you..."); err != nil {
		return err
	}
	apology := fmt.Sprintf("Some returned data was incorrect for %s!", company)
	if d.svc.Quotes == nil {
		return fail(apology, errNotConfigured)
	}
	recs, err := d.svc.Quotes.FetchRecommendations(ctx, company)
	if err != nil {
		return fail(apology, err)
	}
	if len(recs) == 0 {
		return fail(apology, collector.ErrNoData)
	}
	return c.Reply(ctx, notifier.FormatRecommendations(recs))
}

func (d *Dispatcher) cryptoPrice(ctx context.Context, c *Call) error {
	coin := strings.ToUpper(c.Inv.Args[0])
	apology := fmt.Sprintf("Couldn't get the price for %s!", coin)
	if d.svc.Prices == nil {
		return fail(apology, errNotConfigured)
	}
	prices, err := d.svc.Prices.FetchPrice(ctx, coin, "USD")
	if err != nil {
		return fail(apology, err)
	}
	usd, ok := prices["USD"]
	if !ok {
		return fail(apology, collector.ErrNoData)
	}
	return c.Reply(ctx, notifier.FormatCryptoPrice(coin, usd))
}

// kimchi compares the Korean won price of ETH, converted to dollars, with
// its US dollar price.
func (d *Dispatcher) kimchi(ctx context.Context, c *Call) error {
	const apology = "Couldn't get the kimchi premium!"
	if d.svc.Prices == nil || d.svc.Rates == nil {
		return fail(apology, errNotConfigured)
	}
	prices, err := d.svc.Prices.FetchPrice(ctx, "ETH", "KRW", "USD")
	if err != nil {
		return fail(apology, err)
	}
	krw, okK := prices["KRW"]
	usd, okU := prices["USD"]
	if !okK || !okU {
		return fail(apology, collector.ErrNoData)
	}
	rate, err := d.svc.Rates.FetchRate(ctx, "KRW", "USD")
	if err != nil {
		return fail(apology, err)
	}
	krwInUSD := krw * rate
	return c.Reply(ctx, notifier.FormatKimchi(krwInUSD-usd, usd, krwInUSD))
}

func (d *Dispatcher) stats(ctx context.Context, c *Call) error {
	symbol := strings.ToUpper(c.Inv.Args[0])
	apology := fmt.Sprintf("Couldn't get stats for %s!", symbol)
	if d.svc.Stats == nil {
		return fail(apology, errNotConfigured)
	}
	st, err := d.svc.Stats.Collect(ctx, symbol)
	if errors.Is(err, collector.ErrNoData) {
		return fail(NoDataMessage, err)
	}
	if err != nil {
		return fail(apology, err)
	}
	return c.Reply(ctx, notifier.FormatStats(st))
}
