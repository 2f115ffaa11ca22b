package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"StonkBot/internal/search"
)

// NewsLinks is how many articles the news commands post.
const NewsLinks = 3

func (d *Dispatcher) registerMisc() {
	d.Register(&Command{Name: "ping", Run: d.ping})
	d.Register(&Command{Name: "help", Run: d.help})
	d.Register(&Command{Name: "math", Args: 3, Text: true, Run: d.math})
	d.Register(&Command{Name: "8ball", Aliases: []string{"magic8ball", "_8ball"}, Text: true, Run: d.eightBall})
	d.Register(&Command{Name: "news", Run: d.news})
	d.Register(&Command{Name: "cryptonews", Run: d.cryptoNews})
}

func (d *Dispatcher) ping(ctx context.Context, c *Call) error {
	return c.Reply(ctx, fmt.Sprintf("Ping is %dms", c.Platform.Latency().Round(time.Millisecond).Milliseconds()))
}

func (d *Dispatcher) help(ctx context.Context, c *Call) error {
	const apology = "Couldn't send help message!"
	for _, section := range helpSections {
		if err := c.Platform.SendDM(ctx, c.Inv.AuthorID, section); err != nil {
			return fail(apology, err)
		}
	}
	admin, err := c.Platform.HasPermission(ctx, c.Inv, PermAdministrator)
	if err != nil {
		return fail(apology, err)
	}
	if admin {
		if err := c.Platform.SendDM(ctx, c.Inv.AuthorID, adminHelp); err != nil {
			return fail(apology, err)
		}
	}
	return nil
}

// math evaluates "a op b" with decimal arithmetic.
func (d *Dispatcher) math(ctx context.Context, c *Call) error {
	const apology = "Couldn't do math!"
	args := c.Inv.Args
	a, err := decimal.NewFromString(args[0])
	if err != nil {
		return &ArgumentError{Command: "math", Reason: fmt.Sprintf("bad number %q", args[0])}
	}
	op := args[1]
	b, err := decimal.NewFromString(args[2])
	if err != nil {
		return &ArgumentError{Command: "math", Reason: fmt.Sprintf("bad number %q", args[2])}
	}

	result, err := Evaluate(a, op, b)
	var opErr *OperatorError
	if errors.As(err, &opErr) {
		return c.Reply(ctx, "Invalid operand: "+op)
	}
	if err != nil {
		return fail(apology, err)
	}
	return c.Reply(ctx, fmt.Sprintf("%s %s %s = %s", a, op, b, result))
}

// OperatorError reports an operator math does not know.
type OperatorError struct{ Op string }

func (e *OperatorError) Error() string { return "invalid operand: " + e.Op }

var errDivideByZero = errors.New("division by zero")

// Evaluate applies one of + - * x / % to a and b.
func Evaluate(a decimal.Decimal, op string, b decimal.Decimal) (decimal.Decimal, error) {
	switch op {
	case "+":
		return a.Add(b), nil
	case "-":
		return a.Sub(b), nil
	case "*", "x":
		return a.Mul(b), nil
	case "/":
		if b.IsZero() {
			return decimal.Zero, errDivideByZero
		}
		return a.Div(b), nil
	case "%":
		if b.IsZero() {
			return decimal.Zero, errDivideByZero
		}
		return a.Mod(b), nil
	default:
		return decimal.Zero, &OperatorError{Op: op}
	}
}

func (d *Dispatcher) eightBall(ctx context.Context, c *Call) error {
	t := d.svc.Tickers
	if t == nil || len(t.Amounts) == 0 || len(t.Tickers) == 0 {
		return fail("Couldn't get a magic 8-ball suggestion!", errNotConfigured)
	}
	amount := t.Amounts[d.svc.Intn(len(t.Amounts))]
	pick := t.Tickers[d.svc.Intn(len(t.Tickers))]

	text := fmt.Sprintf("The magic 8 ball wants you to buy %s of %s!", amount, pick)
	if c.Inv.Rest != "" {
		text = c.Inv.Rest + "! " + text
	}
	return c.Reply(ctx, text)
}

func (d *Dispatcher) news(ctx context.Context, c *Call) error {
	topic := c.Inv.Rest
	intro := "Checking the internet for the latest financial news..."
	if topic != "" {
		intro = fmt.Sprintf("Checking the internet for the latest %s financial news...", topic)
	}
	return d.postNews(ctx, c, intro, search.StockQuery(topic), "Couldn't get news!")
}

func (d *Dispatcher) cryptoNews(ctx context.Context, c *Call) error {
	topic := c.Inv.Rest
	intro := "Checking the internet for the latest crypto news..."
	if topic != "" {
		intro = fmt.Sprintf("Checking the internet for the latest %s financial news...", topic)
	}
	return d.postNews(ctx, c, intro, search.CryptoQuery(topic), "Couldn't get crypto news!")
}

// postNews posts the top links one at a time, NewsInterval apart.
func (d *Dispatcher) postNews(ctx context.Context, c *Call, intro, query, apology string) error {
	if err := c.Reply(ctx, intro); err != nil {
		return err
	}
	if d.svc.News == nil {
		return fail(apology, errNotConfigured)
	}
	links, err := d.svc.News.Search(ctx, query, NewsLinks)
	if err != nil {
		return fail(apology, err)
	}

	limit := rate.Inf
	if d.svc.NewsInterval > 0 {
		limit = rate.Every(d.svc.NewsInterval)
	}
	pacer := rate.NewLimiter(limit, 1)
	for _, link := range links {
		if err := pacer.Wait(ctx); err != nil {
			return fail(apology, err)
		}
		if err := c.Reply(ctx, link); err != nil {
			return fail(apology, err)
		}
	}
	return nil
}

var helpSections = []string{
	"Base User Commands:\n" +
		"\t/help - Get info on bot commands you can access.\n" +
		"\t/ping - Shows the latency of the bot.\n" +
		"\t/news <Optional: Company> - Shows the top 3 relevant market articles.\n" +
		"\t/math <Number> <+ - * x / %> <Number> - Does simple math.\n",

	"Other stock specific commands:\n" +
		"\t/price <Ticker Symbol> - Returns daily price information about a ticker symbol.\n" +
		"\t/whois <Ticker Symbol> - Returns general information about a ticker symbol.\n" +
		"\t/expert <Ticker Symbol> - Returns expert opinions on what a stock is doing.\n" +
		"\t/stats <Ticker Symbol> - Returns the 52 week range, MA200 and RSI of a stock.\n" +
		"\t/8ball - Shake the Magic 8 Ball and be told what stock to buy.\n" +
		"\t/sp <Ticker Symbol> - Get current stock price for any stock.\n",

	"Stock regular graph specific commands: \n" +
		"\t/maxgraph <Ticker Symbol> - Returns a graph of a stock's entire price history.\n" +
		"\t/yeargraph <Ticker Symbol> - Returns a 1 year graph of a stock's price history.\n" +
		"\t/monthgraph <Ticker Symbol> - Returns a 1 month graph of a stock's price history.\n" +
		"\t/weekgraph <Ticker Symbol> - Returns a 5 day graph of a stock's price history.\n" +
		"\t/daygraph <Ticker Symbol> - Returns a 1 trading day graph of a stock's price history.\n" +
		"\t/twentyfourhourgraph <Ticker Symbol> - Returns a graph showing the past 24 hours of a stock's price history.\n" +
		"\t/hourgraph <Ticker Symbol> - Returns a 1 hour graph of a stock's price history.\n" +
		"\t/yg <Ticker Symbol> - Returns a 1 year graph of a stock's price history.\n" +
		"\t/mg <Ticker Symbol> - Returns a 1 month graph of a stock's price history.\n" +
		"\t/wg <Ticker Symbol> - Returns a 5 day graph of a stock's price history.\n" +
		"\t/dg <Ticker Symbol> - Returns a 1 trading day graph of a stock's price history.\n" +
		"\t/hg <Ticker Symbol> - Returns a 1 hour graph of a stock's price history.\n" +
		"\t/tfhg <Ticker Symbol> - Returns a graph showing the past 24 hours of a stock's price history.\n",

	"Stock candlestick chart specific commands: \n" +
		"\t/syg <Ticker Symbol> - Returns a 1 year candlestick graph of a stock's price history.\n" +
		"\t/smg <Ticker Symbol> - Returns a 1 month candlestick graph of a stock's price history.\n" +
		"\t/swg <Ticker Symbol> - Returns a 5 day candlestick graph of a stock's price history.\n" +
		"\t/sdg <Ticker Symbol> - Returns a 1 trading day candlestick graph of a stock's price history.\n" +
		"\t/shg <Ticker Symbol> - Returns a 1 hour candlestick graph of a stock's price history.\n" +
		"\t/stfhg <Ticker Symbol> - Returns a candlestick graph showing the past 24 hours of a stock's price history.\n" +
		"\t/dsyg <Ticker Symbol> <Ticker Symbol> - Returns a 1 year graph of two stocks' price history.\n" +
		"\t/dsmg <Ticker Symbol> <Ticker Symbol> - Returns a 1 month graph of two stocks' price history.\n" +
		"\t/dswg <Ticker Symbol> <Ticker Symbol> - Returns a 5 day graph of two stocks' price history.\n" +
		"\t/dsdg <Ticker Symbol> <Ticker Symbol> - Returns a 1 trading day graph of two stocks' price history.\n" +
		"\t/dshg <Ticker Symbol> <Ticker Symbol> - Returns a 1 hour graph of two stocks' price history.\n" +
		"\t/dstfhg <Ticker Symbol> <Ticker Symbol> - Returns a graph showing the past 24 hours of two stocks' price history.\n",

	"Other crypto specific commands:\n" +
		"\t/cp <Crypto Symbol> - Get current price for any cryptocurrency.\n" +
		"\t/kimchi - Shows the current kimchi premium on ETH.\n" +
		"\t/cryptonews <Optional: Crypto> - Shows the top 3 relevant market articles.\n",

	"Crypto graph specific commands:\n" +
		"\t/cyg <Crypto Symbol> - Returns a 1 year graph of a cryptocurrency's price history.\n" +
		"\t/cmg <Crypto Symbol> - Returns a 1 month graph of a cryptocurrency's price history.\n" +
		"\t/cwg <Crypto Symbol> - Returns a 1 week graph of a cryptocurrency's price history.\n" +
		"\t/cdg <Crypto Symbol> - Returns a 1 day graph of a cryptocurrency's price history.\n" +
		"\t/chg <Crypto Symbol> - Returns a 1 hour graph of a cryptocurrency's price history.\n",

	"Crypto candlestick chart specific commands:\n" +
		"\t/ccyg <Crypto Symbol> - Returns a 1 year candlestick graph of a cryptocurrency's price history.\n" +
		"\t/ccmg <Crypto Symbol> - Returns a 1 month candlestick graph of a cryptocurrency's price history.\n" +
		"\t/ccwg <Crypto Symbol> - Returns a 1 week candlestick graph of a cryptocurrency's price history.\n" +
		"\t/ccdg <Crypto Symbol> - Returns a 1 day candlestick graph of a cryptocurrency's price history.\n" +
		"\t/cchg <Crypto Symbol> - Returns a 1 hour candlestick graph of a cryptocurrency's price history.\n" +
		"\t/ccmmg <Crypto Symbol> - Returns a 15 minute candlestick graph of a cryptocurrency's price history.\n",

	"Crypto dual chart specific commands:\n" +
		"\t/dcyg <Crypto Symbol> <Crypto Symbol> - Returns a 1 year graph of two cryptocurrencies' price histories.\n" +
		"\t/dcmg <Crypto Symbol> <Crypto Symbol> - Returns a 1 month graph of two cryptocurrencies' price histories.\n" +
		"\t/dcwg <Crypto Symbol> <Crypto Symbol> - Returns a 1 week graph of two cryptocurrencies' price histories.\n" +
		"\t/dcdg <Crypto Symbol> <Crypto Symbol> - Returns a 1 day graph of two cryptocurrencies' price histories.\n" +
		"\t/dchg <Crypto Symbol> <Crypto Symbol> - Returns a 1 hour graph of two cryptocurrencies' price histories.\n",
}

var adminHelp = strings.Join([]string{
	"My records show you are an admin!",
	"Here are the admin only commands:",
	"\t/clear <Number> - Clears 1-10 messages from the chat permanently.",
	"\t/kick <User> <Optional: Reason> - Kicks a user from the discord.",
	"\t/ban <User> <Optional: Reason> - Bans a user from the discord.",
	"\t/unban <User> - Unbans a User. To use this you must use their name and 4 digit code.",
}, "\n")
