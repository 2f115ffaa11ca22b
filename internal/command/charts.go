package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StonkBot/internal/chart"
	"StonkBot/internal/collector"
	"StonkBot/internal/model"
)

// GraphFile is the attachment name of every rendered chart.
const GraphFile = "graph.png"

// ChartCommand maps a command name to its query and chart layout.
type ChartCommand struct {
	Name     string
	Asset    model.AssetClass
	Shape    model.Shape
	Volume   bool
	Symbols  int
	Interval model.Interval
	Period   string        // equity named lookback
	Window   time.Duration // equity explicit span ending now
	Buckets  int           // crypto bucket count
	PrePost  bool
}

// Query builds the series request for symbol ending at end.
func (cc ChartCommand) Query(symbol string, end time.Time) model.SeriesQuery {
	return model.SeriesQuery{
		Symbol:   symbol,
		Asset:    cc.Asset,
		Interval: cc.Interval,
		Period:   cc.Period,
		Window:   cc.Window,
		Buckets:  cc.Buckets,
		End:      end,
		PrePost:  cc.PrePost,
	}
}

type equitySpan struct {
	suffix   string
	period   string
	window   time.Duration
	interval model.Interval
	prepost  bool
}

var equitySpans = []equitySpan{
	{"yg", "1y", 0, model.Day, false},
	{"mg", "1mo", 0, model.Day, false},
	{"wg", "7d", 0, model.Hour, true},
	{"tfhg", "", 24 * time.Hour, model.FiveMinute, true},
	{"dg", "1d", 0, model.FiveMinute, true},
	{"hg", "", time.Hour, model.Minute, true},
}

var equityLongNames = map[string]string{
	"yg":   "yeargraph",
	"mg":   "monthgraph",
	"wg":   "weekgraph",
	"tfhg": "twentyfourhourgraph",
	"dg":   "daygraph",
	"hg":   "hourgraph",
}

type cryptoSpan struct {
	suffix   string
	interval model.Interval
	buckets  int
}

var cryptoSpans = []cryptoSpan{
	{"hg", model.Minute, 60},
	{"dg", model.Hour, 24},
	{"wg", model.Hour, 168},
	{"mg", model.Day, 30},
	{"yg", model.Day, 365},
}

// ChartCommands is the full chart command table.
var ChartCommands = buildChartTable()

func buildChartTable() []ChartCommand {
	var out []ChartCommand
	equity := func(name string, sp equitySpan, shape model.Shape, symbols int) {
		out = append(out, ChartCommand{
			Name: name, Asset: model.Equity, Shape: shape, Symbols: symbols,
			Interval: sp.interval, Period: sp.period, Window: sp.window, PrePost: sp.prepost,
		})
	}
	crypto := func(name string, sp cryptoSpan, shape model.Shape, volume bool, symbols int) {
		out = append(out, ChartCommand{
			Name: name, Asset: model.Crypto, Shape: shape, Volume: volume, Symbols: symbols,
			Interval: sp.interval, Buckets: sp.buckets,
		})
	}

	equity("maxgraph", equitySpan{period: "max", interval: model.Day}, model.ShapeLine, 1)
	for _, sp := range equitySpans {
		equity(equityLongNames[sp.suffix], sp, model.ShapeLine, 1)
		equity(sp.suffix, sp, model.ShapeLine, 1)
	}
	for _, sp := range equitySpans {
		equity("s"+sp.suffix, sp, model.ShapeCandlestick, 1)
	}
	for _, sp := range equitySpans {
		equity("ds"+sp.suffix, sp, model.ShapeDual, 2)
	}

	for _, sp := range cryptoSpans {
		crypto("c"+sp.suffix, sp, model.ShapeLineVolume, false, 1)
	}
	crypto("ccmmg", cryptoSpan{"mmg", model.Minute, 15}, model.ShapeCandlestick, false, 1)
	for _, sp := range cryptoSpans {
		crypto("cc"+sp.suffix, sp, model.ShapeCandlestick, false, 1)
	}
	for _, sp := range cryptoSpans {
		crypto("dc"+sp.suffix, sp, model.ShapeDual, true, 2)
	}
	return out
}

func (d *Dispatcher) chartCommand(cc ChartCommand) *Command {
	return &Command{
		Name:  cc.Name,
		Args:  cc.Symbols,
		Exact: true,
		Run: func(ctx context.Context, c *Call) error {
			return d.graph(ctx, c, cc)
		},
	}
}

// graph fetches every symbol, renders one chart and posts it. Nothing is
// rendered unless every series came back with data.
func (d *Dispatcher) graph(ctx context.Context, c *Call, cc ChartCommand) error {
	symbols := upper(c.Inv.Args[:cc.Symbols])
	apology := fmt.Sprintf("Couldn't create a graph for %s!", strings.Join(symbols, " and "))
	if d.svc.Series == nil || d.svc.Renderer == nil {
		return fail(apology, errors.New("chart services not configured"))
	}

	end := d.svc.Now()
	series := make([]model.Series, 0, len(symbols))
	for _, sym := range symbols {
		pts, err := d.svc.Series.FetchSeries(ctx, cc.Query(sym, end))
		if errors.Is(err, collector.ErrNoData) {
			return fail(NoDataMessage, fmt.Errorf("%s %s: %w", cc.Name, sym, err))
		}
		if err != nil {
			return fail(apology, fmt.Errorf("fetch %s: %w", sym, err))
		}
		series = append(series, model.Series{Symbol: sym, Points: pts})
	}

	img, err := d.svc.Renderer.Render(model.ChartSpec{
		Symbols: symbols,
		Shape:   cc.Shape,
		Volume:  cc.Volume,
		Title:   chart.Title(cc.Shape, symbols...),
	}, series...)
	if err != nil {
		return fail(apology, fmt.Errorf("render %s: %w", cc.Name, err))
	}
	return c.Platform.SendFile(ctx, c.Inv.ChannelID, GraphFile, img)
}
