package command

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"StonkBot/internal/chart"
	"StonkBot/internal/collector"
	"StonkBot/internal/recorder"
	"StonkBot/internal/search"
)

// HandlerFunc runs one command.
type HandlerFunc func(ctx context.Context, c *Call) error

// Command describes a registered command.
type Command struct {
	Name    string
	Aliases []string
	// Args is the number of required arguments; Exact rejects extras too.
	Args  int
	Exact bool
	Perm  Permission
	// Text marks commands whose reply is plain text, usable off Discord.
	Text bool
	Run  HandlerFunc
}

// Call carries an invocation through its handler.
type Call struct {
	Inv      *Invocation
	Platform Platform
}

// Reply posts text to the invoking channel.
func (c *Call) Reply(ctx context.Context, text string) error {
	return c.Platform.Send(ctx, c.Inv.ChannelID, text)
}

// Services are the collaborators command handlers use. Nil services make
// the commands depending on them fail with an apology.
type Services struct {
	Series   collector.SeriesFetcher
	Quotes   collector.QuoteFetcher
	Prices   collector.PriceFetcher
	Rates    collector.RateFetcher
	Stats    *collector.Collector
	News     search.NewsSearcher
	Renderer *chart.Renderer
	Tickers  *Tickers
	Recorder recorder.Recorder

	// Timeout bounds one invocation; zero disables it.
	Timeout time.Duration
	// NewsInterval spaces consecutive news links.
	NewsInterval time.Duration
	Now          func() time.Time
	Intn         func(n int) int
}

// Dispatcher routes invocations to commands.
type Dispatcher struct {
	Prefix   string
	svc      Services
	commands map[string]*Command
	names    []string
	log      zerolog.Logger
}

// NewDispatcher creates a dispatcher with every built-in command registered.
func NewDispatcher(svc Services) *Dispatcher {
	if svc.Now == nil {
		svc.Now = time.Now
	}
	if svc.Intn == nil {
		svc.Intn = rand.Intn
	}
	if svc.Recorder == nil {
		svc.Recorder = recorder.NewNoopRecorder()
	}
	if svc.Tickers == nil {
		svc.Tickers = DefaultTickers()
	}
	d := &Dispatcher{
		Prefix:   "/",
		svc:      svc,
		commands: make(map[string]*Command),
		log:      log.With().Str("component", "dispatcher").Logger(),
	}
	for _, cc := range ChartCommands {
		d.Register(d.chartCommand(cc))
	}
	d.registerMarket()
	d.registerMisc()
	d.registerModeration()
	return d
}

// Register adds cmd under its name and aliases. Later registrations win.
func (d *Dispatcher) Register(cmd *Command) {
	for _, n := range append([]string{cmd.Name}, cmd.Aliases...) {
		n = strings.ToLower(n)
		if _, ok := d.commands[n]; !ok {
			d.names = append(d.names, n)
		}
		d.commands[n] = cmd
	}
}

// Lookup returns the command registered under name.
func (d *Dispatcher) Lookup(name string) (*Command, bool) {
	cmd, ok := d.commands[strings.ToLower(name)]
	return cmd, ok
}

// Names returns every registered name and alias in registration order.
func (d *Dispatcher) Names() []string {
	return append([]string(nil), d.names...)
}

// Handle runs inv if it names a known command. It reports whether a command ran.
// Errors never escape: they are logged, recorded and answered in the channel.
func (d *Dispatcher) Handle(ctx context.Context, p Platform, inv *Invocation) bool {
	cmd, ok := d.Lookup(inv.Name)
	if !ok {
		return false
	}
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if d.svc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.svc.Timeout)
		defer cancel()
	}

	l := d.log.With().Str("id", inv.ID).Str("command", inv.Name).Str("channel", inv.ChannelID).Logger()
	start := time.Now()
	l.Debug().Strs("args", inv.Args).Msg("command received")

	err := d.run(ctx, cmd, &Call{Inv: inv, Platform: p})
	outcome := d.report(ctx, l, p, inv, err)

	evt := &recorder.CommandEvent{
		ID:        inv.ID,
		Name:      cmd.Name,
		Args:      strings.Join(inv.Args, " "),
		ChannelID: inv.ChannelID,
		AuthorID:  inv.AuthorID,
		Outcome:   outcome,
		Duration:  time.Since(start),
		At:        start,
	}
	if rerr := d.svc.Recorder.RecordCommand(evt); rerr != nil {
		l.Warn().Err(rerr).Msg("record command")
	}
	return true
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.value) }

func (d *Dispatcher) run(ctx context.Context, cmd *Command, c *Call) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()

	if cmd.Perm != PermNone {
		ok, perr := c.Platform.HasPermission(ctx, c.Inv, cmd.Perm)
		if perr != nil {
			return fmt.Errorf("permission lookup: %w", perr)
		}
		if !ok {
			return ErrPermission
		}
	}
	if len(c.Inv.Args) < cmd.Args {
		return &ArgumentError{Command: cmd.Name, Reason: fmt.Sprintf("want %d argument(s), got %d", cmd.Args, len(c.Inv.Args))}
	}
	if cmd.Exact && len(c.Inv.Args) > cmd.Args {
		return &ArgumentError{Command: cmd.Name, Reason: fmt.Sprintf("want exactly %d argument(s), got %d", cmd.Args, len(c.Inv.Args))}
	}
	return cmd.Run(ctx, c)
}

// report answers err in the channel and classifies the outcome.
func (d *Dispatcher) report(ctx context.Context, l zerolog.Logger, p Platform, inv *Invocation, err error) string {
	send := func(text string) {
		if serr := p.Send(ctx, inv.ChannelID, text); serr != nil {
			l.Error().Err(serr).Msg("send reply")
		}
	}

	var argErr *ArgumentError
	var failure *Failure
	var upErr *collector.UpstreamError
	var pe *panicError

	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrPermission):
		l.Info().Str("author", inv.AuthorID).Msg("permission denied")
		send(PermissionMessage)
		send(PermissionHintMessage)
		return "denied"
	case errors.As(err, &argErr):
		l.Info().Err(err).Msg("bad arguments")
		send(MissingArgumentMessage)
		return "bad_args"
	case errors.As(err, &pe):
		l.Error().Interface("panic", pe.value).Bytes("stack", pe.stack).Msg("command panicked")
		send(ErrorMessage)
		return "panic"
	}

	if errors.As(err, &failure) && failure.Reply != "" {
		send(failure.Reply)
	}
	switch {
	case errors.Is(err, collector.ErrNoData):
		l.Info().Err(err).Msg("no data")
		return "no_data"
	case errors.As(err, &upErr):
		l.Error().Err(err).Str("provider", upErr.Provider).Msg("upstream error")
		return "upstream"
	case errors.Is(err, context.DeadlineExceeded):
		l.Error().Err(err).Dur("timeout", d.svc.Timeout).Msg("command timed out")
		return "timeout"
	default:
		l.Error().Err(err).Msg("command failed")
		return "error"
	}
}

func upper(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = strings.ToUpper(a)
	}
	return out
}
