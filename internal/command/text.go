package command

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"
)

// TextReply runs a text-only command from a non-Discord source and returns
// everything it would have posted, joined by newlines. Other input yields "".
func (d *Dispatcher) TextReply(ctx context.Context, content string) string {
	inv, ok := Parse(d.Prefix, content)
	if !ok {
		return ""
	}
	cmd, ok := d.Lookup(inv.Name)
	if !ok || !cmd.Text {
		return ""
	}
	inv.ChannelID = "text"
	p := &textPlatform{}
	d.Handle(ctx, p, inv)
	return p.String()
}

// textPlatform buffers sent text and refuses everything else.
type textPlatform struct {
	mu  sync.Mutex
	out []string
}

func (t *textPlatform) Send(_ context.Context, _ string, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.out = append(t.out, text)
	return nil
}

func (t *textPlatform) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.out, "\n")
}

func (t *textPlatform) SendFile(context.Context, string, string, io.Reader) error {
	return ErrUnsupported
}

func (t *textPlatform) SendDM(context.Context, string, string) error { return ErrUnsupported }

func (t *textPlatform) HasPermission(context.Context, *Invocation, Permission) (bool, error) {
	return false, nil
}

func (t *textPlatform) Purge(context.Context, string, int) error { return ErrUnsupported }

func (t *textPlatform) Kick(context.Context, string, string, string) error { return ErrUnsupported }

func (t *textPlatform) Ban(context.Context, string, string, string) error { return ErrUnsupported }

func (t *textPlatform) Unban(context.Context, string, string, string) (string, bool, error) {
	return "", false, ErrUnsupported
}

func (t *textPlatform) Latency() time.Duration { return 0 }
