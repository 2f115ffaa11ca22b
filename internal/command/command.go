// Package command parses chat messages into invocations and runs the bot's
// commands against the market-data, chart and chat services.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	NoDataMessage          = "No data returned; the market is probably closed right now!"
	MissingArgumentMessage = "You seem to be missing a required argument."
	PermissionMessage      = "You do not have permission to do that."
	PermissionHintMessage  = "Please consult the server owner if you think this is an error."
	ErrorMessage           = "Something went wrong running that command!"
)

// ErrPermission is returned when the author lacks the command's permission.
var ErrPermission = errors.New("missing permission")

// ErrUnsupported is returned by platforms that cannot perform an action.
var ErrUnsupported = errors.New("not supported on this platform")

// ArgumentError reports a malformed or incomplete argument list.
type ArgumentError struct {
	Command string
	Reason  string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Reason)
}

// Failure is a handler error paired with the text shown to the user.
type Failure struct {
	Reply string
	Err   error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Reply
	}
	return f.Err.Error()
}

func (f *Failure) Unwrap() error { return f.Err }

func fail(reply string, err error) error {
	return &Failure{Reply: reply, Err: err}
}

// Permission is a guild permission a command may require.
type Permission int

const (
	PermNone Permission = iota
	PermManageMessages
	PermKickMembers
	PermBanMembers
	PermAdministrator
)

func (p Permission) String() string {
	switch p {
	case PermManageMessages:
		return "manage_messages"
	case PermKickMembers:
		return "kick_members"
	case PermBanMembers:
		return "ban_members"
	case PermAdministrator:
		return "administrator"
	default:
		return "none"
	}
}

// Invocation is one parsed command message.
type Invocation struct {
	ID        string
	Name      string
	Args      []string
	Rest      string // everything after the command name, trimmed
	GuildID   string
	ChannelID string
	AuthorID  string
}

// Parse splits content into an invocation when it starts with prefix.
// Names are case-insensitive; arguments are whitespace separated.
func Parse(prefix, content string) (*Invocation, bool) {
	if !strings.HasPrefix(content, prefix) {
		return nil, false
	}
	body := strings.TrimPrefix(content, prefix)
	fields := strings.Fields(body)
	if len(fields) == 0 || strings.HasPrefix(body, " ") {
		return nil, false
	}
	name := fields[0]
	rest := strings.TrimSpace(strings.TrimPrefix(body, name))
	return &Invocation{
		Name: strings.ToLower(name),
		Args: fields[1:],
		Rest: rest,
	}, true
}

// Platform is the chat surface commands act on.
type Platform interface {
	Send(ctx context.Context, channelID, text string) error
	SendFile(ctx context.Context, channelID, name string, r io.Reader) error
	SendDM(ctx context.Context, userID, text string) error
	HasPermission(ctx context.Context, inv *Invocation, perm Permission) (bool, error)
	Purge(ctx context.Context, channelID string, n int) error
	Kick(ctx context.Context, guildID, userID, reason string) error
	Ban(ctx context.Context, guildID, userID, reason string) error
	// Unban lifts the ban matching name and discriminator and returns the
	// user's mention, or found=false when no ban matches.
	Unban(ctx context.Context, guildID, name, discriminator string) (mention string, found bool, err error)
	Latency() time.Duration
}

// Mention formats a user id as a chat mention.
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// UserID extracts the id from a mention such as <@123> or <@!123>, or
// returns a bare numeric id unchanged.
func UserID(arg string) (string, bool) {
	s := strings.TrimSpace(arg)
	if strings.HasPrefix(s, "<@") && strings.HasSuffix(s, ">") {
		s = strings.TrimPrefix(strings.TrimSuffix(s[2:], ">"), "!")
	}
	if s == "" {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return s, true
}
