// Package chat connects the command dispatcher and the scheduled
// announcements to a Discord session.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"StonkBot/internal/command"
)

const ReadyMessage = ":robot: Stonk Bot is ready to maximize your gains! :robot:"

// Intents are the gateway intents the bot identifies with.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

// maxBans bounds one GuildBans page.
const maxBans = 1000

// Session is the part of *discordgo.Session the bot uses.
type Session interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelFileSend(channelID, name string, r io.Reader, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	UserChannelPermissions(userID, channelID string, options ...discordgo.RequestOption) (int64, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error
	GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	GuildBans(guildID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.GuildBan, error)
	GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error
	HeartbeatLatency() time.Duration
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

// Bot adapts a Discord session to command.Platform, scheduler.Poster and
// scheduler.PresenceSetter, and routes gateway events.
type Bot struct {
	Session            Session
	Dispatcher         *command.Dispatcher
	MainChannelID      string
	AlternateChannelID string
	// OnReady runs once, after the first Ready event.
	OnReady func()

	ctx       context.Context
	readyOnce sync.Once
	log       zerolog.Logger
}

// NewBot creates a Bot. Commands run under ctx.
func NewBot(ctx context.Context, s Session, d *command.Dispatcher, mainChannel, altChannel string) *Bot {
	if altChannel == "" {
		altChannel = mainChannel
	}
	return &Bot{
		Session:            s,
		Dispatcher:         d,
		MainChannelID:      mainChannel,
		AlternateChannelID: altChannel,
		ctx:                ctx,
		log:                log.With().Str("component", "discord").Logger(),
	}
}

// Open creates a session for token with the bot's intents and handlers
// attached, and connects it.
func Open(token string, b *Bot) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.Identify.Intents = Intents
	if b.Session == nil {
		b.Session = s
	}
	b.Attach(s)
	if err := s.Open(); err != nil {
		return nil, fmt.Errorf("open gateway: %w", err)
	}
	return s, nil
}

// Attach registers the bot's event handlers on s.
func (b *Bot) Attach(s *discordgo.Session) {
	s.AddHandler(b.handleReady)
	s.AddHandler(b.handleMessage)
	s.AddHandler(b.handleMemberAdd)
	s.AddHandler(b.handleMemberRemove)
}

func (b *Bot) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.readyOnce.Do(func() {
		if r != nil && r.User != nil {
			b.log.Info().Str("user", r.User.String()).Int("guilds", len(r.Guilds)).Msg("connected")
		}
		if err := b.Send(b.ctx, b.AlternateChannelID, ReadyMessage); err != nil {
			b.log.Error().Err(err).Msg("post ready message")
		}
		if b.OnReady != nil {
			b.OnReady()
		}
	})
}

func (b *Bot) handleMessage(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil || m.Author == nil || m.Author.Bot {
		return
	}
	inv, ok := command.Parse(b.Dispatcher.Prefix, m.Content)
	if !ok {
		return
	}
	inv.ID = m.ID
	inv.GuildID = m.GuildID
	inv.ChannelID = m.ChannelID
	inv.AuthorID = m.Author.ID
	if !b.Dispatcher.Handle(b.ctx, b, inv) {
		b.log.Debug().Str("command", inv.Name).Msg("unknown command")
	}
}

func (b *Bot) handleMemberAdd(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m == nil || m.Member == nil || m.User == nil {
		return
	}
	if err := b.Send(b.ctx, b.MainChannelID, m.User.String()+" has joined the server"); err != nil {
		b.log.Error().Err(err).Msg("post join notice")
	}
}

func (b *Bot) handleMemberRemove(_ *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m == nil || m.Member == nil || m.User == nil {
		return
	}
	if err := b.Send(b.ctx, b.MainChannelID, m.User.String()+" has left the server"); err != nil {
		b.log.Error().Err(err).Msg("post leave notice")
	}
}

func (b *Bot) Send(ctx context.Context, channelID, text string) error {
	if _, err := b.Session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send to %s: %w", channelID, err)
	}
	return nil
}

func (b *Bot) SendFile(ctx context.Context, channelID, name string, r io.Reader) error {
	if _, err := b.Session.ChannelFileSend(channelID, name, r, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("upload %s to %s: %w", name, channelID, err)
	}
	return nil
}

func (b *Bot) SendDM(ctx context.Context, userID, text string) error {
	ch, err := b.Session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open DM with %s: %w", userID, err)
	}
	return b.Send(ctx, ch.ID, text)
}

var permissionBits = map[command.Permission]int64{
	command.PermManageMessages: discordgo.PermissionManageMessages,
	command.PermKickMembers:    discordgo.PermissionKickMembers,
	command.PermBanMembers:     discordgo.PermissionBanMembers,
	command.PermAdministrator:  discordgo.PermissionAdministrator,
}

// HasPermission checks the author's effective permissions in the invoking
// channel. Direct messages carry no guild permissions.
func (b *Bot) HasPermission(ctx context.Context, inv *command.Invocation, perm command.Permission) (bool, error) {
	if perm == command.PermNone {
		return true, nil
	}
	if inv.GuildID == "" {
		return false, nil
	}
	perms, err := b.Session.UserChannelPermissions(inv.AuthorID, inv.ChannelID, discordgo.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("permissions of %s: %w", inv.AuthorID, err)
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return true, nil
	}
	return perms&permissionBits[perm] != 0, nil
}

// Purge deletes the n most recent messages in channelID.
func (b *Bot) Purge(ctx context.Context, channelID string, n int) error {
	msgs, err := b.Session.ChannelMessages(channelID, n, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("list messages: %w", denied(err))
	}
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	if err := b.Session.ChannelMessagesBulkDelete(channelID, ids, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete %d messages: %w", len(ids), denied(err))
	}
	b.log.Info().Str("channel", channelID).Int("count", len(ids)).Msg("purged messages")
	return nil
}

func (b *Bot) Kick(ctx context.Context, guildID, userID, reason string) error {
	return denied(b.Session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx)))
}

func (b *Bot) Ban(ctx context.Context, guildID, userID, reason string) error {
	return denied(b.Session.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx)))
}

// Unban lifts the ban whose user matches name and discriminator.
func (b *Bot) Unban(ctx context.Context, guildID, name, discriminator string) (string, bool, error) {
	bans, err := b.Session.GuildBans(guildID, maxBans, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return "", false, fmt.Errorf("list bans: %w", denied(err))
	}
	for _, ban := range bans {
		u := ban.User
		if u == nil || u.Username != name || u.Discriminator != discriminator {
			continue
		}
		if err := b.Session.GuildBanDelete(guildID, u.ID, discordgo.WithContext(ctx)); err != nil {
			return "", false, fmt.Errorf("unban %s: %w", u.ID, denied(err))
		}
		return u.Mention(), true, nil
	}
	return "", false, nil
}

// denied marks a 403 from Discord as command.ErrPermission, which covers the
// bot's own role lacking the permission.
func denied(err error) error {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %w", command.ErrPermission, err)
	}
	return err
}

func (b *Bot) Latency() time.Duration {
	return b.Session.HeartbeatLatency()
}

// Announce posts a scheduled notice to the main channel.
func (b *Bot) Announce(ctx context.Context, text string) error {
	return b.Send(ctx, b.MainChannelID, text)
}

// SetPresence shows activity as the bot's game with an idle status.
func (b *Bot) SetPresence(activity string) error {
	return b.Session.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: string(discordgo.StatusIdle),
		Activities: []*discordgo.Activity{{
			Name: activity,
			Type: discordgo.ActivityTypeGame,
		}},
	})
}
