package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const ClearRangeMessage = "You must enter a number between 1-10."

func (d *Dispatcher) registerModeration() {
	d.Register(&Command{Name: "clear", Args: 1, Perm: PermManageMessages, Run: d.clear})
	d.Register(&Command{Name: "kick", Args: 1, Perm: PermKickMembers, Run: d.kick})
	d.Register(&Command{Name: "ban", Args: 1, Perm: PermBanMembers, Run: d.ban})
	d.Register(&Command{Name: "unban", Args: 1, Perm: PermBanMembers, Run: d.unban})
}

// clear purges the requested messages plus the command message itself.
func (d *Dispatcher) clear(ctx context.Context, c *Call) error {
	n, err := strconv.Atoi(c.Inv.Args[0])
	if err != nil {
		return &ArgumentError{Command: "clear", Reason: fmt.Sprintf("bad amount %q", c.Inv.Args[0])}
	}
	if n < 1 || n > 10 {
		return c.Reply(ctx, ClearRangeMessage)
	}
	return c.Platform.Purge(ctx, c.Inv.ChannelID, n+1)
}

func (d *Dispatcher) kick(ctx context.Context, c *Call) error {
	userID, reason, err := memberArgs(c.Inv)
	if err != nil {
		return err
	}
	if err := c.Platform.Kick(ctx, c.Inv.GuildID, userID, reason); err != nil {
		return fmt.Errorf("kick %s: %w", userID, err)
	}
	return c.Reply(ctx, fmt.Sprintf("Kicked %s.", Mention(userID)))
}

func (d *Dispatcher) ban(ctx context.Context, c *Call) error {
	userID, reason, err := memberArgs(c.Inv)
	if err != nil {
		return err
	}
	if err := c.Platform.Ban(ctx, c.Inv.GuildID, userID, reason); err != nil {
		return fmt.Errorf("ban %s: %w", userID, err)
	}
	return c.Reply(ctx, fmt.Sprintf("Banned %s.", Mention(userID)))
}

// unban takes name#discriminator; a bare name matches accounts without a
// legacy discriminator.
func (d *Dispatcher) unban(ctx context.Context, c *Call) error {
	name, disc, ok := strings.Cut(c.Inv.Rest, "#")
	if !ok {
		disc = "0"
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return &ArgumentError{Command: "unban", Reason: "empty user name"}
	}
	mention, found, err := c.Platform.Unban(ctx, c.Inv.GuildID, name, strings.TrimSpace(disc))
	if err != nil {
		return fmt.Errorf("unban %s: %w", c.Inv.Rest, err)
	}
	if !found {
		return nil
	}
	return c.Reply(ctx, fmt.Sprintf("Unbanned %s.", mention))
}

func memberArgs(inv *Invocation) (userID, reason string, err error) {
	userID, ok := UserID(inv.Args[0])
	if !ok {
		return "", "", &ArgumentError{Command: inv.Name, Reason: fmt.Sprintf("%q is not a member", inv.Args[0])}
	}
	return userID, strings.Join(inv.Args[1:], " "), nil
}
