package command

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

func init() {
	Register(&Command{
		Sort:        50,
		Name:        "setprefix",
		Category:    catOwner,
		Description: "Change the command prefix",
		Authority:   AuthorityOwner,
		Handler: func(c *Context) error {
			if c.Args == "" {
				return c.Reply("Usage: " + c.Prefix + "setprefix <prefix>")
			}
			if err := c.Store.SetPrefix(c.Args); err != nil {
				return fmt.Errorf("set prefix: %w", err)
			}
			return c.Reply("✅ Prefix set to: " + c.Args)
		},
	})
	Register(&Command{
		Sort:        51,
		Name:        "broadcast",
		Category:    catOwner,
		Description: "Send a message to every group",
		Authority:   AuthorityOwner,
		Handler:     broadcastHandler,
	})
	Register(&Command{
		Sort:        52,
		Name:        "shutdown",
		Category:    catOwner,
		Description: "Stop the bot",
		Authority:   AuthorityOwner,
		Handler: func(c *Context) error {
			if err := c.Reply("Shutting down..."); err != nil {
				return err
			}
			PublishSystemEvent(SystemEvent{Type: SystemEventShutdown, By: c.Msg.Sender})
			return nil
		},
	})
	Register(&Command{
		Sort:        53,
		Name:        "restart",
		Category:    catOwner,
		Description: "Restart the bot",
		Authority:   AuthorityOwner,
		Handler: func(c *Context) error {
			if err := c.Reply("Restarting..."); err != nil {
				return err
			}
			PublishSystemEvent(SystemEvent{Type: SystemEventRestart, By: c.Msg.Sender})
			return nil
		},
	})
}

// Pacing between per-group sends so a broadcast never looks like spam to the
// server.
var broadcastLimiter = rate.NewLimiter(rate.Every(300*time.Millisecond), 1)

func broadcastHandler(c *Context) error {
	if c.Args == "" {
		return c.Reply("Usage: " + c.Prefix + "broadcast <message>")
	}

	groups, err := c.Client.ListGroups(c.Ctx)
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}

	text := "📢 *Broadcast:*\n" + c.Args
	sent := 0
	for _, group := range groups {
		if err := broadcastLimiter.Wait(c.Ctx); err != nil {
			return err
		}
		if err := c.Client.SendText(c.Ctx, group, text, nil); err != nil {
			c.Log.Error().Err(err).Str("group", group).Msg("broadcast send failed")
			continue
		}
		sent++
	}
	return c.Reply(fmt.Sprintf("✅ Broadcast sent to %d group(s).", sent))
}
