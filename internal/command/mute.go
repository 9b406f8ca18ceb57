package command

import (
	"fmt"
	"strconv"
	"time"
)

func init() {
	Register(&Command{
		Sort:        36,
		Name:        "mute",
		Category:    catAdmin,
		Description: "Mute the group for N minutes",
		Authority:   AuthorityGroupAdmin,
		GroupOnly:   true,
		Handler: func(c *Context) error {
			minutes, err := strconv.Atoi(c.Args)
			if err != nil || minutes <= 0 {
				return c.Reply("Usage: " + c.Prefix + "mute <minutes>")
			}
			if err := c.Muter.Mute(c.Ctx, c.Msg.Chat, time.Duration(minutes)*time.Minute); err != nil {
				return fmt.Errorf("mute group: %w", err)
			}
			return c.Reply(fmt.Sprintf("🔇 Group muted for %d minute(s).", minutes))
		},
	})
}
