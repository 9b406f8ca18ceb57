package command

import (
	"fmt"
	"strings"

	"whatsbot/internal/transport"
)

func init() {
	Register(&Command{
		Sort:        11,
		Name:        "tag",
		Aliases:     []string{"tagall"},
		Category:    catCore,
		Description: "Mention everyone in the group",
		GroupOnly:   true,
		Handler:     tagHandler,
	})
}

func tagHandler(c *Context) error {
	meta, err := c.Client.GroupMetadata(c.Ctx, c.Msg.Chat)
	if err != nil {
		return fmt.Errorf("fetch group metadata: %w", err)
	}

	mentions := make([]string, len(meta.Participants))
	names := make([]string, len(meta.Participants))
	for i, p := range meta.Participants {
		mentions[i] = p.JID
		names[i] = "@" + transport.ShortUser(p.JID)
	}

	text := "📢 " + strings.Join(names, " ")
	return c.Client.SendText(c.Ctx, c.Msg.Chat, text, &transport.SendOpts{Mentions: mentions})
}
