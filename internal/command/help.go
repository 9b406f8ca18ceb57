package command

import (
	"fmt"
	"strings"

	"whatsbot/internal/version"
)

func init() {
	Register(&Command{
		Sort:        10,
		Name:        "help",
		Aliases:     []string{"menu"},
		Category:    catCore,
		Description: "Show this help menu",
		Handler:     helpHandler,
	})
}

func helpHandler(c *Context) error {
	var b strings.Builder
	fmt.Fprintf(&b, "🧭 *%s help* (prefix: %s)\n", version.AppName, c.Prefix)

	category := ""
	for _, cmd := range All() {
		if cmd.Category != category {
			category = cmd.Category
			fmt.Fprintf(&b, "\n*%s*\n", category)
		}
		names := c.Prefix + cmd.Name
		for _, alias := range cmd.Aliases {
			names += " | " + c.Prefix + alias
		}
		fmt.Fprintf(&b, "%s - %s\n", names, cmd.Description)
	}

	return c.Send(strings.TrimSpace(b.String()))
}
