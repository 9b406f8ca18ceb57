package command

import "strings"

func init() {
	Register(&Command{
		Sort:        34,
		Name:        "welcome",
		Category:    catAdmin,
		Description: "Toggle welcome messages (on|off)",
		Authority:   AuthorityGroupAdmin,
		GroupOnly:   true,
		Handler: func(c *Context) error {
			return toggle(c, "welcome", "Welcome", c.Store.SetWelcome)
		},
	})
	Register(&Command{
		Sort:        35,
		Name:        "antilink",
		Category:    catAdmin,
		Description: "Toggle link filtering (on|off)",
		Authority:   AuthorityGroupAdmin,
		GroupOnly:   true,
		Handler: func(c *Context) error {
			return toggle(c, "antilink", "Antilink", c.Store.SetAntilink)
		},
	})
}

func toggle(c *Context, name, label string, set func(group string, on bool) error) error {
	var on bool
	switch strings.ToLower(c.Args) {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return c.Reply("Use: " + c.Prefix + name + " on|off")
	}

	if err := set(c.Msg.Chat, on); err != nil {
		c.Log.Error().Err(err).Str("group", c.Msg.Chat).Str("setting", name).Msg("toggle not persisted")
	}
	state := "OFF"
	if on {
		state = "ON"
	}
	return c.Reply(label + " is now *" + state + "*")
}
