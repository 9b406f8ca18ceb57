package command

const genericErrorText = "⚠️ Error while processing command. Please try again later."

// Dispatch routes an invocation to its handler, enforcing group-only and
// authority requirements first. Every branch replies or performs a side
// effect; nothing is dropped silently. A failing handler, or a panic anywhere
// in routing, is contained here so one bad event never takes down the session.
func Dispatch(c *Context) {
	defer func() {
		if r := recover(); r != nil {
			c.Log.Error().Interface("panic", r).Str("command", c.Invoked).Msg("command dispatch panicked")
			_ = c.Reply(genericErrorText)
		}
	}()

	cmd, ok := Get(c.Invoked)
	if !ok {
		_ = c.Reply("❓ Unknown command: " + c.Prefix + c.Invoked + "\nTry " + c.Prefix + "help for available commands.")
		return
	}

	if cmd.GroupOnly && !c.Msg.IsGroup {
		_ = c.Reply("Group only.")
		return
	}

	switch cmd.Authority {
	case AuthorityOwner:
		if !c.Perms.OwnerConfigured() {
			_ = c.Reply("Owner not set. Set BOT_OWNER env var.")
			return
		}
		if !c.Perms.IsOwner(c.Msg.Sender) {
			_ = c.Reply("Owner only.")
			return
		}
	case AuthorityGroupAdmin:
		auth := c.Perms.ResolveGroupAuthority(c.Ctx, c.Msg.Chat, c.Msg.Sender)
		if !auth.BotIsAdmin {
			_ = c.Reply("I need to be admin.")
			return
		}
		if !auth.SenderIsAdmin && !c.Perms.IsOwner(c.Msg.Sender) {
			_ = c.Reply("Admins only.")
			return
		}
	}

	if err := cmd.Handler(c); err != nil {
		c.Log.Error().Err(err).Str("command", cmd.Name).Str("sender", c.Msg.Sender).Msg("command failed")
		_ = c.Reply(genericErrorText)
	}
}
