package command

import (
	"context"

	"github.com/rs/zerolog"

	"whatsbot/internal/content"
	"whatsbot/internal/moderation"
	"whatsbot/internal/permissions"
	"whatsbot/internal/storage"
	"whatsbot/internal/transport"
)

// Context is everything a handler gets: the triggering message, parsed
// arguments, and the engine's injected collaborators. Handlers hold no global
// state; the store boundary is the only mutation point.
type Context struct {
	Ctx     context.Context
	Client  transport.Client
	Store   *storage.Storage
	Content *content.Registry
	Muter   *moderation.Muter
	Perms   *permissions.Resolver
	Log     zerolog.Logger

	Msg *transport.Message
	// Invoked is the command token as typed (lowercased), which may be an
	// alias of the matched command.
	Invoked string
	Args    string
	Prefix  string
}

// Reply sends text to the chat, quoting the triggering message.
func (c *Context) Reply(text string) error {
	return c.Client.SendText(c.Ctx, c.Msg.Chat, text, &transport.SendOpts{Quoted: &c.Msg.Ref})
}

// Send sends text to the chat without quoting.
func (c *Context) Send(text string) error {
	return c.Client.SendText(c.Ctx, c.Msg.Chat, text, nil)
}
