// Package moderation owns the per-group protection checks and the timed
// mute lifecycle. Protection checks run on every inbound event, independent
// of the command prefix, and never block command dispatch.
package moderation

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"whatsbot/internal/permissions"
	"whatsbot/internal/storage"
	"whatsbot/internal/transport"
)

var linkRegexp = regexp.MustCompile(`(?i)https?://`)

// Guard runs the welcome and antilink flows.
type Guard struct {
	Client transport.Client
	Store  *storage.Storage
	Perms  *permissions.Resolver
	Log    zerolog.Logger
}

// CheckMessage enforces antilink on a group message. Admins are always
// exempt; offenders get their message deleted and one warning. Failures are
// logged and swallowed so a protection hiccup never takes down the event.
func (g *Guard) CheckMessage(ctx context.Context, m *transport.Message) {
	if !m.IsGroup || m.Text == "" {
		return
	}
	if !g.Store.GroupConfig(m.Chat).Antilink {
		return
	}
	if !linkRegexp.MatchString(m.Text) {
		return
	}

	auth := g.Perms.ResolveGroupAuthority(ctx, m.Chat, m.Sender)
	if auth.SenderIsAdmin {
		return
	}

	if err := g.Client.DeleteMessage(ctx, m.Ref); err != nil {
		g.Log.Error().Err(err).Str("group", m.Chat).Msg("antilink delete failed")
		return
	}
	if err := g.Client.SendText(ctx, m.Chat, "🚫 Links are not allowed here.", nil); err != nil {
		g.Log.Error().Err(err).Str("group", m.Chat).Msg("antilink warning failed")
	}
}

// HandleParticipantsAdded greets newly added members, once per add event,
// when the group has welcome enabled.
func (g *Guard) HandleParticipantsAdded(ctx context.Context, ev *transport.ParticipantsAdded) {
	if len(ev.Joined) == 0 {
		return
	}
	if !g.Store.GroupConfig(ev.Group).Welcome {
		return
	}

	names := make([]string, len(ev.Joined))
	for i, jid := range ev.Joined {
		names[i] = "@" + transport.ShortUser(jid)
	}
	text := "👋 Welcome " + strings.Join(names, ", ") + "!"

	opts := &transport.SendOpts{Mentions: ev.Joined}
	if err := g.Client.SendText(ctx, ev.Group, text, opts); err != nil {
		g.Log.Error().Err(err).Str("group", ev.Group).Msg("welcome message failed")
	}
}
