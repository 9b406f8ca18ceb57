// Package bot glues the transport's event stream to the command dispatcher
// and the moderation guard. It owns no state of its own; everything lives in
// the injected collaborators.
package bot

import (
	"context"

	"github.com/rs/zerolog"

	"whatsbot/internal/command"
	"whatsbot/internal/content"
	"whatsbot/internal/moderation"
	"whatsbot/internal/permissions"
	"whatsbot/internal/storage"
	"whatsbot/internal/transport"
)

// Engine handles inbound events.
type Engine struct {
	Client  transport.Client
	Store   *storage.Storage
	Content *content.Registry
	Muter   *moderation.Muter
	Guard   *moderation.Guard
	Perms   *permissions.Resolver
	Log     zerolog.Logger
}

// New wires an engine around a transport client.
func New(client transport.Client, store *storage.Storage, reg *content.Registry, ownerJID string, log zerolog.Logger) *Engine {
	perms := &permissions.Resolver{Client: client, OwnerJID: ownerJID, Log: log}
	return &Engine{
		Client:  client,
		Store:   store,
		Content: reg,
		Muter:   moderation.NewMuter(client, store, log),
		Guard:   &moderation.Guard{Client: client, Store: store, Perms: perms, Log: log},
		Perms:   perms,
		Log:     log,
	}
}

// HandleMessage runs the protection checks and, when the text carries the
// command prefix, dispatches. The bot's own messages skip the protection
// checks but still dispatch, so commands typed from the bot's account work
// (deleting its own messages relies on this). Replies never start with the
// prefix, so they cannot re-trigger dispatch.
func (e *Engine) HandleMessage(ctx context.Context, m *transport.Message) {
	if !m.FromSelf {
		e.Guard.CheckMessage(ctx, m)
	}

	prefix := e.Store.Prefix()
	invoked, args, ok := command.Parse(m.Text, prefix)
	if !ok {
		return
	}

	e.Log.Debug().Str("command", invoked).Str("sender", m.Sender).Str("chat", m.Chat).Msg("dispatching")
	command.Dispatch(&command.Context{
		Ctx:     ctx,
		Client:  e.Client,
		Store:   e.Store,
		Content: e.Content,
		Muter:   e.Muter,
		Perms:   e.Perms,
		Log:     e.Log,
		Msg:     m,
		Invoked: invoked,
		Args:    args,
		Prefix:  prefix,
	})
}

// HandleParticipantsAdded forwards group join events to the guard.
func (e *Engine) HandleParticipantsAdded(ctx context.Context, ev *transport.ParticipantsAdded) {
	e.Guard.HandleParticipantsAdded(ctx, ev)
}

// Reconcile replays persisted mute schedules. Call once after connecting.
func (e *Engine) Reconcile(ctx context.Context) {
	e.Muter.Reconcile(ctx)
}

// Shutdown stops pending timers.
func (e *Engine) Shutdown() {
	e.Muter.Shutdown()
}
