// Package permissions resolves who may run what: the configured bot owner,
// and group admin status reported by the transport.
package permissions

import (
	"context"

	"github.com/rs/zerolog"

	"whatsbot/internal/transport"
)

// Authority is the result of a group metadata lookup. Both flags are false
// when the lookup fails: permission checks fail closed.
type Authority struct {
	BotIsAdmin    bool
	SenderIsAdmin bool
}

// Resolver answers owner and admin questions for the engine.
type Resolver struct {
	Client   transport.Client
	OwnerJID string
	Log      zerolog.Logger
}

// OwnerConfigured reports whether an owner identifier was supplied at startup.
func (r *Resolver) OwnerConfigured() bool {
	return r.OwnerJID != ""
}

// IsOwner reports whether sender is the configured owner. With no owner
// configured this is always false.
func (r *Resolver) IsOwner(sender string) bool {
	if r.OwnerJID == "" {
		return false
	}
	return transport.Normalize(sender) == transport.Normalize(r.OwnerJID)
}

// ResolveGroupAuthority fetches group metadata and reports admin status for
// the bot itself and for sender. "admin" and "superadmin" roles are
// equivalent. A failed metadata fetch yields no authority at all.
func (r *Resolver) ResolveGroupAuthority(ctx context.Context, group, sender string) Authority {
	meta, err := r.Client.GroupMetadata(ctx, group)
	if err != nil {
		r.Log.Warn().Err(err).Str("group", group).Msg("group metadata unavailable, denying authority")
		return Authority{}
	}

	me := transport.Normalize(r.Client.Self())
	who := transport.Normalize(sender)

	var auth Authority
	for _, p := range meta.Participants {
		admin := p.IsAdmin || p.IsSuperAdmin
		switch transport.Normalize(p.JID) {
		case me:
			auth.BotIsAdmin = admin
		case who:
			auth.SenderIsAdmin = admin
		}
	}
	return auth
}
