package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"whatsbot/internal/storage"
	"whatsbot/internal/transport"
	"whatsbot/pkg/jobmgr"
)

// Muter drives a group's mute state: announcement-only now, back to open when
// the timer fires. Schedules are persisted in the store and reconciled at
// startup, and a group has at most one pending timer; re-muting replaces it.
type Muter struct {
	Client transport.Client
	Store  *storage.Storage
	Jobs   *jobmgr.Manager
	Log    zerolog.Logger
}

// NewMuter creates a Muter with its own job manager.
func NewMuter(client transport.Client, store *storage.Storage, log zerolog.Logger) *Muter {
	return &Muter{
		Client: client,
		Store:  store,
		Jobs: jobmgr.NewManager(func(msg string) {
			log.Debug().Str("job", msg).Msg("mute scheduler")
		}),
		Log: log,
	}
}

// Mute switches the group to announcement-only for d, persisting the schedule
// before the caller acknowledges anything in chat.
func (m *Muter) Mute(ctx context.Context, group string, d time.Duration) error {
	if err := m.Client.SetGroupAnnounce(ctx, group, true); err != nil {
		return fmt.Errorf("set announcement mode: %w", err)
	}
	if err := m.Store.SetMute(group, time.Now().Add(d)); err != nil {
		// The group is muted either way; the schedule just won't survive a
		// restart. Already logged by the store.
		m.Log.Warn().Str("group", group).Msg("mute schedule not persisted")
	}
	m.schedule(group, d)
	return nil
}

// Reconcile replays persisted schedules after a restart: expired mutes are
// lifted immediately, pending ones get their timer re-armed.
func (m *Muter) Reconcile(ctx context.Context) {
	for _, sched := range m.Store.Mutes() {
		remaining := time.Until(sched.ExpiresAt)
		if remaining <= 0 {
			m.Log.Info().Str("group", sched.GroupJID).Msg("mute expired during downtime, unmuting now")
			m.unmute(sched.GroupJID)
			continue
		}
		m.Log.Info().Str("group", sched.GroupJID).Dur("remaining", remaining).Msg("re-arming mute timer")
		m.schedule(sched.GroupJID, remaining)
	}
}

// Shutdown cancels all pending timers. Schedules stay persisted for the next
// start.
func (m *Muter) Shutdown() {
	m.Jobs.StopAll()
}

func (m *Muter) schedule(group string, d time.Duration) {
	err := m.Jobs.Replace("unmute:"+group, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(d):
		}
		m.unmute(group)
		return nil
	})
	if err != nil {
		m.Log.Error().Err(err).Str("group", group).Msg("scheduling unmute failed")
	}
}

// unmute restores the open send policy, best effort: a failed restore (the
// bot may have lost admin) is logged and not retried, so the group stays
// admin-only until corrected by hand. The schedule is cleared either way.
func (m *Muter) unmute(group string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := m.Client.SetGroupAnnounce(ctx, group, false); err != nil {
		m.Log.Error().Err(err).Str("group", group).Msg("unmute restore failed, group left muted")
	} else if err := m.Client.SendText(ctx, group, "🔊 Group unmuted.", nil); err != nil {
		m.Log.Error().Err(err).Str("group", group).Msg("unmute notice failed")
	}

	if err := m.Store.ClearMute(group); err != nil {
		m.Log.Error().Err(err).Str("group", group).Msg("clearing mute schedule failed")
	}
}
