// Package storage is the typed view over the bot's persisted state: per-group
// moderation config, the active command prefix, ban records, and pending mute
// schedules. It is the single source of truth for all of them; every mutation
// is flushed to disk before the caller acknowledges anything in chat.
package storage

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"whatsbot/datastore"
)

const (
	keyGroups = "groups"
	keyBans   = "bans"
	keyPrefix = "prefix"
	keyMutes  = "mutes"
)

// GroupConfig holds the per-group moderation toggles. The zero value is the
// implicit default for a group that was never configured.
type GroupConfig struct {
	Welcome  bool `json:"welcome"`
	Antilink bool `json:"antilink"`
}

// MuteSchedule is a pending timed unmute, persisted so a restart can pick the
// timer back up.
type MuteSchedule struct {
	GroupJID  string    `json:"group_jid"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Storage wraps the datastore with typed accessors. A single mutex serializes
// every read-mutate-persist sequence so racing commands on the same group
// cannot lose updates.
type Storage struct {
	mu  sync.Mutex
	ds  *datastore.DataStore
	log zerolog.Logger
}

// New opens (or creates) the store file. A missing prefix is initialized to
// defaultPrefix; a prefix already on disk wins over it.
func New(filePath, defaultPrefix string, log zerolog.Logger) (*Storage, error) {
	ds, err := datastore.NewWithConfig(&datastore.Config{
		FilePath:    filePath,
		BackupCount: 3,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	s := &Storage{ds: ds, log: log}
	if _, ok := ds.Get(keyPrefix); !ok {
		ds.Set(keyPrefix, defaultPrefix)
	}
	if _, ok := ds.Get(keyBans); !ok {
		ds.Set(keyBans, map[string]string{})
	}
	if err := ds.Save(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close flushes the store a final time.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds.Close()
}

// Prefix returns the active command prefix.
func (s *Storage) Prefix() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.ds.Get(keyPrefix); ok {
		if p, ok := v.(string); ok && p != "" {
			return p
		}
	}
	return "."
}

// SetPrefix changes the active command prefix.
func (s *Storage) SetPrefix(prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds.Set(keyPrefix, prefix)
	return s.save()
}

// GroupConfig returns the config for a group. A group never configured yields
// the defaults; absence and defaults are indistinguishable.
func (s *Storage) GroupConfig(groupJID string) GroupConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups()[groupJID]
}

// SetWelcome toggles welcome messages for a group.
func (s *Storage) SetWelcome(groupJID string, on bool) error {
	return s.updateGroup(groupJID, func(cfg *GroupConfig) { cfg.Welcome = on })
}

// SetAntilink toggles link protection for a group.
func (s *Storage) SetAntilink(groupJID string, on bool) error {
	return s.updateGroup(groupJID, func(cfg *GroupConfig) { cfg.Antilink = on })
}

// Mutes returns every persisted mute schedule.
func (s *Storage) Mutes() []MuteSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []MuteSchedule
	for _, m := range s.mutes() {
		out = append(out, m)
	}
	return out
}

// SetMute records the pending unmute time for a group, replacing any earlier
// schedule for the same group.
func (s *Storage) SetMute(groupJID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutes := s.mutes()
	mutes[groupJID] = MuteSchedule{GroupJID: groupJID, ExpiresAt: expiresAt}
	s.ds.Set(keyMutes, mutes)
	return s.save()
}

// ClearMute removes the pending schedule for a group, if any.
func (s *Storage) ClearMute(groupJID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutes := s.mutes()
	if _, ok := mutes[groupJID]; !ok {
		return nil
	}
	delete(mutes, groupJID)
	s.ds.Set(keyMutes, mutes)
	return s.save()
}

// Bans returns the persisted ban records. Reserved: no command populates this
// yet, the shape is carried so existing store files round-trip.
func (s *Storage) Bans() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	bans := map[string]string{}
	s.decode(keyBans, &bans)
	return bans
}

func (s *Storage) updateGroup(groupJID string, mutate func(*GroupConfig)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := s.groups()
	cfg := groups[groupJID]
	mutate(&cfg)
	groups[groupJID] = cfg
	s.ds.Set(keyGroups, groups)
	return s.save()
}

func (s *Storage) groups() map[string]GroupConfig {
	groups := map[string]GroupConfig{}
	s.decode(keyGroups, &groups)
	return groups
}

func (s *Storage) mutes() map[string]MuteSchedule {
	mutes := map[string]MuteSchedule{}
	s.decode(keyMutes, &mutes)
	return mutes
}

// decode round-trips a raw datastore value into a typed destination. Values
// loaded from disk arrive as generic JSON shapes.
func (s *Storage) decode(key string, dst any) {
	raw, ok := s.ds.Get(key)
	if !ok {
		return
	}
	data, err := json.Marshal(raw)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("corrupt store value")
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("incompatible store value, using defaults")
	}
}

// save flushes to disk. A failed write is logged and the in-memory state stays
// authoritative until the next successful save; there is no retry queue.
func (s *Storage) save() error {
	if err := s.ds.Save(); err != nil {
		s.log.Error().Err(err).Msg("store save failed, in-memory state kept")
		return fmt.Errorf("save store: %w", err)
	}
	return nil
}
