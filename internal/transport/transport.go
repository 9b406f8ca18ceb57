// Package transport defines the narrow surface the engine consumes from the
// messaging layer. The engine never talks to the wire protocol directly;
// everything goes through Client, so tests can substitute a fake.
package transport

import (
	"context"
	"strings"
)

// DefaultUserServer is the server part of a canonical user JID.
const DefaultUserServer = "s.whatsapp.net"

// GroupServer is the server part of a group JID.
const GroupServer = "g.us"

// ParticipantAction is a group membership mutation.
type ParticipantAction string

const (
	ParticipantAdd     ParticipantAction = "add"
	ParticipantRemove  ParticipantAction = "remove"
	ParticipantPromote ParticipantAction = "promote"
	ParticipantDemote  ParticipantAction = "demote"
)

// MessageRef identifies a single message well enough to quote or delete it.
type MessageRef struct {
	Chat   string
	Sender string
	ID     string
}

// MediaRef is an opaque handle to downloadable media. The transport that
// produced it is the only one that can resolve it.
type MediaRef struct {
	Handle any
}

// Quoted describes the message a received message replies to.
type Quoted struct {
	Sender  string
	Ref     MessageRef
	Image   *MediaRef
	Sticker *MediaRef
}

// Message is a received text-bearing event.
type Message struct {
	Ref      MessageRef
	Chat     string
	Sender   string
	IsGroup  bool
	FromSelf bool
	Text     string
	// Mentions are the identifiers the transport itself tagged in the
	// message, already in wire form.
	Mentions []string
	Quoted   *Quoted
	Image    *MediaRef
	Sticker  *MediaRef
}

// ParticipantsAdded is a group join event.
type ParticipantsAdded struct {
	Group  string
	Joined []string
}

// Participant is one group member with its reported role.
type Participant struct {
	JID          string
	IsAdmin      bool
	IsSuperAdmin bool
}

// GroupInfo is the subset of group metadata the engine needs.
type GroupInfo struct {
	JID          string
	Name         string
	Participants []Participant
}

// SendOpts carries optional send parameters.
type SendOpts struct {
	Quoted   *MessageRef
	Mentions []string
}

// Client is the outbound half of the transport collaborator.
type Client interface {
	SendText(ctx context.Context, chat, text string, opts *SendOpts) error
	SendImage(ctx context.Context, chat string, png []byte, caption string, opts *SendOpts) error
	SendSticker(ctx context.Context, chat string, webp []byte, opts *SendOpts) error
	SendPoll(ctx context.Context, chat, question string, options []string) error
	DeleteMessage(ctx context.Context, ref MessageRef) error
	UpdateParticipants(ctx context.Context, group string, users []string, action ParticipantAction) error
	SetGroupAnnounce(ctx context.Context, group string, announce bool) error
	GroupMetadata(ctx context.Context, group string) (*GroupInfo, error)
	ListGroups(ctx context.Context) ([]string, error)
	Download(ctx context.Context, media *MediaRef) ([]byte, error)
	Self() string
}

// Normalize strips the device suffix from a JID so the same account compares
// equal regardless of which device sent the message:
// "123:45@s.whatsapp.net" and "123@s.whatsapp.net" both become
// "123@s.whatsapp.net".
func Normalize(jid string) string {
	user, server, ok := strings.Cut(jid, "@")
	if i := strings.IndexByte(user, ':'); i >= 0 {
		user = user[:i]
	}
	if !ok {
		return user
	}
	return user + "@" + server
}

// UserJID puts a bare phone number into canonical user JID form. Values that
// already carry a server are returned unchanged.
func UserJID(s string) string {
	if strings.ContainsRune(s, '@') {
		return s
	}
	return s + "@" + DefaultUserServer
}

// IsGroupJID reports whether jid addresses a group chat.
func IsGroupJID(jid string) bool {
	return strings.HasSuffix(jid, "@"+GroupServer)
}

// ShortUser returns the user part of a JID for display, e.g. in "@123" tags.
func ShortUser(jid string) string {
	user, _, _ := strings.Cut(Normalize(jid), "@")
	return user
}
