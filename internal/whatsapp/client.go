// Package whatsapp adapts whatsmeow to the transport surface the engine
// consumes. All wire types stay inside this package; the rest of the program
// only ever sees transport values.
package whatsapp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
	_ "modernc.org/sqlite"

	"whatsbot/internal/transport"
)

// Client wraps a whatsmeow session. It implements transport.Client.
type Client struct {
	wa  *whatsmeow.Client
	log zerolog.Logger

	// Handlers receive translated events. Set both before Run.
	OnMessage           func(ctx context.Context, m *transport.Message)
	OnParticipantsAdded func(ctx context.Context, ev *transport.ParticipantsAdded)
}

// New opens the device store at sessionPath and builds a client. The session
// is not connected yet; call Run.
func New(ctx context.Context, sessionPath string, log zerolog.Logger) (*Client, error) {
	dbLog := waLog.Zerolog(log.With().Str("component", "session-db").Logger())
	container, err := sqlstore.New(ctx, "sqlite", "file:"+sessionPath+"?_pragma=foreign_keys(1)", dbLog)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("load device: %w", err)
	}

	c := &Client{
		wa:  whatsmeow.NewClient(device, waLog.Zerolog(log.With().Str("component", "whatsmeow").Logger())),
		log: log,
	}
	c.wa.AddEventHandler(c.handleEvent)
	return c, nil
}

// Run connects and blocks until ctx is canceled. A fresh device goes through
// QR pairing first: scan the code logged here with the phone. Reconnects
// after transient drops are whatsmeow's own auto-reconnect.
func (c *Client) Run(ctx context.Context) error {
	if c.wa.Store.ID == nil {
		qrCh, err := c.wa.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("qr channel: %w", err)
		}
		if err := c.wa.Connect(); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		for evt := range qrCh {
			switch evt.Event {
			case "code":
				c.log.Info().Str("qr", evt.Code).Msg("scan this code with WhatsApp to pair")
			case "success":
				c.log.Info().Msg("paired")
			default:
				c.log.Warn().Str("event", evt.Event).Msg("pairing event")
			}
		}
	} else {
		if err := c.wa.Connect(); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
	}

	<-ctx.Done()
	c.wa.Disconnect()
	return nil
}

func (c *Client) handleEvent(evt any) {
	ctx := context.Background()
	switch e := evt.(type) {
	case *events.Message:
		if c.OnMessage != nil {
			c.OnMessage(ctx, translateMessage(e))
		}
	case *events.GroupInfo:
		if c.OnParticipantsAdded == nil || len(e.Join) == 0 {
			return
		}
		joined := make([]string, len(e.Join))
		for i, jid := range e.Join {
			joined[i] = jid.ToNonAD().String()
		}
		c.OnParticipantsAdded(ctx, &transport.ParticipantsAdded{
			Group:  e.JID.String(),
			Joined: joined,
		})
	case *events.Disconnected:
		c.log.Warn().Msg("disconnected, waiting for auto-reconnect")
	case *events.LoggedOut:
		c.log.Error().Msg("logged out, delete the session file and pair again")
	}
}

func translateMessage(e *events.Message) *transport.Message {
	msg := e.Message
	m := &transport.Message{
		Ref: transport.MessageRef{
			Chat:   e.Info.Chat.String(),
			Sender: e.Info.Sender.ToNonAD().String(),
			ID:     e.Info.ID,
		},
		Chat:     e.Info.Chat.String(),
		Sender:   e.Info.Sender.ToNonAD().String(),
		IsGroup:  e.Info.IsGroup,
		FromSelf: e.Info.IsFromMe,
		Text:     msg.GetConversation(),
	}

	if img := msg.GetImageMessage(); img != nil {
		m.Image = &transport.MediaRef{Handle: img}
		if m.Text == "" {
			m.Text = img.GetCaption()
		}
	}
	// Captions count as message text so the link filter sees them.
	if m.Text == "" {
		if vid := msg.GetVideoMessage(); vid != nil {
			m.Text = vid.GetCaption()
		}
	}
	if m.Text == "" {
		if doc := msg.GetDocumentMessage(); doc != nil {
			m.Text = doc.GetCaption()
		}
	}
	if stk := msg.GetStickerMessage(); stk != nil {
		m.Sticker = &transport.MediaRef{Handle: stk}
	}

	var ctxInfo *waE2E.ContextInfo
	if ext := msg.GetExtendedTextMessage(); ext != nil {
		m.Text = ext.GetText()
		ctxInfo = ext.GetContextInfo()
	} else if img := msg.GetImageMessage(); img != nil {
		ctxInfo = img.GetContextInfo()
	}

	if ctxInfo != nil {
		m.Mentions = append(m.Mentions, ctxInfo.GetMentionedJID()...)
		if ctxInfo.GetStanzaID() != "" {
			q := &transport.Quoted{
				Sender: ctxInfo.GetParticipant(),
				Ref: transport.MessageRef{
					Chat:   m.Chat,
					Sender: ctxInfo.GetParticipant(),
					ID:     ctxInfo.GetStanzaID(),
				},
			}
			if quoted := ctxInfo.GetQuotedMessage(); quoted != nil {
				if img := quoted.GetImageMessage(); img != nil {
					q.Image = &transport.MediaRef{Handle: img}
				}
				if stk := quoted.GetStickerMessage(); stk != nil {
					q.Sticker = &transport.MediaRef{Handle: stk}
				}
			}
			m.Quoted = q
		}
	}
	return m
}

func (c *Client) SendText(ctx context.Context, chat, text string, opts *transport.SendOpts) error {
	jid, err := types.ParseJID(chat)
	if err != nil {
		return fmt.Errorf("parse chat jid: %w", err)
	}

	var msg *waE2E.Message
	if opts == nil || (opts.Quoted == nil && len(opts.Mentions) == 0) {
		msg = &waE2E.Message{Conversation: proto.String(text)}
	} else {
		ctxInfo := &waE2E.ContextInfo{}
		if opts.Quoted != nil {
			ctxInfo.StanzaID = proto.String(opts.Quoted.ID)
			ctxInfo.Participant = proto.String(opts.Quoted.Sender)
			ctxInfo.QuotedMessage = &waE2E.Message{Conversation: proto.String("")}
		}
		if len(opts.Mentions) > 0 {
			ctxInfo.MentionedJID = opts.Mentions
		}
		msg = &waE2E.Message{
			ExtendedTextMessage: &waE2E.ExtendedTextMessage{
				Text:        proto.String(text),
				ContextInfo: ctxInfo,
			},
		}
	}

	_, err = c.wa.SendMessage(ctx, jid, msg)
	return err
}

func (c *Client) SendImage(ctx context.Context, chat string, png []byte, caption string, opts *transport.SendOpts) error {
	jid, err := types.ParseJID(chat)
	if err != nil {
		return fmt.Errorf("parse chat jid: %w", err)
	}
	up, err := c.wa.Upload(ctx, png, whatsmeow.MediaImage)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}

	img := &waE2E.ImageMessage{
		URL:           proto.String(up.URL),
		DirectPath:    proto.String(up.DirectPath),
		MediaKey:      up.MediaKey,
		FileEncSHA256: up.FileEncSHA256,
		FileSHA256:    up.FileSHA256,
		FileLength:    proto.Uint64(up.FileLength),
		Mimetype:      proto.String("image/png"),
	}
	if caption != "" {
		img.Caption = proto.String(caption)
	}
	_, err = c.wa.SendMessage(ctx, jid, &waE2E.Message{ImageMessage: img})
	return err
}

func (c *Client) SendSticker(ctx context.Context, chat string, webpData []byte, opts *transport.SendOpts) error {
	jid, err := types.ParseJID(chat)
	if err != nil {
		return fmt.Errorf("parse chat jid: %w", err)
	}
	up, err := c.wa.Upload(ctx, webpData, whatsmeow.MediaImage)
	if err != nil {
		return fmt.Errorf("upload sticker: %w", err)
	}

	stk := &waE2E.StickerMessage{
		URL:           proto.String(up.URL),
		DirectPath:    proto.String(up.DirectPath),
		MediaKey:      up.MediaKey,
		FileEncSHA256: up.FileEncSHA256,
		FileSHA256:    up.FileSHA256,
		FileLength:    proto.Uint64(up.FileLength),
		Mimetype:      proto.String("image/webp"),
	}
	_, err = c.wa.SendMessage(ctx, jid, &waE2E.Message{StickerMessage: stk})
	return err
}

func (c *Client) SendPoll(ctx context.Context, chat, question string, options []string) error {
	jid, err := types.ParseJID(chat)
	if err != nil {
		return fmt.Errorf("parse chat jid: %w", err)
	}
	_, err = c.wa.SendMessage(ctx, jid, c.wa.BuildPollCreation(question, options, 1))
	return err
}

func (c *Client) DeleteMessage(ctx context.Context, ref transport.MessageRef) error {
	chat, err := types.ParseJID(ref.Chat)
	if err != nil {
		return fmt.Errorf("parse chat jid: %w", err)
	}
	sender, err := types.ParseJID(ref.Sender)
	if err != nil {
		return fmt.Errorf("parse sender jid: %w", err)
	}
	_, err = c.wa.SendMessage(ctx, chat, c.wa.BuildRevoke(chat, sender, ref.ID))
	return err
}

func (c *Client) UpdateParticipants(ctx context.Context, group string, users []string, action transport.ParticipantAction) error {
	jid, err := types.ParseJID(group)
	if err != nil {
		return fmt.Errorf("parse group jid: %w", err)
	}

	var change whatsmeow.ParticipantChange
	switch action {
	case transport.ParticipantAdd:
		change = whatsmeow.ParticipantChangeAdd
	case transport.ParticipantRemove:
		change = whatsmeow.ParticipantChangeRemove
	case transport.ParticipantPromote:
		change = whatsmeow.ParticipantChangePromote
	case transport.ParticipantDemote:
		change = whatsmeow.ParticipantChangeDemote
	default:
		return fmt.Errorf("unknown participant action %q", action)
	}

	jids := make([]types.JID, 0, len(users))
	for _, u := range users {
		j, err := types.ParseJID(u)
		if err != nil {
			return fmt.Errorf("parse user jid %q: %w", u, err)
		}
		jids = append(jids, j)
	}

	_, err = c.wa.UpdateGroupParticipants(ctx, jid, jids, change)
	return err
}

func (c *Client) SetGroupAnnounce(ctx context.Context, group string, announce bool) error {
	jid, err := types.ParseJID(group)
	if err != nil {
		return fmt.Errorf("parse group jid: %w", err)
	}
	return c.wa.SetGroupAnnounce(ctx, jid, announce)
}

func (c *Client) GroupMetadata(ctx context.Context, group string) (*transport.GroupInfo, error) {
	jid, err := types.ParseJID(group)
	if err != nil {
		return nil, fmt.Errorf("parse group jid: %w", err)
	}
	info, err := c.wa.GetGroupInfo(ctx, jid)
	if err != nil {
		return nil, fmt.Errorf("group info: %w", err)
	}

	out := &transport.GroupInfo{JID: info.JID.String(), Name: info.Name}
	for _, p := range info.Participants {
		out.Participants = append(out.Participants, transport.Participant{
			JID:          p.JID.ToNonAD().String(),
			IsAdmin:      p.IsAdmin,
			IsSuperAdmin: p.IsSuperAdmin,
		})
	}
	return out, nil
}

func (c *Client) ListGroups(ctx context.Context) ([]string, error) {
	groups, err := c.wa.GetJoinedGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("joined groups: %w", err)
	}
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.JID.String()
	}
	return out, nil
}

func (c *Client) Download(ctx context.Context, media *transport.MediaRef) ([]byte, error) {
	msg, ok := media.Handle.(whatsmeow.DownloadableMessage)
	if !ok {
		return nil, fmt.Errorf("media handle %T is not downloadable", media.Handle)
	}
	return c.wa.Download(ctx, msg)
}

func (c *Client) Self() string {
	if c.wa.Store.ID == nil {
		return ""
	}
	return c.wa.Store.ID.ToNonAD().String()
}
