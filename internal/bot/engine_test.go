package bot

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"whatsbot/internal/content"
	"whatsbot/internal/storage"
	"whatsbot/internal/transport"
)

const (
	testGroup    = "123000111@g.us"
	testBot      = "111111111@s.whatsapp.net"
	testAdmin    = "222222222@s.whatsapp.net"
	testMember   = "333333333@s.whatsapp.net"
	testOwner    = "999999999@s.whatsapp.net"
	testNewcomer = "444444444@s.whatsapp.net"
)

type sentText struct {
	chat string
	text string
	opts *transport.SendOpts
}

type participantCall struct {
	group  string
	users  []string
	action transport.ParticipantAction
}

type announceCall struct {
	group    string
	announce bool
}

type pollCall struct {
	chat     string
	question string
	options  []string
}

// fakeClient records every outbound call. Group metadata is served from the
// meta field.
type fakeClient struct {
	mu          sync.Mutex
	meta        *transport.GroupInfo
	panicOnMeta bool
	groupList   []string

	texts     []sentText
	deletes   []transport.MessageRef
	updates   []participantCall
	announces []announceCall
	polls     []pollCall
}

func (f *fakeClient) SendText(_ context.Context, chat, text string, opts *transport.SendOpts) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, sentText{chat: chat, text: text, opts: opts})
	return nil
}

func (f *fakeClient) SendImage(context.Context, string, []byte, string, *transport.SendOpts) error {
	return nil
}

func (f *fakeClient) SendSticker(context.Context, string, []byte, *transport.SendOpts) error {
	return nil
}

func (f *fakeClient) SendPoll(_ context.Context, chat, question string, options []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls = append(f.polls, pollCall{chat: chat, question: question, options: options})
	return nil
}

func (f *fakeClient) DeleteMessage(_ context.Context, ref transport.MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, ref)
	return nil
}

func (f *fakeClient) UpdateParticipants(_ context.Context, group string, users []string, action transport.ParticipantAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, participantCall{group: group, users: users, action: action})
	return nil
}

func (f *fakeClient) SetGroupAnnounce(_ context.Context, group string, announce bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.announces = append(f.announces, announceCall{group: group, announce: announce})
	return nil
}

func (f *fakeClient) GroupMetadata(context.Context, string) (*transport.GroupInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOnMeta {
		panic("metadata fetch blew up")
	}
	return f.meta, nil
}

func (f *fakeClient) ListGroups(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groupList, nil
}

func (f *fakeClient) Download(context.Context, *transport.MediaRef) ([]byte, error) {
	return nil, nil
}

func (f *fakeClient) Self() string { return testBot }

func (f *fakeClient) sentTexts() []sentText {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentText(nil), f.texts...)
}

func (f *fakeClient) lastText(t *testing.T) sentText {
	t.Helper()
	texts := f.sentTexts()
	if len(texts) == 0 {
		t.Fatal("no text was sent")
	}
	return texts[len(texts)-1]
}

func defaultMeta(botAdmin bool) *transport.GroupInfo {
	return &transport.GroupInfo{
		JID: testGroup,
		Participants: []transport.Participant{
			{JID: testBot, IsAdmin: botAdmin},
			{JID: testAdmin, IsAdmin: true},
			{JID: testMember},
			{JID: testOwner},
		},
	}
}

func newTestEngine(t *testing.T) (*Engine, *fakeClient) {
	t.Helper()
	dir := t.TempDir()
	log := zerolog.Nop()

	store, err := storage.New(filepath.Join(dir, "store.json"), ".", log)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	reg := content.LoadRegistry(
		filepath.Join(dir, "quotes.json"),
		filepath.Join(dir, "jokes.json"),
		filepath.Join(dir, "facts.json"),
		log,
	)

	client := &fakeClient{meta: defaultMeta(true)}
	eng := New(client, store, reg, testOwner, log)
	t.Cleanup(eng.Shutdown)
	return eng, client
}

func groupMsg(sender, text string) *transport.Message {
	return &transport.Message{
		Ref:     transport.MessageRef{Chat: testGroup, Sender: sender, ID: "MSG1"},
		Chat:    testGroup,
		Sender:  sender,
		IsGroup: true,
		Text:    text,
	}
}

func TestUnknownCommandReplies(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testMember, ".bogus"))

	got := client.lastText(t)
	want := "❓ Unknown command: .bogus\nTry .help for available commands."
	if got.text != want {
		t.Errorf("reply = %q, want %q", got.text, want)
	}
}

func TestNonCommandTextIgnored(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testMember, "just chatting"))

	if n := len(client.sentTexts()); n != 0 {
		t.Errorf("sent %d texts, want 0", n)
	}
}

func TestOwnMessagesSkipProtections(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testAdmin, ".antilink on"))
	client.texts = nil

	m := groupMsg(testBot, "status page: https://status.example")
	m.FromSelf = true
	eng.HandleMessage(context.Background(), m)

	if n := len(client.deletes); n != 0 {
		t.Errorf("deleted %d messages, want 0", n)
	}
	if n := len(client.sentTexts()); n != 0 {
		t.Errorf("sent %d warnings, want 0", n)
	}
}

func TestBarePrefixRepliesUnknown(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testMember, "."))

	want := "❓ Unknown command: .\nTry .help for available commands."
	if got := client.lastText(t).text; got != want {
		t.Errorf("reply = %q, want %q", got, want)
	}
}

func TestKickDeniedForNonAdmin(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testMember, ".kick @444444444"))

	if got := client.lastText(t).text; got != "Admins only." {
		t.Errorf("reply = %q, want %q", got, "Admins only.")
	}
	if n := len(client.updates); n != 0 {
		t.Errorf("UpdateParticipants called %d times, want 0", n)
	}
}

func TestKickDeniedWhenBotNotAdmin(t *testing.T) {
	eng, client := newTestEngine(t)
	client.meta = defaultMeta(false)
	eng.HandleMessage(context.Background(), groupMsg(testAdmin, ".kick @444444444"))

	if got := client.lastText(t).text; got != "I need to be admin." {
		t.Errorf("reply = %q, want %q", got, "I need to be admin.")
	}
	if n := len(client.updates); n != 0 {
		t.Errorf("UpdateParticipants called %d times, want 0", n)
	}
}

func TestKickByAdmin(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testAdmin, ".kick @444444444"))

	want := []participantCall{{
		group:  testGroup,
		users:  []string{testNewcomer},
		action: transport.ParticipantRemove,
	}}
	if diff := cmp.Diff(want, client.updates, cmp.AllowUnexported(participantCall{})); diff != "" {
		t.Errorf("participant updates mismatch (-want +got):\n%s", diff)
	}
}

func TestKickByOwnerWithoutAdminRole(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testOwner, ".kick @444444444"))

	if n := len(client.updates); n != 1 {
		t.Fatalf("UpdateParticipants called %d times, want 1", n)
	}
}

func TestKickWithoutMentions(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testAdmin, ".kick"))

	if got := client.lastText(t).text; got != "Mention users to kick." {
		t.Errorf("reply = %q, want %q", got, "Mention users to kick.")
	}
}

func TestKickTargetsQuotedSender(t *testing.T) {
	eng, client := newTestEngine(t)
	m := groupMsg(testAdmin, ".kick")
	m.Quoted = &transport.Quoted{
		Sender: "444444444:7@s.whatsapp.net",
		Ref:    transport.MessageRef{Chat: testGroup, Sender: testNewcomer, ID: "Q1"},
	}
	eng.HandleMessage(context.Background(), m)

	if n := len(client.updates); n != 1 {
		t.Fatalf("UpdateParticipants called %d times, want 1", n)
	}
	want := []string{testNewcomer}
	if diff := cmp.Diff(want, client.updates[0].users); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteRepliedMessage(t *testing.T) {
	eng, client := newTestEngine(t)
	m := groupMsg(testMember, ".delete")
	m.Quoted = &transport.Quoted{
		Sender: testNewcomer,
		Ref:    transport.MessageRef{Chat: testGroup, Sender: testNewcomer, ID: "Q9"},
	}
	eng.HandleMessage(context.Background(), m)

	if n := len(client.deletes); n != 1 || client.deletes[0].ID != "Q9" {
		t.Fatalf("deletes = %+v, want the quoted message", client.deletes)
	}
}

func TestDeleteOwnMessage(t *testing.T) {
	eng, client := newTestEngine(t)
	m := groupMsg(testBot, ".delete")
	m.FromSelf = true
	eng.HandleMessage(context.Background(), m)

	if n := len(client.deletes); n != 1 {
		t.Fatalf("deleted %d messages, want 1", n)
	}
	if got := client.deletes[0]; got.ID != "MSG1" || got.Sender != testBot {
		t.Errorf("deleted ref = %+v, want the bot's own message", got)
	}
}

func TestDeleteWithoutTarget(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testMember, ".delete"))

	if n := len(client.deletes); n != 0 {
		t.Errorf("deleted %d messages, want 0", n)
	}
	if got := client.lastText(t).text; got != "Nothing to delete (reply to a message)." {
		t.Errorf("reply = %q", got)
	}
}

func TestMetadataPanicContained(t *testing.T) {
	eng, client := newTestEngine(t)
	client.panicOnMeta = true
	eng.HandleMessage(context.Background(), groupMsg(testAdmin, ".kick @444444444"))

	if got := client.lastText(t).text; got != "⚠️ Error while processing command. Please try again later." {
		t.Errorf("reply = %q, want the generic error reply", got)
	}

	// The next event still gets handled.
	client.panicOnMeta = false
	client.texts = nil
	eng.HandleMessage(context.Background(), groupMsg(testMember, ".roll"))
	if n := len(client.sentTexts()); n != 1 {
		t.Errorf("sent %d texts after recovery, want 1", n)
	}
}

func TestGroupOnlyRejectedInDirectChat(t *testing.T) {
	eng, client := newTestEngine(t)
	m := &transport.Message{
		Ref:    transport.MessageRef{Chat: testAdmin, Sender: testAdmin, ID: "DM1"},
		Chat:   testAdmin,
		Sender: testAdmin,
		Text:   ".kick @444444444",
	}
	eng.HandleMessage(context.Background(), m)

	if got := client.lastText(t).text; got != "Group only." {
		t.Errorf("reply = %q, want %q", got, "Group only.")
	}
}

func TestAntilinkDeletesAndWarnsOnce(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testAdmin, ".antilink on"))
	client.texts = nil

	eng.HandleMessage(context.Background(), groupMsg(testMember, "check https://spam.example"))

	if n := len(client.deletes); n != 1 {
		t.Fatalf("deleted %d messages, want 1", n)
	}
	texts := client.sentTexts()
	if len(texts) != 1 || texts[0].text != "🚫 Links are not allowed here." {
		t.Errorf("warnings = %+v, want exactly one link warning", texts)
	}
}

func TestAntilinkExemptsAdmins(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testAdmin, ".antilink on"))
	client.texts = nil

	eng.HandleMessage(context.Background(), groupMsg(testAdmin, "see https://ok.example"))

	if n := len(client.deletes); n != 0 {
		t.Errorf("deleted %d messages, want 0", n)
	}
	if n := len(client.sentTexts()); n != 0 {
		t.Errorf("sent %d warnings, want 0", n)
	}
}

func TestAntilinkOffByDefault(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testMember, "see https://ok.example"))

	if n := len(client.deletes); n != 0 {
		t.Errorf("deleted %d messages, want 0", n)
	}
}

func TestWelcomeFlow(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testAdmin, ".welcome on"))
	if got := client.lastText(t).text; got != "Welcome is now *ON*" {
		t.Fatalf("toggle reply = %q", got)
	}
	client.texts = nil

	eng.HandleParticipantsAdded(context.Background(), &transport.ParticipantsAdded{
		Group:  testGroup,
		Joined: []string{testNewcomer},
	})

	got := client.lastText(t)
	if got.text != "👋 Welcome @444444444!" {
		t.Errorf("welcome text = %q", got.text)
	}
	if got.opts == nil || !cmp.Equal(got.opts.Mentions, []string{testNewcomer}) {
		t.Errorf("welcome mentions = %+v, want %v", got.opts, []string{testNewcomer})
	}
}

func TestWelcomeDisabledByDefault(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleParticipantsAdded(context.Background(), &transport.ParticipantsAdded{
		Group:  testGroup,
		Joined: []string{testNewcomer},
	})

	if n := len(client.sentTexts()); n != 0 {
		t.Errorf("sent %d texts, want 0", n)
	}
}

func TestMuteSchedulesAndAcks(t *testing.T) {
	eng, client := newTestEngine(t)
	before := time.Now()
	eng.HandleMessage(context.Background(), groupMsg(testAdmin, ".mute 5"))

	if n := len(client.announces); n != 1 || !client.announces[0].announce {
		t.Fatalf("announce calls = %+v, want one announce=true", client.announces)
	}
	if got := client.lastText(t).text; got != "🔇 Group muted for 5 minute(s)." {
		t.Errorf("ack = %q", got)
	}

	mutes := eng.Store.Mutes()
	if len(mutes) != 1 {
		t.Fatalf("persisted %d schedules, want 1", len(mutes))
	}
	want := before.Add(5 * time.Minute)
	if got := mutes[0].ExpiresAt; got.Before(want) || got.After(want.Add(5*time.Second)) {
		t.Errorf("ExpiresAt = %v, want about %v", got, want)
	}
}

func TestMuteRejectsBadDuration(t *testing.T) {
	eng, client := newTestEngine(t)
	for _, args := range []string{"", "zero", "0", "-3"} {
		eng.HandleMessage(context.Background(), groupMsg(testAdmin, strings.TrimSpace(".mute "+args)))
		if got := client.lastText(t).text; got != "Usage: .mute <minutes>" {
			t.Errorf("args %q: reply = %q", args, got)
		}
	}
	if n := len(client.announces); n != 0 {
		t.Errorf("announce called %d times, want 0", n)
	}
}

func TestPollRequiresTwoOptions(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testMember, `.poll "Lunch?" pizza`))

	if n := len(client.polls); n != 0 {
		t.Fatalf("sent %d polls, want 0", n)
	}
	if got := client.lastText(t).text; !strings.HasPrefix(got, "Provide at least 2 options.") {
		t.Errorf("reply = %q", got)
	}
}

func TestPollByRegularMember(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testMember, `.poll "Lunch?" pizza / sushi / salad`))

	want := []pollCall{{
		chat:     testGroup,
		question: "Lunch?",
		options:  []string{"pizza", "sushi", "salad"},
	}}
	if diff := cmp.Diff(want, client.polls, cmp.AllowUnexported(pollCall{})); diff != "" {
		t.Errorf("polls mismatch (-want +got):\n%s", diff)
	}
}

func TestAddQuoteOwnerOnly(t *testing.T) {
	eng, client := newTestEngine(t)
	before := eng.Content.Quotes.Len()

	eng.HandleMessage(context.Background(), groupMsg(testMember, ".addquote Stay hungry."))
	if got := client.lastText(t).text; got != "Owner only." {
		t.Errorf("reply = %q, want %q", got, "Owner only.")
	}
	if eng.Content.Quotes.Len() != before {
		t.Error("quote list changed despite denial")
	}

	eng.HandleMessage(context.Background(), groupMsg(testOwner, ".addquote Stay hungry."))
	if got := client.lastText(t).text; got != "✅ Quote added!" {
		t.Errorf("reply = %q, want %q", got, "✅ Quote added!")
	}
	if eng.Content.Quotes.Len() != before+1 {
		t.Errorf("quote count = %d, want %d", eng.Content.Quotes.Len(), before+1)
	}
}

func TestSetPrefixChangesDispatch(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testOwner, ".setprefix !"))
	if got := client.lastText(t).text; got != "✅ Prefix set to: !" {
		t.Fatalf("reply = %q", got)
	}
	client.texts = nil

	eng.HandleMessage(context.Background(), groupMsg(testMember, ".roll"))
	if n := len(client.sentTexts()); n != 0 {
		t.Errorf("old prefix still dispatched, sent %d texts", n)
	}

	eng.HandleMessage(context.Background(), groupMsg(testMember, "!roll"))
	if got := client.lastText(t).text; !strings.HasPrefix(got, "🎲 ") {
		t.Errorf("reply = %q, want a die roll", got)
	}
}

func TestBroadcastPacesAllGroups(t *testing.T) {
	eng, client := newTestEngine(t)
	client.groupList = []string{"g1@g.us", "g2@g.us"}

	eng.HandleMessage(context.Background(), groupMsg(testOwner, ".broadcast maintenance tonight"))

	texts := client.sentTexts()
	if len(texts) != 3 {
		t.Fatalf("sent %d texts, want 2 broadcasts + 1 ack", len(texts))
	}
	for _, st := range texts[:2] {
		if st.text != "📢 *Broadcast:*\nmaintenance tonight" {
			t.Errorf("broadcast text = %q", st.text)
		}
	}
	if got := texts[2].text; got != "✅ Broadcast sent to 2 group(s)." {
		t.Errorf("ack = %q", got)
	}
}

func TestPlaceholderEchoesInvokedAlias(t *testing.T) {
	eng, client := newTestEngine(t)
	eng.HandleMessage(context.Background(), groupMsg(testMember, ".weather Oslo"))

	want := "🧩 .weather requires additional setup. This feature is a placeholder for now."
	if got := client.lastText(t).text; got != want {
		t.Errorf("reply = %q, want %q", got, want)
	}
}

func TestOwnerCommandWithoutOwnerConfigured(t *testing.T) {
	dir := t.TempDir()
	log := zerolog.Nop()
	store, err := storage.New(filepath.Join(dir, "store.json"), ".", log)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	reg := content.LoadRegistry(
		filepath.Join(dir, "q.json"), filepath.Join(dir, "j.json"), filepath.Join(dir, "f.json"), log)

	client := &fakeClient{meta: defaultMeta(true)}
	eng := New(client, store, reg, "", log)
	t.Cleanup(eng.Shutdown)

	eng.HandleMessage(context.Background(), groupMsg(testMember, ".shutdown"))
	if got := client.lastText(t).text; got != "Owner not set. Set BOT_OWNER env var." {
		t.Errorf("reply = %q", got)
	}
}
