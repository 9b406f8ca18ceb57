package whatsapp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

func groupEvent(msg *waE2E.Message) *events.Message {
	return &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Chat:    types.NewJID("123000111", types.GroupServer),
				Sender:  types.NewJID("15551234567", types.DefaultUserServer),
				IsGroup: true,
			},
			ID: "MSG1",
		},
		Message: msg,
	}
}

func TestTranslateTextSources(t *testing.T) {
	cases := []struct {
		name string
		msg  *waE2E.Message
		want string
	}{
		{
			name: "conversation",
			msg:  &waE2E.Message{Conversation: proto.String("hello")},
			want: "hello",
		},
		{
			name: "extended text",
			msg: &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{
				Text: proto.String("see here"),
			}},
			want: "see here",
		},
		{
			name: "image caption",
			msg: &waE2E.Message{ImageMessage: &waE2E.ImageMessage{
				Caption: proto.String("pic https://spam.example"),
			}},
			want: "pic https://spam.example",
		},
		{
			name: "video caption",
			msg: &waE2E.Message{VideoMessage: &waE2E.VideoMessage{
				Caption: proto.String("clip https://spam.example"),
			}},
			want: "clip https://spam.example",
		},
		{
			name: "document caption",
			msg: &waE2E.Message{DocumentMessage: &waE2E.DocumentMessage{
				Caption: proto.String("file https://spam.example"),
			}},
			want: "file https://spam.example",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := translateMessage(groupEvent(c.msg)).Text; got != c.want {
				t.Errorf("Text = %q, want %q", got, c.want)
			}
		})
	}
}

func TestTranslateQuotedAndMentions(t *testing.T) {
	msg := &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{
		Text: proto.String(".kick"),
		ContextInfo: &waE2E.ContextInfo{
			StanzaID:      proto.String("Q1"),
			Participant:   proto.String("15550000002@s.whatsapp.net"),
			MentionedJID:  []string{"15550000003@s.whatsapp.net"},
			QuotedMessage: &waE2E.Message{Conversation: proto.String("bye")},
		},
	}}

	m := translateMessage(groupEvent(msg))
	if m.Quoted == nil {
		t.Fatal("quoted context lost in translation")
	}
	if m.Quoted.Sender != "15550000002@s.whatsapp.net" || m.Quoted.Ref.ID != "Q1" {
		t.Errorf("quoted = %+v", m.Quoted)
	}
	if diff := cmp.Diff([]string{"15550000003@s.whatsapp.net"}, m.Mentions); diff != "" {
		t.Errorf("mentions mismatch (-want +got):\n%s", diff)
	}
}
