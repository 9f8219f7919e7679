package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-relay-go/internal/model"
	"guild-relay-go/internal/transport"
)

// fakeTransport records sends and serves canned channels/attachments.
type fakeTransport struct {
	channels     map[string]*transport.Channel
	attachments  map[string][]byte
	sent         []sentMessage
	sendErr      error
	attachErrors map[string]error
}

type sentMessage struct {
	channelID string
	msg       transport.OutboundMessage
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		channels:     make(map[string]*transport.Channel),
		attachments:  make(map[string][]byte),
		attachErrors: make(map[string]error),
	}
}

func (f *fakeTransport) ResolveChannel(ctx context.Context, channelID string) (*transport.Channel, error) {
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, errors.New("channel not found")
	}
	return ch, nil
}

func (f *fakeTransport) SendMessage(ctx context.Context, channelID string, msg transport.OutboundMessage) (*transport.SendResult, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, sentMessage{channelID: channelID, msg: msg})
	return &transport.SendResult{MessageID: "sent-1"}, nil
}

func (f *fakeTransport) FetchAttachment(ctx context.Context, att transport.Attachment) ([]byte, error) {
	if err := f.attachErrors[att.Filename]; err != nil {
		return nil, err
	}
	return f.attachments[att.Filename], nil
}

func (f *fakeTransport) RespondPanel(ctx context.Context, inter *transport.Interaction, panel transport.Panel) error {
	return nil
}

func (f *fakeTransport) Acknowledge(ctx context.Context, inter *transport.Interaction, text string) error {
	return nil
}

func destChannel() *transport.Channel {
	return &transport.Channel{ID: "chan-dst", Name: "archive", Postable: true}
}

func TestExecutorContentAssemblyOrder(t *testing.T) {
	ft := newFakeTransport()
	exec := NewExecutor(ft)

	formatting := model.Formatting{
		AddPrefix:     "[relay]",
		AddSuffix:     "-- end",
		IncludeAuthor: true,
	}
	msg := textMessage("hello world")

	_, delivered := exec.Forward(context.Background(), formatting, msg, destChannel())
	assert.True(t, delivered)

	require.Len(t, ft.sent, 1)
	assert.Equal(t, "chan-dst", ft.sent[0].channelID)
	assert.Equal(t, "[relay]\n**From <@user-1>:**\nhello world\n-- end", ft.sent[0].msg.Content)
	assert.Equal(t, "msg-1", ft.sent[0].msg.ReplyToMessageID)
}

func TestExecutorOmitsAuthorWhenDisabled(t *testing.T) {
	ft := newFakeTransport()
	exec := NewExecutor(ft)

	_, delivered := exec.Forward(context.Background(), model.Formatting{}, textMessage("hi"), destChannel())
	assert.True(t, delivered)

	require.Len(t, ft.sent, 1)
	assert.Equal(t, "hi", ft.sent[0].msg.Content)
}

func TestExecutorForwardsEmbedsVerbatim(t *testing.T) {
	ft := newFakeTransport()
	exec := NewExecutor(ft)

	embeds := json.RawMessage(`[{"title":"news"}]`)
	msg := textMessage("")
	msg.Embeds = embeds

	formatting := model.Formatting{ForwardEmbeds: true}
	_, delivered := exec.Forward(context.Background(), formatting, msg, destChannel())
	assert.True(t, delivered)

	require.Len(t, ft.sent, 1)
	assert.Equal(t, embeds, ft.sent[0].msg.Embeds)
}

func TestExecutorAttachmentFailureAppendsNote(t *testing.T) {
	ft := newFakeTransport()
	ft.attachments["ok.png"] = []byte{1, 2, 3}
	ft.attachErrors["broken.zip"] = errors.New("too large")
	exec := NewExecutor(ft)

	msg := textMessage("files incoming")
	msg.Attachments = []transport.Attachment{
		{Filename: "ok.png"},
		{Filename: "broken.zip"},
	}

	formatting := model.Formatting{ForwardAttachments: true}
	_, delivered := exec.Forward(context.Background(), formatting, msg, destChannel())
	assert.True(t, delivered)

	require.Len(t, ft.sent, 1)
	sent := ft.sent[0].msg

	// The good attachment is re-uploaded; the bad one degrades to a note.
	require.Len(t, sent.Files, 1)
	assert.Equal(t, "ok.png", sent.Files[0].Name)
	assert.Contains(t, sent.Content, "(Attachment failed to forward: broken.zip)")
}

func TestExecutorSendFailureIsSwallowed(t *testing.T) {
	ft := newFakeTransport()
	ft.sendErr = errors.New("boom")
	exec := NewExecutor(ft)

	result, delivered := exec.Forward(context.Background(), model.Formatting{}, textMessage("hi"), destChannel())
	assert.False(t, delivered)
	assert.Nil(t, result)
}
