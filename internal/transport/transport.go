package transport

import (
	"context"
	"encoding/json"
	"time"
)

// Message is an inbound guild message as delivered by the gateway.
type Message struct {
	ID          string          `json:"id"`
	GuildID     string          `json:"guild_id"`
	ChannelID   string          `json:"channel_id"`
	AuthorID    string          `json:"author_id"`
	AuthorIsBot bool            `json:"author_is_bot"`
	Content     string          `json:"content"`
	Attachments []Attachment    `json:"attachments,omitempty"`
	Embeds      json.RawMessage `json:"embeds,omitempty"`
	Stickers    []Sticker       `json:"stickers,omitempty"`
}

// HasEmbeds reports whether the message carries at least one embed.
func (m *Message) HasEmbeds() bool {
	return len(m.Embeds) > 0 && string(m.Embeds) != "null" && string(m.Embeds) != "[]"
}

// Attachment is a file attached to an inbound message.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

// Sticker is a platform sticker reference on an inbound message.
type Sticker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// File is an attachment re-uploaded with an outbound message.
type File struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// OutboundMessage is a composed message to deliver to a channel.
type OutboundMessage struct {
	Content          string          `json:"content,omitempty"`
	Embeds           json.RawMessage `json:"embeds,omitempty"`
	Files            []File          `json:"files,omitempty"`
	ReplyToMessageID string          `json:"reply_to_message_id,omitempty"`
	DeleteAfter      time.Duration   `json:"-"`
}

// SendResult reports the delivered message.
type SendResult struct {
	MessageID string `json:"message_id"`
}

// Channel describes a resolvable platform channel.
type Channel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Postable bool   `json:"postable"`
}

// Interaction is one user interaction with a wizard panel. Responded tracks
// whether the interaction has been answered yet, so callers pick send-vs-edit
// without probing the transport for its state.
type Interaction struct {
	ID        string `json:"id"`
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	MessageID string `json:"message_id"`

	Responded bool `json:"-"`
}

// Panel is a titled interactive prompt with labeled action affordances. Each
// action carries an opaque identifier the wizard's transition logic consumes.
type Panel struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       string       `json:"color,omitempty"`
	Fields      []PanelField `json:"fields,omitempty"`
	Select      *SelectMenu  `json:"select,omitempty"`
	Actions     []Action     `json:"actions,omitempty"`
}

// PanelField is one descriptive field on a panel.
type PanelField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// SelectMenu is a selection affordance rendered by the platform.
type SelectMenu struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Placeholder string `json:"placeholder,omitempty"`
}

// Action styles understood by the platform renderer.
const (
	StylePrimary   = "primary"
	StyleSecondary = "secondary"
	StyleSuccess   = "success"
	StyleDanger    = "danger"
)

// Action is one labeled button on a panel.
type Action struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Style    string `json:"style"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Transport delivers composed messages and wizard panels to the chat
// platform and resolves channels live.
type Transport interface {
	// ResolveChannel looks a channel up; a nil error with Postable=false
	// means the channel exists but the service cannot post into it.
	ResolveChannel(ctx context.Context, channelID string) (*Channel, error)

	// SendMessage delivers a composed message to a channel.
	SendMessage(ctx context.Context, channelID string, msg OutboundMessage) (*SendResult, error)

	// FetchAttachment downloads an inbound attachment for re-upload.
	FetchAttachment(ctx context.Context, att Attachment) ([]byte, error)

	// RespondPanel answers an interaction with a panel: a fresh message if
	// the interaction has not been responded to yet, an edit otherwise.
	RespondPanel(ctx context.Context, inter *Interaction, panel Panel) error

	// Acknowledge sends a short caller-only-visible note for an interaction.
	Acknowledge(ctx context.Context, inter *Interaction, text string) error
}
