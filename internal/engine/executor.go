package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"guild-relay-go/internal/model"
	"guild-relay-go/internal/transport"
)

// Executor builds and delivers forwarded messages.
type Executor struct {
	transport transport.Transport
}

// NewExecutor creates a new forwarding executor
func NewExecutor(t transport.Transport) *Executor {
	return &Executor{transport: t}
}

// Forward composes the outbound message from the rule's formatting options
// and sends it to the destination. Forwarding is best-effort: a failed
// attachment re-upload degrades to an inline note, and a failed final send is
// logged and swallowed. The returned flag reports whether the send landed.
func (e *Executor) Forward(ctx context.Context, formatting model.Formatting, msg *transport.Message, destination *transport.Channel) (*transport.SendResult, bool) {
	var parts []string

	if formatting.AddPrefix != "" {
		parts = append(parts, formatting.AddPrefix)
	}
	if formatting.IncludeAuthor {
		parts = append(parts, fmt.Sprintf("**From <@%s>:**", msg.AuthorID))
	}
	if msg.Content != "" {
		parts = append(parts, msg.Content)
	}
	if formatting.AddSuffix != "" {
		parts = append(parts, formatting.AddSuffix)
	}

	content := strings.Join(parts, "\n")

	out := transport.OutboundMessage{
		ReplyToMessageID: msg.ID,
	}

	if formatting.ForwardEmbeds && msg.HasEmbeds() {
		out.Embeds = msg.Embeds
	}

	if formatting.ForwardAttachments {
		for _, att := range msg.Attachments {
			data, err := e.transport.FetchAttachment(ctx, att)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"filename": att.Filename,
					"channel":  destination.ID,
				}).Warnf("Failed to forward attachment: %v", err)
				content += fmt.Sprintf("\n(Attachment failed to forward: %s)", att.Filename)
				continue
			}
			out.Files = append(out.Files, transport.File{Name: att.Filename, Data: data})
		}
	}

	out.Content = content

	result, err := e.transport.SendMessage(ctx, destination.ID, out)
	if err != nil {
		logrus.Errorf("Failed to send forwarded message to %s: %v", destination.ID, err)
		return nil, false
	}
	return result, true
}
