package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"guild-relay-go/internal/config"
)

// Client talks to the chat-platform REST API with a static bot token.
type Client struct {
	baseURL    string
	token      string
	maxRetries int
	httpClient *http.Client
}

// NewClient creates a new platform API client
func NewClient(cfg *config.TransportConfig) *Client {
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.BotToken,
		maxRetries: retries,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// ResolveChannel looks up a channel by ID.
func (c *Client) ResolveChannel(ctx context.Context, channelID string) (*Channel, error) {
	var channel Channel
	if err := c.do(ctx, http.MethodGet, "/channels/"+channelID, nil, &channel); err != nil {
		return nil, fmt.Errorf("failed to resolve channel %s: %w", channelID, err)
	}
	return &channel, nil
}

type sendRequest struct {
	Content          string          `json:"content,omitempty"`
	Embeds           json.RawMessage `json:"embeds,omitempty"`
	Files            []File          `json:"files,omitempty"`
	ReplyToMessageID string          `json:"reply_to_message_id,omitempty"`
	DeleteAfterSecs  int             `json:"delete_after_seconds,omitempty"`
}

// SendMessage delivers a composed message to a channel, retrying with
// backoff when the platform reports rate limiting.
func (c *Client) SendMessage(ctx context.Context, channelID string, msg OutboundMessage) (*SendResult, error) {
	req := sendRequest{
		Content:          msg.Content,
		Embeds:           msg.Embeds,
		Files:            msg.Files,
		ReplyToMessageID: msg.ReplyToMessageID,
		DeleteAfterSecs:  int(msg.DeleteAfter / time.Second),
	}

	var result SendResult
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		err := c.do(ctx, http.MethodPost, "/channels/"+channelID+"/messages", req, &result)
		if err == nil {
			return &result, nil
		}
		lastErr = err

		if !isRateLimited(err) {
			break
		}
		waitTime := time.Duration(attempt*attempt) * time.Second
		logrus.Warnf("Rate limited sending to channel %s, waiting %v before retry (attempt %d/%d)",
			channelID, waitTime, attempt, c.maxRetries)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waitTime):
		}
	}
	return nil, fmt.Errorf("failed to send message to channel %s: %w", channelID, lastErr)
}

// FetchAttachment downloads attachment bytes from the URL the gateway handed us.
func (c *Client) FetchAttachment(ctx context.Context, att Attachment) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, att.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build attachment request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment %s: %w", att.Filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download attachment %s: status %d", att.Filename, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment %s: %w", att.Filename, err)
	}
	return data, nil
}

// RespondPanel answers an interaction with a panel. The first response for an
// interaction creates the wizard message; later ones edit it in place.
func (c *Client) RespondPanel(ctx context.Context, inter *Interaction, panel Panel) error {
	method := http.MethodPost
	if inter.Responded {
		method = http.MethodPatch
	}
	if err := c.do(ctx, method, "/interactions/"+inter.ID+"/response", panel, nil); err != nil {
		return fmt.Errorf("failed to respond to interaction %s: %w", inter.ID, err)
	}
	inter.Responded = true
	return nil
}

type ackRequest struct {
	Content   string `json:"content"`
	Ephemeral bool   `json:"ephemeral"`
}

// Acknowledge sends an ephemeral note visible only to the interacting user.
func (c *Client) Acknowledge(ctx context.Context, inter *Interaction, text string) error {
	req := ackRequest{Content: text, Ephemeral: true}
	if err := c.do(ctx, http.MethodPost, "/interactions/"+inter.ID+"/followup", req, nil); err != nil {
		return fmt.Errorf("failed to acknowledge interaction %s: %w", inter.ID, err)
	}
	return nil
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("platform API error: status %d: %s", e.Status, e.Message)
}

func isRateLimited(err error) bool {
	if apiErr, ok := err.(*apiError); ok {
		return apiErr.Status == http.StatusTooManyRequests
	}
	return false
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &apiError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
