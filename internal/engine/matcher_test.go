package engine

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"guild-relay-go/internal/model"
	"guild-relay-go/internal/transport"
)

func textRule() *model.ForwardRule {
	return &model.ForwardRule{
		RuleID:               "rule-1",
		GuildID:              "guild-1",
		IsActive:             true,
		SourceChannelID:      "chan-src",
		DestinationChannelID: "chan-dst",
		Settings:             model.DefaultRuleSettings(),
	}
}

func textMessage(content string) *transport.Message {
	return &transport.Message{
		ID:        "msg-1",
		GuildID:   "guild-1",
		ChannelID: "chan-src",
		AuthorID:  "user-1",
		Content:   content,
	}
}

func TestMatcherInactiveRuleRejects(t *testing.T) {
	rule := textRule()
	rule.IsActive = false

	assert.False(t, Matches(rule, textMessage("hello")))
}

func TestMatcherWrongSourceChannelRejects(t *testing.T) {
	rule := textRule()
	msg := textMessage("hello")
	msg.ChannelID = "chan-other"

	assert.False(t, Matches(rule, msg))
}

func TestMatcherEmptyBodyBypassesTypeGate(t *testing.T) {
	rule := textRule()
	// Disable every content category; an empty body must still pass the
	// type gate so the outcome depends only on the remaining gates.
	rule.Settings.MessageTypes = model.MessageTypes{}

	assert.True(t, Matches(rule, textMessage("")))

	// A non-empty body with no enabled category is rejected.
	assert.False(t, Matches(rule, textMessage("hello")))

	// The bypass does not override the length gate.
	rule.Settings.Filters.MinLength = 1
	assert.False(t, Matches(rule, textMessage("")))
}

func TestMatcherMessageTypeCategories(t *testing.T) {
	embeds := json.RawMessage(`[{"title":"x"}]`)

	tests := []struct {
		name    string
		types   model.MessageTypes
		msg     *transport.Message
		matches bool
	}{
		{
			name:    "text enabled",
			types:   model.MessageTypes{Text: true},
			msg:     textMessage("hello"),
			matches: true,
		},
		{
			name:  "media covers attachments",
			types: model.MessageTypes{Media: true},
			msg: &transport.Message{
				ChannelID:   "chan-src",
				Content:     "caption",
				Attachments: []transport.Attachment{{Filename: "a.png"}},
			},
			matches: true,
		},
		{
			name:  "files covers attachments",
			types: model.MessageTypes{Files: true},
			msg: &transport.Message{
				ChannelID:   "chan-src",
				Content:     "caption",
				Attachments: []transport.Attachment{{Filename: "a.zip"}},
			},
			matches: true,
		},
		{
			name:  "embeds",
			types: model.MessageTypes{Embeds: true},
			msg: &transport.Message{
				ChannelID: "chan-src",
				Content:   "caption",
				Embeds:    embeds,
			},
			matches: true,
		},
		{
			name:  "stickers",
			types: model.MessageTypes{Stickers: true},
			msg: &transport.Message{
				ChannelID: "chan-src",
				Content:   "caption",
				Stickers:  []transport.Sticker{{ID: "s1", Name: "wave"}},
			},
			matches: true,
		},
		{
			name:    "links",
			types:   model.MessageTypes{Links: true},
			msg:     textMessage("see https://example.com"),
			matches: true,
		},
		{
			name:    "link type without link content",
			types:   model.MessageTypes{Links: true},
			msg:     textMessage("no link here"),
			matches: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := textRule()
			rule.Settings.MessageTypes = tt.types
			assert.Equal(t, tt.matches, Matches(rule, tt.msg))
		})
	}
}

func TestMatcherLengthGateInclusiveBounds(t *testing.T) {
	rule := textRule()
	rule.Settings.Filters.MinLength = 3
	rule.Settings.Filters.MaxLength = 5

	assert.False(t, Matches(rule, textMessage("ab")))     // min-1
	assert.True(t, Matches(rule, textMessage("abc")))     // exactly min
	assert.True(t, Matches(rule, textMessage("abcde")))   // exactly max
	assert.False(t, Matches(rule, textMessage("abcdef"))) // max+1
}

func TestMatcherLengthGateCountsRunes(t *testing.T) {
	rule := textRule()
	rule.Settings.Filters.MinLength = 0
	rule.Settings.Filters.MaxLength = 4

	// 4 runes, 12 bytes.
	assert.True(t, Matches(rule, textMessage("日本語だ")))
}

func TestMatcherDefaultMaxLength(t *testing.T) {
	rule := textRule()

	assert.True(t, Matches(rule, textMessage(strings.Repeat("a", 2000))))
	assert.False(t, Matches(rule, textMessage(strings.Repeat("a", 2001))))
}

func TestMatcherBlockKeywordsSubstring(t *testing.T) {
	rule := textRule()
	rule.Settings.Filters.BlockKeywords = []string{"spam"}

	assert.False(t, Matches(rule, textMessage("this is spammy")))
	assert.True(t, Matches(rule, textMessage("this is fine")))
}

func TestMatcherBlockKeywordsWholeWord(t *testing.T) {
	rule := textRule()
	rule.Settings.AdvancedOptions.WholeWordOnly = true

	rule.Settings.Filters.BlockKeywords = []string{"cat"}
	assert.True(t, Matches(rule, textMessage("cats are great")))

	rule.Settings.Filters.BlockKeywords = []string{"cats"}
	assert.False(t, Matches(rule, textMessage("cats are great")))
}

func TestMatcherRequireKeywords(t *testing.T) {
	rule := textRule()
	rule.Settings.Filters.RequireKeywords = []string{"urgent", "alert"}

	assert.True(t, Matches(rule, textMessage("this is an alert")))
	assert.False(t, Matches(rule, textMessage("nothing to see")))
}

func TestMatcherCaseSensitivity(t *testing.T) {
	rule := textRule()
	rule.Settings.Filters.BlockKeywords = []string{"cat"}

	// Case-insensitive by default: CAT hits the block keyword.
	assert.False(t, Matches(rule, textMessage("CAT")))

	rule.Settings.AdvancedOptions.CaseSensitive = true
	assert.True(t, Matches(rule, textMessage("CAT")))
	assert.False(t, Matches(rule, textMessage("cat")))
}

func TestMatcherBlockBeatsRequire(t *testing.T) {
	rule := textRule()
	rule.Settings.Filters.RequireKeywords = []string{"alert"}
	rule.Settings.Filters.BlockKeywords = []string{"spam"}

	assert.False(t, Matches(rule, textMessage("spam alert")))
}
