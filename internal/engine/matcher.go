package engine

import (
	"strings"
	"unicode/utf8"

	"guild-relay-go/internal/model"
	"guild-relay-go/internal/transport"
)

// Matches evaluates a single rule against an inbound message. Pure: no I/O,
// no mutation. Gates run in order and short-circuit on the first failure.
func Matches(rule *model.ForwardRule, msg *transport.Message) bool {
	if !rule.IsActive || rule.SourceChannelID != msg.ChannelID {
		return false
	}
	if !matchesMessageType(rule.Settings.MessageTypes, msg) {
		return false
	}
	return matchesFilters(rule.Settings.Filters, rule.Settings.AdvancedOptions, msg)
}

func matchesMessageType(types model.MessageTypes, msg *transport.Message) bool {
	if msg.Content != "" && types.Text {
		return true
	}
	if len(msg.Attachments) > 0 && (types.Media || types.Files) {
		return true
	}
	if msg.HasEmbeds() && types.Embeds {
		return true
	}
	if len(msg.Stickers) > 0 && types.Stickers {
		return true
	}
	if strings.Contains(msg.Content, "http") && types.Links {
		return true
	}
	// An empty body passes the type gate unconditionally so non-text content
	// is not blocked when no text category applies.
	if msg.Content == "" {
		return true
	}
	return false
}

func matchesFilters(filters model.Filters, advanced model.AdvancedOptions, msg *transport.Message) bool {
	content := msg.Content
	if !advanced.CaseSensitive {
		content = strings.ToLower(content)
	}

	// Length bounds are inclusive and apply to the raw body, original case.
	length := utf8.RuneCountInString(msg.Content)
	if length < filters.MinLength || length > filters.MaxLength {
		return false
	}

	require := filters.RequireKeywords
	block := filters.BlockKeywords
	if !advanced.CaseSensitive {
		require = lowerAll(require)
		block = lowerAll(block)
	}

	if advanced.WholeWordOnly {
		words := make(map[string]struct{})
		for _, w := range strings.Fields(content) {
			words[w] = struct{}{}
		}
		if anyWordIn(words, block) {
			return false
		}
		if len(require) > 0 && !anyWordIn(words, require) {
			return false
		}
	} else {
		if anySubstringIn(content, block) {
			return false
		}
		if len(require) > 0 && !anySubstringIn(content, require) {
			return false
		}
	}

	return true
}

func lowerAll(keywords []string) []string {
	out := make([]string, len(keywords))
	for i, k := range keywords {
		out[i] = strings.ToLower(k)
	}
	return out
}

func anyWordIn(words map[string]struct{}, keywords []string) bool {
	for _, k := range keywords {
		if _, ok := words[k]; ok {
			return true
		}
	}
	return false
}

func anySubstringIn(content string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(content, k) {
			return true
		}
	}
	return false
}
