package setup

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"guild-relay-go/internal/model"
	"guild-relay-go/internal/transport"
)

// Platform is the slice of the transport the wizard needs: channel lookup
// and the interaction/UI contract.
type Platform interface {
	ResolveChannel(ctx context.Context, channelID string) (*transport.Channel, error)
	RespondPanel(ctx context.Context, inter *transport.Interaction, panel transport.Panel) error
	Acknowledge(ctx context.Context, inter *transport.Interaction, text string) error
}

// CommitFunc persists a finished rule into the guild's rule list.
type CommitFunc func(ctx context.Context, rule *model.ForwardRule) error

// Action identifiers carried by wizard panel affordances.
const (
	ActionSetupStart     = "setup_start"
	ActionSourceSelect   = "rule_source_select"
	ActionSourceContinue = "rule_source_continue"
	ActionSourceBack     = "rule_source_channel_back"
	ActionSourceCancel   = "rule_source_channel_cancel"
	ActionDestSelect     = "rule_dest_select"
	ActionDestContinue   = "rule_dest_continue"
	ActionDestBack       = "rule_destination_channel_back"
	ActionDestCancel     = "rule_destination_channel_cancel"
	ActionNameInput      = "rule_name_input"
	ActionNameBack       = "rule_name_back"
	ActionAutoName       = "rule_auto_name"
	ActionNameCancel     = "rule_name_cancel"
	ActionFinalCreate    = "rule_final_create"
	ActionEditSettings   = "rule_edit_settings"
	ActionPreviewBack    = "rule_preview_back"
	ActionStartOver      = "rule_start_over"
)

// Flow drives the interactive rule-creation wizard: a step sequence over a
// setup session that ends in a committed rule or a cancellation.
type Flow struct {
	manager  *Manager
	platform Platform
	onCommit CommitFunc
}

// NewFlow creates a rule-creation flow. onCommit is invoked once per
// committed rule and is expected to persist it.
func NewFlow(manager *Manager, platform Platform, onCommit CommitFunc) *Flow {
	return &Flow{manager: manager, platform: platform, onCommit: onCommit}
}

// Dispatch routes one interaction to the wizard. ActionSetupStart opens (or
// resumes) the guild's session; every other action requires a live session.
// Draft state is read and written only through the manager, so concurrent
// interactions for one guild serialize on the session table lock.
func (f *Flow) Dispatch(ctx context.Context, inter *transport.Interaction, actionID, value string) error {
	if inter.GuildID == "" {
		return f.platform.Acknowledge(ctx, inter, "The setup wizard only works inside a guild.")
	}

	if actionID == ActionSetupStart {
		session := f.manager.CreateSession(inter.GuildID, inter.UserID)
		return f.Start(ctx, inter, session)
	}

	if f.manager.GetSession(inter.GuildID) == nil {
		return f.ackNoSession(ctx, inter)
	}

	switch actionID {
	case ActionSourceSelect:
		return f.handleChannelSelection(ctx, inter, "source", value)
	case ActionDestSelect:
		return f.handleChannelSelection(ctx, inter, "destination", value)

	case ActionSourceContinue:
		draft := f.manager.MutateDraft(inter.GuildID, func(d *RuleDraft) {
			if d.SourceChannelID != "" {
				d.Step = StepDestinationChannel
			}
		})
		if draft == nil {
			return f.ackNoSession(ctx, inter)
		}
		if draft.SourceChannelID == "" {
			return f.platform.Acknowledge(ctx, inter, "Select a source channel first.")
		}
		return f.showDestinationChannelStep(ctx, inter, draft)

	case ActionDestContinue:
		draft := f.manager.MutateDraft(inter.GuildID, func(d *RuleDraft) {
			if d.DestinationChannelID != "" {
				d.Step = StepRuleName
			}
		})
		if draft == nil {
			return f.ackNoSession(ctx, inter)
		}
		if draft.DestinationChannelID == "" {
			return f.platform.Acknowledge(ctx, inter, "Select a destination channel first.")
		}
		return f.showRuleNameStep(ctx, inter, draft)

	case ActionNameInput:
		name := strings.TrimSpace(value)
		if name == "" {
			return f.platform.Acknowledge(ctx, inter, "Rule name must not be empty.")
		}
		draft := f.manager.MutateDraft(inter.GuildID, func(d *RuleDraft) {
			d.RuleName = name
			d.Step = StepRulePreview
		})
		if draft == nil {
			return f.ackNoSession(ctx, inter)
		}
		return f.showRulePreviewStep(ctx, inter, draft)

	case ActionAutoName:
		return f.handleAutoName(ctx, inter)

	case ActionSourceBack:
		// Already on the first step.
		draft := f.manager.MutateDraft(inter.GuildID, func(*RuleDraft) {})
		if draft == nil {
			return f.ackNoSession(ctx, inter)
		}
		return f.showSourceChannelStep(ctx, inter, draft)
	case ActionDestBack:
		draft := f.manager.MutateDraft(inter.GuildID, func(d *RuleDraft) {
			d.Step = StepSourceChannel
		})
		if draft == nil {
			return f.ackNoSession(ctx, inter)
		}
		return f.showSourceChannelStep(ctx, inter, draft)
	case ActionNameBack:
		draft := f.manager.MutateDraft(inter.GuildID, func(d *RuleDraft) {
			d.Step = StepDestinationChannel
		})
		if draft == nil {
			return f.ackNoSession(ctx, inter)
		}
		return f.showDestinationChannelStep(ctx, inter, draft)
	case ActionPreviewBack:
		draft := f.manager.MutateDraft(inter.GuildID, func(d *RuleDraft) {
			d.Step = StepRuleName
		})
		if draft == nil {
			return f.ackNoSession(ctx, inter)
		}
		return f.showRuleNameStep(ctx, inter, draft)

	case ActionStartOver:
		draft := f.manager.MutateDraft(inter.GuildID, func(d *RuleDraft) {
			*d = RuleDraft{Step: StepSourceChannel}
		})
		if draft == nil {
			return f.ackNoSession(ctx, inter)
		}
		return f.showSourceChannelStep(ctx, inter, draft)

	case ActionSourceCancel, ActionDestCancel, ActionNameCancel:
		f.manager.MutateDraft(inter.GuildID, func(d *RuleDraft) {
			d.Step = StepCancelled
		})
		f.manager.CleanupSession(inter.GuildID)
		return f.platform.Acknowledge(ctx, inter, "Rule creation cancelled.")

	case ActionEditSettings:
		return f.platform.Acknowledge(ctx, inter, "Rule settings can be edited after creation via the admin API.")

	case ActionFinalCreate:
		return f.commitRule(ctx, inter)
	}

	return f.platform.Acknowledge(ctx, inter, "Unknown action.")
}

// Start opens the wizard at the session's current step.
func (f *Flow) Start(ctx context.Context, inter *transport.Interaction, session *Session) error {
	draft := f.manager.MutateDraft(session.GuildID, func(d *RuleDraft) {
		if d.Step == "" {
			d.Step = StepSourceChannel
		}
	})
	if draft == nil {
		return f.ackNoSession(ctx, inter)
	}

	switch draft.Step {
	case StepDestinationChannel:
		return f.showDestinationChannelStep(ctx, inter, draft)
	case StepRuleName:
		return f.showRuleNameStep(ctx, inter, draft)
	case StepRulePreview:
		return f.showRulePreviewStep(ctx, inter, draft)
	default:
		return f.showSourceChannelStep(ctx, inter, draft)
	}
}

func (f *Flow) ackNoSession(ctx context.Context, inter *transport.Interaction) error {
	return f.platform.Acknowledge(ctx, inter, "No active setup session. Start the setup wizard first.")
}

func (f *Flow) showSourceChannelStep(ctx context.Context, inter *transport.Interaction, draft *RuleDraft) error {
	hasSource := draft.SourceChannelID != ""

	panel := transport.Panel{
		Title:       "Step 1: Select Source Channel",
		Description: "This is the channel I'll watch for messages to forward.",
		Select: &transport.SelectMenu{
			ID:          ActionSourceSelect,
			Kind:        "channel",
			Placeholder: "Choose a channel",
		},
		Actions: []transport.Action{
			{ID: ActionSourceContinue, Label: "Continue", Style: transport.StyleSuccess, Disabled: !hasSource},
			{ID: ActionSourceBack, Label: "Back", Style: transport.StyleSecondary},
			{ID: ActionSourceCancel, Label: "Cancel", Style: transport.StyleDanger},
		},
	}
	if hasSource {
		panel.Fields = append(panel.Fields, transport.PanelField{
			Name:   "Selected Source",
			Value:  channelMention(draft.SourceChannelID),
			Inline: true,
		})
	}

	return f.platform.RespondPanel(ctx, inter, panel)
}

func (f *Flow) showDestinationChannelStep(ctx context.Context, inter *transport.Interaction, draft *RuleDraft) error {
	hasDest := draft.DestinationChannelID != ""

	panel := transport.Panel{
		Title:       "Step 2: Select Destination Channel",
		Description: "This is where I'll forward messages from the source channel.",
		Fields: []transport.PanelField{
			{Name: "Source Channel", Value: channelMention(draft.SourceChannelID), Inline: true},
		},
		Select: &transport.SelectMenu{
			ID:          ActionDestSelect,
			Kind:        "channel",
			Placeholder: "Choose a channel",
		},
		Actions: []transport.Action{
			{ID: ActionDestContinue, Label: "Continue", Style: transport.StyleSuccess, Disabled: !hasDest},
			{ID: ActionDestBack, Label: "Back", Style: transport.StyleSecondary},
			{ID: ActionDestCancel, Label: "Cancel", Style: transport.StyleDanger},
		},
	}

	return f.platform.RespondPanel(ctx, inter, panel)
}

func (f *Flow) showRuleNameStep(ctx context.Context, inter *transport.Interaction, draft *RuleDraft) error {
	panel := transport.Panel{
		Title: "Step 3: Name Your Rule",
		Description: "Give your forwarding rule a descriptive name so you can easily identify it later.\n\n" +
			"**Examples:**\n" +
			"- 'Announcements to Archive'\n" +
			"- 'Support Questions to Staff'",
		Fields: []transport.PanelField{
			{Name: "Source", Value: channelMention(draft.SourceChannelID), Inline: true},
			{Name: "Destination", Value: channelMention(draft.DestinationChannelID), Inline: true},
		},
		Actions: []transport.Action{
			{ID: ActionNameInput, Label: "Enter Rule Name", Style: transport.StylePrimary},
			{ID: ActionNameBack, Label: "Back", Style: transport.StyleSecondary},
			{ID: ActionAutoName, Label: "Use Auto-Name", Style: transport.StyleSecondary},
			{ID: ActionNameCancel, Label: "Cancel", Style: transport.StyleDanger},
		},
	}

	return f.platform.RespondPanel(ctx, inter, panel)
}

func (f *Flow) showRulePreviewStep(ctx context.Context, inter *transport.Interaction, draft *RuleDraft) error {
	validationErrors := f.validateDraft(ctx, draft)
	valid := len(validationErrors) == 0

	panel := transport.Panel{
		Title: "Step 4: Review Your Rule",
		Fields: []transport.PanelField{
			{Name: "Name", Value: draft.RuleName, Inline: false},
			{Name: "Source", Value: channelMention(draft.SourceChannelID), Inline: true},
			{Name: "Destination", Value: channelMention(draft.DestinationChannelID), Inline: true},
		},
	}

	if valid {
		panel.Fields = append(panel.Fields, transport.PanelField{
			Name:  "Ready to Create!",
			Value: "Click 'Create Rule' to save this forwarding rule.",
		})
		panel.Actions = append(panel.Actions, transport.Action{
			ID: ActionFinalCreate, Label: "Create Rule", Style: transport.StyleSuccess,
		})
	} else {
		panel.Color = "red"
		var lines []string
		for _, e := range validationErrors {
			lines = append(lines, "- "+e)
		}
		panel.Fields = append(panel.Fields,
			transport.PanelField{Name: "Validation Errors", Value: strings.Join(lines, "\n")},
			transport.PanelField{Name: "Needs Fixing", Value: "Please go back and fix the issues above."},
		)
	}

	panel.Actions = append(panel.Actions,
		transport.Action{ID: ActionEditSettings, Label: "Edit Rule", Style: transport.StylePrimary},
		transport.Action{ID: ActionPreviewBack, Label: "Back", Style: transport.StyleSecondary},
		transport.Action{ID: ActionStartOver, Label: "Start Over", Style: transport.StyleSecondary},
	)

	return f.platform.RespondPanel(ctx, inter, panel)
}

func (f *Flow) handleChannelSelection(ctx context.Context, inter *transport.Interaction, which, channelID string) error {
	channel, err := f.platform.ResolveChannel(ctx, channelID)
	if err != nil || channel == nil {
		return f.platform.Acknowledge(ctx, inter, "That channel is not available.")
	}
	if which == "destination" && !channel.Postable {
		return f.platform.Acknowledge(ctx, inter, "I can't post into that channel. Pick another destination.")
	}

	draft := f.manager.MutateDraft(inter.GuildID, func(d *RuleDraft) {
		if which == "source" {
			d.SourceChannelID = channelID
		} else {
			d.DestinationChannelID = channelID
		}
	})
	if draft == nil {
		return f.ackNoSession(ctx, inter)
	}

	if err := f.platform.Acknowledge(ctx, inter,
		fmt.Sprintf("Selected %s as %s channel.", channelMention(channelID), which)); err != nil {
		logrus.Warnf("Failed to acknowledge channel selection: %v", err)
	}

	// Re-render the current step so the continue button reflects the pick.
	switch draft.Step {
	case StepDestinationChannel:
		return f.showDestinationChannelStep(ctx, inter, draft)
	default:
		return f.showSourceChannelStep(ctx, inter, draft)
	}
}

func (f *Flow) handleAutoName(ctx context.Context, inter *transport.Interaction) error {
	draft := f.manager.DraftSnapshot(inter.GuildID)
	if draft == nil || draft.SourceChannelID == "" || draft.DestinationChannelID == "" {
		return f.platform.Acknowledge(ctx, inter, "Could not generate automatic name. Please select channels first.")
	}

	source, err := f.platform.ResolveChannel(ctx, draft.SourceChannelID)
	if err != nil || source == nil {
		return f.platform.Acknowledge(ctx, inter, "Could not generate automatic name. Please select channels first.")
	}
	dest, err := f.platform.ResolveChannel(ctx, draft.DestinationChannelID)
	if err != nil || dest == nil {
		return f.platform.Acknowledge(ctx, inter, "Could not generate automatic name. Please select channels first.")
	}

	name := fmt.Sprintf("Forward from #%s to #%s", source.Name, dest.Name)
	draft = f.manager.MutateDraft(inter.GuildID, func(d *RuleDraft) {
		d.RuleName = name
		d.Step = StepRulePreview
	})
	if draft == nil {
		return f.ackNoSession(ctx, inter)
	}

	if err := f.platform.Acknowledge(ctx, inter,
		fmt.Sprintf("Using automatic name: `%s`", name)); err != nil {
		logrus.Warnf("Failed to acknowledge auto-name: %v", err)
	}
	return f.showRulePreviewStep(ctx, inter, draft)
}

func (f *Flow) validateDraft(ctx context.Context, draft *RuleDraft) []string {
	var errs []string

	if draft.SourceChannelID == "" {
		errs = append(errs, "No source channel selected.")
	} else if ch, err := f.platform.ResolveChannel(ctx, draft.SourceChannelID); err != nil || ch == nil {
		errs = append(errs, "Source channel is not available.")
	}

	if draft.DestinationChannelID == "" {
		errs = append(errs, "No destination channel selected.")
	} else if ch, err := f.platform.ResolveChannel(ctx, draft.DestinationChannelID); err != nil || ch == nil || !ch.Postable {
		errs = append(errs, "Destination channel cannot be posted into.")
	}

	if draft.SourceChannelID != "" && draft.SourceChannelID == draft.DestinationChannelID {
		errs = append(errs, "Source and destination must be different channels.")
	}

	if strings.TrimSpace(draft.RuleName) == "" {
		errs = append(errs, "Rule name must not be empty.")
	}

	return errs
}

// commitRule validates the draft once more, persists the finished rule and
// closes the session. A persistence failure keeps the session on the preview
// step so the admin can retry.
func (f *Flow) commitRule(ctx context.Context, inter *transport.Interaction) error {
	draft := f.manager.DraftSnapshot(inter.GuildID)
	if draft == nil || draft.Step != StepRulePreview {
		return f.platform.Acknowledge(ctx, inter, "Nothing to create yet. Finish the wizard steps first.")
	}
	if errs := f.validateDraft(ctx, draft); len(errs) > 0 {
		return f.showRulePreviewStep(ctx, inter, draft)
	}

	rule := &model.ForwardRule{
		RuleID:               uuid.NewString(),
		GuildID:              inter.GuildID,
		Name:                 draft.RuleName,
		IsActive:             true,
		SourceChannelID:      draft.SourceChannelID,
		DestinationChannelID: draft.DestinationChannelID,
		Settings:             model.DefaultRuleSettings(),
	}

	if f.onCommit != nil {
		if err := f.onCommit(ctx, rule); err != nil {
			logrus.WithField("guild_id", inter.GuildID).
				Errorf("Failed to persist rule: %v", err)
			return f.platform.Acknowledge(ctx, inter,
				fmt.Sprintf("Error creating rule: %v", err))
		}
	}

	f.manager.UpdateSession(inter.GuildID, SessionUpdate{AppendRule: rule})
	f.manager.MutateDraft(inter.GuildID, func(d *RuleDraft) {
		d.Step = StepCommitted
	})

	if err := f.platform.Acknowledge(ctx, inter, "Rule created successfully!"); err != nil {
		logrus.Warnf("Failed to acknowledge rule creation: %v", err)
	}
	f.manager.CleanupSession(inter.GuildID)
	return nil
}

func channelMention(channelID string) string {
	if channelID == "" {
		return "Unknown"
	}
	return "<#" + channelID + ">"
}
