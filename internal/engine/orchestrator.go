package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"guild-relay-go/internal/metrics"
	"guild-relay-go/internal/model"
	"guild-relay-go/internal/transport"
)

// SettingsStore is the slice of the settings store the orchestrator needs.
type SettingsStore interface {
	GetGuildSettings(guildID string) (*model.GuildSettings, error)
	GetDailyMessageCount(guildID string) (int, error)
	LogForwardedMessage(entry *model.ForwardLog) error
}

// Orchestrator handles inbound message events: it pulls guild settings,
// enforces the daily limit and runs every rule against the message.
type Orchestrator struct {
	store     SettingsStore
	transport transport.Transport
	executor  *Executor
	metrics   *metrics.Metrics
}

// NewOrchestrator creates a new forwarding orchestrator
func NewOrchestrator(store SettingsStore, t transport.Transport, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		store:     store,
		transport: t,
		executor:  NewExecutor(t),
		metrics:   m,
	}
}

// HandleMessage processes one inbound message event. It never propagates a
// failure: one guild's error must not affect other events.
func (o *Orchestrator) HandleMessage(ctx context.Context, msg *transport.Message) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("guild_id", msg.GuildID).
				Errorf("Panic while handling message %s: %v", msg.ID, r)
		}
	}()

	if msg.AuthorIsBot || msg.GuildID == "" {
		return
	}

	o.metrics.MessagesSeen.Inc()
	start := time.Now()
	defer func() {
		o.metrics.ProcessingTime.Observe(time.Since(start).Seconds())
	}()

	if err := o.processMessage(ctx, msg); err != nil {
		logrus.WithFields(logrus.Fields{
			"guild_id":   msg.GuildID,
			"channel_id": msg.ChannelID,
			"message_id": msg.ID,
		}).Errorf("Error handling message: %v", err)
	}
}

func (o *Orchestrator) processMessage(ctx context.Context, msg *transport.Message) error {
	settings, err := o.store.GetGuildSettings(msg.GuildID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return fmt.Errorf("failed to get guild settings: %w", err)
	}

	if !settings.FeatureEnabled(model.FeatureForwardingEnabled) {
		return nil
	}
	if len(settings.Rules) == 0 {
		return nil
	}

	// Every rule is evaluated independently: one message may fan out to
	// several destinations. The limit notice goes out at most once.
	limitNotified := false

	for i := range settings.Rules {
		rule := &settings.Rules[i]
		if !rule.IsActive || rule.SourceChannelID != msg.ChannelID {
			continue
		}

		count, err := o.store.GetDailyMessageCount(msg.GuildID)
		if err != nil {
			return fmt.Errorf("failed to get daily message count: %w", err)
		}
		if count >= settings.DailyLimit {
			o.metrics.LimitHits.Inc()
			if !limitNotified && settings.FeatureEnabled(model.FeatureNotifyOnError) {
				o.notifyLimitReached(ctx, msg.ChannelID, settings.DailyLimit)
				limitNotified = true
			}
			continue
		}

		if !Matches(rule, msg) {
			continue
		}
		o.metrics.RuleMatches.Inc()

		destination, err := o.transport.ResolveChannel(ctx, rule.DestinationChannelID)
		if err != nil || destination == nil || !destination.Postable {
			logrus.WithFields(logrus.Fields{
				"guild_id": msg.GuildID,
				"rule_id":  rule.RuleID,
			}).Warnf("Destination channel %s not available", rule.DestinationChannelID)
			continue
		}

		_, delivered := o.executor.Forward(ctx, rule.Settings.Formatting, msg, destination)
		if delivered {
			o.metrics.ForwardSuccesses.Inc()
		} else {
			o.metrics.ForwardFailures.Inc()
		}

		entry := &model.ForwardLog{
			GuildID:              msg.GuildID,
			RuleID:               rule.RuleID,
			SourceChannelID:      msg.ChannelID,
			DestinationChannelID: rule.DestinationChannelID,
			OriginalMessageID:    msg.ID,
			Success:              delivered,
		}
		if err := o.store.LogForwardedMessage(entry); err != nil {
			logrus.WithField("guild_id", msg.GuildID).
				Errorf("Failed to log forwarded message: %v", err)
		}
	}

	return nil
}

func (o *Orchestrator) notifyLimitReached(ctx context.Context, channelID string, limit int) {
	notice := transport.OutboundMessage{
		Content:     fmt.Sprintf("Daily message forwarding limit of %d reached.", limit),
		DeleteAfter: 60 * time.Second,
	}
	if _, err := o.transport.SendMessage(ctx, channelID, notice); err != nil {
		logrus.Warnf("Failed to send limit notice to channel %s: %v", channelID, err)
	}
}
