package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	MessagesSeen     prometheus.Counter
	RuleMatches      prometheus.Counter
	ForwardSuccesses prometheus.Counter
	ForwardFailures  prometheus.Counter
	LimitHits        prometheus.Counter
	ProcessingTime   prometheus.Histogram
	ActiveSessions   prometheus.Gauge
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesSeen: promauto.NewCounter(prometheus.CounterOpts{
			Name: "guild_relay_messages_seen_total",
			Help: "Total number of inbound guild messages handled",
		}),
		RuleMatches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "guild_relay_rule_matches_total",
			Help: "Total number of rule matches across all guilds",
		}),
		ForwardSuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "guild_relay_forward_successes_total",
			Help: "Total number of successfully forwarded messages",
		}),
		ForwardFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "guild_relay_forward_failures_total",
			Help: "Total number of failed forward attempts",
		}),
		LimitHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "guild_relay_daily_limit_hits_total",
			Help: "Total number of rule evaluations skipped due to the daily limit",
		}),
		ProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "guild_relay_message_processing_duration_seconds",
			Help:    "Time spent processing inbound messages",
			Buckets: prometheus.DefBuckets,
		}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "guild_relay_active_setup_sessions",
			Help: "Number of currently active setup-wizard sessions",
		}),
	}
}
