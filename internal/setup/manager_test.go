package setup

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-relay-go/internal/model"
)

func TestManagerCreateSessionIsIdempotentPerGuild(t *testing.T) {
	m := NewManager(30*time.Minute, nil)

	first := m.CreateSession("guild-1", "user-1")
	first.CurrentRule = &RuleDraft{Step: StepDestinationChannel, SourceChannelID: "chan-a"}

	// A second create within the TTL returns the same session, even for a
	// different user.
	second := m.CreateSession("guild-1", "user-2")
	assert.Same(t, first, second)
	assert.Equal(t, "user-1", second.UserID)
	require.NotNil(t, second.CurrentRule)
	assert.Equal(t, "chan-a", second.CurrentRule.SourceChannelID)

	assert.Equal(t, 1, m.Count())
}

func TestManagerSessionsAreScopedPerGuild(t *testing.T) {
	m := NewManager(30*time.Minute, nil)

	a := m.CreateSession("guild-1", "user-1")
	b := m.CreateSession("guild-2", "user-1")

	assert.NotSame(t, a, b)
	assert.Equal(t, 2, m.Count())
}

func TestManagerGetSessionEvictsExpired(t *testing.T) {
	m := NewManager(30*time.Minute, nil)

	session := m.CreateSession("guild-1", "user-1")
	session.LastActivity = time.Now().Add(-31 * time.Minute)

	assert.Nil(t, m.GetSession("guild-1"))
	assert.Equal(t, 0, m.Count())
}

func TestManagerCreateReplacesExpiredSession(t *testing.T) {
	m := NewManager(30*time.Minute, nil)

	old := m.CreateSession("guild-1", "user-1")
	old.LastActivity = time.Now().Add(-time.Hour)

	fresh := m.CreateSession("guild-1", "user-2")
	assert.NotSame(t, old, fresh)
	assert.Equal(t, "user-2", fresh.UserID)
}

func TestManagerUpdateSessionRefreshesActivity(t *testing.T) {
	m := NewManager(30*time.Minute, nil)

	session := m.CreateSession("guild-1", "user-1")
	session.LastActivity = time.Now().Add(-29 * time.Minute)

	draft := &RuleDraft{Step: StepSourceChannel}
	require.True(t, m.UpdateSession("guild-1", SessionUpdate{CurrentRule: draft}))

	assert.Same(t, draft, session.CurrentRule)
	assert.WithinDuration(t, time.Now(), session.LastActivity, time.Second)
}

func TestManagerUpdateSessionAppendsRules(t *testing.T) {
	m := NewManager(30*time.Minute, nil)
	session := m.CreateSession("guild-1", "user-1")

	rule := &model.ForwardRule{RuleID: "rule-1", GuildID: "guild-1"}
	require.True(t, m.UpdateSession("guild-1", SessionUpdate{AppendRule: rule}))

	require.Len(t, session.ForwardingRules, 1)
	assert.Equal(t, "rule-1", session.ForwardingRules[0].RuleID)
}

func TestManagerUpdateUnknownGuildReturnsFalse(t *testing.T) {
	m := NewManager(30*time.Minute, nil)

	assert.False(t, m.UpdateSession("guild-x", SessionUpdate{}))
}

func TestManagerCleanupExpiredSessions(t *testing.T) {
	m := NewManager(30*time.Minute, nil)

	expired := m.CreateSession("guild-1", "user-1")
	expired.LastActivity = time.Now().Add(-time.Hour)
	m.CreateSession("guild-2", "user-2")

	assert.Equal(t, 1, m.CleanupExpiredSessions())
	assert.Equal(t, 1, m.Count())
	assert.Nil(t, m.GetSession("guild-1"))
	assert.NotNil(t, m.GetSession("guild-2"))
}

func TestManagerCleanupSession(t *testing.T) {
	m := NewManager(30*time.Minute, nil)
	m.CreateSession("guild-1", "user-1")

	assert.True(t, m.CleanupSession("guild-1"))
	assert.False(t, m.CleanupSession("guild-1"))
	assert.Equal(t, 0, m.Count())
}

func TestManagerCountSkipsExpiredSessions(t *testing.T) {
	m := NewManager(30*time.Minute, nil)

	session := m.CreateSession("guild-1", "user-1")
	session.LastActivity = time.Now().Add(-time.Hour)

	// A stale entry must not show up in the count before the sweep runs.
	assert.Equal(t, 0, m.Count())

	m.CreateSession("guild-2", "user-2")
	stale := m.CreateSession("guild-3", "user-3")
	stale.LastActivity = time.Now().Add(-31 * time.Minute)

	assert.Equal(t, 1, m.Count())
	assert.Nil(t, m.GetSession("guild-3"))
	assert.NotNil(t, m.GetSession("guild-2"))
}

func TestManagerGaugeTracksLiveSessionsOnly(t *testing.T) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_active_setup_sessions"})
	m := NewManager(30*time.Minute, gauge)

	m.CreateSession("guild-1", "user-1")
	stale := m.CreateSession("guild-2", "user-2")
	assert.Equal(t, float64(2), testutil.ToFloat64(gauge))

	stale.LastActivity = time.Now().Add(-time.Hour)
	m.CreateSession("guild-3", "user-3")

	// guild-2 expired but has not been evicted yet; the gauge skips it.
	assert.Equal(t, float64(2), testutil.ToFloat64(gauge))
}

func TestManagerMutateDraftSwapsCopy(t *testing.T) {
	m := NewManager(30*time.Minute, nil)
	session := m.CreateSession("guild-1", "user-1")

	first := m.MutateDraft("guild-1", func(d *RuleDraft) {
		d.Step = StepSourceChannel
		d.SourceChannelID = "chan-a"
	})
	require.NotNil(t, first)

	// The returned draft is a private copy; mutating it does not leak back
	// into the session.
	first.SourceChannelID = "chan-b"
	assert.Equal(t, "chan-a", session.CurrentRule.SourceChannelID)

	assert.Nil(t, m.MutateDraft("guild-x", func(*RuleDraft) {}))
}

func TestManagerDraftSnapshotIsCopy(t *testing.T) {
	m := NewManager(30*time.Minute, nil)
	m.CreateSession("guild-1", "user-1")

	// No draft until the flow starts.
	assert.Nil(t, m.DraftSnapshot("guild-1"))

	m.MutateDraft("guild-1", func(d *RuleDraft) { d.RuleName = "archive mirror" })

	snap := m.DraftSnapshot("guild-1")
	require.NotNil(t, snap)
	snap.RuleName = "changed"
	assert.Equal(t, "archive mirror", m.DraftSnapshot("guild-1").RuleName)
}
