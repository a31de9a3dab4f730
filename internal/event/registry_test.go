package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/statebus/internal/event/topic"
)

func newTestSub(id, pattern string) *subscription {
	return newSubscription(id, topic.NewMatcher(topic.Literal(pattern)), func(*Event) {}, false)
}

func TestRegistry_MatchOrder(t *testing.T) {
	r := NewRegistry()
	r.Add(newTestSub("1", "a"))
	r.Add(newTestSub("2", "b"))
	r.Add(newTestSub("3", "a"))

	subs := r.Match([]string{"a"})
	require.Len(t, subs, 2)
	assert.Equal(t, "1", subs[0].id)
	assert.Equal(t, "3", subs[1].id)

	assert.Len(t, r.Match([]string{"a", "b"}), 3)
	assert.Empty(t, r.Match([]string{"c"}))
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	r.Add(newTestSub("1", "a"))
	r.Add(newTestSub("2", "a"))

	snapshot := r.Match([]string{"a"})

	assert.True(t, r.Remove("1"))
	assert.False(t, r.Remove("1"))
	assert.Equal(t, 1, r.Count())

	_, ok := r.Get("1")
	assert.False(t, ok)
	_, ok = r.Get("2")
	assert.True(t, ok)

	// Earlier snapshots are unaffected.
	assert.Len(t, snapshot, 2)
}

func TestRegistry_SkipsCancelled(t *testing.T) {
	r := NewRegistry()
	sub := newTestSub("1", "a")
	r.Add(sub)

	require.True(t, sub.cancel())
	assert.False(t, sub.cancel())
	assert.Equal(t, SubscriptionStateCancelled, sub.State())
	assert.Empty(t, r.Match([]string{"a"}))
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()
	r.Add(newTestSub("1", "a"))
	r.Add(newTestSub("2", "b"))

	cleared := r.Clear()
	assert.Len(t, cleared, 2)
	assert.Zero(t, r.Count())
}

func TestSubscriptionState_String(t *testing.T) {
	assert.Equal(t, "active", SubscriptionStateActive.String())
	assert.Equal(t, "cancelled", SubscriptionStateCancelled.String())
	assert.Equal(t, "unknown", SubscriptionState(9).String())
}
