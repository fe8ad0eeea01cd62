package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJoinLimiter_DisabledAllowsEverything(t *testing.T) {
	l := NewJoinLimiter(0)
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("g", "alice"))
	}

	var nilLimiter *JoinLimiter
	assert.True(t, nilLimiter.Allow("g", "alice"))
}

func TestJoinLimiter_Cooldown(t *testing.T) {
	now := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	l := NewJoinLimiter(10 * time.Second)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("g", "alice"))
	assert.False(t, l.Allow("g", "alice"))

	// Other members and other guilds have their own bucket
	assert.True(t, l.Allow("g", "bob"))
	assert.True(t, l.Allow("other", "alice"))

	now = now.Add(5 * time.Second)
	assert.False(t, l.Allow("g", "alice"))

	now = now.Add(11 * time.Second)
	assert.True(t, l.Allow("g", "alice"))
}

func TestJoinLimiter_PrunesIdleMembers(t *testing.T) {
	now := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	l := NewJoinLimiter(time.Second)
	l.now = func() time.Time { return now }

	l.Allow("g", "alice")
	l.Allow("g", "bob")
	assert.Len(t, l.limiters, 2)

	now = now.Add(time.Minute)
	l.Allow("g", "carol")
	assert.Len(t, l.limiters, 1)
}
