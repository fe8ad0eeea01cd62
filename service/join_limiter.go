package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// JoinLimiter throttles lobby joins per member with a token bucket of one token
// refilled every cooldown. A zero cooldown allows everything.
type JoinLimiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	limiters map[string]*memberLimiter
	now      func() time.Time
}

type memberLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewJoinLimiter creates a limiter with the given cooldown
func NewJoinLimiter(cooldown time.Duration) *JoinLimiter {
	return &JoinLimiter{
		cooldown: cooldown,
		limiters: make(map[string]*memberLimiter),
		now:      time.Now,
	}
}

// Allow reports whether the member may get a new room now
func (l *JoinLimiter) Allow(guildID, userID string) bool {
	if l == nil || l.cooldown <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneLocked(now)

	key := guildID + ":" + userID
	entry, ok := l.limiters[key]
	if !ok {
		entry = &memberLimiter{limiter: rate.NewLimiter(rate.Every(l.cooldown), 1)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// pruneLocked forgets members whose bucket has fully refilled
func (l *JoinLimiter) pruneLocked(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.cooldown {
			delete(l.limiters, key)
		}
	}
}
