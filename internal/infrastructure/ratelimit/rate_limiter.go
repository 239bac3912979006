package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionProgress   = "progress"
	ActionAssign     = "assign"
	ActionMatch      = "match"
	ActionLevelClaim = "level_reward"
)

// Limit describes a token bucket: Burst tokens refilled at PerMinute.
type Limit struct {
	PerMinute int
	Burst     int
}

func (l Limit) limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(l.PerMinute)/60.0), l.Burst)
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter manages rate limiting for different users and actions
type RateLimiter struct {
	buckets  map[string]*bucket
	limits   map[string]Limit
	fallback Limit
	mutex    sync.Mutex
	now      func() time.Time
}

// NewRateLimiter builds a limiter. Actions without an entry in limits use fallback.
func NewRateLimiter(limits map[string]Limit, fallback Limit) *RateLimiter {
	return &RateLimiter{
		buckets:  make(map[string]*bucket),
		limits:   limits,
		fallback: fallback,
		now:      time.Now,
	}
}

// DefaultLimits derives per-action limits from the progress rate.
func DefaultLimits(progressPerMinute int) map[string]Limit {
	return map[string]Limit{
		ActionProgress:   {PerMinute: progressPerMinute, Burst: progressPerMinute},
		ActionAssign:     {PerMinute: 10, Burst: 5},
		ActionMatch:      {PerMinute: 20, Burst: 10},
		ActionLevelClaim: {PerMinute: 5, Burst: 2},
	}
}

// Allow checks if a user action is allowed. When it is not, the returned
// duration is how long until a token frees up.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	key := userID + ":" + action
	now := rl.now()

	rl.mutex.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		limit, found := rl.limits[action]
		if !found {
			limit = rl.fallback
		}
		b = &bucket{limiter: limit.limiter()}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	rl.mutex.Unlock()

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup removes buckets idle for longer than idle and returns how many went.
func (rl *RateLimiter) Cleanup(idle time.Duration) int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	removed := 0
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > idle {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) Size() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.buckets)
}
