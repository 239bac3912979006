// Package presence keeps a process-wide, in-memory view of who is currently
// matching on which mission and a short-lived buffer of match events that
// clients poll. Nothing here survives a restart; the persisted match record
// remains the source of truth for membership.
package presence

import (
	"sort"
	"sync"
	"time"

	"motiv8/internal/domain/entity"
)

// DefaultEventCapacity bounds the number of events kept per mission.
const DefaultEventCapacity = 64

type Registry struct {
	mu       sync.Mutex
	window   time.Duration
	capacity int
	now      func() time.Time

	members map[string]map[string]entity.MatchMember
	events  map[string]*eventRing
}

type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithCapacity(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.capacity = n
		}
	}
}

func NewRegistry(window time.Duration, opts ...Option) *Registry {
	r := &Registry{
		window:   window,
		capacity: DefaultEventCapacity,
		now:      time.Now,
		members:  make(map[string]map[string]entity.MatchMember),
		events:   make(map[string]*eventRing),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Join(missionID string, member entity.MatchMember) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[missionID]
	if !ok {
		set = make(map[string]entity.MatchMember)
		r.members[missionID] = set
	}
	if existing, ok := set[member.UserID]; ok {
		member.JoinedAt = existing.JoinedAt
	}
	set[member.UserID] = member
}

func (r *Registry) Leave(missionID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[missionID]
	if !ok {
		return
	}
	delete(set, userID)
	if len(set) == 0 {
		delete(r.members, missionID)
	}
}

// Dissolve forgets every member of the mission. Buffered events stay until
// they age out.
func (r *Registry) Dissolve(missionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.members, missionID)
}

func (r *Registry) Members(missionID string) []entity.MatchMember {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.members[missionID]
	out := make([]entity.MatchMember, 0, len(set))
	for _, m := range set {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}

// Append buffers an event. A zero timestamp is stamped with the current time.
func (r *Registry) Append(event entity.MatchEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = r.now()
	}
	ring, ok := r.events[event.MissionID]
	if !ok {
		ring = newEventRing(r.capacity)
		r.events[event.MissionID] = ring
	}
	ring.push(event)
}

// Events returns the mission's events younger than the window, oldest first.
// Expired events are evicted as a side effect.
func (r *Registry) Events(missionID string) []entity.MatchEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	ring, ok := r.events[missionID]
	if !ok {
		return []entity.MatchEvent{}
	}
	ring.evictBefore(r.now().Add(-r.window))
	if ring.len() == 0 {
		delete(r.events, missionID)
		return []entity.MatchEvent{}
	}
	return ring.snapshot()
}

// Sweep evicts expired events across all missions and returns how many were dropped.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.window)
	dropped := 0
	for id, ring := range r.events {
		dropped += ring.evictBefore(cutoff)
		if ring.len() == 0 {
			delete(r.events, id)
		}
	}
	return dropped
}

// eventRing is a fixed-size circular buffer; pushing into a full ring
// overwrites the oldest entry.
type eventRing struct {
	buf   []entity.MatchEvent
	head  int
	count int
}

func newEventRing(capacity int) *eventRing {
	return &eventRing{buf: make([]entity.MatchEvent, capacity)}
}

func (r *eventRing) len() int { return r.count }

func (r *eventRing) push(e entity.MatchEvent) {
	tail := (r.head + r.count) % len(r.buf)
	r.buf[tail] = e
	if r.count == len(r.buf) {
		r.head = (r.head + 1) % len(r.buf)
		return
	}
	r.count++
}

func (r *eventRing) evictBefore(cutoff time.Time) int {
	dropped := 0
	for r.count > 0 && r.buf[r.head].Timestamp.Before(cutoff) {
		r.buf[r.head] = entity.MatchEvent{}
		r.head = (r.head + 1) % len(r.buf)
		r.count--
		dropped++
	}
	return dropped
}

func (r *eventRing) snapshot() []entity.MatchEvent {
	out := make([]entity.MatchEvent, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}
