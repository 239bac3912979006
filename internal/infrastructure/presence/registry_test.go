package presence

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motiv8/internal/domain/entity"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRegistry(opts ...Option) (*Registry, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.now)}, opts...)
	return NewRegistry(10*time.Second, opts...), clock
}

func TestRegistryMembersAreUniqueAndOrdered(t *testing.T) {
	r, clock := newTestRegistry()

	r.Join("m1", entity.MatchMember{UserID: "b", DisplayName: "Bea", JoinedAt: clock.t})
	r.Join("m1", entity.MatchMember{UserID: "a", DisplayName: "Ana", JoinedAt: clock.t.Add(time.Second)})
	r.Join("m1", entity.MatchMember{UserID: "b", DisplayName: "Bea 2", JoinedAt: clock.t.Add(time.Hour)})

	members := r.Members("m1")
	require.Len(t, members, 2)
	assert.Equal(t, "b", members[0].UserID)
	assert.Equal(t, "Bea 2", members[0].DisplayName)
	assert.Equal(t, clock.t, members[0].JoinedAt)
	assert.Equal(t, "a", members[1].UserID)

	r.Leave("m1", "b")
	assert.Len(t, r.Members("m1"), 1)

	r.Dissolve("m1")
	assert.Empty(t, r.Members("m1"))
	assert.NotNil(t, r.Members("unknown"))
}

func TestRegistryEventsExpireAfterWindow(t *testing.T) {
	r, clock := newTestRegistry()

	r.Append(entity.MatchEvent{MissionID: "m1", Type: entity.MatchEventUserLeft, UserID: "a"})
	clock.advance(6 * time.Second)
	r.Append(entity.MatchEvent{MissionID: "m1", Type: entity.MatchEventUserLeft, UserID: "b"})

	events := r.Events("m1")
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].UserID)

	clock.advance(5 * time.Second)
	events = r.Events("m1")
	require.Len(t, events, 1)
	assert.Equal(t, "b", events[0].UserID)

	clock.advance(10 * time.Second)
	assert.Empty(t, r.Events("m1"))
	assert.Empty(t, r.Events("m2"))
}

func TestRegistryRingOverwritesOldest(t *testing.T) {
	r, _ := newTestRegistry(WithCapacity(3))

	for i := 0; i < 5; i++ {
		r.Append(entity.MatchEvent{MissionID: "m1", UserID: fmt.Sprintf("u%d", i)})
	}

	events := r.Events("m1")
	require.Len(t, events, 3)
	assert.Equal(t, "u2", events[0].UserID)
	assert.Equal(t, "u4", events[2].UserID)
}

func TestRegistrySweep(t *testing.T) {
	r, clock := newTestRegistry()

	r.Append(entity.MatchEvent{MissionID: "m1", UserID: "a"})
	r.Append(entity.MatchEvent{MissionID: "m2", UserID: "b"})
	clock.advance(11 * time.Second)
	r.Append(entity.MatchEvent{MissionID: "m2", UserID: "c"})

	assert.Equal(t, 2, r.Sweep())
	assert.Len(t, r.Events("m2"), 1)
	assert.Equal(t, 0, r.Sweep())
}
