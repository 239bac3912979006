package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddProgressNeverRevertsCompletion(t *testing.T) {
	m := NewAssignedMission(MissionTemplate{ID: "run", TargetValue: 5, Unit: "km"}, time.Now())

	m.AddProgress(4.99)
	assert.False(t, m.Completed)

	m.AddProgress(0.01)
	assert.True(t, m.Completed)

	m.AddProgress(-100)
	assert.Zero(t, m.ProgressValue)
	assert.True(t, m.Completed)
}

func TestMarkCompletedRaisesProgress(t *testing.T) {
	m := NewAssignedMission(MissionTemplate{ID: "run", TargetValue: 5}, time.Now())
	m.ProgressValue = 2

	m.MarkCompleted()
	assert.True(t, m.Completed)
	assert.Equal(t, 5.0, m.ProgressValue)

	m.ProgressValue = 8
	m.MarkCompleted()
	assert.Equal(t, 8.0, m.ProgressValue)
}

func TestActiveWindowContains(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	w := &ActiveWindow{Start: start, End: end}

	assert.False(t, w.Contains(start.Add(-time.Second)))
	assert.True(t, w.Contains(start))
	assert.True(t, w.Contains(end.Add(-time.Second)))
	assert.False(t, w.Contains(end))

	var open *ActiveWindow
	assert.True(t, open.Contains(start))
	assert.True(t, (&ActiveWindow{End: end}).Contains(start.AddDate(-10, 0, 0)))
}

func TestUserMissionStateRemove(t *testing.T) {
	s := NewUserMissionState("u1")
	s.Missions = []AssignedMission{
		{MissionTemplate: MissionTemplate{ID: "a"}},
		{MissionTemplate: MissionTemplate{ID: "b"}},
		{MissionTemplate: MissionTemplate{ID: "c"}},
	}

	removed, ok := s.Remove("b")
	assert.True(t, ok)
	assert.Equal(t, "b", removed.ID)
	assert.Len(t, s.Missions, 2)
	assert.Equal(t, "c", s.Missions[1].ID)

	_, ok = s.Remove("b")
	assert.False(t, ok)
}

func TestMemberListOrder(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := &MissionMatch{Members: map[string]MatchMember{
		"z": {UserID: "z", JoinedAt: t0},
		"a": {UserID: "a", JoinedAt: t0.Add(time.Minute)},
		"b": {UserID: "b", JoinedAt: t0},
	}}

	list := m.MemberList()
	assert.Equal(t, []string{"b", "z", "a"}, []string{list[0].UserID, list[1].UserID, list[2].UserID})

	var none *MissionMatch
	assert.Empty(t, none.MemberList())
}
