package entity

import (
	"time"
)

type MissionType string

const (
	MissionTypeDistance  MissionType = "distance"
	MissionTypeTime      MissionType = "time"
	MissionTypeElevation MissionType = "elevation"
	MissionTypeCount     MissionType = "count"
)

func (t MissionType) Valid() bool {
	switch t {
	case MissionTypeDistance, MissionTypeTime, MissionTypeElevation, MissionTypeCount:
		return true
	}
	return false
}

// MaxActiveMissions caps a user's active set.
const MaxActiveMissions = 3

type ActiveWindow struct {
	Start time.Time `firestore:"start" json:"start" yaml:"start"`
	End   time.Time `firestore:"end" json:"end" yaml:"end"`
}

// Contains reports whether t falls in [Start, End). A zero bound is open.
func (w *ActiveWindow) Contains(t time.Time) bool {
	if w == nil {
		return true
	}
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

type MissionTemplate struct {
	ID           string        `firestore:"id" json:"id" yaml:"id"`
	Name         string        `firestore:"name" json:"name" yaml:"name" validate:"required,max=120"`
	Description  string        `firestore:"description" json:"description" yaml:"description" validate:"max=1000"`
	Type         MissionType   `firestore:"type" json:"type" yaml:"type" validate:"required,oneof=distance time elevation count"`
	TargetValue  float64       `firestore:"targetValue" json:"targetValue" yaml:"targetValue" validate:"gt=0"`
	Unit         string        `firestore:"unit" json:"unit" yaml:"unit" validate:"required"`
	XPReward     int64         `firestore:"xpReward" json:"xpReward" yaml:"xpReward" validate:"gte=0"`
	CoinReward   int64         `firestore:"coinReward" json:"coinReward" yaml:"coinReward" validate:"gte=0"`
	ActiveWindow *ActiveWindow `firestore:"activeWindow,omitempty" json:"activeWindow,omitempty" yaml:"activeWindow,omitempty"`
	CreatedAt    time.Time     `firestore:"createdAt" json:"createdAt" yaml:"-"`
	UpdatedAt    time.Time     `firestore:"updatedAt" json:"updatedAt" yaml:"-"`
}

// Available reports whether the template may be handed out at t.
func (m *MissionTemplate) Available(t time.Time) bool {
	return m.ActiveWindow.Contains(t)
}

// AssignedMission is a template snapshot plus the user's progress on it.
type AssignedMission struct {
	MissionTemplate

	ProgressValue float64   `firestore:"progressValue" json:"progressValue"`
	Completed     bool      `firestore:"completed" json:"completed"`
	AssignedAt    time.Time `firestore:"assignedAt" json:"assignedAt"`
}

func NewAssignedMission(t MissionTemplate, at time.Time) AssignedMission {
	return AssignedMission{
		MissionTemplate: t,
		ProgressValue:   0,
		Completed:       false,
		AssignedAt:      at,
	}
}

// AddProgress applies a non-negative delta. Completion never reverts.
func (m *AssignedMission) AddProgress(amount float64) {
	m.ProgressValue += amount
	if m.ProgressValue < 0 {
		m.ProgressValue = 0
	}
	m.Completed = m.Completed || m.ProgressValue >= m.TargetValue
}

// MarkCompleted forces completion, raising progress to the target so a
// completed mission never reports less than its goal.
func (m *AssignedMission) MarkCompleted() {
	m.Completed = true
	if m.ProgressValue < m.TargetValue {
		m.ProgressValue = m.TargetValue
	}
}

type UserMissionState struct {
	UserID         string            `firestore:"userId" json:"userId"`
	Missions       []AssignedMission `firestore:"missions" json:"missions"`
	LastAssignedAt time.Time         `firestore:"lastAssignedAt" json:"lastAssignedAt"`
	UpdatedAt      time.Time         `firestore:"updatedAt" json:"updatedAt"`
}

func NewUserMissionState(userID string) *UserMissionState {
	return &UserMissionState{
		UserID:   userID,
		Missions: []AssignedMission{},
	}
}

func (s *UserMissionState) IsEmpty() bool {
	return len(s.Missions) == 0
}

func (s *UserMissionState) Index(missionID string) int {
	for i := range s.Missions {
		if s.Missions[i].ID == missionID {
			return i
		}
	}
	return -1
}

func (s *UserMissionState) Has(missionID string) bool {
	return s.Index(missionID) >= 0
}

// Remove drops the mission and returns the removed copy.
func (s *UserMissionState) Remove(missionID string) (AssignedMission, bool) {
	i := s.Index(missionID)
	if i < 0 {
		return AssignedMission{}, false
	}
	removed := s.Missions[i]
	s.Missions = append(s.Missions[:i:i], s.Missions[i+1:]...)
	return removed, true
}
