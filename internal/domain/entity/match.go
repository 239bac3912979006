package entity

import (
	"sort"
	"time"
)

type MatchMember struct {
	UserID      string    `firestore:"userId" json:"userId"`
	DisplayName string    `firestore:"displayName" json:"displayName"`
	Level       int       `firestore:"level" json:"level"`
	JoinedAt    time.Time `firestore:"joinedAt" json:"joinedAt"`
}

// MissionMatch is the cooperative group for one mission template. Members are
// keyed by user ID so a user appears at most once.
type MissionMatch struct {
	MissionID string                 `firestore:"missionId" json:"missionId"`
	MemberIDs []string               `firestore:"memberIds" json:"memberIds"`
	Members   map[string]MatchMember `firestore:"members" json:"members"`
	CreatedAt time.Time              `firestore:"createdAt" json:"createdAt"`
}

// MemberList returns members ordered by join time, then user ID.
func (m *MissionMatch) MemberList() []MatchMember {
	if m == nil {
		return []MatchMember{}
	}
	out := make([]MatchMember, 0, len(m.Members))
	for _, member := range m.Members {
		out = append(out, member)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}

const (
	MatchEventUserLeft         = "userLeft"
	MatchEventMissionCompleted = "missionCompleted"
)

type MatchEvent struct {
	ID          string    `json:"id"`
	MissionID   string    `json:"missionId"`
	Type        string    `json:"type"`
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Timestamp   time.Time `json:"timestamp"`
}

// MissionCompletedPayload is broadcast on a mission's channel when a group dissolves.
type MissionCompletedPayload struct {
	MissionID    string   `json:"missionId"`
	CompletedBy  string   `json:"completedBy"`
	Members      []string `json:"members"`
	RewardPoints int64    `json:"rewardPoints"`
	RewardCoins  int64    `json:"rewardCoins"`
	Rewarded     bool     `json:"rewarded"`
}
