package repository

import (
	"context"

	"motiv8/internal/domain/entity"
)

type MatchRepository interface {
	// Get returns ErrNotFound when no match is open for the mission.
	Get(ctx context.Context, missionID string) (*entity.MissionMatch, error)

	// AddMember creates the match if absent. Re-adding a member is a no-op
	// apart from refreshing the cached display name and level.
	AddMember(ctx context.Context, missionID string, member entity.MatchMember) error
	RemoveMember(ctx context.Context, missionID, userID string) error
	Delete(ctx context.Context, missionID string) error
}
