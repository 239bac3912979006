package repository

import (
	"context"
	"errors"

	"motiv8/internal/domain/entity"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

type MissionCatalogRepository interface {
	List(ctx context.Context) ([]entity.MissionTemplate, error)
	GetByID(ctx context.Context, id string) (*entity.MissionTemplate, error)
	Create(ctx context.Context, template *entity.MissionTemplate) error
	Update(ctx context.Context, template *entity.MissionTemplate) error
	Delete(ctx context.Context, id string) error

	// Upsert writes all templates in one bulk operation.
	Upsert(ctx context.Context, templates []entity.MissionTemplate) error
}

type MissionStateRepository interface {
	// Get returns an empty state when the user has none stored.
	Get(ctx context.Context, userID string) (*entity.UserMissionState, error)
	Save(ctx context.Context, state *entity.UserMissionState) error

	// MarkCompleted flips completed on the user's copy of a mission.
	// Returns ErrNotFound when the user has no state or no such mission.
	MarkCompleted(ctx context.Context, userID, missionID string) error

	// SettleRewards writes the mission state and adds points and coins to
	// the owner's stats in one transaction, returning the stats as written.
	// A missing stats record is created when createStats is set; otherwise
	// only the state is written and the returned stats are nil.
	SettleRewards(ctx context.Context, state *entity.UserMissionState, points, coins int64, createStats bool) (*entity.UserStats, error)

	// SaveWithRefresh writes the mission state and bumps the owner's refresh
	// counter in one transaction, creating the stats record if needed. It
	// returns the new counter value.
	SaveWithRefresh(ctx context.Context, state *entity.UserMissionState) (int, error)
}
