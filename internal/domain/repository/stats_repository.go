package repository

import (
	"context"
	"errors"

	"motiv8/internal/domain/entity"
)

// ErrAlreadyRewarded is returned when a level reward is recorded for a level
// at or below the last rewarded one.
var ErrAlreadyRewarded = errors.New("level already rewarded")

type UserStatsRepository interface {
	// Get returns ErrNotFound when the user has no stats record.
	Get(ctx context.Context, userID string) (*entity.UserStats, error)
	Save(ctx context.Context, stats *entity.UserStats) error

	// IncrementRewards atomically adds points and coins and bumps the
	// completed-missions counter. Returns ErrNotFound when no record exists.
	IncrementRewards(ctx context.Context, userID string, points, coins int64) error

	// ApplyLevelReward records grant against the stored record in one
	// transaction, touching only the coin balance and the level reward
	// fields. Returns ErrNotFound without a record and ErrAlreadyRewarded
	// when grant.Level is not above the last rewarded level.
	ApplyLevelReward(ctx context.Context, userID string, grant entity.LevelGrant) (*entity.UserStats, error)

	TopByPoints(ctx context.Context, limit int) ([]entity.UserStats, error)
}
