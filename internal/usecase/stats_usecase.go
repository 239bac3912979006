package usecase

import (
	"context"

	"motiv8/internal/domain/entity"
	"motiv8/internal/domain/repository"
	"motiv8/internal/domain/service"
	"motiv8/pkg/utils"
)

type StatsUseCase struct {
	statsRepo repository.UserStatsRepository
}

func NewStatsUseCase(statsRepo repository.UserStatsRepository) *StatsUseCase {
	return &StatsUseCase{
		statsRepo: statsRepo,
	}
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	Points      int64  `json:"points"`
	Level       int    `json:"level"`
}

// GetStats returns the user's stats, or level-1 defaults when none exist.
// Defaults are not persisted.
func (uc *StatsUseCase) GetStats(ctx context.Context, userID string) (*entity.UserStats, error) {
	stats, err := uc.statsRepo.Get(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return entity.NewUserStats(userID), nil
		}
		return nil, storageError("load stats", err)
	}
	return service.Recompute(stats), nil
}

func (uc *StatsUseCase) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	top, err := uc.statsRepo.TopByPoints(ctx, utils.ClampLimit(limit))
	if err != nil {
		return nil, storageError("load leaderboard", err)
	}

	entries := make([]LeaderboardEntry, 0, len(top))
	for i := range top {
		s := service.Recompute(&top[i])
		entries = append(entries, LeaderboardEntry{
			Rank:        i + 1,
			UserID:      s.UserID,
			DisplayName: s.DisplayName,
			Points:      s.Points,
			Level:       s.CurrentLevel,
		})
	}
	return entries, nil
}
