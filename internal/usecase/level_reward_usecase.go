package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"motiv8/internal/domain/entity"
	"motiv8/internal/domain/repository"
	"motiv8/internal/domain/service"
	"motiv8/pkg/errors"
	"motiv8/pkg/logger"
)

const (
	levelRewardCoinStep  = 50
	levelRewardCoinSteps = 16 // 50..800
	xpBoostMissions      = 3
	couponChancePercent  = 20
)

var xpBoostMultipliers = []float64{1.5, 3, 5}

type LevelRewardUseCase struct {
	statsRepo repository.UserStatsRepository
	rng       service.Randomizer
	log       logger.Logger
	now       func() time.Time
}

func NewLevelRewardUseCase(statsRepo repository.UserStatsRepository, rng service.Randomizer, log logger.Logger) *LevelRewardUseCase {
	return &LevelRewardUseCase{
		statsRepo: statsRepo,
		rng:       rng,
		log:       log,
		now:       time.Now,
	}
}

type LevelRewardResult struct {
	Option          entity.RewardOption `json:"option"`
	Level           int                 `json:"level"`
	CoinsGranted    int64               `json:"coinsGranted"`
	XPBoost         *entity.XPBoost     `json:"xpBoost,omitempty"`
	PremiumDiscount bool                `json:"premiumDiscount"`
	Stats           *entity.UserStats   `json:"stats"`
}

// Eligible reports whether a level-up reward may be claimed: the level must
// be even and above the last rewarded one.
func Eligible(stats *entity.UserStats) bool {
	level := stats.CurrentLevel
	return level > 0 && level%2 == 0 && level > stats.LastRewardedLevel
}

func (uc *LevelRewardUseCase) GrantLevelReward(ctx context.Context, userID string, option entity.RewardOption) (*LevelRewardResult, error) {
	if !option.Valid() {
		return nil, errors.BadRequest(fmt.Sprintf("Unknown reward option %q", option), nil)
	}

	stats, err := uc.statsRepo.Get(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotEligible("No level reward available")
		}
		return nil, storageError("load stats", err)
	}
	service.Recompute(stats)

	if !Eligible(stats) {
		return nil, errors.NotEligible(fmt.Sprintf("No level reward available at level %d", stats.CurrentLevel))
	}

	grant := entity.LevelGrant{Level: stats.CurrentLevel}
	switch option {
	case entity.RewardOptionCoins:
		grant.Coins = int64(levelRewardCoinStep * (1 + uc.rng.Intn(levelRewardCoinSteps)))

	case entity.RewardOptionXP:
		grant.XPBoost = &entity.XPBoost{
			Multiplier:        xpBoostMultipliers[uc.rng.Intn(len(xpBoostMultipliers))],
			RemainingMissions: xpBoostMissions,
			GrantedAt:         uc.now(),
		}

	case entity.RewardOptionCoupon:
		grant.PremiumDiscount = uc.rng.Intn(100) < couponChancePercent
	}

	granted, err := uc.statsRepo.ApplyLevelReward(ctx, userID, grant)
	if err != nil {
		if stderrors.Is(err, repository.ErrAlreadyRewarded) {
			return nil, errors.NotEligible(fmt.Sprintf("Level %d reward already claimed", grant.Level))
		}
		uc.log.Error("failed to save level reward", "uid", userID, "option", option, "error", err)
		return nil, storageError("grant level reward", err)
	}

	result := &LevelRewardResult{
		Option:          option,
		Level:           grant.Level,
		CoinsGranted:    grant.Coins,
		XPBoost:         grant.XPBoost,
		PremiumDiscount: grant.PremiumDiscount,
		Stats:           granted,
	}

	uc.log.Info("level reward granted", "uid", userID, "level", result.Level, "option", option)
	return result, nil
}
