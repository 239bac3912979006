package usecase

import (
	"context"

	"motiv8/internal/domain/entity"
	"motiv8/internal/domain/repository"
	"motiv8/pkg/errors"
	"motiv8/pkg/logger"
)

type RewardUseCase struct {
	stateRepo  repository.MissionStateRepository
	propagator CompletionPropagator
	log        logger.Logger
}

func NewRewardUseCase(
	stateRepo repository.MissionStateRepository,
	propagator CompletionPropagator,
	log logger.Logger,
) *RewardUseCase {
	return &RewardUseCase{
		stateRepo:  stateRepo,
		propagator: propagator,
		log:        log,
	}
}

type CompleteResult struct {
	Missions    []entity.AssignedMission `json:"missions"`
	CoinsEarned int64                    `json:"coinsEarned"`
	XPEarned    int64                    `json:"xpEarned"`
}

type ClaimResult struct {
	Missions    []entity.AssignedMission `json:"missions"`
	Stats       *entity.UserStats        `json:"stats"`
	CoinsEarned int64                    `json:"coinsEarned"`
	XPEarned    int64                    `json:"xpEarned"`
	SharedWith  []string                 `json:"sharedWith"`
}

// CompleteAndReward removes the mission whether or not it reached its
// target and credits its rewards to existing stats. Group members only get
// their copy marked completed.
func (uc *RewardUseCase) CompleteAndReward(ctx context.Context, userID, missionID string) (*CompleteResult, error) {
	state, err := uc.stateRepo.Get(ctx, userID)
	if err != nil {
		return nil, storageError("load missions", err)
	}
	if state.IsEmpty() {
		return nil, errors.NoActiveMissions()
	}

	mission, ok := state.Remove(missionID)
	if !ok {
		return nil, errors.MissionNotFound(missionID)
	}

	stats, err := uc.stateRepo.SettleRewards(ctx, state, mission.XPReward, mission.CoinReward, false)
	if err != nil {
		uc.log.Error("failed to settle completed mission", "uid", userID, "missionId", missionID, "error", err)
		return nil, storageError("complete mission", err)
	}
	if stats == nil {
		uc.log.Debug("no stats record, skipping rewards", "uid", userID)
	}

	uc.propagate(ctx, userID, missionID, mission.XPReward, mission.CoinReward, false)

	return &CompleteResult{
		Missions:    state.Missions,
		CoinsEarned: mission.CoinReward,
		XPEarned:    mission.XPReward,
	}, nil
}

// Claim converts a completed mission into rewards and shares them with the
// rest of the group.
func (uc *RewardUseCase) Claim(ctx context.Context, userID, missionID string) (*ClaimResult, error) {
	state, err := uc.stateRepo.Get(ctx, userID)
	if err != nil {
		return nil, storageError("load missions", err)
	}

	i := state.Index(missionID)
	if i < 0 || !state.Missions[i].Completed {
		return nil, errors.NotCompletable(missionID)
	}

	mission, _ := state.Remove(missionID)

	stats, err := uc.stateRepo.SettleRewards(ctx, state, mission.XPReward, mission.CoinReward, true)
	if err != nil {
		uc.log.Error("failed to settle claim", "uid", userID, "missionId", missionID, "error", err)
		return nil, storageError("claim mission", err)
	}

	shared := uc.propagate(ctx, userID, missionID, mission.XPReward, mission.CoinReward, true)

	return &ClaimResult{
		Missions:    state.Missions,
		Stats:       stats,
		CoinsEarned: mission.CoinReward,
		XPEarned:    mission.XPReward,
		SharedWith:  shared,
	}, nil
}

// MarkCompletedForGroup flags the caller's copy completed without removing
// it or paying out, and does the same for the rest of the group.
func (uc *RewardUseCase) MarkCompletedForGroup(ctx context.Context, userID, missionID string) ([]entity.AssignedMission, error) {
	state, err := uc.stateRepo.Get(ctx, userID)
	if err != nil {
		return nil, storageError("load missions", err)
	}
	if state.IsEmpty() {
		return nil, errors.NoActiveMissions()
	}

	i := state.Index(missionID)
	if i < 0 {
		return nil, errors.MissionNotFound(missionID)
	}
	state.Missions[i].MarkCompleted()

	if err := uc.stateRepo.Save(ctx, state); err != nil {
		uc.log.Error("failed to mark mission completed", "uid", userID, "missionId", missionID, "error", err)
		return nil, storageError("mark mission completed", err)
	}

	uc.propagate(ctx, userID, missionID, 0, 0, false)

	return state.Missions, nil
}

// propagate never fails the caller's operation; it returns the members
// that were rewarded.
func (uc *RewardUseCase) propagate(ctx context.Context, userID, missionID string, points, coins int64, grantRewards bool) []string {
	if uc.propagator == nil {
		return []string{}
	}

	result, err := uc.propagator.PropagateCompletion(ctx, userID, missionID, points, coins, grantRewards)
	if err != nil {
		uc.log.Warn("group propagation failed", "uid", userID, "missionId", missionID, "error", err)
		return []string{}
	}
	return result.Rewarded
}
