package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"motiv8/internal/domain/entity"
	"motiv8/internal/domain/repository"
	"motiv8/pkg/logger"
)

type MatchUseCase struct {
	matchRepo   repository.MatchRepository
	stateRepo   repository.MissionStateRepository
	statsRepo   repository.UserStatsRepository
	presence    MatchPresence
	notifier    Notifier
	concurrency int
	log         logger.Logger
	now         func() time.Time
}

func NewMatchUseCase(
	matchRepo repository.MatchRepository,
	stateRepo repository.MissionStateRepository,
	statsRepo repository.UserStatsRepository,
	presence MatchPresence,
	notifier Notifier,
	concurrency int,
	log logger.Logger,
) *MatchUseCase {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &MatchUseCase{
		matchRepo:   matchRepo,
		stateRepo:   stateRepo,
		statsRepo:   statsRepo,
		presence:    presence,
		notifier:    notifier,
		concurrency: concurrency,
		log:         log,
		now:         time.Now,
	}
}

// PropagationResult reports what happened to each other group member.
type PropagationResult struct {
	MissionID string   `json:"missionId"`
	Members   []string `json:"members"`
	Marked    []string `json:"marked"`
	Rewarded  []string `json:"rewarded"`
	Skipped   []string `json:"skipped"`
}

// Start joins the caller to the mission's group, creating it if needed.
func (uc *MatchUseCase) Start(ctx context.Context, identity entity.Identity, missionID string) ([]entity.MatchMember, error) {
	level := 1
	stats, err := uc.statsRepo.Get(ctx, identity.UID)
	switch {
	case err == nil:
		level = stats.CurrentLevel
	case !isNotFound(err):
		return nil, storageError("load stats", err)
	}

	member := entity.MatchMember{
		UserID:      identity.UID,
		DisplayName: identity.DisplayName,
		Level:       level,
		JoinedAt:    uc.now(),
	}

	if err := uc.matchRepo.AddMember(ctx, missionID, member); err != nil {
		uc.log.Error("failed to join match", "uid", identity.UID, "missionId", missionID, "error", err)
		return nil, storageError("join match", err)
	}
	uc.presence.Join(missionID, member)

	return uc.ListMembers(ctx, missionID), nil
}

// Stop removes the caller from the group and leaves a "user left" event
// for pollers.
func (uc *MatchUseCase) Stop(ctx context.Context, userID, missionID, displayName string) error {
	if err := uc.matchRepo.RemoveMember(ctx, missionID, userID); err != nil && !isNotFound(err) {
		uc.log.Error("failed to leave match", "uid", userID, "missionId", missionID, "error", err)
		return storageError("leave match", err)
	}
	uc.presence.Leave(missionID, userID)

	uc.presence.Append(entity.MatchEvent{
		ID:          uuid.NewString(),
		MissionID:   missionID,
		Type:        entity.MatchEventUserLeft,
		UserID:      userID,
		DisplayName: displayName,
		Timestamp:   uc.now(),
	})

	return nil
}

// ListMembers never fails: no group means no members, and a storage error
// falls back to the in-memory mirror.
func (uc *MatchUseCase) ListMembers(ctx context.Context, missionID string) []entity.MatchMember {
	match, err := uc.matchRepo.Get(ctx, missionID)
	if err != nil {
		if !isNotFound(err) {
			uc.log.Warn("match lookup failed, serving mirror", "missionId", missionID, "error", err)
			return uc.presence.Members(missionID)
		}
		return []entity.MatchMember{}
	}
	return match.MemberList()
}

func (uc *MatchUseCase) ListEvents(missionID string) []entity.MatchEvent {
	return uc.presence.Events(missionID)
}

// PropagateCompletion marks the mission completed for every other member,
// optionally granting them the same rewards, then dissolves the group and
// announces it. Per-member failures are logged and skipped.
func (uc *MatchUseCase) PropagateCompletion(ctx context.Context, sourceUserID, missionID string, rewardPoints, rewardCoins int64, grantRewards bool) (*PropagationResult, error) {
	result := &PropagationResult{
		MissionID: missionID,
		Members:   []string{},
		Marked:    []string{},
		Rewarded:  []string{},
		Skipped:   []string{},
	}

	match, err := uc.matchRepo.Get(ctx, missionID)
	if err != nil {
		if isNotFound(err) {
			return result, nil
		}
		return nil, storageError("load match", err)
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(uc.concurrency)

	for _, member := range match.MemberList() {
		if member.UserID == sourceUserID {
			continue
		}
		uid := member.UserID
		result.Members = append(result.Members, uid)

		g.Go(func() error {
			marked, rewarded := uc.propagateTo(ctx, uid, missionID, rewardPoints, rewardCoins, grantRewards)

			mu.Lock()
			defer mu.Unlock()
			if marked {
				result.Marked = append(result.Marked, uid)
			}
			if rewarded {
				result.Rewarded = append(result.Rewarded, uid)
			}
			if !marked && !rewarded {
				result.Skipped = append(result.Skipped, uid)
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(result.Marked)
	sort.Strings(result.Rewarded)
	sort.Strings(result.Skipped)

	if err := uc.matchRepo.Delete(ctx, missionID); err != nil {
		uc.log.Error("failed to dissolve match", "missionId", missionID, "error", err)
	}
	uc.presence.Dissolve(missionID)

	uc.notifier.Publish(missionID, entity.MatchEventMissionCompleted, entity.MissionCompletedPayload{
		MissionID:    missionID,
		CompletedBy:  sourceUserID,
		Members:      result.Members,
		RewardPoints: rewardPoints,
		RewardCoins:  rewardCoins,
		Rewarded:     grantRewards,
	})

	return result, nil
}

func (uc *MatchUseCase) propagateTo(ctx context.Context, userID, missionID string, points, coins int64, grantRewards bool) (marked, rewarded bool) {
	if err := uc.stateRepo.MarkCompleted(ctx, userID, missionID); err != nil {
		if isNotFound(err) {
			uc.log.Debug("member has no copy of mission", "uid", userID, "missionId", missionID)
		} else {
			uc.log.Warn("failed to mark member mission completed", "uid", userID, "missionId", missionID, "error", err)
		}
	} else {
		marked = true
	}

	if !grantRewards {
		return marked, false
	}

	if err := uc.statsRepo.IncrementRewards(ctx, userID, points, coins); err != nil {
		uc.log.Warn("failed to reward member", "uid", userID, "missionId", missionID, "error", err)
		return marked, false
	}

	return marked, true
}
