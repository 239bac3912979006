package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motiv8/internal/domain/entity"
	"motiv8/internal/domain/repository"
)

func TestMemoryStateIsCopiedOnReadAndWrite(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().MissionStates()

	state := entity.NewUserMissionState("u1")
	state.Missions = append(state.Missions, entity.NewAssignedMission(entity.MissionTemplate{ID: "m1", TargetValue: 3}, time.Now()))
	require.NoError(t, repo.Save(ctx, state))

	state.Missions[0].ProgressValue = 99

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, got.Missions[0].ProgressValue)

	got.Missions[0].ProgressValue = 50
	again, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, again.Missions[0].ProgressValue)
}

func TestMemoryMarkCompleted(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().MissionStates()

	assert.ErrorIs(t, repo.MarkCompleted(ctx, "u1", "m1"), repository.ErrNotFound)

	state := entity.NewUserMissionState("u1")
	state.Missions = []entity.AssignedMission{entity.NewAssignedMission(entity.MissionTemplate{ID: "m1", TargetValue: 3}, time.Now())}
	require.NoError(t, repo.Save(ctx, state))

	assert.ErrorIs(t, repo.MarkCompleted(ctx, "u1", "m2"), repository.ErrNotFound)
	require.NoError(t, repo.MarkCompleted(ctx, "u1", "m1"))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.Missions[0].Completed)
	assert.Equal(t, 3.0, got.Missions[0].ProgressValue)
}

func TestMemoryStatsIncrements(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := store.Stats()
	states := store.MissionStates()

	assert.ErrorIs(t, repo.IncrementRewards(ctx, "u1", 10, 1), repository.ErrNotFound)

	n, err := states.SaveWithRefresh(ctx, entity.NewUserMissionState("u1"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = states.SaveWithRefresh(ctx, entity.NewUserMissionState("u1"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, repo.IncrementRewards(ctx, "u1", 1500, 7))
	stats, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), stats.Points)
	assert.Equal(t, int64(7), stats.Coins)
	assert.Equal(t, int64(1), stats.MissionsCompleted)
	assert.Equal(t, 2, stats.CurrentLevel)
	assert.Equal(t, 2, stats.RefreshCount)
}

func TestMemorySettleRewards(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	states := store.MissionStates()

	settled, err := states.SettleRewards(ctx, entity.NewUserMissionState("u1"), 100, 10, false)
	require.NoError(t, err)
	assert.Nil(t, settled)
	_, err = store.Stats().Get(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	settled, err = states.SettleRewards(ctx, entity.NewUserMissionState("u1"), 1000, 10, true)
	require.NoError(t, err)
	assert.Equal(t, 2, settled.CurrentLevel)

	require.NoError(t, store.Stats().IncrementRewards(ctx, "u1", 500, 5))
	settled, err = states.SettleRewards(ctx, entity.NewUserMissionState("u1"), 100, 1, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), settled.Points)
	assert.Equal(t, int64(16), settled.Coins)
	assert.Equal(t, int64(3), settled.MissionsCompleted)
}

func TestMemoryApplyLevelReward(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Stats()

	_, err := repo.ApplyLevelReward(ctx, "u1", entity.LevelGrant{Level: 2})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	stats := entity.NewUserStats("u1")
	stats.Points = 1000
	stats.Coins = 5
	require.NoError(t, repo.Save(ctx, stats))

	boost := &entity.XPBoost{Multiplier: 3, RemainingMissions: 3}
	granted, err := repo.ApplyLevelReward(ctx, "u1", entity.LevelGrant{Level: 2, Coins: 50, XPBoost: boost})
	require.NoError(t, err)
	assert.Equal(t, int64(55), granted.Coins)
	assert.Equal(t, 2, granted.LastRewardedLevel)
	require.NotNil(t, granted.XPBoost)
	assert.False(t, granted.PremiumDiscount)

	_, err = repo.ApplyLevelReward(ctx, "u1", entity.LevelGrant{Level: 2, Coins: 50})
	assert.ErrorIs(t, err, repository.ErrAlreadyRewarded)

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(55), got.Coins)
	assert.Equal(t, int64(1000), got.Points)
}

func TestMemoryMatchMembership(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Matches()
	joined := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.Get(ctx, "m1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.AddMember(ctx, "m1", entity.MatchMember{UserID: "a", Level: 1, JoinedAt: joined}))
	require.NoError(t, repo.AddMember(ctx, "m1", entity.MatchMember{UserID: "a", Level: 2, JoinedAt: joined.Add(time.Hour)}))
	require.NoError(t, repo.AddMember(ctx, "m1", entity.MatchMember{UserID: "b", Level: 1, JoinedAt: joined}))

	match, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, match.MemberIDs)
	assert.Equal(t, 2, match.Members["a"].Level)
	assert.Equal(t, joined, match.Members["a"].JoinedAt)

	require.NoError(t, repo.RemoveMember(ctx, "m1", "a"))
	match, err = repo.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, match.MemberIDs)

	require.NoError(t, repo.Delete(ctx, "m1"))
	assert.ErrorIs(t, repo.RemoveMember(ctx, "m1", "b"), repository.ErrNotFound)
}

func TestMemoryCatalogUpsertKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Catalog()

	require.NoError(t, repo.Create(ctx, &entity.MissionTemplate{ID: "b", Name: "B"}))
	first, err := repo.GetByID(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(ctx, []entity.MissionTemplate{{ID: "b", Name: "B2"}, {ID: "a", Name: "A"}}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "B2", list[1].Name)
	assert.Equal(t, first.CreatedAt, list[1].CreatedAt)

	assert.ErrorIs(t, repo.Update(ctx, &entity.MissionTemplate{ID: "zzz"}), repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "zzz"), repository.ErrNotFound)
}
