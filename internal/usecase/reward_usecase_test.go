package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"motiv8/internal/domain/entity"
	"motiv8/internal/domain/repository"
	"motiv8/internal/domain/service"
	"motiv8/pkg/errors"
)

func TestClaimIncompleteMissionChangesNothing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	run := template("run", 10, "km", 1200, 30)
	h.giveMissions(t, "u1", assigned(run, 3, false))
	h.giveStats(t, "u1", 100, 5)

	_, err := h.rewards.Claim(ctx, "u1", "run")
	assert.True(t, errors.Is(err, errors.CodeNotCompletable))

	_, err = h.rewards.Claim(ctx, "u1", "missing")
	assert.True(t, errors.Is(err, errors.CodeNotCompletable))

	assert.Len(t, h.state(t, "u1").Missions, 1)
	stats, err := h.stores.Stats.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.Points)
	assert.Equal(t, int64(5), stats.Coins)
}

func TestClaimCreditsRewardsAndRecomputesLevel(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	run := template("run", 10, "km", 1200, 30)
	ride := template("ride", 20, "km", 50, 5)
	h.giveMissions(t, "u1", assigned(run, 10, true), assigned(ride, 0, false))
	h.giveStats(t, "u1", 100, 5)

	res, err := h.rewards.Claim(ctx, "u1", "run")
	require.NoError(t, err)

	require.Len(t, res.Missions, 1)
	assert.Equal(t, "ride", res.Missions[0].ID)
	assert.Equal(t, int64(30), res.CoinsEarned)
	assert.Equal(t, int64(1200), res.XPEarned)

	stats, err := h.stores.Stats.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1300), stats.Points)
	assert.Equal(t, int64(35), stats.Coins)
	assert.Equal(t, int64(1), stats.MissionsCompleted)

	want := service.LevelFor(1300)
	assert.Equal(t, want.Level, stats.CurrentLevel)
	assert.Equal(t, want.NextLevel, stats.NextLevel)
	assert.Equal(t, want.PointsToNext, stats.PointsToNextLevel)
	assert.Equal(t, 2, stats.CurrentLevel)

	assert.False(t, h.state(t, "u1").Has("run"))
}

func TestClaimCreatesMissingStats(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.giveMissions(t, "u1", assigned(template("run", 10, "km", 300, 20), 10, true))

	res, err := h.rewards.Claim(ctx, "u1", "run")
	require.NoError(t, err)
	assert.Equal(t, int64(300), res.Stats.Points)

	stats, err := h.stores.Stats.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), stats.Points)
	assert.Equal(t, int64(20), stats.Coins)
	assert.Equal(t, 1, stats.CurrentLevel)
	assert.Equal(t, int64(700), stats.PointsToNextLevel)
}

func TestCompleteRemovesRegardlessOfProgress(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.giveMissions(t, "u1", assigned(template("run", 10, "km", 100, 10), 0, false))
	h.giveStats(t, "u1", 0, 0)

	res, err := h.rewards.CompleteAndReward(ctx, "u1", "run")
	require.NoError(t, err)
	assert.Empty(t, res.Missions)
	assert.Equal(t, int64(10), res.CoinsEarned)
	assert.Equal(t, int64(100), res.XPEarned)

	stats, err := h.stores.Stats.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.Points)
	assert.Equal(t, int64(10), stats.Coins)
	assert.Equal(t, int64(1), stats.MissionsCompleted)
}

func TestCompleteWithoutStatsSkipsRewards(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.giveMissions(t, "u1", assigned(template("run", 10, "km", 100, 10), 0, false))

	_, err := h.rewards.CompleteAndReward(ctx, "u1", "run")
	require.NoError(t, err)

	_, err = h.stores.Stats.Get(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCompleteFailures(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.rewards.CompleteAndReward(ctx, "u1", "run")
	assert.True(t, errors.Is(err, errors.CodeNoActiveMissions))

	h.giveMissions(t, "u1", assigned(template("run", 10, "km", 100, 10), 0, false))
	_, err = h.rewards.CompleteAndReward(ctx, "u1", "swim")
	assert.True(t, errors.Is(err, errors.CodeMissionNotFound))
}

func joinGroup(t *testing.T, h *harness, missionID string, uids ...string) {
	t.Helper()
	for _, uid := range uids {
		_, err := h.matches.Start(context.Background(), entity.Identity{UID: uid, DisplayName: "name-" + uid}, missionID)
		require.NoError(t, err)
	}
}

func TestClaimPropagatesRewardsToGroup(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	h := newHarness(t)
	run := template("run", 10, "km", 400, 25)

	h.giveMissions(t, "a", assigned(run, 10, true))
	h.giveMissions(t, "b", assigned(run, 2, false))
	h.giveStats(t, "a", 0, 0)
	h.giveStats(t, "b", 1000, 10)
	h.giveStats(t, "c", 50, 0)
	joinGroup(t, h, "run", "a", "b", "c")

	res, err := h.rewards.Claim(ctx, "a", "run")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, res.SharedWith)

	b, err := h.stores.Stats.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1400), b.Points)
	assert.Equal(t, int64(35), b.Coins)
	assert.Equal(t, int64(1), b.MissionsCompleted)

	c, err := h.stores.Stats.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(450), c.Points)
	assert.Equal(t, int64(25), c.Coins)

	bState := h.state(t, "b")
	require.True(t, bState.Has("run"))
	assert.True(t, bState.Missions[0].Completed)
	assert.GreaterOrEqual(t, bState.Missions[0].ProgressValue, bState.Missions[0].TargetValue)

	_, err = h.stores.Matches.Get(ctx, "run")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, h.presence.Members("run"))

	events := h.notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, "run", events[0].channel)
	assert.Equal(t, entity.MatchEventMissionCompleted, events[0].event)
	payload := events[0].payload.(entity.MissionCompletedPayload)
	assert.Equal(t, "a", payload.CompletedBy)
	assert.True(t, payload.Rewarded)
}

func TestCompletePropagatesOnlyTheFlag(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	h := newHarness(t)
	run := template("run", 10, "km", 400, 25)

	h.giveMissions(t, "a", assigned(run, 0, false))
	h.giveMissions(t, "b", assigned(run, 0, false))
	h.giveStats(t, "b", 0, 0)
	joinGroup(t, h, "run", "a", "b")

	_, err := h.rewards.CompleteAndReward(ctx, "a", "run")
	require.NoError(t, err)

	b, err := h.stores.Stats.Get(ctx, "b")
	require.NoError(t, err)
	assert.Zero(t, b.Points)
	assert.Zero(t, b.Coins)
	assert.True(t, h.state(t, "b").Missions[0].Completed)

	_, err = h.stores.Matches.Get(ctx, "run")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	events := h.notifier.all()
	require.Len(t, events, 1)
	assert.False(t, events[0].payload.(entity.MissionCompletedPayload).Rewarded)
}

func TestMarkCompletedForGroup(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	h := newHarness(t)
	run := template("run", 10, "km", 400, 25)

	h.giveMissions(t, "a", assigned(run, 1, false))
	h.giveMissions(t, "b", assigned(run, 0, false))
	h.giveStats(t, "a", 0, 0)
	joinGroup(t, h, "run", "a", "b")

	missions, err := h.rewards.MarkCompletedForGroup(ctx, "a", "run")
	require.NoError(t, err)
	require.Len(t, missions, 1)
	assert.True(t, missions[0].Completed)
	assert.Equal(t, 10.0, missions[0].ProgressValue)

	a, err := h.stores.Stats.Get(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, a.Points, "marking completed pays nothing")

	assert.True(t, h.state(t, "b").Missions[0].Completed)
	_, err = h.stores.Matches.Get(ctx, "run")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = h.rewards.MarkCompletedForGroup(ctx, "a", "swim")
	assert.True(t, errors.Is(err, errors.CodeMissionNotFound))
	_, err = h.rewards.MarkCompletedForGroup(ctx, "nobody", "run")
	assert.True(t, errors.Is(err, errors.CodeNoActiveMissions))
}

func TestClaimWithoutGroupDoesNotNotify(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.giveMissions(t, "a", assigned(template("run", 1, "km", 10, 1), 1, true))

	res, err := h.rewards.Claim(ctx, "a", "run")
	require.NoError(t, err)
	assert.Empty(t, res.SharedWith)
	assert.Empty(t, h.notifier.all())
}

func TestPropagationSkipsMembersWithoutRecords(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	joinGroup(t, h, "run", "a", "ghost")

	res, err := h.matches.PropagateCompletion(ctx, "a", "run", 10, 1, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, res.Members)
	assert.Equal(t, []string{"ghost"}, res.Skipped)
	assert.Empty(t, res.Rewarded)

	_, err = h.stores.Matches.Get(ctx, "run")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClaimKeepsRewardsLandedAfterItsRead(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.giveMissions(t, "bob", assigned(template("run", 10, "km", 100, 10), 10, true))
	h.giveStats(t, "bob", 0, 0)

	states, _ := h.decorate()
	states.afterGet = once(func(uid string) {
		require.NoError(t, h.stores.Stats.IncrementRewards(ctx, uid, 500, 50))
	})

	res, err := h.rewards.Claim(ctx, "bob", "run")
	require.NoError(t, err)
	assert.Equal(t, int64(600), res.Stats.Points)

	stats, err := h.stores.Stats.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(600), stats.Points)
	assert.Equal(t, int64(60), stats.Coins)
	assert.Equal(t, int64(2), stats.MissionsCompleted)
}

func TestClaimStorageFailureLeavesEverythingInPlace(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	h := newHarness(t)
	run := template("run", 10, "km", 400, 25)
	h.giveMissions(t, "a", assigned(run, 10, true))
	h.giveMissions(t, "b", assigned(run, 0, false))
	h.giveStats(t, "a", 100, 5)
	h.giveStats(t, "b", 0, 0)
	joinGroup(t, h, "run", "a", "b")

	states, _ := h.decorate()
	states.fail = failOn("SettleRewards")

	_, err := h.rewards.Claim(ctx, "a", "run")
	assert.True(t, errors.Is(err, errors.CodeStorageUnavailable))

	assert.True(t, h.state(t, "a").Has("run"))
	a, err := h.stores.Stats.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(100), a.Points)
	assert.Equal(t, int64(5), a.Coins)

	b, err := h.stores.Stats.Get(ctx, "b")
	require.NoError(t, err)
	assert.Zero(t, b.Points, "group is not rewarded when the claim fails")
	assert.False(t, h.state(t, "b").Missions[0].Completed)

	_, err = h.stores.Matches.Get(ctx, "run")
	assert.NoError(t, err, "group survives a failed claim")
	assert.Empty(t, h.notifier.all())
}

func TestClaimLoadFailureIsStorageUnavailable(t *testing.T) {
	h := newHarness(t)
	states, _ := h.decorate()
	states.fail = failOn("Get")

	_, err := h.rewards.Claim(context.Background(), "a", "run")
	assert.True(t, errors.Is(err, errors.CodeStorageUnavailable))
}

func TestCompleteStorageFailureCanBeRetried(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.giveMissions(t, "u1", assigned(template("run", 10, "km", 100, 10), 0, false))
	h.giveStats(t, "u1", 0, 0)

	states, _ := h.decorate()
	states.fail = failOn("SettleRewards")

	_, err := h.rewards.CompleteAndReward(ctx, "u1", "run")
	assert.True(t, errors.Is(err, errors.CodeStorageUnavailable))
	assert.True(t, h.state(t, "u1").Has("run"), "mission kept for a retry")

	states.fail = nil
	_, err = h.rewards.CompleteAndReward(ctx, "u1", "run")
	require.NoError(t, err)

	stats, err := h.stores.Stats.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.Points)
	assert.Equal(t, int64(10), stats.Coins)
	assert.Equal(t, int64(1), stats.MissionsCompleted)
	assert.False(t, h.state(t, "u1").Has("run"))
}

func TestClaimSkipsMembersWhoseStorageFails(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	h := newHarness(t)
	run := template("run", 10, "km", 400, 25)
	h.giveMissions(t, "a", assigned(run, 10, true))
	h.giveMissions(t, "b", assigned(run, 0, false))
	h.giveMissions(t, "c", assigned(run, 0, false))
	for _, uid := range []string{"a", "b", "c"} {
		h.giveStats(t, uid, 0, 0)
	}
	joinGroup(t, h, "run", "a", "b", "c")

	_, stats := h.decorate()
	stats.fail = failOn("IncrementRewards", "b")

	res, err := h.rewards.Claim(ctx, "a", "run")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, res.SharedWith)
	assert.Equal(t, int64(400), res.Stats.Points)

	b, err := h.stores.Stats.Get(ctx, "b")
	require.NoError(t, err)
	assert.Zero(t, b.Points)
	assert.True(t, h.state(t, "b").Missions[0].Completed, "flag still propagated")

	c, err := h.stores.Stats.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(400), c.Points)

	_, err = h.stores.Matches.Get(ctx, "run")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPropagationSurvivesMarkFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	run := template("run", 10, "km", 400, 25)
	h.giveMissions(t, "b", assigned(run, 0, false))
	h.giveMissions(t, "c", assigned(run, 0, false))
	h.giveStats(t, "b", 0, 0)
	h.giveStats(t, "c", 0, 0)
	joinGroup(t, h, "run", "a", "b", "c")

	states, _ := h.decorate()
	states.fail = failOn("MarkCompleted", "b")

	res, err := h.matches.PropagateCompletion(ctx, "a", "run", 10, 1, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, res.Marked)
	assert.Equal(t, []string{"b", "c"}, res.Rewarded)
	assert.False(t, h.state(t, "b").Missions[0].Completed)
}
