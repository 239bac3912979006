package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"motiv8/internal/adapter/repository"
	"motiv8/internal/domain/entity"
	domainrepo "motiv8/internal/domain/repository"
	"motiv8/internal/domain/service"
	"motiv8/internal/infrastructure/presence"
	"motiv8/pkg/logger"
)

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// scriptedRand returns queued Intn values, falling back to a seeded source.
type scriptedRand struct {
	mu    sync.Mutex
	queue []int
	base  service.Randomizer
}

func newScriptedRand(values ...int) *scriptedRand {
	return &scriptedRand{queue: values, base: service.NewSeededRandomizer(42)}
}

func (r *scriptedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) > 0 {
		v := r.queue[0]
		r.queue = r.queue[1:]
		return v % n
	}
	return r.base.Intn(n)
}

func (r *scriptedRand) Float64() float64 { return r.base.Float64() }

func (r *scriptedRand) Shuffle(n int, swap func(i, j int)) { r.base.Shuffle(n, swap) }

type published struct {
	channel string
	event   string
	payload interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []published
}

func (n *recordingNotifier) Publish(channel, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, published{channel: channel, event: event, payload: payload})
}

func (n *recordingNotifier) all() []published {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]published(nil), n.events...)
}

type harness struct {
	store    *repository.MemoryStore
	stores   repository.Stores
	rng      *scriptedRand
	presence *presence.Registry
	notifier *recordingNotifier

	missions *MissionUseCase
	matches  *MatchUseCase
	rewards  *RewardUseCase
	levels   *LevelRewardUseCase
	catalog  *CatalogUseCase
	stats    *StatsUseCase
}

func newHarness(t *testing.T, rngValues ...int) *harness {
	t.Helper()

	store := repository.NewMemoryStore()
	stores := repository.NewMemoryStores(store)
	h := &harness{
		store:    store,
		stores:   stores,
		rng:      newScriptedRand(rngValues...),
		presence: presence.NewRegistry(10*time.Second, presence.WithClock(func() time.Time { return testNow })),
		notifier: &recordingNotifier{},
	}

	h.wire(stores)
	return h
}

// wire builds the use cases on top of stores. Assertions keep reading
// through h.stores, so decorated stores only change what the use cases see.
func (h *harness) wire(stores repository.Stores) {
	log := logger.Nop()
	h.missions = NewMissionUseCase(stores.Catalog, stores.MissionStates, stores.Stats, h.rng, log)
	h.missions.now = func() time.Time { return testNow }
	h.matches = NewMatchUseCase(stores.Matches, stores.MissionStates, stores.Stats, h.presence, h.notifier, 4, log)
	h.matches.now = func() time.Time { return testNow }
	h.rewards = NewRewardUseCase(stores.MissionStates, h.matches, log)
	h.levels = NewLevelRewardUseCase(stores.Stats, h.rng, log)
	h.levels.now = func() time.Time { return testNow }
	h.catalog = NewCatalogUseCase(stores.Catalog, log)
	h.stats = NewStatsUseCase(stores.Stats)
}

var errUnavailable = stderrors.New("rpc error: code = Unavailable desc = backend down")

// failOn fails op for the given users, or for everyone when none are named.
func failOn(op string, uids ...string) func(op, uid string) error {
	return func(got, uid string) error {
		if got != op {
			return nil
		}
		if len(uids) == 0 {
			return errUnavailable
		}
		for _, u := range uids {
			if u == uid {
				return errUnavailable
			}
		}
		return nil
	}
}

// faultyStates injects errors into selected operations and can run a hook
// right after a successful Get, before the caller writes anything back.
type faultyStates struct {
	domainrepo.MissionStateRepository
	fail     func(op, uid string) error
	afterGet func(uid string)
}

func (f *faultyStates) check(op, uid string) error {
	if f.fail == nil {
		return nil
	}
	return f.fail(op, uid)
}

func (f *faultyStates) Get(ctx context.Context, userID string) (*entity.UserMissionState, error) {
	if err := f.check("Get", userID); err != nil {
		return nil, err
	}
	state, err := f.MissionStateRepository.Get(ctx, userID)
	if err == nil && f.afterGet != nil {
		f.afterGet(userID)
	}
	return state, err
}

func (f *faultyStates) Save(ctx context.Context, state *entity.UserMissionState) error {
	if err := f.check("Save", state.UserID); err != nil {
		return err
	}
	return f.MissionStateRepository.Save(ctx, state)
}

func (f *faultyStates) MarkCompleted(ctx context.Context, userID, missionID string) error {
	if err := f.check("MarkCompleted", userID); err != nil {
		return err
	}
	return f.MissionStateRepository.MarkCompleted(ctx, userID, missionID)
}

func (f *faultyStates) SettleRewards(ctx context.Context, state *entity.UserMissionState, points, coins int64, createStats bool) (*entity.UserStats, error) {
	if err := f.check("SettleRewards", state.UserID); err != nil {
		return nil, err
	}
	return f.MissionStateRepository.SettleRewards(ctx, state, points, coins, createStats)
}

func (f *faultyStates) SaveWithRefresh(ctx context.Context, state *entity.UserMissionState) (int, error) {
	if err := f.check("SaveWithRefresh", state.UserID); err != nil {
		return 0, err
	}
	return f.MissionStateRepository.SaveWithRefresh(ctx, state)
}

type faultyStats struct {
	domainrepo.UserStatsRepository
	fail     func(op, uid string) error
	afterGet func(uid string)
}

func (f *faultyStats) check(op, uid string) error {
	if f.fail == nil {
		return nil
	}
	return f.fail(op, uid)
}

func (f *faultyStats) Get(ctx context.Context, userID string) (*entity.UserStats, error) {
	if err := f.check("Get", userID); err != nil {
		return nil, err
	}
	stats, err := f.UserStatsRepository.Get(ctx, userID)
	if err == nil && f.afterGet != nil {
		f.afterGet(userID)
	}
	return stats, err
}

func (f *faultyStats) IncrementRewards(ctx context.Context, userID string, points, coins int64) error {
	if err := f.check("IncrementRewards", userID); err != nil {
		return err
	}
	return f.UserStatsRepository.IncrementRewards(ctx, userID, points, coins)
}

func (f *faultyStats) ApplyLevelReward(ctx context.Context, userID string, grant entity.LevelGrant) (*entity.UserStats, error) {
	if err := f.check("ApplyLevelReward", userID); err != nil {
		return nil, err
	}
	return f.UserStatsRepository.ApplyLevelReward(ctx, userID, grant)
}

// decorate rewires the use cases through decorators over the memory stores
// and returns them for tweaking.
func (h *harness) decorate() (*faultyStates, *faultyStats) {
	states := &faultyStates{MissionStateRepository: h.stores.MissionStates}
	stats := &faultyStats{UserStatsRepository: h.stores.Stats}
	h.wire(repository.Stores{
		Catalog:       h.stores.Catalog,
		MissionStates: states,
		Stats:         stats,
		Matches:       h.stores.Matches,
	})
	return states, stats
}

// once wraps fn so it runs on the first call only.
func once(fn func(uid string)) func(uid string) {
	var o sync.Once
	return func(uid string) { o.Do(func() { fn(uid) }) }
}

func template(id string, target float64, unit string, xp, coins int64) entity.MissionTemplate {
	return entity.MissionTemplate{
		ID:          id,
		Name:        "Mission " + id,
		Type:        entity.MissionTypeDistance,
		TargetValue: target,
		Unit:        unit,
		XPReward:    xp,
		CoinReward:  coins,
	}
}

func (h *harness) seedCatalog(t *testing.T, n int) {
	t.Helper()
	templates := make([]entity.MissionTemplate, 0, n)
	for i := 1; i <= n; i++ {
		templates = append(templates, template(fmt.Sprintf("m%d", i), 5, "km", 100*int64(i), 10*int64(i)))
	}
	require.NoError(t, h.stores.Catalog.Upsert(context.Background(), templates))
}

func (h *harness) giveMissions(t *testing.T, uid string, missions ...entity.AssignedMission) {
	t.Helper()
	state := entity.NewUserMissionState(uid)
	state.Missions = missions
	require.NoError(t, h.stores.MissionStates.Save(context.Background(), state))
}

func (h *harness) giveStats(t *testing.T, uid string, points, coins int64) {
	t.Helper()
	stats := entity.NewUserStats(uid)
	stats.Points = points
	stats.Coins = coins
	require.NoError(t, h.stores.Stats.Save(context.Background(), stats))
}

func (h *harness) state(t *testing.T, uid string) *entity.UserMissionState {
	t.Helper()
	state, err := h.stores.MissionStates.Get(context.Background(), uid)
	require.NoError(t, err)
	return state
}

func assigned(t entity.MissionTemplate, progress float64, completed bool) entity.AssignedMission {
	m := entity.NewAssignedMission(t, testNow)
	m.ProgressValue = progress
	m.Completed = completed
	return m
}
