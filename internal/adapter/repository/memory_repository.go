package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"motiv8/internal/domain/entity"
	"motiv8/internal/domain/repository"
	"motiv8/internal/domain/service"
)

// MemoryStore keeps every collection in process memory. It backs the
// "memory" storage driver and the use-case tests. Contents are lost on restart.
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[string]entity.MissionTemplate
	states    map[string]entity.UserMissionState
	stats     map[string]entity.UserStats
	matches   map[string]entity.MissionMatch
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates: make(map[string]entity.MissionTemplate),
		states:    make(map[string]entity.UserMissionState),
		stats:     make(map[string]entity.UserStats),
		matches:   make(map[string]entity.MissionMatch),
	}
}

func (s *MemoryStore) Catalog() repository.MissionCatalogRepository {
	return &memoryCatalogRepository{store: s}
}

func (s *MemoryStore) MissionStates() repository.MissionStateRepository {
	return &memoryMissionStateRepository{store: s}
}

func (s *MemoryStore) Stats() repository.UserStatsRepository {
	return &memoryStatsRepository{store: s}
}

func (s *MemoryStore) Matches() repository.MatchRepository {
	return &memoryMatchRepository{store: s}
}

func copyState(state entity.UserMissionState) *entity.UserMissionState {
	out := state
	out.Missions = append([]entity.AssignedMission{}, state.Missions...)
	return &out
}

func copyStats(stats entity.UserStats) *entity.UserStats {
	out := stats
	if stats.XPBoost != nil {
		boost := *stats.XPBoost
		out.XPBoost = &boost
	}
	return service.Recompute(&out)
}

func copyMatch(match entity.MissionMatch) *entity.MissionMatch {
	out := match
	out.MemberIDs = append([]string{}, match.MemberIDs...)
	out.Members = make(map[string]entity.MatchMember, len(match.Members))
	for k, v := range match.Members {
		out.Members[k] = v
	}
	return &out
}

type memoryCatalogRepository struct {
	store *MemoryStore
}

func (r *memoryCatalogRepository) List(ctx context.Context) ([]entity.MissionTemplate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	templates := make([]entity.MissionTemplate, 0, len(r.store.templates))
	for _, t := range r.store.templates {
		templates = append(templates, t)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

func (r *memoryCatalogRepository) GetByID(ctx context.Context, id string) (*entity.MissionTemplate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *memoryCatalogRepository) Create(ctx context.Context, template *entity.MissionTemplate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	template.CreatedAt = time.Now()
	template.UpdatedAt = template.CreatedAt
	r.store.templates[template.ID] = *template
	return nil
}

func (r *memoryCatalogRepository) Update(ctx context.Context, template *entity.MissionTemplate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.templates[template.ID]
	if !ok {
		return repository.ErrNotFound
	}
	template.CreatedAt = existing.CreatedAt
	template.UpdatedAt = time.Now()
	r.store.templates[template.ID] = *template
	return nil
}

func (r *memoryCatalogRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.templates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.templates, id)
	return nil
}

func (r *memoryCatalogRepository) Upsert(ctx context.Context, templates []entity.MissionTemplate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	for _, t := range templates {
		if existing, ok := r.store.templates[t.ID]; ok {
			t.CreatedAt = existing.CreatedAt
		} else {
			t.CreatedAt = now
		}
		t.UpdatedAt = now
		r.store.templates[t.ID] = t
	}
	return nil
}

type memoryMissionStateRepository struct {
	store *MemoryStore
}

func (r *memoryMissionStateRepository) Get(ctx context.Context, userID string) (*entity.UserMissionState, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	state, ok := r.store.states[userID]
	if !ok {
		return entity.NewUserMissionState(userID), nil
	}
	return copyState(state), nil
}

func (r *memoryMissionStateRepository) Save(ctx context.Context, state *entity.UserMissionState) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	state.UpdatedAt = time.Now()
	r.store.states[state.UserID] = *copyState(*state)
	return nil
}

func (r *memoryMissionStateRepository) MarkCompleted(ctx context.Context, userID, missionID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	state, ok := r.store.states[userID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := copyState(state)
	i := updated.Index(missionID)
	if i < 0 {
		return repository.ErrNotFound
	}
	updated.Missions[i].MarkCompleted()
	updated.UpdatedAt = time.Now()
	r.store.states[userID] = *updated
	return nil
}

func (r *memoryMissionStateRepository) SettleRewards(ctx context.Context, state *entity.UserMissionState, points, coins int64, createStats bool) (*entity.UserStats, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	var settled *entity.UserStats
	if stats, ok := r.store.stats[state.UserID]; ok {
		stats.Credit(points, coins)
		stats.UpdatedAt = now
		settled = copyStats(stats)
	} else if createStats {
		stats := entity.NewUserStats(state.UserID)
		stats.Credit(points, coins)
		stats.CreatedAt = now
		stats.UpdatedAt = now
		settled = copyStats(*stats)
	}

	state.UpdatedAt = now
	r.store.states[state.UserID] = *copyState(*state)
	if settled != nil {
		r.store.stats[state.UserID] = *copyStats(*settled)
	}
	return settled, nil
}

func (r *memoryMissionStateRepository) SaveWithRefresh(ctx context.Context, state *entity.UserMissionState) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	stats, ok := r.store.stats[state.UserID]
	if !ok {
		stats = *entity.NewUserStats(state.UserID)
		stats.CreatedAt = now
	}
	stats.RefreshCount++
	stats.UpdatedAt = now

	state.UpdatedAt = now
	r.store.states[state.UserID] = *copyState(*state)
	r.store.stats[state.UserID] = stats
	return stats.RefreshCount, nil
}

type memoryStatsRepository struct {
	store *MemoryStore
}

func (r *memoryStatsRepository) Get(ctx context.Context, userID string) (*entity.UserStats, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stats, ok := r.store.stats[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyStats(stats), nil
}

func (r *memoryStatsRepository) Save(ctx context.Context, stats *entity.UserStats) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	if stats.CreatedAt.IsZero() {
		stats.CreatedAt = now
	}
	stats.UpdatedAt = now
	r.store.stats[stats.UserID] = *copyStats(*stats)
	return nil
}

func (r *memoryStatsRepository) IncrementRewards(ctx context.Context, userID string, points, coins int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stats, ok := r.store.stats[userID]
	if !ok {
		return repository.ErrNotFound
	}
	stats.Credit(points, coins)
	stats.UpdatedAt = time.Now()
	r.store.stats[userID] = *copyStats(stats)
	return nil
}

func (r *memoryStatsRepository) ApplyLevelReward(ctx context.Context, userID string, grant entity.LevelGrant) (*entity.UserStats, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stats, ok := r.store.stats[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if grant.Level <= stats.LastRewardedLevel {
		return nil, repository.ErrAlreadyRewarded
	}
	granted := copyStats(stats)
	granted.ApplyGrant(grant)
	granted.UpdatedAt = time.Now()
	r.store.stats[userID] = *copyStats(*granted)
	return granted, nil
}

func (r *memoryStatsRepository) TopByPoints(ctx context.Context, limit int) ([]entity.UserStats, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := make([]entity.UserStats, 0, len(r.store.stats))
	for _, s := range r.store.stats {
		if s.Points > 0 {
			all = append(all, *copyStats(s))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Points == all[j].Points {
			return all[i].UserID < all[j].UserID
		}
		return all[i].Points > all[j].Points
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

type memoryMatchRepository struct {
	store *MemoryStore
}

func (r *memoryMatchRepository) Get(ctx context.Context, missionID string) (*entity.MissionMatch, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	match, ok := r.store.matches[missionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyMatch(match), nil
}

func (r *memoryMatchRepository) AddMember(ctx context.Context, missionID string, member entity.MatchMember) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	match, ok := r.store.matches[missionID]
	if !ok {
		match = entity.MissionMatch{
			MissionID: missionID,
			MemberIDs: []string{},
			Members:   map[string]entity.MatchMember{},
			CreatedAt: time.Now(),
		}
	}
	updated := copyMatch(match)
	if existing, ok := updated.Members[member.UserID]; ok {
		member.JoinedAt = existing.JoinedAt
	} else {
		updated.MemberIDs = append(updated.MemberIDs, member.UserID)
	}
	updated.Members[member.UserID] = member
	r.store.matches[missionID] = *updated
	return nil
}

func (r *memoryMatchRepository) RemoveMember(ctx context.Context, missionID, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	match, ok := r.store.matches[missionID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := copyMatch(match)
	delete(updated.Members, userID)
	ids := updated.MemberIDs[:0]
	for _, id := range updated.MemberIDs {
		if id != userID {
			ids = append(ids, id)
		}
	}
	updated.MemberIDs = ids
	r.store.matches[missionID] = *updated
	return nil
}

func (r *memoryMatchRepository) Delete(ctx context.Context, missionID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.matches, missionID)
	return nil
}
