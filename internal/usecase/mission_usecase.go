package usecase

import (
	"context"
	"math"
	"time"

	"motiv8/internal/domain/entity"
	"motiv8/internal/domain/repository"
	"motiv8/internal/domain/service"
	"motiv8/pkg/errors"
	"motiv8/pkg/logger"
)

// missionsPerRefresh is how many missions a refresh hands out.
const missionsPerRefresh = 3

type MissionUseCase struct {
	catalogRepo repository.MissionCatalogRepository
	stateRepo   repository.MissionStateRepository
	statsRepo   repository.UserStatsRepository
	rng         service.Randomizer
	log         logger.Logger
	now         func() time.Time
}

func NewMissionUseCase(
	catalogRepo repository.MissionCatalogRepository,
	stateRepo repository.MissionStateRepository,
	statsRepo repository.UserStatsRepository,
	rng service.Randomizer,
	log logger.Logger,
) *MissionUseCase {
	return &MissionUseCase{
		catalogRepo: catalogRepo,
		stateRepo:   stateRepo,
		statsRepo:   statsRepo,
		rng:         rng,
		log:         log,
		now:         time.Now,
	}
}

type AssignThreeResult struct {
	Missions     []entity.AssignedMission `json:"missions"`
	LimitReached bool                     `json:"limitReached"`
	RefreshCount int                      `json:"refreshCount"`
}

func (uc *MissionUseCase) GetActiveMissions(ctx context.Context, userID string) ([]entity.AssignedMission, error) {
	state, err := uc.stateRepo.Get(ctx, userID)
	if err != nil {
		return nil, storageError("load missions", err)
	}
	return state.Missions, nil
}

// availableTemplates lists catalog entries whose active window includes now.
func (uc *MissionUseCase) availableTemplates(ctx context.Context) ([]entity.MissionTemplate, error) {
	templates, err := uc.catalogRepo.List(ctx)
	if err != nil {
		return nil, storageError("load mission catalog", err)
	}

	now := uc.now()
	available := make([]entity.MissionTemplate, 0, len(templates))
	for _, t := range templates {
		if t.Available(now) {
			available = append(available, t)
		}
	}
	return available, nil
}

// AssignOne adds one random mission the user does not already hold.
func (uc *MissionUseCase) AssignOne(ctx context.Context, userID string) (*entity.AssignedMission, error) {
	state, err := uc.stateRepo.Get(ctx, userID)
	if err != nil {
		return nil, storageError("load missions", err)
	}

	if len(state.Missions) >= entity.MaxActiveMissions {
		return nil, errors.CapacityExceeded(entity.MaxActiveMissions)
	}

	templates, err := uc.availableTemplates(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]entity.MissionTemplate, 0, len(templates))
	for _, t := range templates {
		if !state.Has(t.ID) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil, errors.NoMissionsAvailable()
	}

	now := uc.now()
	mission := entity.NewAssignedMission(candidates[uc.rng.Intn(len(candidates))], now)
	state.Missions = append(state.Missions, mission)
	state.LastAssignedAt = now

	if err := uc.stateRepo.Save(ctx, state); err != nil {
		uc.log.Error("failed to save assigned mission", "uid", userID, "error", err)
		return nil, storageError("assign mission", err)
	}

	return &mission, nil
}

// AssignThree replaces an empty active set with three fresh missions. Each
// user may do this MaxMissionRefreshes times.
func (uc *MissionUseCase) AssignThree(ctx context.Context, userID string) (*AssignThreeResult, error) {
	count := 0
	stats, err := uc.statsRepo.Get(ctx, userID)
	switch {
	case err == nil:
		count = stats.RefreshCount
	case !isNotFound(err):
		return nil, storageError("load stats", err)
	}

	if count >= entity.MaxMissionRefreshes {
		return &AssignThreeResult{
			Missions:     []entity.AssignedMission{},
			LimitReached: true,
			RefreshCount: count,
		}, nil
	}

	state, err := uc.stateRepo.Get(ctx, userID)
	if err != nil {
		return nil, storageError("load missions", err)
	}
	if !state.IsEmpty() {
		return nil, errors.PendingMissionsExist()
	}

	templates, err := uc.availableTemplates(ctx)
	if err != nil {
		return nil, err
	}
	if len(templates) < missionsPerRefresh {
		return nil, errors.InsufficientCatalog(missionsPerRefresh)
	}

	shuffled := append([]entity.MissionTemplate(nil), templates...)
	uc.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	now := uc.now()
	missions := make([]entity.AssignedMission, 0, missionsPerRefresh)
	for _, t := range shuffled[:missionsPerRefresh] {
		missions = append(missions, entity.NewAssignedMission(t, now))
	}
	state.Missions = missions
	state.LastAssignedAt = now

	count, err = uc.stateRepo.SaveWithRefresh(ctx, state)
	if err != nil {
		uc.log.Error("failed to save refreshed missions", "uid", userID, "error", err)
		return nil, storageError("assign missions", err)
	}

	return &AssignThreeResult{
		Missions:     missions,
		LimitReached: count >= entity.MaxMissionRefreshes,
		RefreshCount: count,
	}, nil
}

// ApplyProgress adds amount to a mission. A unit that differs from the
// mission's unit leaves everything unchanged.
func (uc *MissionUseCase) ApplyProgress(ctx context.Context, userID, missionID string, amount float64, unit string) ([]entity.AssignedMission, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return nil, errors.BadRequest("Progress amount must be a non-negative number", nil)
	}

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

	mission := &state.Missions[i]
	if mission.Unit != unit {
		uc.log.Debug("ignoring progress with mismatched unit", "uid", userID, "missionId", missionID, "unit", unit, "expected", mission.Unit)
		return state.Missions, nil
	}

	mission.AddProgress(amount)

	if err := uc.stateRepo.Save(ctx, state); err != nil {
		uc.log.Error("failed to save progress", "uid", userID, "missionId", missionID, "error", err)
		return nil, storageError("save progress", err)
	}

	return state.Missions, nil
}
