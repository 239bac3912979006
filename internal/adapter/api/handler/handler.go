package handler

import (
	"motiv8/internal/usecase"
)

var (
	missionHandler *MissionHandler
	matchHandler   *MatchHandler
	statsHandler   *StatsHandler
	catalogHandler *CatalogHandler
)

func Setup(
	missionUseCase *usecase.MissionUseCase,
	rewardUseCase *usecase.RewardUseCase,
	matchUseCase *usecase.MatchUseCase,
	statsUseCase *usecase.StatsUseCase,
	levelRewardUseCase *usecase.LevelRewardUseCase,
	catalogUseCase *usecase.CatalogUseCase,
) {
	missionHandler = NewMissionHandler(missionUseCase, rewardUseCase, catalogUseCase)
	matchHandler = NewMatchHandler(matchUseCase)
	statsHandler = NewStatsHandler(statsUseCase, levelRewardUseCase)
	catalogHandler = NewCatalogHandler(catalogUseCase)
}

func GetMissionHandler() *MissionHandler {
	return missionHandler
}

func GetMatchHandler() *MatchHandler {
	return matchHandler
}

func GetStatsHandler() *StatsHandler {
	return statsHandler
}

func GetCatalogHandler() *CatalogHandler {
	return catalogHandler
}
