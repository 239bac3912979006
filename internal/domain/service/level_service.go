package service

import (
	"motiv8/internal/domain/entity"
)

const (
	baseThreshold = 1000
	baseIncrement = 1000
	incrementStep = 500
)

// LevelFor maps cumulative points to the current level and the points still
// needed for the next one. Thresholds are 1000, 2500, 4500, 7000, ... with
// the gap between consecutive thresholds growing by 500 each level.
func LevelFor(points int64) entity.LevelInfo {
	if points < 0 {
		points = 0
	}

	level := 1
	threshold := int64(baseThreshold)
	increment := int64(baseIncrement)

	for points >= threshold {
		level++
		increment += incrementStep
		threshold += increment
	}

	return entity.LevelInfo{
		Level:        level,
		NextLevel:    level + 1,
		PointsToNext: threshold - points,
	}
}

// Recompute refreshes the derived level fields of stats from its points.
func Recompute(stats *entity.UserStats) *entity.UserStats {
	if stats == nil {
		return nil
	}
	stats.ApplyLevel(LevelFor(stats.Points))
	return stats
}
