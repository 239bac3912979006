package entity

import (
	"time"
)

// MaxMissionRefreshes bounds how many times a user may request a fresh trio of missions.
const MaxMissionRefreshes = 3

// XPBoost is a temporary reward multiplier granted as a level-up reward.
type XPBoost struct {
	Multiplier        float64   `firestore:"multiplier" json:"multiplier"`
	RemainingMissions int       `firestore:"misionesRestantes" json:"misionesRestantes"`
	GrantedAt         time.Time `firestore:"grantedAt" json:"grantedAt"`
}

// UserStats holds a user's progression. Level fields are derived from Points
// and are recomputed whenever the record is read or written.
type UserStats struct {
	UserID            string   `firestore:"userId" json:"userId"`
	DisplayName       string   `firestore:"displayName,omitempty" json:"displayName,omitempty"`
	Points            int64    `firestore:"points" json:"points"`
	Coins             int64    `firestore:"coins" json:"coins"`
	CurrentLevel      int      `firestore:"nivelActual" json:"nivelActual"`
	NextLevel         int      `firestore:"nivelSiguiente" json:"nivelSiguiente"`
	PointsToNextLevel int64    `firestore:"puntosParaSiguienteNivel" json:"puntosParaSiguienteNivel"`
	MissionsCompleted int64    `firestore:"missionesCompletas" json:"missionesCompletas"`
	LastRewardedLevel int      `firestore:"lastRewardedLevel" json:"lastRewardedLevel"`
	RefreshCount      int      `firestore:"refreshCount" json:"refreshCount"`
	XPBoost           *XPBoost `firestore:"xpBoost,omitempty" json:"xpBoost,omitempty"`
	PremiumDiscount   bool     `firestore:"premiumDiscount" json:"premiumDiscount"`

	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

func NewUserStats(userID string) *UserStats {
	return &UserStats{
		UserID:            userID,
		CurrentLevel:      1,
		NextLevel:         2,
		PointsToNextLevel: 1000,
	}
}

// LevelInfo is the level curve output for a point total.
type LevelInfo struct {
	Level        int   `json:"level"`
	NextLevel    int   `json:"nextLevel"`
	PointsToNext int64 `json:"pointsToNext"`
}

func (s *UserStats) ApplyLevel(info LevelInfo) {
	s.CurrentLevel = info.Level
	s.NextLevel = info.NextLevel
	s.PointsToNextLevel = info.PointsToNext
}

// RewardOption selects the payout of a level-up reward.
type RewardOption string

const (
	RewardOptionCoins  RewardOption = "coins"
	RewardOptionXP     RewardOption = "xp"
	RewardOptionCoupon RewardOption = "cupon"
)

func (o RewardOption) Valid() bool {
	switch o {
	case RewardOptionCoins, RewardOptionXP, RewardOptionCoupon:
		return true
	}
	return false
}

// LevelGrant is the payout recorded for one level-up reward. Coins are added
// to the balance; a nil XPBoost or false PremiumDiscount leaves the stored
// value untouched.
type LevelGrant struct {
	Level           int
	Coins           int64
	XPBoost         *XPBoost
	PremiumDiscount bool
}

// Credit adds one settled mission's rewards. Callers recompute the level
// fields.
func (s *UserStats) Credit(points, coins int64) {
	s.Points += points
	s.Coins += coins
	s.MissionsCompleted++
}

// ApplyGrant records g as the latest level reward.
func (s *UserStats) ApplyGrant(g LevelGrant) {
	s.Coins += g.Coins
	if g.XPBoost != nil {
		boost := *g.XPBoost
		s.XPBoost = &boost
	}
	if g.PremiumDiscount {
		s.PremiumDiscount = true
	}
	s.LastRewardedLevel = g.Level
}
