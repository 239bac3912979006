package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"motiv8/internal/domain/entity"
	"motiv8/internal/domain/repository"
	"motiv8/internal/domain/service"
)

type firestoreUserStatsRepository struct {
	client *firestore.Client
}

func NewFirestoreUserStatsRepository(client *firestore.Client) repository.UserStatsRepository {
	return &firestoreUserStatsRepository{
		client: client,
	}
}

func (r *firestoreUserStatsRepository) ref(userID string) *firestore.DocumentRef {
	return r.client.Collection(userStatsCollection).Doc(userID)
}

func decodeStats(doc *firestore.DocumentSnapshot) (*entity.UserStats, error) {
	var stats entity.UserStats
	if err := doc.DataTo(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode user stats: %w", err)
	}
	stats.UserID = doc.Ref.ID

	// Increments bypass the level fields, so they are derived here.
	return service.Recompute(&stats), nil
}

func (r *firestoreUserStatsRepository) Get(ctx context.Context, userID string) (*entity.UserStats, error) {
	doc, err := r.ref(userID).Get(ctx)
	if err != nil {
		return nil, translate(err)
	}

	return decodeStats(doc)
}

func (r *firestoreUserStatsRepository) Save(ctx context.Context, stats *entity.UserStats) error {
	now := time.Now()
	if stats.CreatedAt.IsZero() {
		stats.CreatedAt = now
	}
	stats.UpdatedAt = now
	service.Recompute(stats)

	_, err := r.ref(stats.UserID).Set(ctx, stats)
	if err != nil {
		return fmt.Errorf("failed to save user stats: %w", err)
	}

	return nil
}

func (r *firestoreUserStatsRepository) IncrementRewards(ctx context.Context, userID string, points, coins int64) error {
	_, err := r.ref(userID).Update(ctx, []firestore.Update{
		{Path: "points", Value: firestore.Increment(points)},
		{Path: "coins", Value: firestore.Increment(coins)},
		{Path: "missionesCompletas", Value: firestore.Increment(1)},
		{Path: "updatedAt", Value: time.Now()},
	})

	return translate(err)
}

// levelUpdates writes the derived level fields of stats.
func levelUpdates(stats *entity.UserStats) []firestore.Update {
	return []firestore.Update{
		{Path: "nivelActual", Value: stats.CurrentLevel},
		{Path: "nivelSiguiente", Value: stats.NextLevel},
		{Path: "puntosParaSiguienteNivel", Value: stats.PointsToNextLevel},
	}
}

func (r *firestoreUserStatsRepository) ApplyLevelReward(ctx context.Context, userID string, grant entity.LevelGrant) (*entity.UserStats, error) {
	ref := r.ref(userID)

	var granted *entity.UserStats
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}

		stats, err := decodeStats(doc)
		if err != nil {
			return err
		}
		if grant.Level <= stats.LastRewardedLevel {
			return repository.ErrAlreadyRewarded
		}

		now := time.Now()
		stats.ApplyGrant(grant)
		stats.UpdatedAt = now
		granted = stats

		updates := []firestore.Update{
			{Path: "lastRewardedLevel", Value: grant.Level},
			{Path: "updatedAt", Value: now},
		}
		if grant.Coins != 0 {
			updates = append(updates, firestore.Update{Path: "coins", Value: firestore.Increment(grant.Coins)})
		}
		if grant.XPBoost != nil {
			updates = append(updates, firestore.Update{Path: "xpBoost", Value: grant.XPBoost})
		}
		if grant.PremiumDiscount {
			updates = append(updates, firestore.Update{Path: "premiumDiscount", Value: true})
		}
		return tx.Update(ref, updates)
	})
	if err != nil {
		return nil, translate(err)
	}

	return granted, nil
}

func (r *firestoreUserStatsRepository) TopByPoints(ctx context.Context, limit int) ([]entity.UserStats, error) {
	query := r.client.Collection(userStatsCollection).
		Where("points", ">", 0).
		OrderBy("points", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	top := []entity.UserStats{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate user stats: %w", err)
		}

		stats, err := decodeStats(doc)
		if err != nil {
			return nil, err
		}
		top = append(top, *stats)
	}

	return top, nil
}
