package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"motiv8/internal/domain/repository"
)

const (
	missionsCollection     = "missions"
	userMissionsCollection = "userMissions"
	userStatsCollection    = "userStats"
	matchesCollection      = "missionMatches"
)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// translate maps a Firestore NotFound onto the domain sentinel.
func translate(err error) error {
	if err != nil && isNotFound(err) {
		return repository.ErrNotFound
	}
	return err
}

// Stores groups the Firestore-backed repositories.
type Stores struct {
	Catalog       repository.MissionCatalogRepository
	MissionStates repository.MissionStateRepository
	Stats         repository.UserStatsRepository
	Matches       repository.MatchRepository
}

func NewFirestoreStores(client *firestore.Client) Stores {
	return Stores{
		Catalog:       NewFirestoreMissionCatalogRepository(client),
		MissionStates: NewFirestoreMissionStateRepository(client),
		Stats:         NewFirestoreUserStatsRepository(client),
		Matches:       NewFirestoreMatchRepository(client),
	}
}

func NewMemoryStores(store *MemoryStore) Stores {
	return Stores{
		Catalog:       store.Catalog(),
		MissionStates: store.MissionStates(),
		Stats:         store.Stats(),
		Matches:       store.Matches(),
	}
}

// Ping reads at most one catalog document to prove the client can reach Firestore.
func Ping(client *firestore.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		iter := client.Collection(missionsCollection).Limit(1).Documents(ctx)
		defer iter.Stop()

		if _, err := iter.Next(); err != nil && err != iterator.Done {
			return err
		}
		return nil
	}
}
