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

type firestoreMissionCatalogRepository struct {
	client *firestore.Client
}

func NewFirestoreMissionCatalogRepository(client *firestore.Client) repository.MissionCatalogRepository {
	return &firestoreMissionCatalogRepository{
		client: client,
	}
}

func (r *firestoreMissionCatalogRepository) List(ctx context.Context) ([]entity.MissionTemplate, error) {
	iter := r.client.Collection(missionsCollection).OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	templates := []entity.MissionTemplate{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate missions: %w", err)
		}

		var template entity.MissionTemplate
		if err := doc.DataTo(&template); err != nil {
			return nil, fmt.Errorf("failed to decode mission %s: %w", doc.Ref.ID, err)
		}
		if template.ID == "" {
			template.ID = doc.Ref.ID
		}
		templates = append(templates, template)
	}

	return templates, nil
}

func (r *firestoreMissionCatalogRepository) GetByID(ctx context.Context, id string) (*entity.MissionTemplate, error) {
	doc, err := r.client.Collection(missionsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, translate(err)
	}

	var template entity.MissionTemplate
	if err := doc.DataTo(&template); err != nil {
		return nil, fmt.Errorf("failed to decode mission: %w", err)
	}
	template.ID = doc.Ref.ID

	return &template, nil
}

func (r *firestoreMissionCatalogRepository) Create(ctx context.Context, template *entity.MissionTemplate) error {
	template.CreatedAt = time.Now()
	template.UpdatedAt = template.CreatedAt

	_, err := r.client.Collection(missionsCollection).Doc(template.ID).Create(ctx, template)
	if err != nil {
		return fmt.Errorf("failed to create mission: %w", err)
	}

	return nil
}

func (r *firestoreMissionCatalogRepository) Update(ctx context.Context, template *entity.MissionTemplate) error {
	ref := r.client.Collection(missionsCollection).Doc(template.ID)

	return translate(r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}

		var existing entity.MissionTemplate
		if err := doc.DataTo(&existing); err != nil {
			return err
		}

		template.CreatedAt = existing.CreatedAt
		template.UpdatedAt = time.Now()
		return tx.Set(ref, template)
	}))
}

func (r *firestoreMissionCatalogRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(missionsCollection).Doc(id).Delete(ctx, firestore.Exists)
	return translate(err)
}

func (r *firestoreMissionCatalogRepository) Upsert(ctx context.Context, templates []entity.MissionTemplate) error {
	bw := r.client.BulkWriter(ctx)

	now := time.Now()
	jobs := make([]*firestore.BulkWriterJob, 0, len(templates))
	for i := range templates {
		t := templates[i]
		t.UpdatedAt = now
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}

		job, err := bw.Set(r.client.Collection(missionsCollection).Doc(t.ID), t)
		if err != nil {
			bw.End()
			return fmt.Errorf("failed to queue mission %s: %w", t.ID, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("failed to write mission %s: %w", templates[i].ID, err)
		}
	}

	return nil
}

type firestoreMissionStateRepository struct {
	client *firestore.Client
}

func NewFirestoreMissionStateRepository(client *firestore.Client) repository.MissionStateRepository {
	return &firestoreMissionStateRepository{
		client: client,
	}
}

func (r *firestoreMissionStateRepository) ref(userID string) *firestore.DocumentRef {
	return r.client.Collection(userMissionsCollection).Doc(userID)
}

func decodeState(userID string, doc *firestore.DocumentSnapshot) (*entity.UserMissionState, error) {
	var state entity.UserMissionState
	if err := doc.DataTo(&state); err != nil {
		return nil, fmt.Errorf("failed to decode mission state: %w", err)
	}
	state.UserID = userID
	if state.Missions == nil {
		state.Missions = []entity.AssignedMission{}
	}
	return &state, nil
}

func (r *firestoreMissionStateRepository) Get(ctx context.Context, userID string) (*entity.UserMissionState, error) {
	doc, err := r.ref(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return entity.NewUserMissionState(userID), nil
		}
		return nil, err
	}

	return decodeState(userID, doc)
}

func (r *firestoreMissionStateRepository) Save(ctx context.Context, state *entity.UserMissionState) error {
	state.UpdatedAt = time.Now()

	_, err := r.ref(state.UserID).Set(ctx, state)
	if err != nil {
		return fmt.Errorf("failed to save mission state: %w", err)
	}

	return nil
}

func (r *firestoreMissionStateRepository) MarkCompleted(ctx context.Context, userID, missionID string) error {
	ref := r.ref(userID)

	return translate(r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}

		state, err := decodeState(userID, doc)
		if err != nil {
			return err
		}

		i := state.Index(missionID)
		if i < 0 {
			return repository.ErrNotFound
		}
		state.Missions[i].MarkCompleted()
		state.UpdatedAt = time.Now()

		return tx.Set(ref, state)
	}))
}

func (r *firestoreMissionStateRepository) SettleRewards(ctx context.Context, state *entity.UserMissionState, points, coins int64, createStats bool) (*entity.UserStats, error) {
	stateRef := r.ref(state.UserID)
	statsRef := r.client.Collection(userStatsCollection).Doc(state.UserID)

	var settled *entity.UserStats
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		settled = nil
		now := time.Now()

		doc, err := tx.Get(statsRef)
		switch {
		case err == nil:
			current, err := decodeStats(doc)
			if err != nil {
				return err
			}
			current.Credit(points, coins)
			current.UpdatedAt = now
			settled = service.Recompute(current)

			if err := tx.Update(statsRef, append(levelUpdates(settled),
				firestore.Update{Path: "points", Value: firestore.Increment(points)},
				firestore.Update{Path: "coins", Value: firestore.Increment(coins)},
				firestore.Update{Path: "missionesCompletas", Value: firestore.Increment(1)},
				firestore.Update{Path: "updatedAt", Value: now},
			)); err != nil {
				return err
			}

		case !isNotFound(err):
			return err

		case createStats:
			created := entity.NewUserStats(state.UserID)
			created.Credit(points, coins)
			created.CreatedAt = now
			created.UpdatedAt = now
			settled = service.Recompute(created)

			if err := tx.Create(statsRef, settled); err != nil {
				return err
			}
		}

		state.UpdatedAt = now
		return tx.Set(stateRef, state)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle mission rewards: %w", err)
	}

	return settled, nil
}

func (r *firestoreMissionStateRepository) SaveWithRefresh(ctx context.Context, state *entity.UserMissionState) (int, error) {
	stateRef := r.ref(state.UserID)
	statsRef := r.client.Collection(userStatsCollection).Doc(state.UserID)

	var count int
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()

		doc, err := tx.Get(statsRef)
		switch {
		case err == nil:
			stats, err := decodeStats(doc)
			if err != nil {
				return err
			}
			count = stats.RefreshCount + 1

			if err := tx.Update(statsRef, []firestore.Update{
				{Path: "refreshCount", Value: firestore.Increment(1)},
				{Path: "updatedAt", Value: now},
			}); err != nil {
				return err
			}

		case isNotFound(err):
			stats := entity.NewUserStats(state.UserID)
			stats.RefreshCount = 1
			stats.CreatedAt = now
			stats.UpdatedAt = now
			count = stats.RefreshCount

			if err := tx.Create(statsRef, stats); err != nil {
				return err
			}

		default:
			return err
		}

		state.UpdatedAt = now
		return tx.Set(stateRef, state)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save mission refresh: %w", err)
	}

	return count, nil
}
