package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"motiv8/internal/domain/entity"
	"motiv8/internal/domain/repository"
)

type firestoreMatchRepository struct {
	client *firestore.Client
}

func NewFirestoreMatchRepository(client *firestore.Client) repository.MatchRepository {
	return &firestoreMatchRepository{
		client: client,
	}
}

func (r *firestoreMatchRepository) ref(missionID string) *firestore.DocumentRef {
	return r.client.Collection(matchesCollection).Doc(missionID)
}

func decodeMatch(doc *firestore.DocumentSnapshot) (*entity.MissionMatch, error) {
	var match entity.MissionMatch
	if err := doc.DataTo(&match); err != nil {
		return nil, fmt.Errorf("failed to decode match: %w", err)
	}
	match.MissionID = doc.Ref.ID
	if match.Members == nil {
		match.Members = map[string]entity.MatchMember{}
	}
	if match.MemberIDs == nil {
		match.MemberIDs = []string{}
	}
	return &match, nil
}

func (r *firestoreMatchRepository) Get(ctx context.Context, missionID string) (*entity.MissionMatch, error) {
	doc, err := r.ref(missionID).Get(ctx)
	if err != nil {
		return nil, translate(err)
	}

	return decodeMatch(doc)
}

func (r *firestoreMatchRepository) AddMember(ctx context.Context, missionID string, member entity.MatchMember) error {
	ref := r.ref(missionID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if !isNotFound(err) {
				return err
			}
			return tx.Create(ref, entity.MissionMatch{
				MissionID: missionID,
				MemberIDs: []string{member.UserID},
				Members:   map[string]entity.MatchMember{member.UserID: member},
				CreatedAt: time.Now(),
			})
		}

		match, err := decodeMatch(doc)
		if err != nil {
			return err
		}

		if _, ok := match.Members[member.UserID]; ok {
			return tx.Update(ref, []firestore.Update{
				{FieldPath: firestore.FieldPath{"members", member.UserID, "displayName"}, Value: member.DisplayName},
				{FieldPath: firestore.FieldPath{"members", member.UserID, "level"}, Value: member.Level},
			})
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "memberIds", Value: firestore.ArrayUnion(member.UserID)},
			{FieldPath: firestore.FieldPath{"members", member.UserID}, Value: member},
		})
	})
	if err != nil {
		return fmt.Errorf("failed to add match member: %w", err)
	}

	return nil
}

func (r *firestoreMatchRepository) RemoveMember(ctx context.Context, missionID, userID string) error {
	_, err := r.ref(missionID).Update(ctx, []firestore.Update{
		{Path: "memberIds", Value: firestore.ArrayRemove(userID)},
		{FieldPath: firestore.FieldPath{"members", userID}, Value: firestore.Delete},
	})

	return translate(err)
}

func (r *firestoreMatchRepository) Delete(ctx context.Context, missionID string) error {
	_, err := r.ref(missionID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}

	return nil
}
