package usecase

import (
	"context"
	stderrors "errors"

	"motiv8/internal/domain/entity"
	"motiv8/internal/domain/repository"
	"motiv8/pkg/errors"
)

// Notifier delivers realtime events to the subscribers of a channel.
// Delivery is best effort.
type Notifier interface {
	Publish(channel, event string, payload interface{})
}

// MatchPresence is the in-memory mirror of match membership plus the
// short-lived event buffer clients poll.
type MatchPresence interface {
	Join(missionID string, member entity.MatchMember)
	Leave(missionID, userID string)
	Dissolve(missionID string)
	Members(missionID string) []entity.MatchMember
	Append(event entity.MatchEvent)
	Events(missionID string) []entity.MatchEvent
}

// CompletionPropagator spreads a mission completion to the rest of its group.
type CompletionPropagator interface {
	PropagateCompletion(ctx context.Context, sourceUserID, missionID string, rewardPoints, rewardCoins int64, grantRewards bool) (*PropagationResult, error)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, string, interface{}) {}

// NopNotifier drops every event.
func NopNotifier() Notifier { return nopNotifier{} }

func isNotFound(err error) bool {
	return stderrors.Is(err, repository.ErrNotFound)
}

// storageError passes AppErrors through and wraps anything else.
func storageError(action string, err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.StorageUnavailable(action, err)
}
