package friendship

import (
	"context"
	"time"

	"nebulaverse/models"
)

// Tx is the view of the account directory and request records available
// inside one transaction. Lookups that find nothing return (nil, nil).
type Tx interface {
	FindAccount(ctx context.Context, id string) (*models.Account, error)
	AreFriends(ctx context.Context, accountID, friendID string) (bool, error)
	HasPendingBetween(ctx context.Context, a, b string) (bool, error)

	// InsertRequest returns ErrPendingConflict when a pending request for
	// the same unordered pair already exists.
	InsertRequest(ctx context.Context, req *models.FriendRequest) error
	GetRequest(ctx context.Context, id string) (*models.FriendRequest, error)

	// TransitionRequest moves a pending request to status. It reports false
	// when the request was no longer pending.
	TransitionRequest(ctx context.Context, id string, status models.RequestStatus, at time.Time) (bool, error)

	// AddFriend adds friendID to accountID's friends set. Adding an existing
	// member is not an error.
	AddFriend(ctx context.Context, accountID, friendID string) error
}

type Store interface {
	ListPendingFor(ctx context.Context, accountID string) ([]models.FriendRequestWithAccounts, error)

	// InTx runs fn in a single transaction, committing when fn returns nil
	// and rolling back otherwise.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Notifier delivers an event to every live connection of one account.
// Delivery is best effort.
type Notifier interface {
	Notify(accountID, event string, payload interface{})
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string, interface{}) {}
