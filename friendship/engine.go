// Package friendship owns the friend-request lifecycle: creating requests,
// rejecting duplicates, authorising responses and establishing the mutual
// friend relation when a request is accepted.
package friendship

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"nebulaverse/models"
	"nebulaverse/utils"
)

type Action string

const (
	ActionAccept Action = "accept"
	ActionIgnore Action = "ignore"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionAccept, ActionIgnore:
		return a, nil
	}
	return "", ErrInvalidAction
}

// Events delivered through the Notifier.
const (
	EventRequestReceived = "friendRequest"
	EventRequestAccepted = "friendRequestAccepted"
)

type Engine struct {
	store    Store
	notifier Notifier
	locks    *keyedMutex
	now      func() time.Time
}

type Option func(*Engine)

func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		notifier: nopNotifier{},
		locks:    newKeyedMutex(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ListPending returns the pending requests addressed to accountID.
func (e *Engine) ListPending(ctx context.Context, accountID string) ([]models.FriendRequestWithAccounts, error) {
	requests, err := e.store.ListPendingFor(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	if requests == nil {
		requests = []models.FriendRequestWithAccounts{}
	}
	return requests, nil
}

// Send creates a pending request from requesterID to targetID.
func (e *Engine) Send(ctx context.Context, requesterID, targetID string) (*models.FriendRequest, error) {
	if requesterID == targetID {
		return nil, ErrSelfRequest
	}

	unlock := e.locks.Lock("pair:" + models.PairKey(requesterID, targetID))
	defer unlock()

	var created *models.FriendRequest
	err := e.store.InTx(ctx, func(tx Tx) error {
		target, err := tx.FindAccount(ctx, targetID)
		if err != nil {
			return fmt.Errorf("find target: %w", err)
		}
		if target == nil {
			return ErrTargetNotFound
		}

		friends, err := tx.AreFriends(ctx, requesterID, targetID)
		if err != nil {
			return fmt.Errorf("check friendship: %w", err)
		}
		if friends {
			return ErrAlreadyFriends
		}

		pending, err := tx.HasPendingBetween(ctx, requesterID, targetID)
		if err != nil {
			return fmt.Errorf("check pending: %w", err)
		}
		if pending {
			return ErrDuplicateRequest
		}

		now := e.now()
		req := &models.FriendRequest{
			ID:        utils.GenerateUUID(),
			From:      requesterID,
			To:        targetID,
			Status:    models.RequestPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.InsertRequest(ctx, req); err != nil {
			if errors.Is(err, ErrPendingConflict) {
				return ErrDuplicateRequest
			}
			return fmt.Errorf("insert request: %w", err)
		}
		created = req
		return nil
	})
	if err != nil {
		e.logFailure("Send", err, logrus.Fields{"from": requesterID, "to": targetID})
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Send",
		"request":  created.ID,
		"from":     requesterID,
		"to":       targetID,
	}).Info("Friend request created")

	e.notifier.Notify(targetID, EventRequestReceived, created)
	return created, nil
}

// Respond applies action to the request on behalf of responderID, who must
// be its addressee. Accepting adds each party to the other's friends set in
// the same transaction as the status change.
func (e *Engine) Respond(ctx context.Context, responderID, requestID string, action Action) (*models.FriendRequest, error) {
	if _, err := ParseAction(string(action)); err != nil {
		return nil, err
	}

	unlock := e.locks.Lock("request:" + requestID)
	defer unlock()

	var updated *models.FriendRequest
	err := e.store.InTx(ctx, func(tx Tx) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return fmt.Errorf("get request: %w", err)
		}
		if req == nil {
			return ErrRequestNotFound
		}
		if req.To != responderID {
			return ErrNotAuthorized
		}
		if req.Status != models.RequestPending {
			return ErrAlreadyHandled
		}

		status := models.RequestIgnored
		if action == ActionAccept {
			status = models.RequestAccepted
		}

		now := e.now()
		ok, err := tx.TransitionRequest(ctx, req.ID, status, now)
		if err != nil {
			return fmt.Errorf("update request: %w", err)
		}
		if !ok {
			return ErrAlreadyHandled
		}

		if status == models.RequestAccepted {
			if err := tx.AddFriend(ctx, req.From, req.To); err != nil {
				return fmt.Errorf("add friend: %w", err)
			}
			if err := tx.AddFriend(ctx, req.To, req.From); err != nil {
				return fmt.Errorf("add friend: %w", err)
			}
		}

		req.Status = status
		req.UpdatedAt = now
		updated = req
		return nil
	})
	if err != nil {
		e.logFailure("Respond", err, logrus.Fields{"request": requestID, "responder": responderID})
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Respond",
		"request":  updated.ID,
		"status":   updated.Status,
	}).Info("Friend request handled")

	if updated.Status == models.RequestAccepted {
		e.notifier.Notify(updated.From, EventRequestAccepted, updated)
	}
	return updated, nil
}

// IsDomainError reports whether err is one of the engine's deterministic
// failure kinds rather than an infrastructure failure.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrSelfRequest, ErrTargetNotFound, ErrAlreadyFriends, ErrDuplicateRequest,
		ErrRequestNotFound, ErrNotAuthorized, ErrAlreadyHandled, ErrInvalidAction,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (e *Engine) logFailure(function string, err error, fields logrus.Fields) {
	fields["function"] = function
	fields["error"] = err.Error()
	if IsDomainError(err) {
		logrus.WithFields(fields).Debug("Friend request rejected")
		return
	}
	logrus.WithFields(fields).Error("Friend request operation failed")
}
