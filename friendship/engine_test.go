package friendship_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"nebulaverse/database"
	"nebulaverse/database/dbtest"
	"nebulaverse/friendship"
	"nebulaverse/models"
)

type notification struct {
	accountID string
	event     string
	payload   interface{}
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (r *recordingNotifier) Notify(accountID, event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, notification{accountID, event, payload})
}

func (r *recordingNotifier) events() []notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification(nil), r.sent...)
}

type fixture struct {
	engine   *friendship.Engine
	accounts *database.AccountStore
	notifier *recordingNotifier
	alice    *models.Account
	bob      *models.Account
	carol    *models.Account
	count    func(query string, args ...interface{}) int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, dialect := dbtest.New(t)
	notifier := &recordingNotifier{}
	return &fixture{
		engine:   friendship.NewEngine(database.NewFriendStore(db, dialect), friendship.WithNotifier(notifier)),
		accounts: database.NewAccountStore(db),
		notifier: notifier,
		alice:    dbtest.CreateAccount(t, db, "alice"),
		bob:      dbtest.CreateAccount(t, db, "bob"),
		carol:    dbtest.CreateAccount(t, db, "carol"),
		count: func(query string, args ...interface{}) int {
			var n int
			require.NoError(t, db.QueryRow(query, args...).Scan(&n))
			return n
		},
	}
}

func (f *fixture) friendsOf(t *testing.T, id string) []string {
	t.Helper()
	a, err := f.accounts.FindByID(context.Background(), id)
	require.NoError(t, err)
	return a.Friends
}

func TestParseAction(t *testing.T) {
	for _, s := range []string{"accept", "ignore"} {
		a, err := friendship.ParseAction(s)
		require.NoError(t, err)
		assert.Equal(t, friendship.Action(s), a)
	}

	for _, s := range []string{"", "Accept", "reject", "block"} {
		_, err := friendship.ParseAction(s)
		assert.ErrorIs(t, err, friendship.ErrInvalidAction, s)
	}
}

func TestSendCreatesPendingRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Send(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, req.From)
	assert.Equal(t, f.bob.ID, req.To)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.NotEmpty(t, req.ID)

	events := f.notifier.events()
	require.Len(t, events, 1)
	assert.Equal(t, f.bob.ID, events[0].accountID)
	assert.Equal(t, friendship.EventRequestReceived, events[0].event)
}

func TestSendRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Send(ctx, f.alice.ID, f.alice.ID)
	assert.ErrorIs(t, err, friendship.ErrSelfRequest)

	_, err = f.engine.Send(ctx, f.alice.ID, "no-such-account")
	assert.ErrorIs(t, err, friendship.ErrTargetNotFound)

	_, err = f.engine.Send(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)

	_, err = f.engine.Send(ctx, f.alice.ID, f.bob.ID)
	assert.ErrorIs(t, err, friendship.ErrDuplicateRequest)

	_, err = f.engine.Send(ctx, f.bob.ID, f.alice.ID)
	assert.ErrorIs(t, err, friendship.ErrDuplicateRequest)

	// Only one record exists for the pair and it is still pending.
	assert.Equal(t, 1, f.count("SELECT COUNT(*) FROM friend_requests"))
	pending, err := f.engine.ListPending(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.RequestPending, pending[0].Status)

	// Unrelated pairs are unaffected.
	_, err = f.engine.Send(ctx, f.carol.ID, f.bob.ID)
	assert.NoError(t, err)
}

func TestSelfRequestAlwaysRejectedFirst(t *testing.T) {
	f := newFixture(t)

	// Even an unknown id is a self request before it is a missing target.
	_, err := f.engine.Send(context.Background(), "ghost", "ghost")
	assert.ErrorIs(t, err, friendship.ErrSelfRequest)
}

func TestAcceptEstablishesMutualFriendship(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Send(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)

	updated, err := f.engine.Respond(ctx, f.bob.ID, req.ID, friendship.ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, updated.Status)

	assert.Equal(t, []string{f.bob.ID}, f.friendsOf(t, f.alice.ID))
	assert.Equal(t, []string{f.alice.ID}, f.friendsOf(t, f.bob.ID))

	_, err = f.engine.Send(ctx, f.alice.ID, f.bob.ID)
	assert.ErrorIs(t, err, friendship.ErrAlreadyFriends)
	_, err = f.engine.Send(ctx, f.bob.ID, f.alice.ID)
	assert.ErrorIs(t, err, friendship.ErrAlreadyFriends)

	pending, err := f.engine.ListPending(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	events := f.notifier.events()
	require.Len(t, events, 2)
	assert.Equal(t, f.alice.ID, events[1].accountID)
	assert.Equal(t, friendship.EventRequestAccepted, events[1].event)
}

func TestIgnoreLeavesFriendsUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Send(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)

	updated, err := f.engine.Respond(ctx, f.bob.ID, req.ID, friendship.ActionIgnore)
	require.NoError(t, err)
	assert.Equal(t, models.RequestIgnored, updated.Status)

	assert.Empty(t, f.friendsOf(t, f.alice.ID))
	assert.Empty(t, f.friendsOf(t, f.bob.ID))

	for _, action := range []friendship.Action{friendship.ActionAccept, friendship.ActionIgnore} {
		_, err = f.engine.Respond(ctx, f.bob.ID, req.ID, action)
		assert.ErrorIs(t, err, friendship.ErrAlreadyHandled)
	}

	// No cooldown: a fresh request after ignore succeeds, in either direction.
	again, err := f.engine.Send(ctx, f.bob.ID, f.alice.ID)
	require.NoError(t, err)
	assert.NotEqual(t, req.ID, again.ID)
	assert.Equal(t, 2, f.count("SELECT COUNT(*) FROM friend_requests"))
}

func TestRespondRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Send(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)

	tests := []struct {
		name      string
		responder string
		requestID string
		action    friendship.Action
		want      error
	}{
		{"unknown request", f.bob.ID, "no-such-request", friendship.ActionAccept, friendship.ErrRequestNotFound},
		{"sender cannot respond", f.alice.ID, req.ID, friendship.ActionAccept, friendship.ErrNotAuthorized},
		{"third party cannot respond", f.carol.ID, req.ID, friendship.ActionIgnore, friendship.ErrNotAuthorized},
		{"malformed action", f.bob.ID, req.ID, friendship.Action("maybe"), friendship.ErrInvalidAction},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.Respond(ctx, tc.responder, tc.requestID, tc.action)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// None of the rejected calls touched the request.
	pending, err := f.engine.ListPending(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, req.ID, pending[0].ID)
}

func TestListPendingEnrichesBothParties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.engine.Send(ctx, f.alice.ID, f.carol.ID)
	require.NoError(t, err)
	r2, err := f.engine.Send(ctx, f.bob.ID, f.carol.ID)
	require.NoError(t, err)
	_, err = f.engine.Send(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)

	pending, err := f.engine.ListPending(ctx, f.carol.ID)
	require.NoError(t, err)

	got := make(map[string]models.FriendRequestWithAccounts)
	for _, p := range pending {
		got[p.ID] = p
	}
	require.Len(t, got, 2)
	assert.Equal(t, f.alice.Ref(), got[r1.ID].From)
	assert.Equal(t, f.bob.Ref(), got[r2.ID].From)
	assert.Equal(t, f.carol.Ref(), got[r2.ID].To)
}

func TestConcurrentRespondHasOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.engine.Send(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)

	const n = 16
	var (
		mu      sync.Mutex
		winners int
		handled int
		g       errgroup.Group
	)
	for i := 0; i < n; i++ {
		action := friendship.ActionAccept
		if i%2 == 1 {
			action = friendship.ActionIgnore
		}
		g.Go(func() error {
			_, err := f.engine.Respond(ctx, f.bob.ID, req.ID, action)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case errors.Is(err, friendship.ErrAlreadyHandled):
				handled++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, winners)
	assert.Equal(t, n-1, handled)

	edges := f.count("SELECT COUNT(*) FROM friendships")
	assert.Contains(t, []int{0, 2}, edges)
	assert.Equal(t, edges/2, f.count("SELECT COUNT(*) FROM friendships WHERE account_id = ?", f.alice.ID))
	assert.Equal(t, edges/2, f.count("SELECT COUNT(*) FROM friendships WHERE account_id = ?", f.bob.ID))
}

func TestConcurrentSendCreatesOnePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 16
	var (
		mu         sync.Mutex
		created    int
		duplicates int
		g          errgroup.Group
	)
	for i := 0; i < n; i++ {
		from, to := f.alice.ID, f.bob.ID
		if i%2 == 1 {
			from, to = to, from
		}
		g.Go(func() error {
			_, err := f.engine.Send(ctx, from, to)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, friendship.ErrDuplicateRequest):
				duplicates++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, duplicates)
	assert.Equal(t, 1, f.count("SELECT COUNT(*) FROM friend_requests WHERE status = 'pending'"))
}

type failingStore struct {
	err error
}

func (s failingStore) ListPendingFor(context.Context, string) ([]models.FriendRequestWithAccounts, error) {
	return nil, s.err
}

func (s failingStore) InTx(context.Context, func(friendship.Tx) error) error {
	return s.err
}

func TestInfrastructureErrorsSurface(t *testing.T) {
	boom := errors.New("connection refused")
	engine := friendship.NewEngine(failingStore{err: boom})
	ctx := context.Background()

	_, err := engine.ListPending(ctx, "a")
	assert.ErrorIs(t, err, boom)

	_, err = engine.Send(ctx, "a", "b")
	assert.ErrorIs(t, err, boom)
	assert.False(t, friendship.IsDomainError(err))

	_, err = engine.Respond(ctx, "b", "r", friendship.ActionAccept)
	assert.ErrorIs(t, err, boom)
}

// partialStore fails the second AddFriend of an acceptance.
type partialStore struct {
	friendship.Store
}

type partialTx struct {
	friendship.Tx
	adds int
}

func (s partialStore) InTx(ctx context.Context, fn func(friendship.Tx) error) error {
	return s.Store.InTx(ctx, func(tx friendship.Tx) error {
		return fn(&partialTx{Tx: tx})
	})
}

func (t *partialTx) AddFriend(ctx context.Context, accountID, friendID string) error {
	t.adds++
	if t.adds == 2 {
		return errors.New("disk full")
	}
	return t.Tx.AddFriend(ctx, accountID, friendID)
}

func TestAcceptIsAllOrNothing(t *testing.T) {
	db, dialect := dbtest.New(t)
	store := database.NewFriendStore(db, dialect)
	alice := dbtest.CreateAccount(t, db, "alice")
	bob := dbtest.CreateAccount(t, db, "bob")
	ctx := context.Background()

	req, err := friendship.NewEngine(store).Send(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = friendship.NewEngine(partialStore{Store: store}).Respond(ctx, bob.ID, req.ID, friendship.ActionAccept)
	require.Error(t, err)
	assert.False(t, friendship.IsDomainError(err))

	var edges int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM friendships").Scan(&edges))
	assert.Zero(t, edges)

	// The request is still pending and can be accepted normally.
	updated, err := friendship.NewEngine(store).Respond(ctx, bob.ID, req.ID, friendship.ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, updated.Status)
}
