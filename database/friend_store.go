package database

import (
	"context"
	"database/sql"
	"time"

	"nebulaverse/friendship"
	"nebulaverse/models"
)

// FriendStore persists friend requests and the friendships relation. It
// implements friendship.Store.
type FriendStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewFriendStore(db *sql.DB, dialect Dialect) *FriendStore {
	return &FriendStore{db: db, dialect: dialect}
}

func (s *FriendStore) ListPendingFor(ctx context.Context, accountID string) ([]models.FriendRequestWithAccounts, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.status, r.created_at, r.updated_at,
			   f.id, f.username, f.email,
			   t.id, t.username, t.email
		FROM friend_requests r
		JOIN accounts f ON f.id = r.from_id
		JOIN accounts t ON t.id = r.to_id
		WHERE r.to_id = ? AND r.status = 'pending'
		ORDER BY r.created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []models.FriendRequestWithAccounts{}
	for rows.Next() {
		var r models.FriendRequestWithAccounts
		if err := rows.Scan(
			&r.ID, &r.Status, &r.CreatedAt, &r.UpdatedAt,
			&r.From.ID, &r.From.Username, &r.From.Email,
			&r.To.ID, &r.To.Username, &r.To.Email,
		); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *FriendStore) InTx(ctx context.Context, fn func(tx friendship.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(&friendTx{tx: tx, dialect: s.dialect}); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

type friendTx struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *friendTx) FindAccount(ctx context.Context, id string) (*models.Account, error) {
	var a models.Account
	err := t.tx.QueryRowContext(ctx,
		"SELECT id, username, email, created_at, updated_at FROM accounts WHERE id = ?",
		id,
	).Scan(&a.ID, &a.Username, &a.Email, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (t *friendTx) AreFriends(ctx context.Context, accountID, friendID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM friendships WHERE account_id = ? AND friend_id = ?)",
		accountID, friendID,
	).Scan(&exists)
	return exists, err
}

func (t *friendTx) HasPendingBetween(ctx context.Context, a, b string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM friend_requests WHERE pending_pair = ?)",
		models.PairKey(a, b),
	).Scan(&exists)
	return exists, err
}

func (t *friendTx) InsertRequest(ctx context.Context, req *models.FriendRequest) error {
	var pair sql.NullString
	if req.Status == models.RequestPending {
		pair = sql.NullString{String: models.PairKey(req.From, req.To), Valid: true}
	}

	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO friend_requests (id, from_id, to_id, status, pending_pair, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		req.ID, req.From, req.To, string(req.Status), pair, req.CreatedAt, req.UpdatedAt,
	)
	if IsUniqueViolation(err) {
		return friendship.ErrPendingConflict
	}
	return err
}

func (t *friendTx) GetRequest(ctx context.Context, id string) (*models.FriendRequest, error) {
	var r models.FriendRequest
	err := t.tx.QueryRowContext(ctx,
		"SELECT id, from_id, to_id, status, created_at, updated_at FROM friend_requests WHERE id = ?",
		id,
	).Scan(&r.ID, &r.From, &r.To, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (t *friendTx) TransitionRequest(ctx context.Context, id string, status models.RequestStatus, at time.Time) (bool, error) {
	result, err := t.tx.ExecContext(ctx,
		"UPDATE friend_requests SET status = ?, pending_pair = NULL, updated_at = ? WHERE id = ? AND status = 'pending'",
		string(status), at, id,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

func (t *friendTx) AddFriend(ctx context.Context, accountID, friendID string) error {
	_, err := t.tx.ExecContext(ctx,
		t.dialect.InsertIgnore+" friendships (account_id, friend_id, created_at) VALUES (?, ?, ?)",
		accountID, friendID, time.Now(),
	)
	return err
}
