package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"nebulaverse/models"
)

// ErrAccountExists is returned when a username or email is already taken.
var ErrAccountExists = errors.New("username or email already exists")

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, a *models.Account) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO accounts (id, username, email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		a.ID, a.Username, a.Email, a.Password, a.CreatedAt, a.UpdatedAt,
	)
	if IsUniqueViolation(err) {
		return ErrAccountExists
	}
	return err
}

// FindByID returns the account with its friends set loaded.
func (s *AccountStore) FindByID(ctx context.Context, id string) (*models.Account, error) {
	a, err := s.findOne(ctx, "id = ?", id)
	if err != nil {
		return nil, err
	}

	friends, err := s.Friends(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Friends = make([]string, 0, len(friends))
	for _, f := range friends {
		a.Friends = append(a.Friends, f.ID)
	}
	return a, nil
}

// FindByLogin looks an account up by username or email.
func (s *AccountStore) FindByLogin(ctx context.Context, login string) (*models.Account, error) {
	return s.findOne(ctx, "username = ? OR email = ?", login, login)
}

func (s *AccountStore) findOne(ctx context.Context, where string, args ...interface{}) (*models.Account, error) {
	var a models.Account
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, password, created_at, updated_at FROM accounts WHERE "+where,
		args...,
	).Scan(&a.ID, &a.Username, &a.Email, &a.Password, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Friends returns the public identity of every member of id's friends set.
func (s *AccountStore) Friends(ctx context.Context, id string) ([]models.AccountRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.username, a.email
		FROM friendships f
		JOIN accounts a ON a.id = f.friend_id
		WHERE f.account_id = ?
		ORDER BY a.username
	`, id)
	if err != nil {
		return nil, err
	}
	return scanRefs(rows)
}

// Search matches username or email substrings, excluding one account.
func (s *AccountStore) Search(ctx context.Context, query, excludeID string, limit int) ([]models.AccountRef, error) {
	pattern := "%" + escapeLikePattern(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, email FROM accounts
		WHERE id != ? AND (username LIKE ? ESCAPE '!' OR email LIKE ? ESCAPE '!')
		ORDER BY username
		LIMIT ?
	`, excludeID, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	return scanRefs(rows)
}

func scanRefs(rows *sql.Rows) ([]models.AccountRef, error) {
	defer rows.Close()

	refs := []models.AccountRef{}
	for rows.Next() {
		var r models.AccountRef
		if err := rows.Scan(&r.ID, &r.Username, &r.Email); err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// escapeLikePattern escapes LIKE wildcards for use with ESCAPE '!'.
func escapeLikePattern(pattern string) string {
	pattern = strings.ReplaceAll(pattern, "!", "!!")
	pattern = strings.ReplaceAll(pattern, "%", "!%")
	pattern = strings.ReplaceAll(pattern, "_", "!_")
	return pattern
}
