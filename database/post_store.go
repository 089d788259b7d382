package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"nebulaverse/models"
)

type PostStore struct {
	db *sql.DB
}

func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO posts (id, author_id, text, created_at) VALUES (?, ?, ?, ?)",
		p.ID, p.Author.ID, p.Text, p.CreatedAt,
	)
	return err
}

// Get returns one post with author, likes and comments populated.
func (s *PostStore) Get(ctx context.Context, id string) (*models.Post, error) {
	posts, err := s.query(ctx, "WHERE p.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, ErrNotFound
	}
	return &posts[0], nil
}

// List returns posts newest first. An empty authorID lists every post.
func (s *PostStore) List(ctx context.Context, authorID string) ([]models.Post, error) {
	if authorID == "" {
		return s.query(ctx, "")
	}
	return s.query(ctx, "WHERE p.author_id = ?", authorID)
}

// ToggleLike flips accountID's like on the post and reports whether the
// post is liked afterwards.
func (s *PostStore) ToggleLike(ctx context.Context, postID, accountID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if err := postExists(ctx, tx, postID); err != nil {
		return false, err
	}

	result, err := tx.ExecContext(ctx,
		"DELETE FROM post_likes WHERE post_id = ? AND account_id = ?",
		postID, accountID,
	)
	if err != nil {
		return false, err
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	liked := removed == 0
	if liked {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO post_likes (post_id, account_id, created_at) VALUES (?, ?, ?)",
			postID, accountID, time.Now(),
		)
		if err != nil {
			return false, err
		}
	}

	return liked, tx.Commit()
}

func (s *PostStore) AddComment(ctx context.Context, postID string, c *models.Comment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := postExists(ctx, tx, postID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO post_comments (id, post_id, author_id, text, created_at) VALUES (?, ?, ?, ?, ?)",
		c.ID, postID, c.Author.ID, c.Text, c.CreatedAt,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func postExists(ctx context.Context, tx *sql.Tx, postID string) error {
	var exists bool
	err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM posts WHERE id = ?)", postID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func (s *PostStore) query(ctx context.Context, where string, args ...interface{}) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.text, p.created_at, a.id, a.username, a.email
		FROM posts p
		JOIN accounts a ON a.id = p.author_id
		`+where+`
		ORDER BY p.created_at DESC, p.id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	index := make(map[string]int)
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Text, &p.CreatedAt, &p.Author.ID, &p.Author.Username, &p.Author.Email); err != nil {
			return nil, err
		}
		p.Likes = []string{}
		p.Comments = []models.Comment{}
		index[p.ID] = len(posts)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return posts, nil
	}

	// Likes and comments for every post in two batched queries.
	placeholders := strings.Repeat("?,", len(posts)-1) + "?"
	ids := make([]interface{}, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	likeRows, err := s.db.QueryContext(ctx,
		"SELECT post_id, account_id FROM post_likes WHERE post_id IN ("+placeholders+") ORDER BY created_at",
		ids...,
	)
	if err != nil {
		return nil, err
	}
	defer likeRows.Close()
	for likeRows.Next() {
		var postID, accountID string
		if err := likeRows.Scan(&postID, &accountID); err != nil {
			return nil, err
		}
		i := index[postID]
		posts[i].Likes = append(posts[i].Likes, accountID)
	}
	if err := likeRows.Err(); err != nil {
		return nil, err
	}

	commentRows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.post_id, c.text, c.created_at, a.id, a.username, a.email
		FROM post_comments c
		JOIN accounts a ON a.id = c.author_id
		WHERE c.post_id IN (`+placeholders+`)
		ORDER BY c.created_at, c.id
	`, ids...)
	if err != nil {
		return nil, err
	}
	defer commentRows.Close()
	for commentRows.Next() {
		var c models.Comment
		var postID string
		if err := commentRows.Scan(&c.ID, &postID, &c.Text, &c.CreatedAt, &c.Author.ID, &c.Author.Username, &c.Author.Email); err != nil {
			return nil, err
		}
		i := index[postID]
		posts[i].Comments = append(posts[i].Comments, c)
	}
	return posts, commentRows.Err()
}
