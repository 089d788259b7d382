package models

import "time"

type Post struct {
	ID        string     `json:"id"`
	Author    AccountRef `json:"user"`
	Text      string     `json:"text"`
	Likes     []string   `json:"likes"`
	Comments  []Comment  `json:"comments"`
	CreatedAt time.Time  `json:"created_at"`
}

type Comment struct {
	ID        string     `json:"id"`
	Author    AccountRef `json:"user"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`
}

// LikedBy reports whether accountID has liked the post.
func (p *Post) LikedBy(accountID string) bool {
	for _, id := range p.Likes {
		if id == accountID {
			return true
		}
	}
	return false
}
