package models

import "time"

type Account struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Friends   []string  `json:"friends"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountRef is the public identity of an account.
type AccountRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AccountResponse struct {
	ID        string       `json:"id"`
	Username  string       `json:"username"`
	Email     string       `json:"email"`
	Friends   []AccountRef `json:"friends"`
	CreatedAt time.Time    `json:"created_at"`
}

func (a *Account) Ref() AccountRef {
	return AccountRef{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
	}
}

// HasFriend reports whether id is in the account's friends set.
func (a *Account) HasFriend(id string) bool {
	for _, f := range a.Friends {
		if f == id {
			return true
		}
	}
	return false
}

func (a *Account) ToResponse(friends []AccountRef) *AccountResponse {
	if friends == nil {
		friends = []AccountRef{}
	}
	return &AccountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Friends:   friends,
		CreatedAt: a.CreatedAt,
	}
}
