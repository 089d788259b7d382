package models

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestIgnored  RequestStatus = "ignored"
)

// Terminal reports whether no transition may leave s.
func (s RequestStatus) Terminal() bool {
	return s == RequestAccepted || s == RequestIgnored
}

type FriendRequest struct {
	ID        string        `json:"id"`
	From      string        `json:"from"`
	To        string        `json:"to"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// FriendRequestWithAccounts is a request with both parties populated.
type FriendRequestWithAccounts struct {
	ID        string        `json:"id"`
	From      AccountRef    `json:"from"`
	To        AccountRef    `json:"to"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// PairKey identifies the unordered pair {a, b}.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}
