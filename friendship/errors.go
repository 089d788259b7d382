package friendship

import "errors"

// Failure kinds of the engine. They are deterministic: the same input
// against the same state always yields the same error.
var (
	ErrSelfRequest      = errors.New("you cannot send a request to yourself")
	ErrTargetNotFound   = errors.New("user not found")
	ErrAlreadyFriends   = errors.New("you are already friends")
	ErrDuplicateRequest = errors.New("friend request already exists")
	ErrRequestNotFound  = errors.New("request not found")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrAlreadyHandled   = errors.New("request already handled")
	ErrInvalidAction    = errors.New("action must be accept or ignore")
)

// ErrPendingConflict is returned by a Tx when the storage layer rejects a
// second pending request for the same pair.
var ErrPendingConflict = errors.New("pending request exists for pair")
