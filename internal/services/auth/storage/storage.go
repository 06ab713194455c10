package storage

import (
	"context"
	"time"

	"github.com/louisbranch/scholarflow/internal/platform/errors"
	"github.com/louisbranch/scholarflow/internal/services/auth/user"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// UserStore persists auth user records.
type UserStore interface {
	PutUser(ctx context.Context, u user.User) error
	GetUser(ctx context.Context, userID string) (user.User, error)
	GetUserByORCID(ctx context.Context, orcidID string) (user.User, error)
}

// SignInState is a pending authorization request. It carries the PKCE
// verifier and the validated post sign-in path.
type SignInState struct {
	State        string
	CodeVerifier string
	Next         string
	ExpiresAt    time.Time
}

// StateStore persists pending sign-in states. TakeState deletes the state
// it returns so a state is usable once.
type StateStore interface {
	PutState(ctx context.Context, state SignInState) error
	TakeState(ctx context.Context, state string) (SignInState, error)
	DeleteExpiredStates(ctx context.Context, now time.Time) (int64, error)
}
