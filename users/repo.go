package users

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when no user matches the given lookup.
var ErrNotFound = errors.New("users: not found")

// Repo is the persistence contract for user records. Ledger mutations are
// exposed as targeted operations rather than whole-document writes so that
// implementations can apply them atomically.
type Repo interface {
	Upsert(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*User, error)

	// GetByRefreshToken finds the user whose ledger currently contains the
	// exact token string.
	GetByRefreshToken(ctx context.Context, token string) (*User, error)

	AppendRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	// RemoveRefreshToken reports whether the token was actually removed;
	// false means a concurrent caller consumed it first.
	RemoveRefreshToken(ctx context.Context, id primitive.ObjectID, token string) (bool, error)
	ClearRefreshTokens(ctx context.Context, id primitive.ObjectID) error

	SetEmailVerification(ctx context.Context, id primitive.ObjectID, verification EmailVerification) error
	SetRecoveryToken(ctx context.Context, id primitive.ObjectID, token string) error
	SetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
}
