package repofake

import (
	"context"
	"sync"

	"github.com/imshq/go-ims-server/users"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory users.Repo for tests.
type FakeUserRepo struct {
	users    map[primitive.ObjectID]*users.User
	emailIds map[string]primitive.ObjectID
	lock     sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[primitive.ObjectID]*users.User),
		emailIds: make(map[string]primitive.ObjectID),
	}
}

func (ur *FakeUserRepo) Upsert(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	copied := *user
	ur.users[user.ID] = &copied
	ur.emailIds[user.Email] = user.ID
	return nil
}

func (ur *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[email]
	if !ok {
		return nil, users.ErrNotFound
	}
	return copyUser(ur.users[id]), nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return copyUser(user), nil
}

func (ur *FakeUserRepo) GetByRefreshToken(_ context.Context, token string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	for _, user := range ur.users {
		if user.HoldsRefreshToken(token) {
			return copyUser(user), nil
		}
	}
	return nil, users.ErrNotFound
}

func (ur *FakeUserRepo) AppendRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	user.RefreshTokens = append(user.RefreshTokens, token)
	return nil
}

func (ur *FakeUserRepo) RemoveRefreshToken(_ context.Context, id primitive.ObjectID, token string) (bool, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return false, users.ErrNotFound
	}
	remaining := make([]string, 0, len(user.RefreshTokens))
	removed := false
	for _, rt := range user.RefreshTokens {
		if rt == token {
			removed = true
			continue
		}
		remaining = append(remaining, rt)
	}
	user.RefreshTokens = remaining
	return removed, nil
}

func (ur *FakeUserRepo) ClearRefreshTokens(_ context.Context, id primitive.ObjectID) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	user.RefreshTokens = []string{}
	return nil
}

func (ur *FakeUserRepo) SetEmailVerification(_ context.Context, id primitive.ObjectID, verification users.EmailVerification) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	user.EmailVerification = verification
	return nil
}

func (ur *FakeUserRepo) SetRecoveryToken(_ context.Context, id primitive.ObjectID, token string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	user.RecoveryToken = token
	return nil
}

func (ur *FakeUserRepo) SetPassword(_ context.Context, id primitive.ObjectID, passwordHash string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func copyUser(user *users.User) *users.User {
	copied := *user
	copied.RefreshTokens = append([]string(nil), user.RefreshTokens...)
	return &copied
}
