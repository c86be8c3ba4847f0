package policies

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotFound = errors.New("policies: not found")

type Repo interface {
	Upsert(ctx context.Context, policy *AccessPolicy) error
	// GetForUser resolves the policy for (user, organisation). A nil
	// organisationID matches policies without an organisation binding.
	GetForUser(ctx context.Context, userID primitive.ObjectID, organisationID *primitive.ObjectID) (*AccessPolicy, error)
}
