package organisations

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotFound = errors.New("organisations: not found")

type Repo interface {
	Upsert(ctx context.Context, organisation *Organisation) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Organisation, error)
}
