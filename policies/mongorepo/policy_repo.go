package mongorepo

import (
	"context"
	"time"

	"github.com/imshq/go-ims-server/policies"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "accesspolicies"

var _ policies.Repo = (*PolicyRepo)(nil)

type PolicyRepo struct {
	col *mongo.Collection
}

func New(db *mongo.Database) *PolicyRepo {
	return &PolicyRepo{col: db.Collection(collectionName)}
}

func (pr *PolicyRepo) Upsert(ctx context.Context, policy *policies.AccessPolicy) error {
	now := time.Now().UTC()
	if policy.ID.IsZero() {
		policy.ID = primitive.NewObjectID()
		policy.CreatedAt = now
	}
	policy.UpdatedAt = now

	opts := options.Replace().SetUpsert(true)
	if _, err := pr.col.ReplaceOne(ctx, bson.M{"_id": policy.ID}, policy, opts); err != nil {
		return errors.Wrap(err, "mongorepo.PolicyRepo.Upsert")
	}
	return nil
}

func (pr *PolicyRepo) GetForUser(ctx context.Context, userID primitive.ObjectID, organisationID *primitive.ObjectID) (*policies.AccessPolicy, error) {
	filter := bson.M{"invitedUserId": userID}
	if organisationID != nil {
		filter["organisationId"] = *organisationID
	} else {
		// Matches documents with a null or absent organisation binding,
		// mirroring the lookup used for organisation-less sign-ins.
		filter["organisationId"] = nil
	}

	var policy policies.AccessPolicy
	err := pr.col.FindOne(ctx, filter).Decode(&policy)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, policies.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "mongorepo.PolicyRepo.GetForUser")
	}
	return &policy, nil
}
