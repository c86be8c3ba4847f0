package mongorepo

import (
	"context"
	"time"

	"github.com/imshq/go-ims-server/organisations"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "organisations"

var _ organisations.Repo = (*OrganisationRepo)(nil)

type OrganisationRepo struct {
	col *mongo.Collection
}

func New(db *mongo.Database) *OrganisationRepo {
	return &OrganisationRepo{col: db.Collection(collectionName)}
}

func (or *OrganisationRepo) Upsert(ctx context.Context, organisation *organisations.Organisation) error {
	now := time.Now().UTC()
	if organisation.ID.IsZero() {
		organisation.ID = primitive.NewObjectID()
		organisation.CreatedAt = now
	}
	organisation.UpdatedAt = now

	opts := options.Replace().SetUpsert(true)
	if _, err := or.col.ReplaceOne(ctx, bson.M{"_id": organisation.ID}, organisation, opts); err != nil {
		return errors.Wrap(err, "mongorepo.OrganisationRepo.Upsert")
	}
	return nil
}

func (or *OrganisationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*organisations.Organisation, error) {
	var organisation organisations.Organisation
	err := or.col.FindOne(ctx, bson.M{"_id": id}).Decode(&organisation)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, organisations.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "mongorepo.OrganisationRepo.GetByID")
	}
	return &organisation, nil
}
