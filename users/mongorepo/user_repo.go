package mongorepo

import (
	"context"
	"time"

	"github.com/imshq/go-ims-server/users"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "users"

var _ users.Repo = (*UserRepo)(nil)

// UserRepo is the MongoDB-backed users.Repo. Ledger mutations use $push/$pull
// updates so two concurrent rotations cannot resurrect or duplicate entries
// through whole-document writes.
type UserRepo struct {
	col *mongo.Collection
}

func New(db *mongo.Database) *UserRepo {
	return &UserRepo{col: db.Collection(collectionName)}
}

func (ur *UserRepo) Upsert(ctx context.Context, user *users.User) error {
	now := time.Now().UTC()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	opts := options.Replace().SetUpsert(true)
	if _, err := ur.col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user, opts); err != nil {
		return errors.Wrap(err, "mongorepo.UserRepo.Upsert")
	}
	return nil
}

func (ur *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return ur.findOne(ctx, bson.M{"email": email})
}

func (ur *UserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*users.User, error) {
	return ur.findOne(ctx, bson.M{"_id": id})
}

func (ur *UserRepo) GetByRefreshToken(ctx context.Context, token string) (*users.User, error) {
	return ur.findOne(ctx, bson.M{"refreshTokens": token})
}

func (ur *UserRepo) AppendRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	update := bson.M{
		"$push": bson.M{"refreshTokens": token},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	if _, err := ur.col.UpdateByID(ctx, id, update); err != nil {
		return errors.Wrap(err, "mongorepo.UserRepo.AppendRefreshToken")
	}
	return nil
}

func (ur *UserRepo) RemoveRefreshToken(ctx context.Context, id primitive.ObjectID, token string) (bool, error) {
	update := bson.M{
		"$pull": bson.M{"refreshTokens": token},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := ur.col.UpdateByID(ctx, id, update)
	if err != nil {
		return false, errors.Wrap(err, "mongorepo.UserRepo.RemoveRefreshToken")
	}
	return result.ModifiedCount > 0, nil
}

func (ur *UserRepo) ClearRefreshTokens(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{"refreshTokens": []string{}, "updatedAt": time.Now().UTC()},
	}
	if _, err := ur.col.UpdateByID(ctx, id, update); err != nil {
		return errors.Wrap(err, "mongorepo.UserRepo.ClearRefreshTokens")
	}
	return nil
}

func (ur *UserRepo) SetEmailVerification(ctx context.Context, id primitive.ObjectID, verification users.EmailVerification) error {
	update := bson.M{
		"$set": bson.M{"emailVerification": verification, "updatedAt": time.Now().UTC()},
	}
	if _, err := ur.col.UpdateByID(ctx, id, update); err != nil {
		return errors.Wrap(err, "mongorepo.UserRepo.SetEmailVerification")
	}
	return nil
}

func (ur *UserRepo) SetRecoveryToken(ctx context.Context, id primitive.ObjectID, token string) error {
	update := bson.M{
		"$set": bson.M{"recoveryToken": token, "updatedAt": time.Now().UTC()},
	}
	if _, err := ur.col.UpdateByID(ctx, id, update); err != nil {
		return errors.Wrap(err, "mongorepo.UserRepo.SetRecoveryToken")
	}
	return nil
}

func (ur *UserRepo) SetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	update := bson.M{
		"$set": bson.M{"password": passwordHash, "updatedAt": time.Now().UTC()},
	}
	if _, err := ur.col.UpdateByID(ctx, id, update); err != nil {
		return errors.Wrap(err, "mongorepo.UserRepo.SetPassword")
	}
	return nil
}

func (ur *UserRepo) findOne(ctx context.Context, filter bson.M) (*users.User, error) {
	var user users.User
	err := ur.col.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "mongorepo.UserRepo.findOne")
	}
	return &user, nil
}
