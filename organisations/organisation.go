package organisations

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organisation is the tenant record. Only the fields the auth core reads are
// modelled here; organisation management endpoints live outside this service.
type Organisation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	OwnerID   primitive.ObjectID `bson:"ownerId,omitempty" json:"ownerId,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
