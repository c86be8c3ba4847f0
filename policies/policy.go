package policies

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessPolicy binds an invited user to a role within an organisation.
// Zero or one policy is expected per (user, organisation) pair; absence means
// the user has no access payload for that organisation and tokens are minted
// without organisation claims.
type AccessPolicy struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"_id,omitempty"`
	InvitedUserID  primitive.ObjectID  `bson:"invitedUserId" json:"invitedUserId"`
	OrganisationID *primitive.ObjectID `bson:"organisationId" json:"organisationId"`
	Role           string              `bson:"role" json:"role"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}
