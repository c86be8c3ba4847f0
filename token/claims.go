package token

import (
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrganisationClaims carries the organisation context a user was signed in
// with. A nil *OrganisationClaims means the user holds no membership and the
// token is only usable for organisation-agnostic endpoints; consumers must
// check for nil before reading any of these fields.
type OrganisationClaims struct {
	ID   primitive.ObjectID `json:"organisationId"`
	Name string             `json:"organisationName"`
	Role string             `json:"role"`
}

// UserClaims is the identity payload of an access token.
type UserClaims struct {
	ID           primitive.ObjectID  `json:"_id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Organisation *OrganisationClaims `json:"organisation"`
}

// AccessClaims is the full claims set of a short-lived access token.
type AccessClaims struct {
	User UserClaims `json:"user"`
	jwt.RegisteredClaims
}

// RefreshUserClaims is deliberately minimal: rotation only needs to know who
// owns the token and which organisation context to carry into the next pair.
type RefreshUserClaims struct {
	ID             primitive.ObjectID  `json:"_id"`
	OrganisationID *primitive.ObjectID `json:"organisationId"`
}

// RefreshClaims is the claims set of a long-lived refresh token. The signed
// string itself is the ledger entry stored on the user record.
type RefreshClaims struct {
	User RefreshUserClaims `json:"user"`
	jwt.RegisteredClaims
}

// RegistrationClaims is the payload of the short-lived token mailed out to
// verify a new account's email address.
type RegistrationClaims struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// RecoveryClaims is the payload of the short-lived account recovery token.
type RecoveryClaims struct {
	UserID primitive.ObjectID `json:"_id"`
	jwt.RegisteredClaims
}
