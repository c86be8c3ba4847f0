package users

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// VerificationStatus tracks the state of a user's email verification.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "Pending"
	VerificationVerified VerificationStatus = "Verified"
)

// EmailVerification is the verification sub-document on a user record.
type EmailVerification struct {
	Token            string             `bson:"token" json:"token"`
	Status           VerificationStatus `bson:"status" json:"status"`
	VerificationDate *time.Time         `bson:"verificationDate" json:"verificationDate"`
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email     string             `bson:"email" json:"email"` // unique, stored lowercase
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	FullName  string             `bson:"fullName" json:"fullName"` // derived, never set by business logic

	PasswordHash string `bson:"password" json:"-"`

	EmailVerification EmailVerification `bson:"emailVerification" json:"emailVerification"`

	// RefreshTokens is the ledger: the ordered set of currently valid
	// refresh token strings for this user. The token string is the
	// credential itself, not a reference.
	RefreshTokens []string `bson:"refreshTokens" json:"-"`

	RecoveryToken string `bson:"recoveryToken" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// New builds an unverified user with a derived full name and normalised email.
func New(firstName, lastName, email, passwordHash string) *User {
	return &User{
		Email:        NormaliseEmail(email),
		FirstName:    firstName,
		LastName:     lastName,
		FullName:     firstName + " " + lastName,
		PasswordHash: passwordHash,
		EmailVerification: EmailVerification{
			Status: VerificationPending,
		},
		RefreshTokens: []string{},
	}
}

// NormaliseEmail lowercases and trims an email address for storage and lookup.
func NormaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HoldsRefreshToken reports whether the token is present in the ledger.
func (u *User) HoldsRefreshToken(token string) bool {
	for _, rt := range u.RefreshTokens {
		if rt == token {
			return true
		}
	}
	return false
}

// Verified reports whether the user's email address has been verified.
func (u *User) Verified() bool {
	return u.EmailVerification.Status == VerificationVerified
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
