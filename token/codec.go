package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Codec signs and verifies the compact HMAC tokens used across the service.
// Access, refresh and recovery/registration tokens use distinct secrets; the
// codec itself is stateless and is handed the secret per call.
type Codec struct {
	nowFunc func() time.Time
}

// CodecOption defines a function type to modify the Codec instance.
type CodecOption func(*Codec)

// WithNowFunc sets the now time function (primarily for testing).
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

// NewCodec initializes a new Codec.
func NewCodec(options ...CodecOption) *Codec {
	c := &Codec{nowFunc: time.Now}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Now returns the codec's current time.
func (c *Codec) Now() time.Time {
	return c.nowFunc()
}

// StandardClaims builds the registered claims for a token issued now with the
// given time to live.
func (c *Codec) StandardClaims(ttl time.Duration) jwt.RegisteredClaims {
	now := c.nowFunc()
	return jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.New().String(),
	}
}

// Sign signs the claims with HMAC-SHA256 and returns the compact token string.
func (c *Codec) Sign(claims jwt.Claims, secret string) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "token.Codec.Sign")
	}
	return signed, nil
}

// Verification is the outcome of Verify. Verify never returns an error:
// callers branch on Expired to tell "log in again" apart from a tampered or
// garbage token without exception handling on a routine, expected case.
type Verification struct {
	Valid   bool
	Expired bool
}

// Verify checks the token signature and validity window against the given
// secret, decoding into claims. The claims value is only meaningful when
// Valid is true.
func (c *Codec) Verify(raw, secret string, claims jwt.Claims) Verification {
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(c.nowFunc))
	if err != nil {
		return Verification{Expired: errors.Is(err, jwt.ErrTokenExpired)}
	}
	if !parsed.Valid {
		return Verification{}
	}
	return Verification{Valid: true}
}
