package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every verification failure: bad signature,
// expiry, malformed input. Callers treat all of them as "no session".
var ErrInvalidToken = errors.New("invalid token")

// Claim is the identity carried inside a session token.
type Claim struct {
	UserID string
	Email  string
}

type sessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Codec signs and verifies self-contained session tokens. The secret is set
// once at construction and never changes for the process lifetime. There is
// no server-side session table, so a token stays valid until it expires even
// after logout.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is the lifetime stamped into issued tokens.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a compact token carrying the claim, issued now and expiring
// after the configured TTL.
func (c *Codec) Issue(claim Claim) (string, error) {
	now := c.now().UTC()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		UserID: claim.UserID,
		Email:  claim.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})
	return t.SignedString(c.secret)
}

// Verify checks signature and expiry and returns the embedded claim.
// Every failure mode collapses into ErrInvalidToken.
func (c *Codec) Verify(tokenString string) (Claim, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	if err != nil || !parsed.Valid {
		return Claim{}, ErrInvalidToken
	}
	return Claim{UserID: claims.UserID, Email: claims.Email}, nil
}
