package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSubject = errors.New("token has no subject")
	ErrEmptyOwner     = errors.New("empty owner id")
)

// HS256 signs and verifies owner tokens with a shared secret. The token
// subject is the owner id.
type HS256 struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

func NewHS256(secret, issuer string) (*HS256, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if issuer == "" {
		return nil, errors.New("jwt issuer is empty")
	}
	return &HS256{
		secret: []byte(secret),
		issuer: issuer,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(30*time.Second),
		),
	}, nil
}

// Sign issues a token for ownerID valid for ttl.
func (h *HS256) Sign(ownerID string, ttl time.Duration) (string, error) {
	if ownerID == "" {
		return "", ErrEmptyOwner
	}
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Issuer:    h.issuer,
		Subject:   ownerID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// Verify checks the signature, issuer and expiry of token and returns the
// owner id it was issued to.
func (h *HS256) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := h.parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}
