package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/authcore/internal/model"
)

// MinSecretLength is the shortest HMAC key NewJWT accepts.
const MinSecretLength = 32

// ErrSigningKey is returned when the signing secret is missing or too short.
var ErrSigningKey = errors.New("jwt signing secret is missing or too short")

// Claims represents bearer token claims.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

var _ model.TokenIssuer = (*JWT)(nil)

// JWT implements model.TokenIssuer backed by symmetric HMAC.
type JWT struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewJWT creates a token issuer. It fails when the secret is unusable, so a
// misconfigured process stops at startup instead of failing per request.
func NewJWT(secretKey string, ttl time.Duration) (*JWT, error) {
	if len(secretKey) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrSigningKey, MinSecretLength, len(secretKey))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	return &JWT{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// Issue creates a signed access token for identity. Every call gets a fresh
// jti, so two tokens issued within the same second still differ.
func (j *JWT) Issue(identity model.Identity) (model.BearerToken, error) {
	if identity.ID == uuid.Nil {
		return model.BearerToken{}, fmt.Errorf("cannot issue token for identity without id")
	}

	now := j.now()
	expiresAt := jwt.NewNumericDate(now.Add(j.ttl))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: expiresAt,
		},
		Email: identity.Email,
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return model.BearerToken{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	return model.BearerToken{
		AccessToken: tokenString,
		TokenType:   model.TokenTypeBearer,
		ExpiresAt:   expiresAt.Time,
	}, nil
}

// Parse validates an access token and returns the identity ID in its subject.
func (j *JWT) Parse(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.secretKey, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, fmt.Errorf("access token is invalid")
	}

	identityID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("access token subject is not an identity id: %w", err)
	}

	return identityID, nil
}
