package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Token schemes accepted by NewTokenCodec.
const (
	TokenSchemeBase64 = "base64"
	TokenSchemeJWT    = "jwt"
)

// ErrMalformedToken is returned when a token cannot be decoded into a user ID.
var ErrMalformedToken = errors.New("malformed token")

// TokenCodec issues opaque tokens for a user and resolves them back.
type TokenCodec interface {
	Issue(userID uuid.UUID) (string, error)
	Resolve(token string) (uuid.UUID, error)
}

// NewTokenCodec builds the codec for scheme.
func NewTokenCodec(scheme, secret string, ttl time.Duration) (TokenCodec, error) {
	switch scheme {
	case TokenSchemeBase64:
		return Base64Codec{}, nil
	case TokenSchemeJWT:
		if secret == "" {
			return nil, errors.New("jwt token scheme requires a secret")
		}
		return NewJWTCodec(secret, ttl), nil
	default:
		return nil, fmt.Errorf("unknown token scheme %q", scheme)
	}
}

// Base64Codec encodes the user ID as standard base64.
//
// This is NOT a security token: it has no signature and no expiry, and anyone who knows a
// user ID can mint a valid token for it. It exists for compatibility with existing clients
// and for tests. Config validation refuses it in production.
type Base64Codec struct{}

// Issue returns base64(userID).
func (Base64Codec) Issue(userID uuid.UUID) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(userID.String())), nil
}

// Resolve decodes the token and parses the user ID.
func (Base64Codec) Resolve(token string) (uuid.UUID, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return uuid.Nil, ErrMalformedToken
	}
	id, err := uuid.Parse(string(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrMalformedToken
	}
	return id, nil
}

// Claims represents JWT claims.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTCodec issues HS256-signed tokens with the user ID as subject.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTCodec creates a new JWT codec with the given secret and lifetime.
func NewJWTCodec(secret string, ttl time.Duration) *JWTCodec {
	return &JWTCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for the user.
func (c *JWTCodec) Issue(userID uuid.UUID) (string, error) {
	now := c.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Resolve validates the signature and expiry and returns the subject.
func (c *JWTCodec) Resolve(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		return uuid.Nil, ErrMalformedToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrMalformedToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrMalformedToken
	}
	return id, nil
}
