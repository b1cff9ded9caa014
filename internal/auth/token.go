package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token verification outcomes. Verify never panics on bad input; it
// classifies every failure into one of these.
var (
	// ErrTokenMalformed means the token is not structurally a JWT
	ErrTokenMalformed = errors.New("token is malformed")
	// ErrTokenSignature means the signature does not match the payload
	ErrTokenSignature = errors.New("token signature is invalid")
	// ErrTokenExpired means the token is past its expiry claim
	ErrTokenExpired = errors.New("token is expired")
)

// TokenPayload is the identity claim set carried by an access token.
// Tokens are signed, not encrypted: nothing here may be a secret.
type TokenPayload struct {
	SubjectID string
	Email     string
	Role      string
}

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies compact signed access tokens. It is
// stateless; the only state is the server-held signing secret.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a token service. An empty secret is refused
// so a missing JWT_SECRET fails at startup rather than at first login.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("token signing secret is required")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Issue serializes the payload plus an expiry claim ttl from now and
// signs it with HMAC-SHA256.
func (t *TokenService) Issue(payload TokenPayload, ttl time.Duration) (string, error) {
	claims := tokenClaims{
		Email: payload.Email,
		Role:  payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.SubjectID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify validates the signature and expiry of a token and returns its
// payload. Failures are classified as ErrTokenMalformed,
// ErrTokenSignature, or ErrTokenExpired.
func (t *TokenService) Verify(tokenString string) (*TokenPayload, error) {
	claims := &tokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !token.Valid {
		return nil, ErrTokenSignature
	}

	return &TokenPayload{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
	}, nil
}
