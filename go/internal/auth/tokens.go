package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const tokenIssuer = "sushirush"

// Claims are the JWT claims carried by a session token. The registered ID
// claim holds the session id.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens
type TokenIssuer struct {
	secret []byte
	clock  clockwork.Clock
}

func NewTokenIssuer(secret []byte, clock clockwork.Clock) *TokenIssuer {
	return &TokenIssuer{secret: secret, clock: clock}
}

// Issue signs a token for the identity that expires at expiresAt
func (t *TokenIssuer) Issue(id Identity, expiresAt time.Time) (string, error) {
	claims := Claims{
		Email: id.Email,
		Name:  id.DisplayName,
		Role:  string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   id.UserID.String(),
			ID:        id.SessionID.String(),
			IssuedAt:  jwt.NewNumericDate(t.clock.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry and returns the user and session ids
func (t *TokenIssuer) Parse(token string) (*Claims, uuid.UUID, uuid.UUID, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, uuid.Nil, uuid.Nil, ErrSessionExpired
		}
		return nil, uuid.Nil, uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, fmt.Errorf("%w: bad session id", ErrInvalidToken)
	}
	return claims, userID, sessionID, nil
}
