package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/elimS2/prompt-manager/errs"
)

// sessionClaims are the JWT claims carried by a login session token.
type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// tokenManager signs and verifies session tokens with a shared HMAC secret.
type tokenManager struct {
	secret []byte
	ttl    time.Duration
}

func newTokenManager(secret string, ttl time.Duration) tokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return tokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed token carrying the user id and role.
func (m tokenManager) Issue(userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", errs.NewInternalErrorWithCause("failed to sign session token", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry and returns the user id.
func (m tokenManager) Parse(tokenString string) (uuid.UUID, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, errs.Unauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errs.Unauthorized
	}
	return userID, nil
}
