package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the authenticated identity attached to a request.
type Claims struct {
	UserID       uuid.UUID
	MemberNumber int64
	Role         string
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID       string `json:"user_id"`
	MemberNumber int64  `json:"member_number"`
	Role         string `json:"role"`
}

// GenerateToken signs a JWT for the given user. Token issuance itself lives
// in the identity service; this is used by it and by tests.
func GenerateToken(userID uuid.UUID, memberNumber int64, role string, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:       userID.String(),
		MemberNumber: memberNumber,
		Role:         role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("GenerateToken: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a signed token.
func ValidateToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: %w", err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("ValidateToken: invalid token claims")
	}

	userID, err := uuid.Parse(tc.UserID)
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: invalid user_id in token: %w", err)
	}

	return &Claims{
		UserID:       userID,
		MemberNumber: tc.MemberNumber,
		Role:         tc.Role,
	}, nil
}
