package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CuratorClaims carries the curator identity inside a signed token
type CuratorClaims struct {
	CuratorID   string `json:"curator_id"`
	CuratorType string `json:"curator_type"`
	jwt.RegisteredClaims
}

// GenerateToken mints a signed token for a curator
func GenerateToken(curatorID, curatorType, secret string, ttl time.Duration) (string, error) {
	claims := CuratorClaims{
		CuratorID:   curatorID,
		CuratorType: curatorType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ExtractCuratorFromToken validates the token and returns the curator identity
func ExtractCuratorFromToken(tokenString, secret string) (string, string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CuratorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(*CuratorClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token claims")
	}
	if claims.CuratorID == "" || claims.CuratorType == "" {
		return "", "", errors.New("token missing curator identity")
	}

	return claims.CuratorID, claims.CuratorType, nil
}
