package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService creates and validates the bearer tokens used by both user and
// admin auth.
type JWTService struct {
	secretKey string
	expiry    time.Duration
}

// Claims is the identity carried by a token. Role is "admin" for admin
// tokens and empty for regular users.
type Claims struct {
	UserID int64
	Email  string
	Role   string
}

// NewJWTService creates a JWTService signing with the shared secret.
func NewJWTService(secretKey string) *JWTService {
	return &JWTService{secretKey: secretKey, expiry: time.Hour}
}

// GenerateToken creates a signed HS256 token.
func (s *JWTService) GenerateToken(userID int64, email, role string) (string, error) {
	claims := jwt.MapClaims{
		"id":    userID,
		"email": email,
		"exp":   time.Now().Add(s.expiry).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ParseClaims validates a token and extracts the identity claims.
func (s *JWTService) ParseClaims(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	id, ok := mapClaims["id"].(float64)
	if !ok {
		return nil, errors.New("token missing id claim")
	}

	claims := &Claims{UserID: int64(id)}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if role, ok := mapClaims["role"].(string); ok {
		claims.Role = role
	}
	return claims, nil
}
