package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidShareToken = errors.New("invalid share token")

// GenerateShareToken creates a signed token that grants read access to one
// document until the TTL elapses. The token is embedded in a share link and
// redeemed without authentication.
func GenerateShareToken(secret, documentID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("share secret not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"doc":     documentID,
		"purpose": "share",
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

// ParseShareToken verifies the token and returns the document id it grants
// access to. Expired or tampered tokens yield ErrInvalidShareToken.
func ParseShareToken(secret, raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidShareToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidShareToken
	}
	if purpose, _ := claims["purpose"].(string); purpose != "share" {
		return "", ErrInvalidShareToken
	}
	doc, _ := claims["doc"].(string)
	if doc == "" {
		return "", ErrInvalidShareToken
	}
	return doc, nil
}
