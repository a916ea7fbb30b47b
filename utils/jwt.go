package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// ErrInvalidToken is returned when a session token fails signature or
// expiry checks.
var ErrInvalidToken = errors.New("invalid or expired token")

// GenerateToken creates a signed session token embedding the user id as
// subject together with the issued-at timestamp.
func GenerateToken(userID string, secret []byte, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyToken validates signature and expiry and returns the embedded
// user id and issued-at timestamp.
func VerifyToken(tokenString string, secret []byte) (string, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", time.Time{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", time.Time{}, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", time.Time{}, ErrInvalidToken
	}
	iat, ok := claims["iat"].(float64)
	if !ok {
		return "", time.Time{}, ErrInvalidToken
	}
	return sub, time.Unix(int64(iat), 0), nil
}

// HashToken computes a SHA-256 hash of the token string. Reset tokens are
// stored hashed; only the plaintext travels in the email link.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NewResetToken generates a random password-reset token and returns both
// the plaintext and the hash to persist.
func NewResetToken() (plain string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	plain = hex.EncodeToString(buf)
	return plain, HashToken(plain), nil
}
