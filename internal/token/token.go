/**
 * @description
 * This package issues and verifies the signed identity tokens used by the
 * access gate. Tokens are stateless HS256 JWTs: verification is a pure
 * function of the token bytes, the configured signing secret, and the clock.
 * There is no revocation store; a token dies at expiry or signature mismatch.
 */

package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers malformed encodings, signature mismatches, and
	// tokens missing a subject.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token is past its validity window.
	ErrExpiredToken = errors.New("token expired")
)

// Claims binds the subject id to the standard registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// Service issues and verifies identity tokens with a fixed signing secret.
type Service struct {
	secret   []byte
	validity time.Duration
}

// NewService creates a token service. The secret must be non-empty; the
// caller validates this at startup.
func NewService(secret []byte, validity time.Duration) *Service {
	return &Service{secret: secret, validity: validity}
}

// Issue produces a signed token binding the given subject id.
func (s *Service) Issue(subjectID string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
		UserID: subjectID,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature and validity window and returns the subject id.
// Expired tokens are reported distinctly from all other failures.
func (s *Service) Verify(tokenString string) (string, error) {
	if strings.TrimSpace(tokenString) == "" {
		return "", ErrInvalidToken
	}

	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))

	parsed, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		// A bad signature outranks expiry: never report a forged token as
		// merely expired.
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return "", ErrInvalidToken
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if !parsed.Valid {
		return "", ErrInvalidToken
	}

	if strings.TrimSpace(claims.UserID) == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
