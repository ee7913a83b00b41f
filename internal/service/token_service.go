package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avaliaedu/avalia-api/internal/models"
)

// Typed verification failures. Callers reject the request in every case but
// may log them differently.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

// TokenClaims is the identity a verified bearer token proves.
type TokenClaims struct {
	UserID uint
	Role   models.Role
}

// TokenService issues and verifies stateless signed session tokens. There is
// no server-side session table and no revocation path; logout is a
// client-side token discard.
type TokenService interface {
	Issue(userID uint, role models.Role) (string, error)
	Verify(token string) (TokenClaims, error)
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type tokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService builds a HMAC-signed token service. The secret is validated
// at configuration load; an empty secret never reaches this constructor in a
// running deployment.
func NewTokenService(secret string, lifetime time.Duration) TokenService {
	if lifetime <= 0 {
		lifetime = time.Hour
	}

	return &tokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
}

func (s *tokenService) Issue(userID uint, role models.Role) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("cannot issue token for unknown role %q", role)
	}

	issuedAt := s.now()
	claims := sessionClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func (s *tokenService) Verify(tokenString string) (TokenClaims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return TokenClaims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return TokenClaims{}, ErrTokenSignatureInvalid
		default:
			return TokenClaims{}, ErrTokenMalformed
		}
	}

	if !token.Valid {
		return TokenClaims{}, ErrTokenSignatureInvalid
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return TokenClaims{}, ErrTokenMalformed
	}

	role := models.Role(claims.Role)
	if !role.Valid() {
		return TokenClaims{}, ErrTokenMalformed
	}

	return TokenClaims{UserID: uint(userID), Role: role}, nil
}
