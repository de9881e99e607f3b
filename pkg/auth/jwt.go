package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is the lifetime of every issued bearer token.
const TokenTTL = 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrRevokedToken = errors.New("token revoked")
	ErrEmptySecret  = errors.New("jwt secret must not be empty")
)

// Claims is the payload carried by a practitioner bearer token.
type Claims struct {
	PractitionerID string `json:"practitionerId"`
	Email          string `json:"email"`
	jwt.RegisteredClaims
}

type JWTService interface {
	Issue(practitionerID, email string) (string, error)
	Verify(token string) (*Claims, error)
	Revoke(claims *Claims)
}

type Option func(*jwtService)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *jwtService) {
		s.now = now
	}
}

// WithRevocationList makes Verify reject tokens whose ID has been revoked.
func WithRevocationList(list *RevocationList) Option {
	return func(s *jwtService) {
		s.revoked = list
	}
}

type jwtService struct {
	secret  []byte
	issuer  string
	now     func() time.Time
	revoked *RevocationList
}

func NewJWTService(secret, issuer string, opts ...Option) (JWTService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	s := &jwtService{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *jwtService) Issue(practitionerID, email string) (string, error) {
	now := s.now()
	claims := Claims{
		PractitionerID: practitionerID,
		Email:          email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   practitionerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.PractitionerID == "" {
		return nil, fmt.Errorf("%w: missing practitioner id", ErrInvalidToken)
	}
	if s.revoked != nil && s.revoked.IsRevoked(claims.ID) {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// Revoke blacklists the token until its natural expiry. It is a no-op
// when no revocation list is configured.
func (s *jwtService) Revoke(claims *Claims) {
	if s.revoked == nil || claims == nil || claims.ExpiresAt == nil {
		return
	}
	s.revoked.Revoke(claims.ID, claims.ExpiresAt.Sub(s.now()))
}
