// Package token issues and verifies the access/refresh token pair carried in
// the session cookies. Signing and verification are pure; nothing here
// consults the store.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSecret = errors.New("token: signing secret is not set")
	ErrInvalidToken  = errors.New("token: invalid token")
)

type Claims struct {
	UserID    int64  `json:"userId,omitempty"`
	Phone     string `json:"phone,omitempty"` // SEC identity is phone-keyed
	Role      string `json:"role"`
	ProjectID string `json:"projectId"`
	jwt.RegisteredClaims
}

type Service struct {
	secret     []byte
	projectID  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(secret string, projectID string, accessTTL, refreshTTL time.Duration) (*Service, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	return &Service{
		secret:     []byte(secret),
		projectID:  projectID,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func (s *Service) SignAccessToken(claims Claims) (string, time.Time, error) {
	return s.sign(claims, s.accessTTL)
}

func (s *Service) SignRefreshToken(claims Claims) (string, time.Time, error) {
	return s.sign(claims, s.refreshTTL)
}

func (s *Service) sign(claims Claims, ttl time.Duration) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, ErrMissingSecret
	}

	now := time.Now()
	exp := now.Add(ttl)

	claims.ProjectID = s.projectID
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Subject:   claims.Role,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return ss, exp, nil
}

// Parse checks signature and expiry only; identity existence is the resolver's
// concern.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if !t.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
