package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-entry-board/internal/model"
	"go-entry-board/pkg/apierror"
)

const DefaultTokenTTL = 24 * time.Hour

type sessionClaims struct {
	jwt.RegisteredClaims
	UserID   string   `json:"id"`
	Username string   `json:"username"`
	Avatar   string   `json:"avatar"`
	Roles    []string `json:"roles,omitempty"`
}

// TokenService issues and verifies stateless HS256 session tokens. There is
// no revocation list: a token stays valid until it expires.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Issue(user model.User) (string, model.AuthClaims, error) {
	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)
	tokenID := uuid.NewString()

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:   user.ID,
		Username: user.Username,
		Avatar:   user.Avatar,
		Roles:    user.Roles,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", model.AuthClaims{}, err
	}

	return signed, model.AuthClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Avatar:    user.Avatar,
		Roles:     user.Roles,
		TokenID:   tokenID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify rejects tokens with a bad signature, a non-HMAC algorithm, a missing
// or passed expiry, or no subject.
func (s *TokenService) Verify(tokenString string) (*model.AuthClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, apierror.InvalidToken()
	}

	if claims.UserID == "" || claims.UserID != claims.Subject {
		return nil, apierror.InvalidToken()
	}

	out := &model.AuthClaims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Avatar:    claims.Avatar,
		Roles:     claims.Roles,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return out, nil
}
