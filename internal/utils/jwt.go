package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenExpiry = 10 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrSecretNotSet = errors.New("JWT_SECRET is not configured")
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 bearer tokens.
type TokenService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, expiry time.Duration) *TokenService {
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}
	return &TokenService{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// GenerateJWT creates a signed token for the given subject and role.
func (s *TokenService) GenerateJWT(subject, role string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSecretNotSet
	}
	now := s.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateJWT validates a given token string. Every failure is reported as
// ErrInvalidToken.
func (s *TokenService) ValidateJWT(tokenStr string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrSecretNotSet
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		// block alg confusion
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *TokenService) Expiry() time.Duration { return s.expiry }
