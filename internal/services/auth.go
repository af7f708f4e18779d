package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/harentsoaR/medisync-api/internal/apperrors"
	"github.com/harentsoaR/medisync-api/internal/metrics"
	"github.com/harentsoaR/medisync-api/internal/models"
	"github.com/harentsoaR/medisync-api/internal/utils"
)

const msgBadCredentials = "Invalid username or password"

type LoginResult struct {
	Token string      `json:"token"`
	Role  models.Role `json:"role"`
}

// AuthService issues tokens for valid credentials and resolves token
// subjects back into principals.
type AuthService struct {
	users   *UserService
	hasher  *utils.PasswordHasher
	tokens  *utils.TokenService
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewAuthService(users *UserService, hasher *utils.PasswordHasher, tokens *utils.TokenService, m *metrics.Metrics, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		metrics: m,
		log:     log.With().Str("component", "auth").Logger(),
	}
}

// Login checks the credentials and returns a signed token carrying the
// username as subject and the user's role.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		return nil, apperrors.Validation(map[string]string{"credentials": "Username and password are required"})
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			s.metrics.LoginAttempts.WithLabelValues("failure").Inc()
			return nil, apperrors.Authentication(msgBadCredentials)
		}
		return nil, err
	}
	if !s.hasher.CheckPasswordHash(password, user.Password) {
		s.metrics.LoginAttempts.WithLabelValues("failure").Inc()
		s.log.Warn().Str("username", username).Msg("login rejected")
		return nil, apperrors.Authentication(msgBadCredentials)
	}

	token, err := s.tokens.GenerateJWT(user.Username, string(user.Role))
	if err != nil {
		return nil, apperrors.Unexpected("issue token", err)
	}

	s.metrics.LoginAttempts.WithLabelValues("success").Inc()
	return &LoginResult{Token: token, Role: user.Role}, nil
}

// Signup creates an account through the user directory.
func (s *AuthService) Signup(ctx context.Context, in models.NewUser) (*models.User, error) {
	return s.users.Create(ctx, in)
}

// LoadPrincipal resolves a token subject into the identity the access policy
// evaluates. The role comes from the stored user, not from the token.
func (s *AuthService) LoadPrincipal(ctx context.Context, username string) (*models.Principal, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return models.NewPrincipal(user), nil
}
