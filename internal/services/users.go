package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/harentsoaR/medisync-api/internal/apperrors"
	"github.com/harentsoaR/medisync-api/internal/cache"
	"github.com/harentsoaR/medisync-api/internal/models"
	"github.com/harentsoaR/medisync-api/internal/repository"
	"github.com/harentsoaR/medisync-api/internal/utils"
)

const msgUsernameTaken = "Username already exists."

// passwordRules matches the password tags on models.NewUser.
const passwordRules = "min=6,max=72,bcrypt_len"

type UserService struct {
	repo   repository.UserRepository
	hasher *utils.PasswordHasher
	cache  cache.Cache
	log    zerolog.Logger
}

func NewUserService(repo repository.UserRepository, hasher *utils.PasswordHasher, c cache.Cache, log zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		cache:  c,
		log:    log.With().Str("component", "users").Logger(),
	}
}

// Create validates in, hashes its password and stores the account. Role
// defaults to PATIENT when omitted.
func (s *UserService) Create(ctx context.Context, in models.NewUser) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if in.Role == "" {
		in.Role = models.RolePatient
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if err := s.ensureUsernameFree(ctx, in.Username); err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Unexpected("hash password", err)
	}

	user := &models.User{
		Username:    in.Username,
		Password:    hash,
		PhoneNumber: in.PhoneNumber,
		Role:        in.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(msgUsernameTaken)
		}
		return nil, apperrors.Unexpected("create user", err)
	}

	s.log.Info().Str("user_id", user.ID.Hex()).Str("role", string(user.Role)).Msg("user created")
	return user, nil
}

func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User not found with ID: %s", id)
		}
		return nil, apperrors.Unexpected("load user", err)
	}
	return user, nil
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User not found with username: %s", username)
		}
		return nil, apperrors.Unexpected("load user", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Unexpected("list users", err)
	}
	return users, nil
}

func (s *UserService) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	if !role.Valid() {
		return nil, apperrors.Validation(map[string]string{"role": "Role must be one of ADMIN, DOCTOR, PATIENT"})
	}
	users, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		return nil, apperrors.Unexpected("list users", err)
	}
	return users, nil
}

// Update applies the non-blank fields of patch. A new password is re-hashed
// and a new username must still be unique.
func (s *UserService) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if name := strings.TrimSpace(patch.Username); name != "" && name != user.Username {
		if err := s.ensureUsernameFree(ctx, name); err != nil {
			return nil, err
		}
		user.Username = name
	}
	if patch.Password != "" {
		if validateField(fields, "password", patch.Password, passwordRules) {
			hash, err := s.hasher.HashPassword(patch.Password)
			if err != nil {
				return nil, apperrors.Unexpected("hash password", err)
			}
			user.Password = hash
		}
	}
	if phone := strings.TrimSpace(patch.PhoneNumber); phone != "" {
		user.PhoneNumber = phone
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			fields["role"] = "Role must be one of ADMIN, DOCTOR, PATIENT"
		} else {
			user.Role = *patch.Role
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.Conflict(msgUsernameTaken)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NotFound("User not found with ID: %s", id)
		}
		return nil, apperrors.Unexpected("update user", err)
	}

	s.log.Info().Str("user_id", id).Msg("user updated")
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("User not found with ID: %s", id)
		}
		return apperrors.Unexpected("delete user", err)
	}
	cache.Evict(ctx, s.cache, s.log, cache.PatientAppointmentsKey(id), cache.DoctorAppointmentsKey(id))
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) ensureUsernameFree(ctx context.Context, username string) error {
	_, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return apperrors.Conflict(msgUsernameTaken)
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return apperrors.Unexpected("check username", err)
	}
}
