package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/medisync-api/internal/apperrors"
	"github.com/harentsoaR/medisync-api/internal/cache"
	"github.com/harentsoaR/medisync-api/internal/models"
)

func TestUserServiceCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.users.Create(ctx, models.NewUser{Username: "  alice ", Password: "secret123"})
	require.NoError(t, err)

	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, models.RolePatient, u.Role)
	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, f.hasher.CheckPasswordHash("secret123", u.Password))

	stored, err := f.users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)
}

func TestUserServiceCreateRejectsDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mustCreateUser(t, "alice", models.RolePatient)

	_, err := f.users.Create(ctx, models.NewUser{Username: "alice", Password: "another1", Role: models.RoleDoctor})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
	assert.Contains(t, err.Error(), "Username already exists.")
}

func TestUserServiceCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    models.NewUser
		field string
	}{
		{"missing username", models.NewUser{Password: "secret123"}, "username"},
		{"short password", models.NewUser{Username: "bob", Password: "123"}, "password"},
		{"missing password", models.NewUser{Username: "bob"}, "password"},
		{"long password", models.NewUser{Username: "bob", Password: strings.Repeat("x", 80)}, "password"},
		{"password over 72 bytes", models.NewUser{Username: "bob", Password: strings.Repeat("é", 40)}, "password"},
		{"unknown role", models.NewUser{Username: "bob", Password: "secret123", Role: "NURSE"}, "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.users.Create(context.Background(), tt.in)
			require.Error(t, err)

			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.KindValidation, appErr.Kind)
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}
}

func TestUserServiceUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.mustCreateUser(t, "alice", models.RolePatient)
	f.mustCreateUser(t, "bob", models.RolePatient)

	t.Run("overlays non-blank fields", func(t *testing.T) {
		updated, err := f.users.Update(ctx, u.ID.Hex(), models.UserPatch{PhoneNumber: "+15550001", Password: "newpass1"})
		require.NoError(t, err)
		assert.Equal(t, "alice", updated.Username)
		assert.Equal(t, "+15550001", updated.PhoneNumber)
		assert.True(t, f.hasher.CheckPasswordHash("newpass1", updated.Password))
		assert.Equal(t, models.RolePatient, updated.Role)
	})

	t.Run("role only when carried", func(t *testing.T) {
		role := models.RoleDoctor
		updated, err := f.users.Update(ctx, u.ID.Hex(), models.UserPatch{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, models.RoleDoctor, updated.Role)
	})

	t.Run("taken username", func(t *testing.T) {
		_, err := f.users.Update(ctx, u.ID.Hex(), models.UserPatch{Username: "bob"})
		assert.True(t, apperrors.Is(err, apperrors.KindConflict))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.users.Update(ctx, "64b000000000000000000000", models.UserPatch{PhoneNumber: "1"})
		assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	})

	t.Run("password bounds", func(t *testing.T) {
		tests := []struct {
			password string
			message  string
		}{
			{"123", "password must be at least 6 characters"},
			{strings.Repeat("x", 80), "password must be at most 72 characters"},
			{strings.Repeat("é", 40), "password must be at most 72 bytes"},
		}
		for _, tt := range tests {
			_, err := f.users.Update(ctx, u.ID.Hex(), models.UserPatch{Password: tt.password})
			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.KindValidation, appErr.Kind)
			assert.Equal(t, tt.message, appErr.Fields["password"])
		}

		stored, err := f.users.FindByID(ctx, u.ID.Hex())
		require.NoError(t, err)
		assert.True(t, f.hasher.CheckPasswordHash("newpass1", stored.Password))
	})
}

func TestUserServiceListByRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mustCreateUser(t, "dr.house", models.RoleDoctor)
	f.mustCreateUser(t, "alice", models.RolePatient)

	doctors, err := f.users.ListByRole(ctx, models.RoleDoctor)
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "dr.house", doctors[0].Username)

	_, err = f.users.ListByRole(ctx, "NURSE")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestUserServiceDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.mustCreateUser(t, "alice", models.RolePatient)

	key := cache.PatientAppointmentsKey(u.ID.Hex())
	require.NoError(t, f.cache.Set(ctx, key, []byte("[]"), cache.TTLUserAppointment))

	require.NoError(t, f.users.Delete(ctx, u.ID.Hex()))

	_, found, _ := f.cache.Get(ctx, key)
	assert.False(t, found)

	_, err := f.users.FindByID(ctx, u.ID.Hex())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	err = f.users.Delete(ctx, u.ID.Hex())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}
