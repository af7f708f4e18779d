package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/medisync-api/internal/models"
	"github.com/harentsoaR/medisync-api/internal/repository"
)

func TestUserRepositoryEnforcesUniqueUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	first := &models.User{Username: "alice", Role: models.RolePatient}
	require.NoError(t, repo.Create(ctx, first))
	assert.False(t, first.ID.IsZero())

	err := repo.Create(ctx, &models.User{Username: "alice", Role: models.RoleDoctor})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	second := &models.User{Username: "bob", Role: models.RoleDoctor}
	require.NoError(t, repo.Create(ctx, second))
	second.Username = "alice"
	assert.ErrorIs(t, repo.Update(ctx, second), repository.ErrDuplicate)
}

func TestUserRepositoryLookups(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	doc := &models.User{Username: "dr.who", Role: models.RoleDoctor}
	pat := &models.User{Username: "amy", Role: models.RolePatient}
	require.NoError(t, repo.Create(ctx, doc))
	require.NoError(t, repo.Create(ctx, pat))

	got, err := repo.GetByID(ctx, doc.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "dr.who", got.Username)

	got, err = repo.GetByUsername(ctx, "amy")
	require.NoError(t, err)
	assert.Equal(t, pat.ID, got.ID)

	doctors, err := repo.ListByRole(ctx, models.RoleDoctor)
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, doc.ID, doctors[0].ID)

	_, err = repo.GetByID(ctx, "not-hex")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, pat.ID.Hex()))
	assert.ErrorIs(t, repo.Delete(ctx, pat.ID.Hex()), repository.ErrNotFound)
}

func TestAppointmentRepositoryFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository()

	a := &models.Appointment{PatientID: "p1", DoctorID: "d1", Status: models.StatusPending}
	b := &models.Appointment{PatientID: "p2", DoctorID: "d1", Status: models.StatusPending}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	byDoctor, err := repo.ListByDoctor(ctx, "d1")
	require.NoError(t, err)
	assert.Len(t, byDoctor, 2)

	byPatient, err := repo.ListByPatient(ctx, "p2")
	require.NoError(t, err)
	require.Len(t, byPatient, 1)
	assert.Equal(t, b.ID, byPatient[0].ID)

	a.Status = models.StatusConfirmed
	require.NoError(t, repo.Update(ctx, a))
	got, err := repo.GetByID(ctx, a.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
}

func TestNotificationRepositoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, msg := range []string{"first", "second", "third"} {
		n := &models.Notification{RecipientID: "u1", Message: msg, Timestamp: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Create(ctx, n))
	}
	require.NoError(t, repo.Create(ctx, &models.Notification{RecipientID: "u2", Message: "other", Timestamp: base}))

	list, err := repo.ListByRecipient(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Message)
	assert.Equal(t, "first", list[2].Message)

	require.NoError(t, repo.MarkRead(ctx, list[0].ID.Hex()))
	got, err := repo.GetByID(ctx, list[0].ID.Hex())
	require.NoError(t, err)
	assert.True(t, got.IsRead)
}
