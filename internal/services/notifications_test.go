package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/medisync-api/internal/apperrors"
	"github.com/harentsoaR/medisync-api/internal/metrics"
	"github.com/harentsoaR/medisync-api/internal/models"
)

func TestNotificationSend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.mustCreateUser(t, "alice", models.RolePatient)
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("EET", 2*3600))
	f.notifications.now = func() time.Time { return fixed }

	n, err := f.notifications.Send(ctx, u.ID.Hex(), "  Your results are ready  ")
	require.NoError(t, err)
	assert.Equal(t, "Your results are ready", n.Message)
	assert.False(t, n.IsRead)
	assert.Equal(t, time.UTC, n.Timestamp.Location())
	assert.True(t, fixed.Equal(n.Timestamp))

	_, err = f.notifications.Send(ctx, u.ID.Hex(), "   ")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = f.notifications.Send(ctx, "64b000000000000000000000", "hello")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestNotificationListNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.mustCreateUser(t, "alice", models.RolePatient)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, msg := range []string{"first", "second", "third"} {
		at := base.Add(time.Duration(i) * time.Minute)
		f.notifications.now = func() time.Time { return at }
		_, err := f.notifications.Send(ctx, u.ID.Hex(), msg)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"third", "second", "first"}, messagesFor(t, f, u.ID.Hex()))
}

func TestNotificationMarkRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.mustCreateUser(t, "alice", models.RolePatient)
	bob := f.mustCreateUser(t, "bob", models.RolePatient)

	n, err := f.notifications.Send(ctx, alice.ID.Hex(), "hello")
	require.NoError(t, err)

	_, err = f.notifications.MarkRead(ctx, n.ID.Hex(), bob.ID.Hex())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	read, err := f.notifications.MarkRead(ctx, n.ID.Hex(), alice.ID.Hex())
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	list, err := f.notifications.ListForUser(ctx, alice.ID.Hex())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsRead)
}

func TestNotificationRelaysSMS(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sms := &recordingSMS{sent: make(chan [2]string, 1), err: errors.New("quota exceeded")}
	f.notifications = NewNotificationService(f.notifRepo, f.userRepo, sms, metrics.NewNop(), zerolog.Nop())

	u, err := f.users.Create(ctx, models.NewUser{Username: "alice", Password: "secret123", PhoneNumber: "+15550001"})
	require.NoError(t, err)
	silent := f.mustCreateUser(t, "bob", models.RolePatient)

	// a failing relay is not the caller's problem
	_, err = f.notifications.Send(ctx, u.ID.Hex(), "See you tomorrow")
	require.NoError(t, err)

	select {
	case got := <-sms.sent:
		assert.Equal(t, [2]string{"+15550001", "See you tomorrow"}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("SMS was not relayed")
	}

	_, err = f.notifications.Send(ctx, silent.ID.Hex(), "no phone")
	require.NoError(t, err)
	select {
	case got := <-sms.sent:
		t.Fatalf("unexpected SMS %v", got)
	case <-time.After(50 * time.Millisecond):
	}
}
