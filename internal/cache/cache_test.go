package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestGetOrComputeCachesResult(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute, time.Minute)
	calls := 0
	compute := func(context.Context) ([]item, error) {
		calls++
		return []item{{ID: "1", Name: "checkup"}}, nil
	}

	first, err := GetOrCompute(ctx, c, zerolog.Nop(), "k", time.Minute, compute)
	require.NoError(t, err)
	second, err := GetOrCompute(ctx, c, zerolog.Nop(), "k", time.Minute, compute)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestGetOrComputeAfterEvict(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute, time.Minute)
	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, err := GetOrCompute(ctx, c, zerolog.Nop(), "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	Evict(ctx, c, zerolog.Nop(), "k")

	v, err = GetOrCompute(ctx, c, zerolog.Nop(), "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute, time.Minute)
	boom := errors.New("store down")

	_, err := GetOrCompute(ctx, c, zerolog.Nop(), "k", time.Minute, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryEntriesExpire(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute, time.Minute)

	require.NoError(t, c.Set(ctx, "k", []byte(`1`), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "appointment:abc", AppointmentKey("abc"))
	assert.Equal(t, "appointments:patient:u1", PatientAppointmentsKey("u1"))
	assert.Equal(t, "appointments:doctor:u2", DoctorAppointmentsKey("u2"))
}

func TestRedisRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedis(client, "medisync-test:")
	require.NoError(t, c.Set(ctx, "k", []byte(`"v"`), time.Minute))

	raw, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `"v"`, string(raw))

	require.NoError(t, c.Delete(ctx, "k"))
	_, found, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}
