// Package cache provides the read-through cache used by the appointment
// queries. Values are stored JSON encoded so both backends behave the same.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Key prefixes and TTLs for the appointment queries.
const (
	KeyAllAppointments = "appointments:all"

	TTLAllAppointments = 10 * time.Minute
	TTLAppointment     = 5 * time.Minute
	TTLUserAppointment = 5 * time.Minute
)

func AppointmentKey(id string) string { return "appointment:" + id }

func PatientAppointmentsKey(userID string) string { return "appointments:patient:" + userID }

func DoctorAppointmentsKey(userID string) string { return "appointments:doctor:" + userID }

type Cache interface {
	// Get returns the raw value stored under key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// GetOrCompute returns the cached value for key, or calls compute and caches
// its result for ttl. Cache failures never fail the call; compute errors are
// returned unchanged and nothing is cached.
func GetOrCompute[T any](ctx context.Context, c Cache, log zerolog.Logger, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	if raw, ok, err := c.Get(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	}

	v, err := compute(ctx)
	if err != nil {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return v, nil
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return v, nil
}

// Evict deletes keys and logs instead of failing.
func Evict(ctx context.Context, c Cache, log zerolog.Logger, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.Delete(ctx, keys...); err != nil {
		log.Error().Err(err).Strs("keys", keys).Msg("cache eviction failed")
	}
}
