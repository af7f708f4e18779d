package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("load appointment: %w", NotFound("appointment %s not found", "abc"))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindConflict))
	assert.EqualError(t, err, "load appointment: appointment abc not found")
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnexpected, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindUnexpected))
}

func TestDownstreamUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Downstream("payment service unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "payment service unavailable: connection refused", err.Error())
}

func TestValidationCarriesFields(t *testing.T) {
	err := Validation(map[string]string{"appointmentDate": "must be a date in format yyyy-MM-dd"})

	assert.Equal(t, KindValidation, err.Kind)
	assert.Contains(t, err.Fields, "appointmentDate")
}
