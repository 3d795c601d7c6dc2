package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("finalize: %w", Validation("EmptySeatSelection", "no seats in draft %s", "d1"))

	assert.True(t, errors.Is(wrapped, ErrEmptySeatSelection))
	assert.False(t, errors.Is(wrapped, ErrVoucherExpired))
	assert.True(t, IsValidation(wrapped))
	assert.Equal(t, "finalize: no seats in draft d1", wrapped.Error())
}

func TestKindHelpers(t *testing.T) {
	cases := []struct {
		err  error
		pred func(error) bool
	}{
		{&ConflictError{Message: "seat taken"}, IsConflict},
		{&TransportError{Op: "POST /bookings", Err: errors.New("dial tcp: refused")}, IsTransport},
		{&AuthError{Message: "token expired"}, IsAuth},
		{&UpstreamError{Status: 500, Message: "boom"}, IsUpstream},
	}
	for _, tc := range cases {
		assert.True(t, tc.pred(fmt.Errorf("wrap: %w", tc.err)), tc.err.Error())
		assert.False(t, IsValidation(tc.err))
	}
}

func TestTransportErrorUnwraps(t *testing.T) {
	root := errors.New("connection reset")
	err := &TransportError{Op: "GET /foods", Err: root}
	assert.ErrorIs(t, err, root)
	assert.Contains(t, err.Error(), "GET /foods")
}
