package httperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryableStorage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, true},
		{"wrapped serialization failure", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableStorage(tt.err))
		})
	}
}

func TestClassifyStorage(t *testing.T) {
	assert.NoError(t, ClassifyStorage("op", nil))

	err := ClassifyStorage("admit", &pgconn.PgError{Code: "40001"})
	assert.True(t, IsTransient(err))

	err = ClassifyStorage("admit", context.DeadlineExceeded)
	assert.True(t, IsTransient(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	plain := errors.New("connection refused")
	assert.Equal(t, plain, ClassifyStorage("admit", plain))

	business := ErrBusiness("professional_unavailable")
	assert.Equal(t, business, ClassifyStorage("admit", business))
}

func TestBusinessCode(t *testing.T) {
	code, ok := BusinessCode(fmt.Errorf("wrapped: %w", ErrBusiness("invalid_state")))
	assert.True(t, ok)
	assert.Equal(t, "invalid_state", code)

	_, ok = BusinessCode(errors.New("other"))
	assert.False(t, ok)

	assert.True(t, IsExclusionConflict(&pgconn.PgError{Code: "23P01"}))
	assert.False(t, IsExclusionConflict(errors.New("x")))
}
