package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindInvalidInput:              http.StatusBadRequest,
		KindUnauthorized:              http.StatusUnauthorized,
		KindSessionRevoked:            http.StatusUnauthorized,
		KindFeatureDisabled:           http.StatusForbidden,
		KindForbidden:                 http.StatusForbidden,
		KindNotFound:                  http.StatusNotFound,
		KindConflict:                  http.StatusConflict,
		KindRateLimited:               http.StatusTooManyRequests,
		KindNotImplemented:            http.StatusNotImplemented,
		KindClassificationUnavailable: http.StatusServiceUnavailable,
		KindStorageUnavailable:        http.StatusServiceUnavailable,
		KindInternal:                  http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), kind.String())
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", FeatureDisabled("Mood feature disabled in preferences"))
	assert.ErrorIs(t, err, ErrFeatureDisabled)
	assert.NotErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, err, FeatureDisabled("Mood feature disabled in preferences"))
	assert.NotErrorIs(t, err, FeatureDisabled("something else"))

	cause := errors.New("dial tcp")
	wrapped := ClassificationUnavailable(cause)
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, KindClassificationUnavailable, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(cause))
}

func TestFromStorage(t *testing.T) {
	tests := []struct {
		name string
		in   error
		kind Kind
	}{
		{name: "record not found", in: gorm.ErrRecordNotFound, kind: KindNotFound},
		{name: "unique violation", in: &pgconn.PgError{Code: "23505"}, kind: KindConflict},
		{name: "bad uuid", in: &pgconn.PgError{Code: "22P02"}, kind: KindInvalidInput},
		{name: "missing relation", in: &pgconn.PgError{Code: "42P01"}, kind: KindStorageUnavailable},
		{name: "connection class", in: &pgconn.PgError{Code: "08006"}, kind: KindStorageUnavailable},
		{name: "other pg error", in: &pgconn.PgError{Code: "23503"}, kind: KindInternal},
		{name: "foreign", in: errors.New("boom"), kind: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromStorage(fmt.Errorf("query: %w", tt.in), "Post not found")
			require.Error(t, got)
			assert.Equal(t, tt.kind, KindOf(got))
		})
	}

	assert.NoError(t, FromStorage(nil, ""))

	typed := Forbidden("nope")
	assert.Same(t, typed, FromStorage(typed, ""))
}

func TestSQLState(t *testing.T) {
	code, class := SQLState(fmt.Errorf("x: %w", &pgconn.PgError{Code: "08006"}))
	assert.Equal(t, "08006", code)
	assert.Equal(t, "08", class)

	code, class = SQLState(errors.New("plain"))
	assert.Empty(t, code)
	assert.Empty(t, class)
}
