package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/taskdesk/taskdesk-api/internal/platform/postgres"
	"github.com/taskdesk/taskdesk-api/internal/store"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		SchemaName:     "public",
		TableName:      "tasks",
		ColumnName:     "status",
		ConstraintName: "tasks_status_check",
	}
}

// MockResult implements sql.Result for testing
type MockResult struct {
	rowsAffected int64
	err          error
}

func (m MockResult) LastInsertId() (int64, error) { return 0, m.err }
func (m MockResult) RowsAffected() (int64, error) { return m.rowsAffected, m.err }

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "no rows", err: sql.ErrNoRows, expected: store.ErrTaskNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", sql.ErrNoRows), expected: store.ErrTaskNotFound},
		{name: "unique violation", err: newPgError("23505"), expected: store.ErrTaskExists},
		{name: "check violation", err: newPgError("23514"), expected: store.ErrInvalidEntity},
		{name: "not null violation", err: newPgError("23502"), expected: store.ErrInvalidEntity},
		{name: "query canceled", err: newPgError("57014"), expected: store.ErrTimeout},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), expected: store.ErrTimeout},
		{name: "connection failure", err: errors.New("dial tcp: connection refused"), expected: store.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := postgres.MapError(tt.err, store.ErrTaskNotFound, store.ErrTaskExists)
			assert.ErrorIs(t, got, tt.expected)
		})
	}

	assert.NoError(t, postgres.MapError(nil, nil, nil))
	assert.ErrorIs(t, postgres.MapError(sql.ErrNoRows, nil, nil), store.ErrNotFound)
	assert.ErrorIs(t, postgres.MapError(newPgError("23505"), nil, nil), store.ErrDuplicate)
}

func TestMapErrorKeepsTimeoutDistinctFromNotFound(t *testing.T) {
	t.Parallel()

	err := postgres.MapError(context.DeadlineExceeded, store.ErrTaskNotFound, nil)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.False(t, store.IsNotFoundError(err))
}

func TestConstraintHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsUniqueViolation(newPgError("23505")))
	assert.True(t, postgres.IsUniqueViolation(fmt.Errorf("insert: %w", newPgError("23505"))))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23514")))
	assert.False(t, postgres.IsUniqueViolation(nil))

	assert.True(t, postgres.IsCheckConstraintViolation(newPgError("23514")))
	assert.False(t, postgres.IsCheckConstraintViolation(errors.New("generic")))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.CheckRowsAffected(MockResult{rowsAffected: 1}, store.ErrTaskNotFound))
	assert.ErrorIs(t,
		postgres.CheckRowsAffected(MockResult{rowsAffected: 0}, store.ErrTaskNotFound),
		store.ErrTaskNotFound)
	assert.ErrorIs(t, postgres.CheckRowsAffected(MockResult{}, nil), store.ErrNotFound)
	assert.Error(t, postgres.CheckRowsAffected(MockResult{err: errors.New("boom")}, nil))
	assert.Error(t, postgres.CheckRowsAffected(nil, nil))
}
