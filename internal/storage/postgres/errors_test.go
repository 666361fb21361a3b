package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"token-autotrader/internal/storage"
)

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError(pgx.ErrNoRows), storage.ErrNotFound)
	assert.ErrorIs(t, mapError(fmt.Errorf("scan: %w", pgx.ErrNoRows)), storage.ErrNotFound)

	dup := &pgconn.PgError{Code: pgErrUniqueViolation}
	assert.ErrorIs(t, mapError(dup), storage.ErrDuplicateKey)

	// Other constraint classes pass through untouched
	fk := &pgconn.PgError{Code: "23503"}
	assert.Equal(t, error(fk), mapError(fk))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, mapError(plain))
}
