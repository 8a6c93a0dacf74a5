package services

import (
	"context"
	"errors"

	"github.com/stwalsh4118/landbroker/api/internal/database"
)

// Service-level errors. Callers match them with errors.Is; the wrapped
// message names the field or the state that caused the failure.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

// Store runs statements against Postgres, either directly or in a transaction.
// *database.Database satisfies it.
type Store interface {
	WithTx(ctx context.Context, fn func(q database.Querier) error) error
	Querier() database.Querier
}
