package status

import (
	"context"
	"errors"
)

var (
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrUnknownDriver    = errors.New("unknown store driver")
)

// Store persists status checks. Implementations must be safe for concurrent use
// and must never expose their own addressing fields in returned records.
type Store interface {
	// Init prepares the backing collection or table
	Init(ctx context.Context) error
	Insert(ctx context.Context, sc *StatusCheck) error
	// FindRecent returns at most limit records in store-defined order
	FindRecent(ctx context.Context, limit int) ([]*StatusCheck, error)
	Close(ctx context.Context) error
}
