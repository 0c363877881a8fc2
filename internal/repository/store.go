package repository

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// KeyValueStore is the persistence seam behind ClientStorage. Values are
// opaque strings; a missing key is reported as ok == false, not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
