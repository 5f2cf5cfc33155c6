// Package storage provides the named-record persistence adapter used for
// carts, sessions and the product read cache.
package storage

import (
	"context"
)

// Adapter stores JSON-serialized records under fixed key names. A missing
// key is not an error: Read reports found=false and leaves the destination
// untouched.
type Adapter interface {
	Read(ctx context.Context, key string, into any) (bool, error)
	Write(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
}
