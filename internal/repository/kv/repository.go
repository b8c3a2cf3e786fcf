// Package kv stores small JSON documents under fixed keys.
package kv

import "context"

type Repository interface {
	// Get returns domain.ErrNotFound for unknown keys.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
