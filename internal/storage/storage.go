// Package storage abstracts the place where originals and derived variants live.
// Keys follow the store layout (full/<id>, processed/<w>x<h>/<id>) and the key of
// a variant is its only cache index.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrNotFound      = errors.New("storage: key not found")
	ErrInvalidKey    = errors.New("storage: invalid key")
	ErrStorageFailed = errors.New("storage: operation failed")
)

type Item struct {
	Key     string    `json:"key"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

type Storage interface {
	// Exists reports false without an error only when nothing is stored under key
	Exists(ctx context.Context, key string) (bool, error)
	// Open fails with ErrNotFound when the key is absent
	Open(ctx context.Context, key string) (io.ReadCloser, *Item, error)
	// Put is atomic, readers never observe a partially written object
	Put(ctx context.Context, key string, source io.Reader) (*Item, error)
	List(ctx context.Context, prefix string) ([]Item, error)
	Remove(ctx context.Context, key string) error
	RemovePrefix(ctx context.Context, prefix string) (int, error)
}
