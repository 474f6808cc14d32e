package objstore

import (
	"context"
	"errors"
	"io"
)

// ErrDisabled is returned by Disabled.Put when no bucket is configured.
var ErrDisabled = errors.New("object storage not configured")

// Disabled is the store used when no attachment bucket is configured:
// uploads fail with ErrDisabled and deletes succeed so todo removal still
// works.
type Disabled struct{}

// Put always fails with ErrDisabled.
func (Disabled) Put(ctx context.Context, key, contentType string, size int64, body io.Reader) error {
	return ErrDisabled
}

// Delete always succeeds; there is nothing to remove.
func (Disabled) Delete(ctx context.Context, key string) error {
	return nil
}
