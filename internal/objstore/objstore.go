// Package objstore abstracts the byte-range read backend the HTTP
// streaming engine reads from, and doubles as the optional S3-compatible
// mirror target for library backups. Keys are a track's absolute
// filesystem path: the media server always reads local files directly,
// never through a network object store on the serving path.
package objstore

import (
	"context"
	"io"
)

// Store is the interface the streaming engine and the backup mirror share.
type Store interface {
	// GetRange returns a reader for exactly length bytes starting at
	// offset. Callers must Close the result.
	GetRange(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error)
	// Size returns the byte length of the object at key.
	Size(ctx context.Context, key string) (int64, error)
	// Put uploads size bytes from r under key, used only by the backup
	// mirror — never by the serving path.
	Put(ctx context.Context, key string, r io.Reader, size int64) error
}
