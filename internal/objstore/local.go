package objstore

import (
	"context"
	"fmt"
	"io"
	"os"
)

// LocalFS reads directly off the local filesystem: key is an absolute
// path, not a namespaced object key, since every Track already carries its
// own absolute path.
type LocalFS struct{}

// NewLocalFS returns a LocalFS. It holds no state; every call operates on
// the absolute path passed as key.
func NewLocalFS() *LocalFS { return &LocalFS{} }

func (LocalFS) GetRange(_ context.Context, key string, offset, length int64) (io.ReadCloser, error) {
	f, err := os.Open(key)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", key, err)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seek %q: %w", key, err)
	}
	return &limitedReadCloser{r: io.LimitReader(f, length), c: f}, nil
}

func (LocalFS) Size(_ context.Context, key string) (int64, error) {
	fi, err := os.Stat(key)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func (LocalFS) Put(_ context.Context, key string, r io.Reader, _ int64) error {
	f, err := os.Create(key)
	if err != nil {
		return fmt.Errorf("create %q: %w", key, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

type limitedReadCloser struct {
	r io.Reader
	c io.Closer
}

func (l *limitedReadCloser) Read(p []byte) (int, error) { return l.r.Read(p) }
func (l *limitedReadCloser) Close() error               { return l.c.Close() }
