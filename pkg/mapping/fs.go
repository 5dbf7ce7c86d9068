package mapping

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
)

// FileSource is a [Source] reading its document from the local filesystem,
// using the file modification time as the document timestamp.
type FileSource struct {
	path string
}

var _ Source = (*FileSource)(nil)

func NewFileSource(path string) *FileSource {
	return &FileSource{path}
}

func (fsrc *FileSource) Stat(ctx context.Context) (time.Time, error) {
	info, err := os.Stat(fsrc.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("stat %s: %w", fsrc.path, err)
	}
	if info.IsDir() {
		return time.Time{}, fmt.Errorf("%s is a directory", fsrc.path)
	}
	return info.ModTime(), nil
}

func (fsrc *FileSource) Fetch(ctx context.Context) (io.ReadCloser, time.Time, error) {
	f, err := os.Open(fsrc.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, time.Time{}, ErrNotFound
		}
		return nil, time.Time{}, fmt.Errorf("opening %s: %w", fsrc.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, time.Time{}, fmt.Errorf("stat %s: %w", fsrc.path, err)
	}
	return f, info.ModTime(), nil
}
