package mapping

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// MapSource is a [Source] holding its document in memory.
type MapSource struct {
	mu       sync.RWMutex
	data     []byte
	modified time.Time
}

var _ Source = (*MapSource)(nil)

// NewMapSource creates an empty [MapSource]. Reads fail with
// [ErrNotFound] until a document is put.
func NewMapSource() *MapSource {
	return &MapSource{}
}

// Put replaces the document and its last modified time.
func (ms *MapSource) Put(data []byte, modified time.Time) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.data = bytes.Clone(data)
	ms.modified = modified
}

func (ms *MapSource) Stat(ctx context.Context) (time.Time, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if ms.data == nil {
		return time.Time{}, ErrNotFound
	}
	return ms.modified, nil
}

func (ms *MapSource) Fetch(ctx context.Context) (io.ReadCloser, time.Time, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if ms.data == nil {
		return nil, time.Time{}, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(ms.data)), ms.modified, nil
}
