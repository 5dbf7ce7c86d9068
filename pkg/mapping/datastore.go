package mapping

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ipfs/go-datastore"
)

// DsSource is a [Source] backed by an IPFS datastore. The document body and
// its last modified time are kept under sibling keys so that Stat does not
// read the body.
type DsSource struct {
	ds          datastore.Batching
	bodyKey     datastore.Key
	modifiedKey datastore.Key
}

var _ Source = (*DsSource)(nil)

// NewDsSource creates a [DsSource] for the document stored under name.
func NewDsSource(ds datastore.Batching, name string) *DsSource {
	base := datastore.NewKey(name)
	return &DsSource{
		ds:          ds,
		bodyKey:     base.ChildString("body"),
		modifiedKey: base.ChildString("modified"),
	}
}

// Put writes a new version of the document. Body and timestamp are committed
// in one batch.
func (d *DsSource) Put(ctx context.Context, data []byte, modified time.Time) error {
	ts, err := modified.UTC().MarshalText()
	if err != nil {
		return fmt.Errorf("encoding modified time: %w", err)
	}
	b, err := d.ds.Batch(ctx)
	if err != nil {
		return fmt.Errorf("creating batch: %w", err)
	}
	if err := b.Put(ctx, d.bodyKey, data); err != nil {
		return fmt.Errorf("writing body: %w", err)
	}
	if err := b.Put(ctx, d.modifiedKey, ts); err != nil {
		return fmt.Errorf("writing modified time: %w", err)
	}
	return b.Commit(ctx)
}

func (d *DsSource) Stat(ctx context.Context) (time.Time, error) {
	v, err := d.ds.Get(ctx, d.modifiedKey)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("reading modified time: %w", err)
	}
	var t time.Time
	if err := t.UnmarshalText(v); err != nil {
		return time.Time{}, fmt.Errorf("decoding modified time: %w", err)
	}
	return t, nil
}

func (d *DsSource) Fetch(ctx context.Context) (io.ReadCloser, time.Time, error) {
	modified, err := d.Stat(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	v, err := d.ds.Get(ctx, d.bodyKey)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return nil, time.Time{}, ErrNotFound
		}
		return nil, time.Time{}, fmt.Errorf("reading body: %w", err)
	}
	return io.NopCloser(bytes.NewReader(v)), modified, nil
}
