package mapping

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/sync/singleflight"

	"github.com/storacha/redirector/pkg/redirect"
)

var log = logging.Logger("mapping")

// DefaultTimeout bounds a single refresh, metadata and body included.
const DefaultTimeout = 3 * time.Second

// snapshot is one complete version of the mapping document. It is never
// modified after being stored.
type snapshot struct {
	mapping  redirect.Mapping
	modified time.Time
}

type options struct {
	timeout time.Duration
}

// Option configures an [Accessor].
type Option func(*options)

// WithTimeout sets the time allowed for the metadata and body requests made
// by a single call to [Accessor.Get].
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// Accessor caches the mapping held by a [Source] and reloads it when the
// document's last modified time moves forward. It is safe for concurrent use.
type Accessor struct {
	source  Source
	timeout time.Duration
	current atomic.Pointer[snapshot]
	group   singleflight.Group
}

// NewAccessor creates an [Accessor] with an empty cache.
func NewAccessor(source Source, opts ...Option) *Accessor {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return &Accessor{source: source, timeout: o.timeout}
}

// Get returns the current mapping, fetching the document if nothing is cached
// yet or if it changed since it was cached. Errors match
// [redirect.ErrStoreUnavailable] and leave any cached mapping in place. A
// failed metadata request fails the call even when a mapping is cached.
// Invalid entries in a newly fetched document are logged and left out.
//
// The returned mapping is shared between callers and must not be modified.
func (a *Accessor) Get(ctx context.Context) (redirect.Mapping, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	modified, err := a.source.Stat(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading document metadata: %w", redirect.ErrStoreUnavailable, err)
	}

	if cur := a.current.Load(); cur != nil && !modified.After(cur.modified) {
		return cur.mapping, nil
	}

	// The refresh is shared by every caller waiting on it, so it runs detached
	// from the context of the caller that happened to start it. Each caller
	// still stops waiting when its own context ends.
	detached := context.WithoutCancel(ctx)
	ch := a.group.DoChan("refresh", func() (any, error) {
		// another caller may have finished a refresh while this one waited
		if cur := a.current.Load(); cur != nil && !modified.After(cur.modified) {
			return cur, nil
		}
		ctx, cancel := context.WithTimeout(detached, a.timeout)
		defer cancel()
		return a.refresh(ctx, modified)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for refresh: %w", redirect.ErrStoreUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*snapshot).mapping, nil
	}
}

func (a *Accessor) refresh(ctx context.Context, modified time.Time) (*snapshot, error) {
	body, _, err := a.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching document: %w", redirect.ErrStoreUnavailable, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading document: %w", redirect.ErrStoreUnavailable, err)
	}

	m, skipped, err := redirect.DecodeLenient(data)
	if err != nil {
		log.Errorf("decoding redirect mapping: %s", err)
		return nil, fmt.Errorf("%w: %w", redirect.ErrStoreUnavailable, err)
	}
	if skipped != nil {
		log.Warnf("skipping invalid redirect entries: %s", skipped)
	}

	s := &snapshot{mapping: m, modified: modified}
	a.current.Store(s)
	log.Infow("loaded redirect mapping", "slugs", len(m), "modified", modified)
	return s, nil
}

// Modified returns the last modified time of the cached document and false
// if nothing has been loaded yet.
func (a *Accessor) Modified() (time.Time, bool) {
	cur := a.current.Load()
	if cur == nil {
		return time.Time{}, false
	}
	return cur.modified, true
}
