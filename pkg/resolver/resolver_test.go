package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/storacha/redirector/pkg/internal/testutil"
	"github.com/storacha/redirector/pkg/mapping"
	"github.com/storacha/redirector/pkg/redirect"
)

type staticMappings struct {
	m     redirect.Mapping
	err   error
	calls int
}

func (s *staticMappings) Get(ctx context.Context) (redirect.Mapping, error) {
	s.calls++
	return s.m, s.err
}

// flakySource fails metadata requests while down is set.
type flakySource struct {
	*mapping.MapSource
	down bool
}

func (f *flakySource) Stat(ctx context.Context) (time.Time, error) {
	if f.down {
		return time.Time{}, errors.New("connection reset")
	}
	return f.MapSource.Stat(ctx)
}

type panickingMappings struct{}

func (panickingMappings) Get(ctx context.Context) (redirect.Mapping, error) {
	panic("store exploded")
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	docs := redirect.Mapping{
		"docs": {Target: "https://example.com/docs", Type: "permanent"},
	}

	t.Run("redirect", func(t *testing.T) {
		res := New(&staticMappings{m: docs}).Resolve(ctx, Request{URI: "/docs"})
		require.Equal(t, Response{
			Status:            301,
			StatusDescription: "Moved Permanently",
			Headers: map[string]string{
				"Location":      "https://example.com/docs",
				"Cache-Control": "max-age=300",
			},
		}, res)
	})

	t.Run("not found", func(t *testing.T) {
		res := New(&staticMappings{m: docs}).Resolve(ctx, Request{URI: "/missing"})
		require.Equal(t, 404, res.Status)
		require.Equal(t, "Not Found", res.StatusDescription)
		require.Equal(t, "text/html", res.Headers["Content-Type"])
		require.Equal(t, notFoundBody, res.Body)
	})

	t.Run("slugs are case sensitive", func(t *testing.T) {
		res := New(&staticMappings{m: docs}).Resolve(ctx, Request{URI: "/DOCS"})
		require.Equal(t, 404, res.Status)
	})

	t.Run("only one leading slash is stripped", func(t *testing.T) {
		res := New(&staticMappings{m: docs}).Resolve(ctx, Request{URI: "//docs"})
		require.Equal(t, 404, res.Status)
	})

	t.Run("landing page skips the store", func(t *testing.T) {
		for _, uri := range []string{"/", ""} {
			mappings := &staticMappings{err: redirect.ErrStoreUnavailable}
			res := New(mappings).Resolve(ctx, Request{URI: uri})
			require.Equal(t, 200, res.Status)
			require.Equal(t, "OK", res.StatusDescription)
			require.Equal(t, "text/html", res.Headers["Content-Type"])
			require.Equal(t, landingBody, res.Body)
			require.Zero(t, mappings.calls)
		}
	})

	t.Run("store unavailable", func(t *testing.T) {
		var reported []error
		r := New(
			&staticMappings{err: redirect.ErrStoreUnavailable},
			WithErrorReporter(func(err error) { reported = append(reported, err) }),
		)
		res := r.Resolve(ctx, Request{URI: "/docs"})
		require.Equal(t, 500, res.Status)
		require.Equal(t, "Internal Server Error", res.StatusDescription)
		require.Equal(t, errorBody, res.Body)
		require.Len(t, reported, 1)
		require.True(t, errors.Is(reported[0], redirect.ErrStoreUnavailable))
	})

	t.Run("panic becomes error response", func(t *testing.T) {
		var reported []error
		r := New(panickingMappings{}, WithErrorReporter(func(err error) { reported = append(reported, err) }))
		res := r.Resolve(ctx, Request{URI: "/docs"})
		require.Equal(t, 500, res.Status)
		require.Equal(t, errorBody, res.Body)
		require.Len(t, reported, 1)
	})

	t.Run("unknown type defaults to found", func(t *testing.T) {
		m := redirect.Mapping{"x": {Target: "/elsewhere", Type: "sideways"}}
		res := New(&staticMappings{m: m}).Resolve(ctx, Request{URI: "/x"})
		require.Equal(t, 302, res.Status)
		require.Equal(t, "Found", res.StatusDescription)
		require.Equal(t, "/elsewhere", res.Headers["Location"])
		require.Empty(t, res.Body)
	})

	t.Run("every mapped slug redirects per its type", func(t *testing.T) {
		m := testutil.RandomMapping(50)
		r := New(&staticMappings{m: m})
		for slug, e := range m {
			res := r.Resolve(ctx, Request{URI: "/" + slug})
			require.Equal(t, redirect.Classify(e.Type).Status, res.Status)
			require.Equal(t, e.Target, res.Headers["Location"])
		}
	})
}

func TestResolveWithAccessor(t *testing.T) {
	ctx := context.Background()
	src := mapping.NewMapSource()
	r := New(mapping.NewAccessor(src))

	// nothing stored yet
	require.Equal(t, 500, r.Resolve(ctx, Request{URI: "/docs"}).Status)
	require.Equal(t, 200, r.Resolve(ctx, Request{URI: "/"}).Status)

	src.Put([]byte(`{"docs": {"target": "https://example.com/docs", "type": "permanent"}}`), time.Now())
	res := r.Resolve(ctx, Request{URI: "/docs"})
	require.Equal(t, 301, res.Status)
	require.Equal(t, "https://example.com/docs", res.Headers["Location"])
	require.Equal(t, 404, r.Resolve(ctx, Request{URI: "/missing"}).Status)

	// a garbage document on first load is a 500
	broken := mapping.NewMapSource()
	broken.Put(testutil.RandomBytes(32), time.Now())
	require.Equal(t, 500, New(mapping.NewAccessor(broken)).Resolve(ctx, Request{URI: "/docs"}).Status)
}

func TestResolveMetadataFailureWithWarmCache(t *testing.T) {
	ctx := context.Background()
	src := &flakySource{MapSource: mapping.NewMapSource()}
	src.Put([]byte(`{"docs": {"target": "https://example.com/docs", "type": "permanent"}}`), time.Now())

	var reported []error
	r := New(mapping.NewAccessor(src), WithErrorReporter(func(err error) { reported = append(reported, err) }))
	require.Equal(t, 301, r.Resolve(ctx, Request{URI: "/docs"}).Status)

	// the cached mapping is not served when the store cannot be asked about it
	src.down = true
	res := r.Resolve(ctx, Request{URI: "/docs"})
	require.Equal(t, 500, res.Status)
	require.Len(t, reported, 1)
	require.ErrorIs(t, reported[0], redirect.ErrStoreUnavailable)

	src.down = false
	require.Equal(t, 301, r.Resolve(ctx, Request{URI: "/docs"}).Status)
}
