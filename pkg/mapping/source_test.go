package mapping

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	leveldb "github.com/ipfs/go-ds-leveldb"
	"github.com/stretchr/testify/require"

	"github.com/storacha/redirector/pkg/internal/testutil"
)

type puttableSource interface {
	Source
	put(t *testing.T, data []byte, modified time.Time)
}

type mapPut struct{ *MapSource }

func (m mapPut) put(t *testing.T, data []byte, modified time.Time) { m.Put(data, modified) }

type dsPut struct{ *DsSource }

func (d dsPut) put(t *testing.T, data []byte, modified time.Time) {
	require.NoError(t, d.Put(context.Background(), data, modified))
}

type filePut struct {
	*FileSource
	path string
}

func (f filePut) put(t *testing.T, data []byte, modified time.Time) {
	require.NoError(t, os.WriteFile(f.path, data, 0644))
	require.NoError(t, os.Chtimes(f.path, modified, modified))
}

func TestSources(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "redirects.json")
	lds := testutil.Must(leveldb.NewDatastore(filepath.Join(dir, "leveldb"), nil))(t)
	t.Cleanup(func() { lds.Close() })

	impls := map[string]puttableSource{
		"MapSource":          mapPut{NewMapSource()},
		"DsSource":           dsPut{NewDsSource(dssync.MutexWrap(datastore.NewMapDatastore()), "/redirects")},
		"DsSource (leveldb)": dsPut{NewDsSource(lds, "/redirects")},
		"FileSource":         filePut{NewFileSource(filePath), filePath},
	}

	for name, src := range impls {
		ctx := context.Background()

		t.Run("not found "+name, func(t *testing.T) {
			_, err := src.Stat(ctx)
			require.ErrorIs(t, err, ErrNotFound)
			_, _, err = src.Fetch(ctx)
			require.ErrorIs(t, err, ErrNotFound)
		})

		t.Run("roundtrip "+name, func(t *testing.T) {
			modified := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			src.put(t, []byte(docsV1), modified)

			stat, err := src.Stat(ctx)
			require.NoError(t, err)
			require.True(t, stat.Equal(modified))

			body, fetched, err := src.Fetch(ctx)
			require.NoError(t, err)
			defer body.Close()
			require.True(t, fetched.Equal(modified))
			require.Equal(t, docsV1, string(testutil.Must(io.ReadAll(body))(t)))
		})

		t.Run("update "+name, func(t *testing.T) {
			modified := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
			src.put(t, []byte(docsV2), modified)

			m, err := NewAccessor(src).Get(ctx)
			require.NoError(t, err)
			require.Contains(t, m, "blog")
		})
	}
}
