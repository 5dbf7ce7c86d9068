package testutil

import (
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/storacha/redirector/pkg/redirect"
)

const slugChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

func RandomBytes(size int) []byte {
	bytes := make([]byte, size)
	_, _ = crand.Read(bytes)
	return bytes
}

// RandomSlug returns a random non-empty slug.
func RandomSlug() string {
	b := make([]byte, 4+rand.IntN(12))
	for i := range b {
		b[i] = slugChars[rand.IntN(len(slugChars))]
	}
	return string(b)
}

var redirectTypes = []string{
	"permanent", "301", "temporary", "302", "see-other", "303",
	"temporary-redirect", "307", "permanent-redirect", "308",
}

// RandomMapping returns a mapping of n random slugs with random known types.
func RandomMapping(n int) redirect.Mapping {
	m := make(redirect.Mapping, n)
	for len(m) < n {
		slug := RandomSlug()
		m[slug] = redirect.Entry{
			Target: fmt.Sprintf("https://example.com/%s", slug),
			Type:   redirectTypes[rand.IntN(len(redirectTypes))],
		}
	}
	return m
}

// EncodeMapping serializes a mapping into a document.
func EncodeMapping(t *testing.T, m redirect.Mapping) []byte {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return data
}
