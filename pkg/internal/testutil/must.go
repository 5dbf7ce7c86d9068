package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Must returns the value from a (value, error) pair, failing the test if the
// error is non-nil.
func Must[T any](val T, err error) func(*testing.T) T {
	return func(t *testing.T) T {
		t.Helper()
		require.NoError(t, err)
		return val
	}
}
