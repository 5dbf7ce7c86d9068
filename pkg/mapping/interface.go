package mapping

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned by a [Source] when the document does not exist.
var ErrNotFound = errors.New("mapping document not found")

// Source is the remote location of a mapping document.
type Source interface {
	// Stat returns the last modified time of the document without
	// transferring its body.
	Stat(ctx context.Context) (time.Time, error)
	// Fetch returns the document body along with its last modified time. The
	// caller must close the body.
	Fetch(ctx context.Context) (io.ReadCloser, time.Time, error)
}
