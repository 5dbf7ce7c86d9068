package resolver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	logging "github.com/ipfs/go-log/v2"

	"github.com/storacha/redirector/pkg/redirect"
)

var log = logging.Logger("resolver")

// Request is the part of an inbound request used to resolve a redirect.
type Request struct {
	// URI is the request path, including its leading slash.
	URI string
}

// Response is a complete HTTP response. Header names are canonical.
type Response struct {
	Status            int
	StatusDescription string
	Headers           map[string]string
	Body              string
}

// Mappings provides the current redirect mapping.
type Mappings interface {
	Get(ctx context.Context) (redirect.Mapping, error)
}

// ErrorReporter is notified of failures that were turned into an error
// response.
type ErrorReporter func(error)

// Option configures a [Resolver].
type Option func(*Resolver)

// WithErrorReporter sets a function called with every error that results in
// a 500 response.
func WithErrorReporter(report ErrorReporter) Option {
	return func(r *Resolver) {
		r.report = report
	}
}

// Resolver turns requests into redirect responses.
type Resolver struct {
	mappings Mappings
	report   ErrorReporter
}

func New(mappings Mappings, opts ...Option) *Resolver {
	r := &Resolver{mappings: mappings}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve builds the response for a request. It always returns a well formed
// response: failures to load the mapping, and panics while resolving, become
// a 500 response.
func (r *Resolver) Resolve(ctx context.Context, req Request) (res Response) {
	defer func() {
		if p := recover(); p != nil {
			r.fail(fmt.Errorf("panic resolving %q: %v", req.URI, p))
			res = ErrorResponse()
		}
	}()

	slug := strings.TrimPrefix(req.URI, "/")
	if slug == "" {
		return htmlResponse(http.StatusOK, landingBody)
	}

	m, err := r.mappings.Get(ctx)
	if err != nil {
		r.fail(fmt.Errorf("loading redirect mapping: %w", err))
		return ErrorResponse()
	}

	entry, ok := m[slug]
	if !ok {
		log.Debugf("slug not found: %s", slug)
		return htmlResponse(http.StatusNotFound, notFoundBody)
	}

	kind := redirect.Classify(entry.Type)
	if !kind.Known {
		log.Warnf("unknown redirect type %q for slug %s, using %d", entry.Type, slug, kind.Status)
	}
	return Response{
		Status:            kind.Status,
		StatusDescription: kind.Description,
		Headers: map[string]string{
			"Location":      entry.Target,
			"Cache-Control": fmt.Sprintf("max-age=%d", CacheMaxAge),
		},
	}
}

func (r *Resolver) fail(err error) {
	log.Errorf("processing redirect: %s", err)
	if r.report != nil {
		r.report(err)
	}
}

func htmlResponse(status int, body string) Response {
	return Response{
		Status:            status,
		StatusDescription: http.StatusText(status),
		Headers:           map[string]string{"Content-Type": "text/html"},
		Body:              body,
	}
}

// ErrorResponse is the response sent when a request could not be processed.
func ErrorResponse() Response {
	return htmlResponse(http.StatusInternalServerError, errorBody)
}
