package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	logging "github.com/ipfs/go-log/v2"

	"github.com/storacha/redirector/pkg/resolver"
)

var log = logging.Logger("server")

type config struct {
	resolver *resolver.Resolver
	timeout  time.Duration
	wrap     func(http.Handler) http.Handler
	health   string
}

type Option func(*config)

// WithResolver configures the resolver the server answers requests with.
func WithResolver(r *resolver.Resolver) Option {
	return func(c *config) {
		c.resolver = r
	}
}

// WithRequestTimeout bounds the time spent handling a single request.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithHandlerWrapper wraps the server handler, e.g. with error reporting.
func WithHandlerWrapper(wrap func(http.Handler) http.Handler) Option {
	return func(c *config) {
		c.wrap = wrap
	}
}

// WithHealthCheck answers GET requests for path with 200 ok. The path is taken
// out of the slug namespace, so a mapping entry with the same name can no
// longer be reached through this server.
func WithHealthCheck(path string) Option {
	return func(c *config) {
		c.health = path
	}
}

// ListenAndServe creates a new redirect HTTP server, and starts it up.
func ListenAndServe(addr string, opts ...Option) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewServer(opts...),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Infof("Listening on %s", addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// NewServer creates a handler that resolves every path as a slug, apart from
// the health check path when one is configured.
func NewServer(opts ...Option) http.Handler {
	c := &config{timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(c)
	}
	if c.resolver == nil {
		panic("server: resolver is required")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(c.timeout))

	if c.health != "" {
		r.Get(c.health, healthzHandler)
	}
	r.Get("/*", resolveHandler(c.resolver))
	r.Head("/*", resolveHandler(c.resolver))

	if c.wrap != nil {
		return c.wrap(r)
	}
	return r
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func resolveHandler(res *resolver.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := res.Resolve(r.Context(), resolver.Request{URI: r.URL.EscapedPath()})
		WriteResponse(w, r, out)
	}
}

// WriteResponse writes a resolver response to w.
func WriteResponse(w http.ResponseWriter, r *http.Request, res resolver.Response) {
	for k, v := range res.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(res.Status)
	if res.Body == "" || r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, res.Body); err != nil {
		log.Warnf("writing response body: %s", err)
	}
}
