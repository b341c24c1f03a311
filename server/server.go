// Package server binds the people API routes to the snapshot stores.
package server

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	logging "github.com/ipfs/go-log/v2"
	"github.com/nyan-lin-tun/CNCF-people-api/respond"
	"github.com/nyan-lin-tun/CNCF-people-api/snapcache"
)

var log = logging.Logger("server")

// Static example document served at /example. It is fixed at build time and
// never refreshed.
//
//go:embed example.json
var exampleDoc []byte

// Server is the HTTP handler for the people API. It only ever reads from its
// stores; the refresher updates the remote store independently.
type Server struct {
	router  chi.Router
	local   *snapcache.Store
	remote  *snapcache.Store
	example *snapcache.Store
}

var _ http.Handler = (*Server)(nil)

// New creates a Server reading the local and remote people documents from
// the given stores.
func New(local, remote *snapcache.Store) (*Server, error) {
	example, err := snapcache.NewSnapshot(exampleDoc, "")
	if err != nil {
		return nil, fmt.Errorf("embedded example document unusable: %w", err)
	}

	s := &Server{
		local:   local,
		remote:  remote,
		example: snapcache.NewStore(example),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	// Serve HEAD through the GET handlers; net/http discards the body.
	r.Use(middleware.GetHead)
	r.Use(requestLogger)

	r.Get("/healthz", s.healthz)
	r.Get("/local/people", s.document(s.local))
	r.Get("/people", s.document(s.remote))
	r.Get("/example", s.document(s.example))

	s.router = r
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve accepts requests on ln until ctx is canceled, then drains in-flight
// requests for up to grace before returning. It does not return until the
// drain has completed or timed out.
func (s *Server) Serve(ctx context.Context, ln net.Listener, grace time.Duration) error {
	httpServer := &http.Server{Handler: s}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Errorw("Shutdown did not complete cleanly", "err", err)
		}
	}()

	err := httpServer.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-shutdownDone
	return nil
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// document serves one store with conditional GET and gzip negotiation.
func (s *Server) document(st *snapcache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := respond.For(r.Header.Get("If-None-Match"), respond.WantsGzip(r), st)
		respond.Write(w, res)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debugw("Handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
		)
	})
}
