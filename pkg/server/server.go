// Package server serves an artifact cache directory over HTTP.
//
// The served tree uses the same layout the url backend reads, so one
// machine's cache can act as the remote repository of others:
//
//	GET /<group as path>/<project>/<version>/<item>   file content
//	GET /<group as path>/<project>/                   directory listing
//
// Listings are plain newline separated names, or an HTML index when the
// client accepts text/html. The server is read-only.
package server

import (
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures [New].
type Options struct {
	// Dir is the cache directory to serve. Required.
	Dir string

	// Logger receives one line per request. Nil discards.
	Logger *log.Logger

	// Registry enables GET /metrics and request counting. Nil disables.
	Registry *prometheus.Registry

	// Username and Password enable basic authentication on artifact routes.
	Username string
	Password string
}

// Server is the HTTP handler of a served cache directory.
type Server struct {
	dir      string
	logger   *log.Logger
	requests *prometheus.CounterVec
	router   chi.Router
}

// New creates a server for opts.Dir.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	s := &Server{dir: opts.Dir, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	})
	if opts.Registry != nil {
		s.requests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depot_server_requests_total",
				Help: "Number of artifact requests by status code.",
			},
			[]string{"code"},
		)
		opts.Registry.MustRegister(s.requests)
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if opts.Username != "" {
			r.Use(middleware.BasicAuth("depot", map[string]string{opts.Username: opts.Password}))
		}
		r.Get("/*", s.serve)
		r.Head("/*", s.serve)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status,
			"bytes", ww.BytesWritten(), "duration", time.Since(start), "id", middleware.GetReqID(r.Context()))
		if s.requests != nil && r.URL.Path != "/metrics" && r.URL.Path != "/healthz" {
			s.requests.WithLabelValues(strconv.Itoa(status)).Inc()
		}
	})
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	rel := path.Clean("/" + chi.URLParam(r, "*"))
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." || strings.HasPrefix(seg, ".") && seg != "" {
			http.NotFound(w, r)
			return
		}
	}
	full := filepath.Join(s.dir, filepath.FromSlash(rel))

	info, err := os.Stat(full)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if info.IsDir() {
		s.list(w, r, full)
		return
	}
	f, err := os.Open(full)
	if err != nil {
		http.Error(w, "unable to open item", http.StatusInternalServerError)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		http.Error(w, "unable to list directory", http.StatusInternalServerError)
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><body>\n")
		for _, n := range names {
			fmt.Fprintf(w, "<a href=\"%s\">%s</a><br>\n", (&url.URL{Path: n}).EscapedPath(), html.EscapeString(n))
		}
		fmt.Fprintf(w, "</body></html>\n")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, n := range names {
		fmt.Fprintln(w, strings.TrimSuffix(n, "/"))
	}
}
