// Package fakecompanion serves an in-memory copy of Companion's
// custom-variable API. It backs the rehearsal server in cmd/fakecompanion and
// the client tests.
package fakecompanion

import (
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Write is one recorded set operation.
type Write struct {
	Variable string
	Value    string
	Method   string
}

// Store holds variable values and a log of writes.
type Store struct {
	mu      sync.Mutex
	values  map[string]string
	writes  []Write
	failing map[string]int
}

// NewStore returns a store seeded with the given values.
func NewStore(seed map[string]string) *Store {
	s := &Store{values: map[string]string{}, failing: map[string]int{}}
	for k, v := range seed {
		s.values[k] = v
	}
	return s
}

// Get returns a variable's value.
func (s *Store) Get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	return v, ok
}

// Values returns a copy of all variables.
func (s *Store) Values() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Names returns the variable names in sorted order.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Writes returns the recorded writes in arrival order.
func (s *Store) Writes() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Write, len(s.writes))
	copy(out, s.writes)
	return out
}

// Fail makes requests for variable answer with status until cleared with
// status 0.
func (s *Store) Fail(variable string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failing, variable)
		return
	}
	s.failing[variable] = status
}

func (s *Store) set(w Write) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.failing[w.Variable]; ok {
		return status
	}
	s.values[w.Variable] = w.Value
	s.writes = append(s.writes, w)
	return http.StatusOK
}

func (s *Store) get(name string) (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.failing[name]; ok {
		return "", status
	}
	v, ok := s.values[name]
	if !ok {
		return "", http.StatusNotFound
	}
	return v, http.StatusOK
}

// NewHandler returns the HTTP API for store. A nil logger disables request
// logging.
func NewHandler(store *Store, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if logger != nil {
		r.Use(requestLogger(logger))
	}

	r.Route("/api/custom-variable/{name}", func(r chi.Router) {
		r.Get("/value", func(w http.ResponseWriter, req *http.Request) {
			name := chi.URLParam(req, "name")
			if req.URL.Query().Has("value") {
				writeStatus(w, store.set(Write{Variable: name, Value: req.URL.Query().Get("value"), Method: http.MethodGet}))
				return
			}
			value, status := store.get(name)
			if status != http.StatusOK {
				http.Error(w, http.StatusText(status), status)
				return
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = io.WriteString(w, value)
		})
		r.Post("/value", func(w http.ResponseWriter, req *http.Request) {
			name := chi.URLParam(req, "name")
			if !req.URL.Query().Has("value") {
				http.Error(w, "missing value parameter", http.StatusBadRequest)
				return
			}
			writeStatus(w, store.set(Write{Variable: name, Value: req.URL.Query().Get("value"), Method: http.MethodPost}))
		})
	})
	return r
}

func writeStatus(w http.ResponseWriter, status int) {
	if status != http.StatusOK {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", ww.Status(),
			)
		})
	}
}
