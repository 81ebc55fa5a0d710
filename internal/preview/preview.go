// Package preview serves a staged local file over loopback HTTP so it can
// be played back before the upload completes. A Handle is a revocable
// reference: while live, the file is reachable at the handle's URL; after
// Revoke it is gone. Callers own the revoke exactly once per handle.
package preview

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Server registers staged files and serves them at /preview/{id}.
type Server struct {
	mu       sync.Mutex
	files    map[string]entry
	listener net.Listener
	srv      *http.Server
	baseURL  string
	closed   bool
}

type entry struct {
	path        string
	contentType string
}

// Handle is a live, revocable reference to a staged file.
type Handle struct {
	id     string
	url    string
	server *Server
	once   sync.Once
}

// URL returns the loopback address the file is served at.
func (h *Handle) URL() string { return h.url }

// Revoke releases the handle. Safe to call more than once; only the first
// call has effect.
func (h *Handle) Revoke() {
	h.once.Do(func() {
		h.server.remove(h.id)
	})
}

// NewServer starts a preview server on addr (host:port, port 0 picks a
// free one).
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("preview listen: %w", err)
	}

	s := &Server{
		files:    make(map[string]entry),
		listener: listener,
		baseURL:  "http://" + listener.Addr().String(),
	}

	r := chi.NewRouter()
	r.Get("/preview/{id}", s.serveFile)

	s.srv = &http.Server{Handler: r}
	go s.srv.Serve(listener)

	return s, nil
}

// Create registers the file at path and returns a live handle for it.
func (s *Server) Create(path, contentType string) (*Handle, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("preview source: %w", err)
	}

	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("preview server closed")
	}
	s.files[id] = entry{path: path, contentType: contentType}

	return &Handle{
		id:     id,
		url:    s.baseURL + "/preview/" + id,
		server: s,
	}, nil
}

func (s *Server) remove(id string) {
	s.mu.Lock()
	delete(s.files, id)
	s.mu.Unlock()
}

// Live reports how many handles are currently registered.
func (s *Server) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Close revokes all outstanding handles and shuts the server down.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	s.files = make(map[string]entry)
	s.mu.Unlock()
	return s.srv.Close()
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	e, ok := s.files[id]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(e.path)
	if err != nil {
		http.Error(w, "preview source unavailable", http.StatusNotFound)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		http.Error(w, "preview source unavailable", http.StatusInternalServerError)
		return
	}

	if e.contentType != "" {
		w.Header().Set("Content-Type", e.contentType)
	}
	// ServeContent handles Range requests, which video playback relies on
	http.ServeContent(w, r, e.path, stat.ModTime(), f)
}
