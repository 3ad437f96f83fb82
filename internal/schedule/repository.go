package schedule

import (
	"log/slog"
	"sync"
)

// Repository holds the current Document for one schedule file. Reload
// replaces the document wholesale.
type Repository struct {
	path   string
	logger *slog.Logger

	mu  sync.RWMutex
	doc *Document
}

// NewRepository creates a repository for path with an empty document.
func NewRepository(path string, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{path: path, logger: logger, doc: Empty()}
}

// Path returns the schedule file path.
func (r *Repository) Path() string {
	return r.path
}

// Reload reads the file again. On failure the document is emptied and the
// error returned, so the UI falls back to its "no data" state.
func (r *Repository) Reload() error {
	doc, err := Load(r.path)
	if err != nil {
		r.logger.Error("failed to load service data", "path", r.path, "error", err)
		r.set(Empty())
		return err
	}
	doc.LogSkipped(r.logger, r.path)
	r.logger.Info("service data loaded", "path", r.path, "services", doc.Len())
	r.set(doc)
	return nil
}

// Document returns the current snapshot. It is never nil.
func (r *Repository) Document() *Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.doc
}

func (r *Repository) set(doc *Document) {
	r.mu.Lock()
	r.doc = doc
	r.mu.Unlock()
}
