package session

import (
	"sync"

	"github.com/de-tools/data-lens/pkg/models/domain"
	"github.com/de-tools/data-lens/pkg/services/report"
)

// Session is the explicit per-session context object: the loaded dataset,
// its cleaned form, and the pending report records. One instance per logical
// session; concurrent sessions each own their own and never share state.
type Session struct {
	mu        sync.Mutex
	name      string
	raw       *domain.Table
	cleaned   *domain.Table
	isCleaned bool
	busy      bool
	store     *report.Store
}

func New(store *report.Store) *Session {
	return &Session{store: store}
}

// LoadDataset installs a newly uploaded table. This is the dataset lifecycle
// boundary: both report buckets are cleared, and the cleaned view starts as
// the raw table until an explicit clean pass runs.
func (s *Session) LoadDataset(name string, t *domain.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.name = name
	s.raw = t
	s.cleaned = t
	s.isCleaned = false
	s.store.Reset()
}

// SetCleaned installs the cleaned table produced by the cleaning pass.
func (s *Session) SetCleaned(t *domain.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cleaned = t
	s.isCleaned = true
}

// Dataset returns the table analysis should run on: the cleaned view, which
// equals the raw upload until cleaning has happened.
func (s *Session) Dataset() (*domain.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cleaned == nil {
		return nil, domain.ErrNoDataset
	}
	return s.cleaned, nil
}

// Raw returns the unmodified upload.
func (s *Session) Raw() (*domain.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.raw == nil {
		return nil, domain.ErrNoDataset
	}
	return s.raw, nil
}

// Name returns the uploaded file name.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// IsCleaned reports whether the clean pass has run for this dataset.
func (s *Session) IsCleaned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isCleaned
}

// Store exposes the session's report record store.
func (s *Session) Store() *report.Store {
	return s.store
}

// BeginOp marks the session busy for the duration of one user-triggered
// action. The session model is sequential: overlapping triggers are refused
// with ErrBusy rather than queued.
func (s *Session) BeginOp() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return domain.ErrBusy
	}
	s.busy = true
	return nil
}

// EndOp releases the busy marker set by BeginOp.
func (s *Session) EndOp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}
