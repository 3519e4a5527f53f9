package memoirs

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unowned-ai/memoirs/pkg/media"
)

// Store is the in-memory, authoritative set of memoirs that clients render
// from. It never talks to durable storage itself; Service couples it to a
// Repository and a file store. Readers always receive copies.
type Store struct {
	mu      sync.RWMutex
	memoirs map[string]Memoir
	now     func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the clock used to stamp new records.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		memoirs: make(map[string]Memoir),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the whole in-memory set with list. Nothing from the previous
// state survives.
func (s *Store) Load(list []Memoir) {
	next := make(map[string]Memoir, len(list))
	for _, m := range list {
		m = m.Clone()
		next[m.ID] = m
	}

	s.mu.Lock()
	s.memoirs = next
	s.mu.Unlock()
}

// Add builds a full record from d and inserts it. Persisting it is the
// caller's job.
func (s *Store) Add(d Draft) Memoir {
	stamp := s.stamp()

	m := Memoir{
		ID:           d.ID,
		Title:        clonePtr(d.Title),
		Content:      clonePtr(d.Content),
		Date:         clonePtr(d.Date),
		CreatedAt:    clonePtr(d.CreatedAt),
		UpdatedAt:    clonePtr(d.UpdatedAt),
		Media:        media.Ensure(d.Media),
		Bookmark:     d.Bookmark,
		TitleVisible: true,
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if d.TitleVisible != nil {
		m.TitleVisible = *d.TitleVisible
	}
	if m.CreatedAt == nil {
		m.CreatedAt = Str(stamp)
	}
	if m.UpdatedAt == nil {
		m.UpdatedAt = Str(stamp)
	}

	s.mu.Lock()
	s.memoirs[m.ID] = m
	s.mu.Unlock()

	return m.Clone()
}

// Update merges p into the memoir with p.ID. An unknown id is ignored and
// reported through the second return value only.
func (s *Store) Update(p Patch) (Memoir, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memoirs[p.ID]
	if !ok {
		return Memoir{}, false
	}
	p.apply(&m)
	s.memoirs[m.ID] = m
	return m.Clone(), true
}

// Change is what a Modify callback did to the memoir it was given.
type Change int

const (
	Unchanged Change = iota
	Changed
	Removed
)

// Modify runs fn on a copy of the memoir with id while holding the store
// lock, then stores the copy (Changed), drops the memoir (Removed) or keeps
// the original (Unchanged). It returns a copy of the memoir as fn left it.
// The bool is false for an unknown id; fn is not called then.
//
// fn must not call back into the store.
func (s *Store) Modify(id string, fn func(m *Memoir) Change) (Memoir, Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.memoirs[id]
	if !ok {
		return Memoir{}, Unchanged, false
	}

	m := cur.Clone()
	change := fn(&m)
	switch change {
	case Changed:
		m.ID = id
		s.memoirs[id] = m
	case Removed:
		delete(s.memoirs, id)
	default:
		return cur.Clone(), Unchanged, true
	}
	return m.Clone(), change, true
}

// Remove drops the memoir from memory only.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.memoirs[id]; !ok {
		return false
	}
	delete(s.memoirs, id)
	return true
}

// ToggleBookmark flips the bookmark flag in memory only.
func (s *Store) ToggleBookmark(id string) (Memoir, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memoirs[id]
	if !ok {
		return Memoir{}, false
	}
	m.Bookmark = !m.Bookmark
	s.memoirs[id] = m
	return m.Clone(), true
}

// Get returns a copy of the memoir with the given id.
func (s *Store) Get(id string) (Memoir, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.memoirs[id]
	if !ok {
		return Memoir{}, false
	}
	return m.Clone(), true
}

// Len is the number of memoirs in memory.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memoirs)
}

// List returns copies of all memoirs, newest first by nominal date, then by
// creation time, then by id.
func (s *Store) List() []Memoir {
	s.mu.RLock()
	out := make([]Memoir, 0, len(s.memoirs))
	for _, m := range s.memoirs {
		out = append(out, m.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if da, db := sortDate(a), sortDate(b); da != db {
			return da > db
		}
		if ca, cb := Deref(a.CreatedAt), Deref(b.CreatedAt); ca != cb {
			return ca > cb
		}
		return a.ID < b.ID
	})
	return out
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func sortDate(m Memoir) string {
	if m.Date != nil {
		return *m.Date
	}
	return Deref(m.CreatedAt)
}
