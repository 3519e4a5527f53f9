package memoirs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/unowned-ai/memoirs/pkg/media"
)

// FileRemover deletes media files. It must not fail the caller: problems
// with individual files are its own to log.
type FileRemover interface {
	DeleteFiles(ctx context.Context, assets []media.Asset) int
}

// Outcome tells a RemoveMedia caller what happened to the memoir.
type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomeMediaRemoved means the memoir is still there with one fewer item.
	OutcomeMediaRemoved
	// OutcomeMemoirDeleted means the removed item was the memoir's last
	// content, so the whole memoir went with it.
	OutcomeMemoirDeleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMediaRemoved:
		return "media_removed"
	case OutcomeMemoirDeleted:
		return "memoir_deleted"
	default:
		return "none"
	}
}

// Service couples the in-memory Store to durable storage and media files.
//
// Every mutation is applied to the Store first and is visible to readers
// immediately. The matching write runs in the background; if it fails the
// failure is logged and the in-memory change stays. Nothing is rolled back and
// nothing is retried. Background writes run one at a time in the order they
// were issued, so an edit never reaches the database before its insert.
type Service struct {
	store  *Store
	repo   Repository
	files  FileRemover
	logger zerolog.Logger

	attachmentLimit int
	now             func() time.Time

	// order is held from a store change until its write is queued, so
	// writes are queued in the order the store applied them.
	order   sync.Mutex
	pending sync.WaitGroup
	mu      sync.Mutex
	last    chan struct{} // closed when the most recently issued write is done
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithAttachmentLimit sets the maximum number of media items per memoir.
func WithAttachmentLimit(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.attachmentLimit = n
		}
	}
}

// WithServiceClock overrides the clock used for updatedAt stamps.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store *Store, repo Repository, files FileRemover, logger zerolog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:           store,
		repo:            repo,
		files:           files,
		logger:          logger.With().Str("component", "memoirs").Logger(),
		attachmentLimit: DefaultAttachmentLimit,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store is the in-memory state the service mutates.
func (s *Service) Store() *Store {
	return s.store
}

// AttachmentLimit is the per-memoir media cap.
func (s *Service) AttachmentLimit() int {
	return s.attachmentLimit
}

// Init mirrors durable storage into memory. It is meant to run once at start,
// after the schema upgrade, and overwrites anything already in the store.
func (s *Service) Init(ctx context.Context) error {
	list, err := s.repo.SelectAll(ctx)
	if err != nil {
		return fmt.Errorf("load memoirs: %w", err)
	}
	s.store.Load(list)
	s.logger.Info().Int("count", len(list)).Msg("memoirs loaded")
	return nil
}

// Create adds a new memoir and inserts its row in the background.
func (s *Service) Create(ctx context.Context, d Draft) Memoir {
	s.order.Lock()
	defer s.order.Unlock()

	m := s.store.Add(d)
	s.background(ctx, func(ctx context.Context) {
		if err := s.repo.Insert(ctx, m); err != nil {
			s.logger.Error().Err(err).Str("memoir_id", m.ID).Msg("failed to persist new memoir")
		}
	})
	return m
}

// Edit merges p into memory and writes the changed fields in the background.
// Unknown ids are ignored.
func (s *Service) Edit(ctx context.Context, p Patch) (Memoir, bool) {
	if p.Empty() {
		return s.store.Get(p.ID)
	}
	if p.UpdatedAt == nil {
		p.UpdatedAt = Str(s.stamp())
	}

	s.order.Lock()
	defer s.order.Unlock()

	m, ok := s.store.Update(p)
	if !ok {
		return Memoir{}, false
	}

	s.persistPatch(ctx, p, "failed to persist memoir edit")
	return m, true
}

// DeleteMemoir removes the memoir from memory at once. Its media files and
// its row are deleted in the background; failures there are logged and the
// memoir stays gone from memory.
func (s *Service) DeleteMemoir(ctx context.Context, id string) bool {
	s.order.Lock()
	defer s.order.Unlock()

	m, _, ok := s.store.Modify(id, func(*Memoir) Change { return Removed })
	if !ok {
		return false
	}
	s.persistDelete(ctx, m.ID, m.Media)
	return true
}

// RemoveMedia takes one media item off a memoir. If that leaves the memoir
// with no media, no title and no content, the whole memoir is deleted
// instead. Unknown memoir or media ids are ignored.
func (s *Service) RemoveMedia(ctx context.Context, memoirID, mediaID string) (Outcome, bool) {
	stamp := s.stamp()

	s.order.Lock()
	defer s.order.Unlock()

	var removed media.Asset
	m, change, ok := s.store.Modify(memoirID, func(m *Memoir) Change {
		idx := media.IndexOf(m.Media, mediaID)
		if idx < 0 {
			return Unchanged
		}
		removed = m.Media[idx]
		m.Media = media.Without(m.Media, idx)
		if m.IsContentEmpty() {
			return Removed
		}
		m.UpdatedAt = Str(stamp)
		return Changed
	})
	switch {
	case !ok || change == Unchanged:
		return OutcomeNone, false
	case change == Removed:
		s.persistDelete(ctx, memoirID, []media.Asset{removed})
		return OutcomeMemoirDeleted, true
	}

	p := Patch{ID: memoirID, Media: &m.Media, UpdatedAt: m.UpdatedAt}
	s.background(ctx, func(ctx context.Context) {
		s.files.DeleteFiles(ctx, []media.Asset{removed})
		if err := s.repo.Update(ctx, memoirID, p); err != nil {
			s.logger.Error().Err(err).Str("memoir_id", memoirID).Str("media_id", mediaID).Msg("failed to persist media removal")
		}
	})
	return OutcomeMediaRemoved, true
}

// AttachMedia adds picked assets to a memoir, asking confirm when the pick
// would exceed the attachment limit. A declined pick leaves the memoir as it
// was and returns ErrAttachmentLimit.
//
// confirm runs without any lock held. If the memoir's media changed while it
// ran, the pick is applied to the current list with the answer already
// given; when no answer was asked for, an overflow then counts as declined.
func (s *Service) AttachMedia(ctx context.Context, memoirID string, picked []media.Asset, confirm ConfirmFunc) (Memoir, error) {
	snapshot, ok := s.store.Get(memoirID)
	if !ok {
		return Memoir{}, ErrNotFound
	}

	var answered bool
	answer := Cancel
	ask := func(current, picked []media.Asset, limit int) LimitDecision {
		if !answered && confirm != nil {
			answer = confirm(current, picked, limit)
		}
		answered = true
		return answer
	}
	replay := func([]media.Asset, []media.Asset, int) LimitDecision {
		return answer
	}

	next, dropped, err := Attach(snapshot.Media, picked, s.attachmentLimit, ask)
	if err != nil {
		return snapshot, err
	}

	stamp := s.stamp()

	s.order.Lock()
	defer s.order.Unlock()

	updated, change, ok := s.store.Modify(memoirID, func(m *Memoir) Change {
		if !sameAssets(m.Media, snapshot.Media) {
			next, dropped, err = Attach(m.Media, picked, s.attachmentLimit, replay)
			if err != nil {
				return Unchanged
			}
		}
		m.Media = next
		m.UpdatedAt = Str(stamp)
		return Changed
	})
	if !ok {
		return Memoir{}, ErrNotFound
	}
	if change == Unchanged {
		return updated, err
	}

	p := Patch{ID: memoirID, Media: &updated.Media, UpdatedAt: updated.UpdatedAt}
	s.background(ctx, func(ctx context.Context) {
		if len(dropped) > 0 {
			s.files.DeleteFiles(ctx, dropped)
		}
		if err := s.repo.Update(ctx, memoirID, p); err != nil {
			s.logger.Error().Err(err).Str("memoir_id", memoirID).Msg("failed to persist attached media")
		}
	})
	return updated, nil
}

// ToggleBookmark flips the bookmark in memory and upserts the full record in
// the background. A failed write does not flip it back.
func (s *Service) ToggleBookmark(ctx context.Context, id string) (Memoir, bool) {
	s.order.Lock()
	defer s.order.Unlock()

	m, ok := s.store.ToggleBookmark(id)
	if !ok {
		return Memoir{}, false
	}

	s.background(ctx, func(ctx context.Context) {
		if err := s.repo.Upsert(ctx, m); err != nil {
			s.logger.Error().Err(err).Str("memoir_id", id).Bool("bookmark", m.Bookmark).Msg("failed to persist bookmark")
		}
	})
	return m, true
}

// Wait blocks until every background write issued so far has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) persistDelete(ctx context.Context, id string, assets []media.Asset) {
	s.background(ctx, func(ctx context.Context) {
		if len(assets) > 0 {
			removed := s.files.DeleteFiles(ctx, assets)
			if removed < len(assets) {
				s.logger.Warn().Str("memoir_id", id).Int("removed", removed).Int("total", len(assets)).Msg("some media files were not deleted")
			}
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			s.logger.Error().Err(err).Str("memoir_id", id).Msg("failed to delete memoir row")
		}
	})
}

func (s *Service) persistPatch(ctx context.Context, p Patch, msg string) {
	s.background(ctx, func(ctx context.Context) {
		if err := s.repo.Update(ctx, p.ID, p); err != nil {
			s.logger.Error().Err(err).Str("memoir_id", p.ID).Msg(msg)
		}
	})
}

// background runs fn detached from ctx's cancellation: once issued, a write
// runs to completion or failure. fn starts after every earlier write is done.
func (s *Service) background(ctx context.Context, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	prev, done := s.last, make(chan struct{})
	s.last = done
	s.pending.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.pending.Done()
		defer close(done)
		if prev != nil {
			<-prev
		}
		fn(ctx)
	}()
}

func (s *Service) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
