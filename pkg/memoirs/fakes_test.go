package memoirs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/unowned-ai/memoirs/pkg/media"
)

var errAdapterDown = errors.New("adapter down")

// fakeRepo records calls and optionally fails every one of them. A non-zero
// insertDelay makes inserts slow.
type fakeRepo struct {
	mu          sync.Mutex
	fail        bool
	insertDelay time.Duration
	calls       []string
	rows        map[string]Memoir
}

func newFakeRepo(fail bool) *fakeRepo {
	return &fakeRepo{fail: fail, rows: map[string]Memoir{}}
}

func (r *fakeRepo) record(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, op)
	if r.fail {
		return errAdapterDown
	}
	return nil
}

func (r *fakeRepo) Insert(_ context.Context, m Memoir) error {
	time.Sleep(r.insertDelay)
	if err := r.record("insert:" + m.ID); err != nil {
		return err
	}
	r.mu.Lock()
	r.rows[m.ID] = m.Clone()
	r.mu.Unlock()
	return nil
}

func (r *fakeRepo) Update(_ context.Context, id string, p Patch) error {
	if err := r.record("update:" + id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	p.apply(&m)
	r.rows[id] = m
	return nil
}

func (r *fakeRepo) Upsert(_ context.Context, m Memoir) error {
	if err := r.record("upsert:" + m.ID); err != nil {
		return err
	}
	r.mu.Lock()
	r.rows[m.ID] = m.Clone()
	r.mu.Unlock()
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if err := r.record("delete:" + id); err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.rows, id)
	r.mu.Unlock()
	return nil
}

func (r *fakeRepo) SelectAll(_ context.Context) ([]Memoir, error) {
	if err := r.record("select"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Memoir, 0, len(r.rows))
	for _, m := range r.rows {
		out = append(out, m.Clone())
	}
	return out, nil
}

func (r *fakeRepo) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *fakeRepo) Row(id string) (Memoir, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	return m, ok
}

// fakeFiles remembers which asset ids it was asked to delete.
type fakeFiles struct {
	mu      sync.Mutex
	deleted []string
	fail    bool
}

func (f *fakeFiles) DeleteFiles(_ context.Context, assets []media.Asset) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range assets {
		f.deleted = append(f.deleted, a.ID)
	}
	if f.fail {
		return 0
	}
	return len(assets)
}

func (f *fakeFiles) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestService(t *testing.T, repo Repository, files FileRemover, opts ...ServiceOption) *Service {
	t.Helper()
	store := NewStore(WithClock(fixedClock))
	opts = append([]ServiceOption{WithServiceClock(fixedClock)}, opts...)
	svc := NewService(store, repo, files, zerolog.Nop(), opts...)
	t.Cleanup(svc.Wait)
	return svc
}

func image(id string) media.Asset {
	return media.Asset{ID: id, URI: "file:///tmp/" + id + ".jpg", Type: media.TypeImage}
}

func boolPtr(b bool) *bool { return &b }
