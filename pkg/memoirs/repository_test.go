package memoirs

import (
	"context"
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/memoirs/pkg/db"
	"github.com/unowned-ai/memoirs/pkg/media"
)

func setupTestDB(t *testing.T, driver string) *sql.DB {
	t.Helper()
	testDB, err := db.Open(":memory:", db.Options{Driver: driver, WAL: true, Sync: "NORMAL"})
	require.NoError(t, err)
	t.Cleanup(func() { testDB.Close() })
	require.NoError(t, db.UpgradeDB(testDB, ":memory:", db.TargetSchemaVersion, zerolog.Nop()))
	return testDB
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	for _, driver := range []string{db.DriverCGO, db.DriverPure} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			repo := NewSQLiteRepository(setupTestDB(t, driver))

			seconds := 12.5
			m := Memoir{
				ID:        "m1",
				Title:     Str("Beach"),
				Content:   Str("<p>sand</p>"),
				Date:      Str("2024-04-30"),
				CreatedAt: Str("2024-04-30T10:00:00Z"),
				UpdatedAt: Str("2024-04-30T10:00:00Z"),
				Media: []media.Asset{
					{ID: "a", URI: "file:///x/a.jpg", Type: media.TypeImage},
					{ID: "b", URI: "file:///x/b.mov", Type: media.TypeVideo, Duration: &seconds},
				},
				Bookmark:     true,
				TitleVisible: false,
			}
			require.NoError(t, repo.Insert(ctx, m))

			got, err := repo.Get(ctx, "m1")
			require.NoError(t, err)
			assert.Equal(t, m, got)
		})
	}
}

func TestSQLiteRepositoryNullableFields(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t, db.DriverCGO))

	require.NoError(t, repo.Insert(ctx, Memoir{ID: "bare", TitleVisible: true}))

	got, err := repo.Get(ctx, "bare")
	require.NoError(t, err)
	assert.Nil(t, got.Title)
	assert.Nil(t, got.Content)
	assert.Nil(t, got.Date)
	assert.NotNil(t, got.Media)
	assert.Empty(t, got.Media)
	assert.True(t, got.TitleVisible)
}

func TestSQLiteRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t, db.DriverCGO))
	require.NoError(t, repo.Insert(ctx, Memoir{ID: "m1", Title: Str("old"), Content: Str("keep"), Media: []media.Asset{{ID: "a", URI: "x"}}}))

	list := []media.Asset{}
	require.NoError(t, repo.Update(ctx, "m1", Patch{Title: Str("new"), Media: &list, Bookmark: boolPtr(true)}))

	got, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "new", Deref(got.Title))
	assert.Equal(t, "keep", Deref(got.Content))
	assert.Empty(t, got.Media)
	assert.True(t, got.Bookmark)

	assert.NoError(t, repo.Update(ctx, "m1", Patch{}), "empty patch is a no-op")

	err = repo.Update(ctx, "missing", Patch{Title: Str("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t, db.DriverPure))

	m := Memoir{ID: "m1", Title: Str("t"), CreatedAt: Str("2024-01-01T00:00:00Z")}
	require.NoError(t, repo.Upsert(ctx, m))

	m.Bookmark = true
	m.CreatedAt = Str("2030-01-01T00:00:00Z")
	require.NoError(t, repo.Upsert(ctx, m))

	got, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, got.Bookmark)
	assert.Equal(t, "2024-01-01T00:00:00Z", Deref(got.CreatedAt), "upsert keeps the original creation time")
}

func TestSQLiteRepositoryDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t, db.DriverCGO))
	require.NoError(t, repo.Insert(ctx, Memoir{ID: "m1"}))

	require.NoError(t, repo.Delete(ctx, "m1"))
	require.NoError(t, repo.Delete(ctx, "m1"))

	_, err := repo.Get(ctx, "m1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteRepositorySelectAllOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t, db.DriverCGO))

	require.NoError(t, repo.Insert(ctx, Memoir{ID: "old", Date: Str("2023-01-01"), CreatedAt: Str("2024-06-01T00:00:00Z")}))
	require.NoError(t, repo.Insert(ctx, Memoir{ID: "new", Date: Str("2024-02-01"), CreatedAt: Str("2024-02-01T00:00:00Z")}))
	require.NoError(t, repo.Insert(ctx, Memoir{ID: "undated", CreatedAt: Str("2023-06-01T00:00:00Z")}))

	list, err := repo.SelectAll(ctx)
	require.NoError(t, err)
	got := make([]string, len(list))
	for i, m := range list {
		got[i] = m.ID
	}
	assert.Equal(t, []string{"new", "undated", "old"}, got)
}

func TestServiceOverSQLite(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t, db.DriverCGO))
	svc := newTestService(t, repo, &fakeFiles{})

	m := svc.Create(ctx, Draft{Title: Str("persisted"), Media: []media.Asset{image("a"), image("b")}})
	svc.Wait()
	svc.ToggleBookmark(ctx, m.ID)
	svc.Wait()
	svc.RemoveMedia(ctx, m.ID, "a")
	svc.Wait()

	fresh := newTestService(t, repo, &fakeFiles{})
	require.NoError(t, fresh.Init(ctx))
	got, ok := fresh.Store().Get(m.ID)
	require.True(t, ok)
	assert.True(t, got.Bookmark)
	assert.Equal(t, []string{"b"}, ids(got.Media))
	assert.Equal(t, svc.Store().List(), fresh.Store().List())
}
