package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/memoirs/pkg/db"
	"github.com/unowned-ai/memoirs/pkg/media"
	"github.com/unowned-ai/memoirs/pkg/memoirs"
)

func setupRouter(t *testing.T, opts ...memoirs.ServiceOption) (http.Handler, *memoirs.Service) {
	t.Helper()
	conn, err := db.OpenDBConnection(":memory:", true, "NORMAL")
	require.NoError(t, err)
	require.NoError(t, db.UpgradeDB(conn, ":memory:", db.TargetSchemaVersion, zerolog.Nop()))

	files := media.NewFileStore(t.TempDir(), zerolog.Nop())
	svc := memoirs.NewService(memoirs.NewStore(), memoirs.NewSQLiteRepository(conn), files, zerolog.Nop(), opts...)
	t.Cleanup(func() {
		svc.Wait()
		conn.Close()
	})
	return NewRouter(svc, conn, zerolog.Nop()), svc
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	h, _ := setupRouter(t)

	rec := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	resp := decodeBody[healthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.DB)
}

func TestRequestIDIsEchoed(t *testing.T) {
	h, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc123", rec.Header().Get("X-Request-ID"))
}

func TestCreateGetUpdate(t *testing.T) {
	h, _ := setupRouter(t)

	rec := do(t, h, http.MethodPost, "/memoirs", map[string]any{
		"title":   "Lake",
		"content": "<p>cold</p>",
		"media":   []map[string]any{{"uri": "a.jpg", "type": "IMAGE"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[memoirs.Memoir](t, rec)
	require.Len(t, created.Media, 1)
	assert.Equal(t, media.TypeImage, created.Media[0].Type)
	assert.NotEmpty(t, created.Media[0].ID)

	rec = do(t, h, http.MethodGet, "/memoirs/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[memoirView](t, rec)
	assert.Equal(t, []memoirs.Category{memoirs.CategoryPhoto, memoirs.CategoryText}, view.Categories)

	rec = do(t, h, http.MethodPatch, "/memoirs/"+created.ID, map[string]any{"title": "River"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "River", memoirs.Deref(decodeBody[memoirs.Memoir](t, rec).Title))

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/memoirs/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPatch, "/memoirs/missing", map[string]any{"title": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPatch, "/memoirs/"+created.ID, map[string]any{"mood": "x"}).Code)
}

func TestCreateRejectsBadMedia(t *testing.T) {
	h, svc := setupRouter(t, memoirs.WithAttachmentLimit(1))

	rec := do(t, h, http.MethodPost, "/memoirs", map[string]any{"media": []map[string]any{{"type": "image"}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/memoirs", map[string]any{"media": []map[string]any{{"uri": "a"}, {"uri": "b"}}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 0, svc.Store().Len())
}

func TestListFilters(t *testing.T) {
	h, svc := setupRouter(t)
	ctx := context.Background()
	svc.Create(ctx, memoirs.Draft{Title: memoirs.Str("Hike"), Bookmark: true})
	svc.Create(ctx, memoirs.Draft{Title: memoirs.Str("Dinner")})

	all := decodeBody[[]memoirs.Memoir](t, do(t, h, http.MethodGet, "/memoirs", nil))
	assert.Len(t, all, 2)

	found := decodeBody[[]memoirs.Memoir](t, do(t, h, http.MethodGet, "/memoirs?q=hik", nil))
	require.Len(t, found, 1)
	assert.Equal(t, "Hike", memoirs.Deref(found[0].Title))

	marked := decodeBody[[]memoirs.Memoir](t, do(t, h, http.MethodGet, "/memoirs?category=bookmark", nil))
	assert.Len(t, marked, 1)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/memoirs?category=stickers", nil).Code)
}

func TestBookmarkAndDelete(t *testing.T) {
	h, svc := setupRouter(t)
	m := svc.Create(context.Background(), memoirs.Draft{Title: memoirs.Str("t")})

	rec := do(t, h, http.MethodPost, "/memoirs/"+m.ID+"/bookmark", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[memoirs.Memoir](t, rec).Bookmark)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/memoirs/"+m.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/memoirs/"+m.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/memoirs/"+m.ID+"/bookmark", nil).Code)
}

func TestRemoveMediaOutcomes(t *testing.T) {
	h, svc := setupRouter(t)
	ctx := context.Background()
	lone := svc.Create(ctx, memoirs.Draft{Media: []media.Asset{{ID: "a1", URI: "x"}}})
	pair := svc.Create(ctx, memoirs.Draft{Title: memoirs.Str("Hi"), Media: []media.Asset{{ID: "a", URI: "y"}, {ID: "b", URI: "z"}}})

	rec := do(t, h, http.MethodDelete, "/memoirs/"+pair.ID+"/media/a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "media_removed", decodeBody[removeMediaResponse](t, rec).Outcome)

	rec = do(t, h, http.MethodDelete, "/memoirs/"+lone.ID+"/media/a1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "memoir_deleted", decodeBody[removeMediaResponse](t, rec).Outcome)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/memoirs/"+pair.ID+"/media/nope", nil).Code)
}

func TestAttachMediaLimit(t *testing.T) {
	h, svc := setupRouter(t, memoirs.WithAttachmentLimit(2))
	m := svc.Create(context.Background(), memoirs.Draft{Media: []media.Asset{{ID: "a", URI: "a"}, {ID: "b", URI: "b"}}})
	svc.Wait()

	rec := do(t, h, http.MethodPost, "/memoirs/"+m.ID+"/media", map[string]any{"media": []map[string]any{{"uri": "c"}}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/memoirs/"+m.ID+"/media", map[string]any{
		"media":       []map[string]any{{"uri": "c"}},
		"replaceLast": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[memoirs.Memoir](t, rec)
	require.Len(t, got.Media, 2)
	assert.Equal(t, "a", got.Media[0].ID)
	assert.Equal(t, "c", got.Media[1].URI)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/memoirs/missing/media", map[string]any{"media": []map[string]any{{"uri": "c"}}}).Code)
}

func TestLayout(t *testing.T) {
	h, svc := setupRouter(t)
	list := make([]media.Asset, 9)
	for i := range list {
		list[i] = media.Asset{URI: "f"}
	}
	m := svc.Create(context.Background(), memoirs.Draft{Media: list})

	rec := do(t, h, http.MethodGet, "/memoirs/"+m.ID+"/layout?mode=preview&width=300", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int             `json:"count"`
		Mode  string          `json:"mode"`
		Tree  json.RawMessage `json:"tree"`
		Frame *struct {
			Rects []json.RawMessage `json:"rects"`
		} `json:"frame"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 9, resp.Count)
	assert.Equal(t, "preview", resp.Mode)
	assert.Contains(t, string(resp.Tree), `"badge":{"count":4}`)
	require.NotNil(t, resp.Frame)
	assert.Len(t, resp.Frame.Rects, 5)

	rec = do(t, h, http.MethodGet, "/memoirs/"+m.ID+"/layout?mode=preview&expanded=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"badge"`)
	assert.NotContains(t, rec.Body.String(), `"frame"`)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/memoirs/"+m.ID+"/layout?width=wide", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/memoirs/missing/layout", nil).Code)
}

func TestRecoveryReturns500(t *testing.T) {
	h := RequestID(zerolog.Nop())(Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeBody[errorResponse](t, rec).Error)
}

func TestDeleteLeavesFilesOutsideMediaDir(t *testing.T) {
	h, svc := setupRouter(t)

	outside := filepath.Join(t.TempDir(), "not-media.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))

	rec := do(t, h, http.MethodPost, "/memoirs", map[string]any{
		"title": "Sneaky",
		"media": []map[string]any{{"uri": outside, "type": "image"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[memoirs.Memoir](t, rec)

	rec = do(t, h, http.MethodDelete, "/memoirs/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	svc.Wait()

	assert.FileExists(t, outside)
	assert.Equal(t, 0, svc.Store().Len())
}
