package tui

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/memoirs/pkg/db"
	"github.com/unowned-ai/memoirs/pkg/layout"
	"github.com/unowned-ai/memoirs/pkg/media"
	"github.com/unowned-ai/memoirs/pkg/memoirs"
)

func setupService(t *testing.T) *memoirs.Service {
	t.Helper()
	conn, err := db.OpenDBConnection(":memory:", true, "NORMAL")
	require.NoError(t, err)
	require.NoError(t, db.UpgradeDB(conn, ":memory:", db.TargetSchemaVersion, zerolog.Nop()))

	files := media.NewFileStore(t.TempDir(), zerolog.Nop())
	svc := memoirs.NewService(memoirs.NewStore(), memoirs.NewSQLiteRepository(conn), files, zerolog.Nop())
	t.Cleanup(func() {
		svc.Wait()
		conn.Close()
	})
	return svc
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds keys to m and returns the model and the last command.
func press(t *testing.T, m model, keys ...string) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(model)
	}
	return m, cmd
}

func loaded(t *testing.T, svc *memoirs.Service) model {
	t.Helper()
	m := initModel(svc, nil)
	next, _ := m.Update(listMemoirs(svc)())
	m = next.(model)
	next, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(model)
}

func TestRenderGridSingle(t *testing.T) {
	out := renderGrid(layout.ResolveCount(1, layout.Preview, false), 20, -1)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 10)
	assert.True(t, strings.HasPrefix(lines[0], "┌"))
	assert.Contains(t, out, "1")
	assert.NotContains(t, out, "╔")
}

func TestRenderGridSelectedAndBadge(t *testing.T) {
	out := renderGrid(layout.ResolveCount(7, layout.Preview, false), 60, 0)

	assert.Contains(t, out, "╔")
	assert.Contains(t, out, "+2")
}

func TestRenderGridEmpty(t *testing.T) {
	assert.Equal(t, "", renderGrid(layout.ResolveCount(0, layout.Full, false), 40, -1))
	assert.Equal(t, "", renderGrid(layout.ResolveCount(2, layout.Full, false), 3, -1))
}

func TestNavigation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	svc.Create(ctx, memoirs.Draft{Title: memoirs.Str("older"), Date: memoirs.Str("2024-01-01")})
	svc.Create(ctx, memoirs.Draft{Title: memoirs.Str("newer"), Date: memoirs.Str("2024-02-01"),
		Media: []media.Asset{{ID: "a", URI: "a.jpg", Type: media.TypeImage}}})

	m := loaded(t, svc)
	require.Len(t, m.list, 2)
	assert.Equal(t, "newer", m.list[0].DisplayTitle())

	m, _ = press(t, m, "l")
	assert.Equal(t, focusMedia, m.columnFocus)
	m, _ = press(t, m, "h", "j")
	assert.Equal(t, focusList, m.columnFocus)
	assert.Equal(t, 1, m.cursor)

	// No media on the second memoir, focus stays on the list.
	m, _ = press(t, m, "l")
	assert.Equal(t, focusList, m.columnFocus)

	m, _ = press(t, m, "j")
	assert.Equal(t, 1, m.cursor)
	assert.Contains(t, m.View(), "older")
}

func TestToggleBookmarkKey(t *testing.T) {
	svc := setupService(t)
	created := svc.Create(context.Background(), memoirs.Draft{Title: memoirs.Str("t")})
	m := loaded(t, svc)

	_, cmd := press(t, m, "b")
	require.NotNil(t, cmd)
	assert.Equal(t, statusMsg("bookmarked t"), cmd())

	got, ok := svc.Store().Get(created.ID)
	require.True(t, ok)
	assert.True(t, got.Bookmark)
}

func TestRemoveMediaFromGrid(t *testing.T) {
	svc := setupService(t)
	created := svc.Create(context.Background(), memoirs.Draft{Title: memoirs.Str("Hi"),
		Media: []media.Asset{{ID: "a", URI: "a.jpg"}, {ID: "b", URI: "b.jpg"}}})
	m := loaded(t, svc)

	m, _ = press(t, m, "l", "j", "d")
	assert.True(t, m.deleting)
	assert.Contains(t, m.View(), "Remove Media")

	m, cmd := press(t, m, "k", "enter")
	assert.False(t, m.deleting)
	require.NotNil(t, cmd)
	assert.Equal(t, statusMsg("media item removed"), cmd())

	got, ok := svc.Store().Get(created.ID)
	require.True(t, ok)
	require.Len(t, got.Media, 1)
	assert.Equal(t, "a", got.Media[0].ID)
}

func TestDeleteMemoirDefaultsToNo(t *testing.T) {
	svc := setupService(t)
	svc.Create(context.Background(), memoirs.Draft{Title: memoirs.Str("keep")})
	m := loaded(t, svc)

	m, cmd := press(t, m, "d", "enter")
	assert.Nil(t, cmd)
	assert.False(t, m.deleting)
	assert.Equal(t, 1, svc.Store().Len())

	_, cmd = press(t, m, "d", "k", "enter")
	require.NotNil(t, cmd)
	assert.Equal(t, statusMsg("memoir deleted"), cmd())
	assert.Equal(t, 0, svc.Store().Len())
}

func TestSearchFiltersList(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	svc.Create(ctx, memoirs.Draft{Title: memoirs.Str("Hike")})
	svc.Create(ctx, memoirs.Draft{Title: memoirs.Str("Dinner")})
	m := loaded(t, svc)

	m, _ = press(t, m, "/")
	require.True(t, m.searching)
	m, _ = press(t, m, "h", "i", "k", "e")
	m, cmd := press(t, m, "enter")
	assert.False(t, m.searching)
	assert.Equal(t, "hike", m.query)

	next, _ := m.Update(cmd())
	m = next.(model)
	require.Len(t, m.list, 1)
	assert.Equal(t, "Hike", m.list[0].DisplayTitle())

	m, cmd = press(t, m, "/", "esc")
	next, _ = m.Update(cmd())
	m = next.(model)
	assert.Len(t, m.list, 2)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd..", truncate("abcdefghij", 6))

	out := truncate("Été à Möllner Straße", 8)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "Été à ..", out)

	wide := truncate("夏の思い出の写真", 7)
	assert.True(t, utf8.ValidString(wide))
	assert.LessOrEqual(t, lipgloss.Width(wide), 7)
	assert.True(t, strings.HasSuffix(wide, ".."))
}

func TestMarqueeTextKeepsRunesWhole(t *testing.T) {
	m := model{}
	title := "Ünïcödé títlé for the lake"
	for offset := 0; offset < 40; offset++ {
		m.marqueeOffset = offset
		out := m.marqueeText(title, 10)
		require.True(t, utf8.ValidString(out), "offset %d", offset)
		assert.LessOrEqual(t, lipgloss.Width(out), 10, "offset %d", offset)
	}
	assert.Equal(t, "fits", m.marqueeText("fits", 10))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:04", formatDuration(4))
	assert.Equal(t, "1:05", formatDuration(65.2))
}
