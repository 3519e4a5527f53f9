package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/memoirs/pkg/media"
	"github.com/unowned-ai/memoirs/pkg/memoirs"
)

func TestMain(m *testing.M) {
	initCmd()
	os.Exit(m.Run())
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLIRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MEMOIRS_DB_PATH", filepath.Join(dir, "memoirs.db"))
	t.Setenv("MEMOIRS_MEDIA_DIR", filepath.Join(dir, "media"))
	t.Setenv("MEMOIRS_LOG_LEVEL", "error")

	out, err := run(t, "memoirs", "create", "--title", "Lake", "--content", "<p>cold water</p>", "--date", "2024-07-01")
	require.NoError(t, err)
	var created memoirs.Memoir
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.NotEmpty(t, created.ID)

	out, err = run(t, "memoirs", "get", created.ID)
	require.NoError(t, err)
	assert.Contains(t, out, `"categories": [`)
	assert.Contains(t, out, `"text"`)

	out, err = run(t, "export", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "title: Lake")

	_, err = run(t, "memoirs", "delete", "missing")
	assert.Error(t, err)
}

func TestLayoutByCount(t *testing.T) {
	out, err := run(t, "layout", "--count", "9", "--mode", "preview", "--width", "300")
	require.NoError(t, err)
	assert.Contains(t, out, `"count": 4`)
	assert.Contains(t, out, `"rects"`)
}

func TestGuessType(t *testing.T) {
	assert.Equal(t, media.TypeImage, guessType("/tmp/a.JPG"))
	assert.Equal(t, media.TypeVideo, guessType("clip.mp4"))
	assert.Equal(t, media.TypeUndefined, guessType("notes"))
}

func TestUnattached(t *testing.T) {
	list := []media.Asset{{ID: "a"}, {ID: "c"}}
	picked := []media.Asset{{ID: "c"}, {ID: "d"}}
	assert.Equal(t, []media.Asset{{ID: "d"}}, unattached(list, picked))
}

func TestParseCategories(t *testing.T) {
	cats, err := parseCategories("photo, text,")
	require.NoError(t, err)
	assert.Equal(t, []memoirs.Category{memoirs.CategoryPhoto, memoirs.CategoryText}, cats)

	_, err = parseCategories("stickers")
	assert.Error(t, err)
}
