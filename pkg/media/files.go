package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrUnsupportedURI is returned when a URI does not point at a local file.
var ErrUnsupportedURI = errors.New("media uri is not a local file")

// FileStore owns the directory where captured and imported media files live.
type FileStore struct {
	root   string
	logger zerolog.Logger
}

// NewFileStore returns a FileStore rooted at dir. The directory is created on
// first import, not here.
func NewFileStore(dir string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		root:   dir,
		logger: logger.With().Str("component", "media").Logger(),
	}
}

// Root is the media directory.
func (f *FileStore) Root() string {
	return f.root
}

// LocalPath resolves a media URI to a filesystem path. Platform handles such
// as ph:// or content:// have no local path.
func LocalPath(uri string) (string, error) {
	switch {
	case uri == "":
		return "", ErrUnsupportedURI
	case strings.HasPrefix(uri, "file://"):
		return strings.TrimPrefix(uri, "file://"), nil
	case strings.Contains(uri, "://"):
		return "", fmt.Errorf("%w: %s", ErrUnsupportedURI, uri)
	default:
		return uri, nil
	}
}

// DeleteFiles removes the files behind assets. Every asset is attempted; a
// failure is logged and the next asset is tried. Files that are already gone
// count as deleted. Only files inside the media directory are removed; other
// paths are skipped and logged. It returns how many assets no longer have a
// file.
func (f *FileStore) DeleteFiles(ctx context.Context, assets []Asset) int {
	removed := 0
	for _, a := range assets {
		if err := ctx.Err(); err != nil {
			f.logger.Warn().Err(err).Msg("media cleanup interrupted")
			return removed
		}

		path, err := LocalPath(a.URI)
		if err != nil {
			f.logger.Debug().Str("media_id", a.ID).Str("uri", a.URI).Msg("skipping non-local media")
			continue
		}
		path, ok := f.within(path)
		if !ok {
			f.logger.Warn().Str("media_id", a.ID).Str("uri", a.URI).Str("root", f.root).Msg("skipping media file outside the media directory")
			continue
		}

		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			f.logger.Error().Err(err).Str("media_id", a.ID).Str("path", path).Msg("failed to delete media file")
			continue
		}
		removed++
	}
	return removed
}

// within resolves path against the media directory and reports whether the
// result lies inside it. Relative paths are taken relative to the root.
func (f *FileStore) within(path string) (string, bool) {
	root, err := filepath.Abs(f.root)
	if err != nil {
		return "", false
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return path, true
}

// Import copies the file at srcPath into the media directory under a fresh
// UUID name, keeping the extension, and returns the resulting asset.
func (f *FileStore) Import(ctx context.Context, srcPath string, t Type) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}

	if err := os.MkdirAll(f.root, 0o755); err != nil {
		return Asset{}, fmt.Errorf("create media directory '%s': %w", f.root, err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return Asset{}, fmt.Errorf("open media source: %w", err)
	}
	defer src.Close()

	id := uuid.NewString()
	dstPath := filepath.Join(f.root, id+strings.ToLower(filepath.Ext(srcPath)))

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Asset{}, fmt.Errorf("create media file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return Asset{}, fmt.Errorf("copy media file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dstPath)
		return Asset{}, fmt.Errorf("close media file: %w", err)
	}

	f.logger.Debug().Str("media_id", id).Str("path", dstPath).Msg("imported media file")

	return Asset{ID: id, URI: dstPath, Type: t}, nil
}
