package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLibrary(t *testing.T, filenames ...string) *service {
	t.Helper()

	dir := t.TempDir()
	for _, name := range filenames {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	return NewService(&Config{MovieDir: dir})
}

func TestList(t *testing.T) {
	library := newTestLibrary(t, "z.avi", "b.mp4", "a.webm", "notes.txt", "c.mov")

	movies, err := library.List()
	require.NoError(t, err)

	// browser-friendly formats first, both groups sorted
	assert.Equal(t, []string{"a.webm", "b.mp4", "c.mov", "z.avi"}, movies)
}

func TestListMissingDir(t *testing.T) {
	library := NewService(&Config{MovieDir: filepath.Join(t.TempDir(), "nope")})

	movies, err := library.List()
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestMimeType(t *testing.T) {
	library := newTestLibrary(t)

	assert.Equal(t, "video/x-matroska", library.MimeType("a.MKV"))
	assert.Equal(t, "video/webm", library.MimeType("a.webm"))
	assert.Equal(t, "video/mp4", library.MimeType("unknown.bin"))
}

func TestMoviePath(t *testing.T) {
	library := newTestLibrary(t, "a.mp4")

	path, err := library.MoviePath("a.mp4")
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = library.MoviePath("missing.mp4")
	assert.ErrorIs(t, err, ErrMovieNotFound)

	_, err = library.MoviePath("../../etc/passwd")
	assert.ErrorIs(t, err, ErrAccessDenied)
}
