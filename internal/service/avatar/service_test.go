package avatar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice.png"), []byte("img"), 0o644))

	service := NewService(&Config{
		AvatarDir:    dir,
		Glyphs:       map[string]string{"bob": "🎬"},
		DefaultGlyph: "👤",
	})

	display, url := service.Resolve("alice")
	require.NotNil(t, url)
	assert.Equal(t, "/avatars/alice", *url)
	assert.Equal(t, "/avatars/alice", display)

	display, url = service.Resolve("bob")
	assert.Nil(t, url)
	assert.Equal(t, "🎬", display)

	display, url = service.Resolve("nobody")
	assert.Nil(t, url)
	assert.Equal(t, "👤", display)
}

func TestFilePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice.webp"), []byte("img"), 0o644))

	service := NewService(&Config{AvatarDir: dir})

	path, err := service.FilePath("alice")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "alice.webp"), path)

	_, err = service.FilePath("bob")
	assert.ErrorIs(t, err, ErrAvatarNotFound)
}
