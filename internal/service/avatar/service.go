package avatar

import (
	"errors"
	"os"
	"path/filepath"
)

var ErrAvatarNotFound = errors.New("avatar not found")

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

type Config struct {
	AvatarDir string
	// Glyphs maps usernames to a fallback glyph shown when no uploaded
	// avatar exists.
	Glyphs map[string]string
	// DefaultGlyph is used for usernames missing from Glyphs.
	DefaultGlyph string
}

type service struct {
	avatarDir    string
	glyphs       map[string]string
	defaultGlyph string
}

func NewService(cfg *Config) *service {
	return &service{
		avatarDir:    cfg.AvatarDir,
		glyphs:       cfg.Glyphs,
		defaultGlyph: cfg.DefaultGlyph,
	}
}

// Resolve returns the display avatar and, when an uploaded image exists,
// its URL. Without an image the display falls back to the user's glyph.
func (s service) Resolve(username string) (string, *string) {
	if _, err := s.filePath(username); err == nil {
		url := "/avatars/" + username
		return url, &url
	}

	if glyph, ok := s.glyphs[username]; ok {
		return glyph, nil
	}

	return s.defaultGlyph, nil
}

// FilePath returns the on-disk path of the user's avatar image.
func (s service) FilePath(username string) (string, error) {
	return s.filePath(username)
}

func (s service) filePath(username string) (string, error) {
	for _, ext := range imageExtensions {
		path := filepath.Join(s.avatarDir, username+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", ErrAvatarNotFound
}
