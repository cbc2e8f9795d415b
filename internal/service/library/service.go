package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
)

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrAccessDenied  = errors.New("access denied")
)

// mimeTypes maps video file extensions to their MIME type.
var mimeTypes = map[string]string{
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/mp4",
	".3gp":  "video/3gpp",
	".ogv":  "video/ogg",
	".ts":   "video/mp2t",
	".mts":  "video/mp2t",
	".vob":  "video/dvd",
}

// browser-friendly formats listed before everything else
var preferredExtensions = map[string]struct{}{
	".mp4":  {},
	".webm": {},
	".m4v":  {},
	".mkv":  {},
}

type Config struct {
	MovieDir string
}

type service struct {
	movieDir string
}

func NewService(cfg *Config) *service {
	return &service{movieDir: cfg.MovieDir}
}

// List returns the movie filenames in the library, browser-supported
// formats first, each group sorted alphabetically.
func (s service) List() ([]string, error) {
	entries, err := os.ReadDir(s.movieDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}

		return nil, fmt.Errorf("failed to read movie dir: %w", err)
	}

	var preferred, other []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := mimeTypes[ext]; !ok {
			continue
		}

		if _, ok := preferredExtensions[ext]; ok {
			preferred = append(preferred, entry.Name())
		} else {
			other = append(other, entry.Name())
		}
	}

	slices.Sort(preferred)
	slices.Sort(other)

	return append(preferred, other...), nil
}

func (s service) MimeType(filename string) string {
	if mimeType, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mimeType
	}

	return "video/mp4"
}

// MoviePath resolves a library filename to a path on disk, rejecting
// anything that escapes the movie dir.
func (s service) MoviePath(filename string) (string, error) {
	path := filepath.Join(s.movieDir, filename)

	movieDir, err := filepath.Abs(s.movieDir)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(absPath, movieDir+string(os.PathSeparator)) {
		return "", ErrAccessDenied
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrMovieNotFound
		}

		return "", err
	}

	return path, nil
}
