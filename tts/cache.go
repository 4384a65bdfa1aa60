package tts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// CacheNamer derives output file paths for generated audio. It is the one
// piece of logic shared by every engine: a non-empty stem maps to the same
// path every time, an empty stem maps to a fresh unique path.
type CacheNamer struct {
	Dir string // cache directory, created on demand
	Ext string // file extension without the dot, e.g. "wav"
}

// FileName returns the output path for the given stem. With a non-empty
// stem the result is a pure function of (Dir, stem, Ext). With an empty
// stem a UUID-based name is generated, so concurrent callers always get
// distinct paths.
func (n CacheNamer) FileName(stem string) string {
	if stem == "" {
		stem = uuid.NewString()
	}
	return filepath.Join(n.Dir, fmt.Sprintf("%s.%s", stem, n.Ext))
}

// EnsureDir creates the cache directory if it does not exist.
func (n CacheNamer) EnsureDir() error {
	if err := os.MkdirAll(n.Dir, 0o755); err != nil {
		return fmt.Errorf("unable to create cache directory: %w", err)
	}
	return nil
}
