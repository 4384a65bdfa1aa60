// Package cache maintains the directory of generated audio files:
// reporting its size and pruning old entries. It never touches files the
// engines did not produce.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// audioExtensions lists the file types engines write.
var audioExtensions = map[string]bool{
	".wav": true,
	".mp3": true,
}

// Entry describes one cached audio file.
type Entry struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Stats summarizes the cache directory.
type Stats struct {
	Dir        string
	Entries    int
	TotalBytes int64
	Oldest     time.Time
	Newest     time.Time
}

// Scan lists the audio files in dir, oldest first. A missing directory is
// an empty cache, not an error.
func Scan(dir string) ([]Entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to read cache directory: %w", err)
	}

	var entries []Entry
	for _, item := range items {
		if item.IsDir() || !audioExtensions[filepath.Ext(item.Name())] {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Path:    filepath.Join(dir, item.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ModTime.Before(entries[j].ModTime)
	})
	return entries, nil
}

// Collect computes stats for the cache directory.
func Collect(dir string) (Stats, error) {
	entries, err := Scan(dir)
	if err != nil {
		return Stats{}, err
	}

	s := Stats{Dir: dir, Entries: len(entries)}
	for _, e := range entries {
		s.TotalBytes += e.Size
	}
	if len(entries) > 0 {
		s.Oldest = entries[0].ModTime
		s.Newest = entries[len(entries)-1].ModTime
	}
	return s, nil
}

// Clear removes every cached audio file in dir. Returns the number of
// files removed and the bytes reclaimed.
func Clear(dir string) (int, int64, error) {
	entries, err := Scan(dir)
	if err != nil {
		return 0, 0, err
	}

	var removed int
	var reclaimed int64
	for _, e := range entries {
		if err := os.Remove(e.Path); err != nil {
			log.Warn("Could not remove cached audio file", "path", e.Path, "error", err)
			continue
		}
		removed++
		reclaimed += e.Size
	}
	return removed, reclaimed, nil
}

// Prune removes cached audio files older than maxAge and, after that,
// the oldest files until the directory fits within maxBytes. A zero
// maxAge or maxBytes disables that criterion. Returns the number of
// files removed and the bytes reclaimed.
func Prune(dir string, maxAge time.Duration, maxBytes int64) (int, int64, error) {
	entries, err := Scan(dir)
	if err != nil {
		return 0, 0, err
	}

	var removed int
	var reclaimed int64
	var total int64
	for _, e := range entries {
		total += e.Size
	}

	cutoff := time.Now().Add(-maxAge)
	for _, e := range entries {
		expired := maxAge > 0 && e.ModTime.Before(cutoff)
		oversize := maxBytes > 0 && total > maxBytes
		if !expired && !oversize {
			continue
		}
		if err := os.Remove(e.Path); err != nil {
			log.Warn("Could not remove cached audio file", "path", e.Path, "error", err)
			continue
		}
		removed++
		reclaimed += e.Size
		total -= e.Size
	}

	return removed, reclaimed, nil
}
