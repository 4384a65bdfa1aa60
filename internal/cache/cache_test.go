package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeEntry(t *testing.T, dir, name string, size int, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	if age > 0 {
		mtime := time.Now().Add(-age)
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func TestScanMissingDir(t *testing.T) {
	entries, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("expected a missing directory to scan clean: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestScanFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "old.wav", 10, 2*time.Hour)
	writeEntry(t, dir, "new.mp3", 20, time.Hour)
	writeEntry(t, dir, "notes.txt", 5, 0)
	if err := os.Mkdir(filepath.Join(dir, "sub.wav"), 0o755); err != nil {
		t.Fatal(err)
	}

	entries, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 audio entries, got %d", len(entries))
	}
	if filepath.Base(entries[0].Path) != "old.wav" {
		t.Errorf("expected oldest first, got %q", entries[0].Path)
	}
	if entries[1].Size != 20 {
		t.Errorf("expected recorded size 20, got %d", entries[1].Size)
	}
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "a.wav", 100, 2*time.Hour)
	writeEntry(t, dir, "b.wav", 50, time.Hour)

	stats, err := Collect(dir)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if stats.Entries != 2 {
		t.Errorf("expected 2 entries, got %d", stats.Entries)
	}
	if stats.TotalBytes != 150 {
		t.Errorf("expected 150 bytes, got %d", stats.TotalBytes)
	}
	if !stats.Oldest.Before(stats.Newest) {
		t.Error("expected oldest before newest")
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "a.wav", 100, 0)
	writeEntry(t, dir, "b.mp3", 50, 0)
	keep := writeEntry(t, dir, "notes.txt", 5, 0)

	removed, reclaimed, err := Clear(dir)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 2 || reclaimed != 150 {
		t.Errorf("expected 2 files and 150 bytes removed, got %d and %d", removed, reclaimed)
	}

	// Non-audio files stay untouched.
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("expected non-audio file to survive: %v", err)
	}

	entries, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected an empty cache, got %d entries", len(entries))
	}
}

func TestPruneByAge(t *testing.T) {
	dir := t.TempDir()
	old := writeEntry(t, dir, "old.wav", 10, 48*time.Hour)
	fresh := writeEntry(t, dir, "fresh.wav", 10, time.Minute)

	removed, reclaimed, err := Prune(dir, 24*time.Hour, 0)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 || reclaimed != 10 {
		t.Errorf("expected 1 file and 10 bytes removed, got %d and %d", removed, reclaimed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expected the expired file to be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("expected the fresh file to survive: %v", err)
	}
}

func TestPruneBySize(t *testing.T) {
	dir := t.TempDir()
	oldest := writeEntry(t, dir, "a.wav", 100, 3*time.Hour)
	middle := writeEntry(t, dir, "b.wav", 100, 2*time.Hour)
	newest := writeEntry(t, dir, "c.wav", 100, time.Hour)

	// 300 bytes total, limit 150: the two oldest files must go.
	removed, reclaimed, err := Prune(dir, 0, 150)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 2 || reclaimed != 200 {
		t.Errorf("expected 2 files and 200 bytes removed, got %d and %d", removed, reclaimed)
	}
	for _, gone := range []string{oldest, middle} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Errorf("expected %q to be removed", gone)
		}
	}
	if _, err := os.Stat(newest); err != nil {
		t.Errorf("expected the newest file to survive: %v", err)
	}
}

func TestPruneDisabled(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "a.wav", 100, 48*time.Hour)

	removed, _, err := Prune(dir, 0, 0)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("expected no removals with both criteria disabled, got %d", removed)
	}
}
