package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultWorkers(t *testing.T) {
	n := DefaultWorkers(2480, 3508)
	if n < 1 {
		t.Fatalf("DefaultWorkers = %d, want >= 1", n)
	}
	t.Logf("workers for A4@300dpi: %d", n)

	// A page too large for available memory still yields one worker.
	if n := DefaultWorkers(100000, 100000); n < 1 {
		t.Errorf("huge page: workers = %d, want >= 1", n)
	}
}

func TestFindLatestScan(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.png")
	if err := os.WriteFile(old, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	recent := filepath.Join(dir, "recent.pdf")
	if err := os.WriteFile(recent, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}
	// Non-scan files never win, whatever their mtime.
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := FindLatestScan(dir)
	if err != nil {
		t.Fatalf("FindLatestScan failed: %v", err)
	}
	if got != recent {
		t.Errorf("latest scan %q, want %q", got, recent)
	}
}

func TestFindLatestScanEmptyDir(t *testing.T) {
	if _, err := FindLatestScan(t.TempDir()); err == nil {
		t.Error("expected error for directory without scans")
	}
}
