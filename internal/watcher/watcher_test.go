package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// eventRecorder collects watcher callbacks for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *eventRecorder) record(kind, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+":"+path)
}

func (r *eventRecorder) has(want string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == want {
			return true
		}
	}
	return false
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatcher(t *testing.T) (string, *eventRecorder) {
	t.Helper()
	vaultDir := t.TempDir()
	rec := &eventRecorder{}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go Watch(ctx, vaultDir, logger, rec.record)

	time.Sleep(100 * time.Millisecond)
	return vaultDir, rec
}

func TestWatcher_NewFileAnnounced(t *testing.T) {
	vaultDir, rec := startWatcher(t)

	_ = os.WriteFile(filepath.Join(vaultDir, "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:new.md")
	}, "expected created:new.md callback")
}

func TestWatcher_NewDirWatched(t *testing.T) {
	vaultDir, rec := startWatcher(t)

	subDir := filepath.Join(vaultDir, "subdir")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(200 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deep.canvas"), []byte(`{"title":"Deep"}`), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:subdir/deep.canvas")
	}, "file in new subdir not announced")
}

func TestWatcher_DeleteAnnounced(t *testing.T) {
	vaultDir, rec := startWatcher(t)

	p := filepath.Join(vaultDir, "del.md")
	_ = os.WriteFile(p, []byte("# Delete Me"), 0o644)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:del.md")
	}, "precondition: create not observed")

	_ = os.Remove(p)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("deleted:del.md")
	}, "expected deleted:del.md callback")
}

func TestWatcher_RenameAnnouncesBothPaths(t *testing.T) {
	vaultDir, rec := startWatcher(t)

	_ = os.WriteFile(filepath.Join(vaultDir, "old.md"), []byte("# Rename"), 0o644)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:old.md")
	}, "precondition: create not observed")

	_ = os.Rename(filepath.Join(vaultDir, "old.md"), filepath.Join(vaultDir, "renamed.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("deleted:old.md") && rec.has("created:renamed.md")
	}, "rename should surface as deleted old path + created new path")
}

func TestWatcher_IgnoresNonDocuments(t *testing.T) {
	vaultDir, rec := startWatcher(t)

	_ = os.WriteFile(filepath.Join(vaultDir, "scratch.txt"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(vaultDir, "real.md"), []byte("y"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:real.md")
	}, "document create not observed")

	if rec.has("created:scratch.txt") {
		t.Error("non-document file should not be announced")
	}
}
