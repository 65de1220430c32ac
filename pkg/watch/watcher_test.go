package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/bigo/pkg/config"
)

func newTestWatcher(t *testing.T, debounce time.Duration) (*Watcher, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	w, err := NewWatcher(t.TempDir(), config.DefaultConfig(), debounce, &out)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() { w.Stop() })
	return w, &out
}

func TestNewWatcherDebounce(t *testing.T) {
	tests := []struct {
		name     string
		debounce time.Duration
		want     time.Duration
	}{
		{"default", 0, DefaultDebounce},
		{"negative", -time.Second, DefaultDebounce},
		{"custom", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := newTestWatcher(t, tt.debounce)
			if w.debounce != tt.want {
				t.Errorf("debounce = %v, want %v", w.debounce, tt.want)
			}
			if w.pending == nil {
				t.Error("pending map should be initialized")
			}
		})
	}
}

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   fsnotify.Event
		pending bool
	}{
		{"write python", fsnotify.Event{Name: "/src/sort.py", Op: fsnotify.Write}, true},
		{"create python", fsnotify.Event{Name: "/src/search.PY", Op: fsnotify.Create}, true},
		{"remove python", fsnotify.Event{Name: "/src/sort.py", Op: fsnotify.Remove}, false},
		{"chmod python", fsnotify.Event{Name: "/src/sort.py", Op: fsnotify.Chmod}, false},
		{"not python", fsnotify.Event{Name: "/src/README.md", Op: fsnotify.Write}, false},
		{"excluded pattern", fsnotify.Event{Name: "/src/test_sort.py", Op: fsnotify.Write}, false},
		{"excluded dir", fsnotify.Event{Name: "/src/.venv/lib.py", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := newTestWatcher(t, time.Second)
			w.handleEvent(tt.event)

			_, ok := w.pending[tt.event.Name]
			if ok != tt.pending {
				t.Errorf("pending = %v, want %v", ok, tt.pending)
			}
		})
	}
}

func TestProcessPending(t *testing.T) {
	w, out := newTestWatcher(t, time.Hour)

	var got []string
	w.SetCallback(func(path string) { got = append(got, path) })

	b := filepath.Join(w.root, "b.py")
	a := filepath.Join(w.root, "a.py")
	fresh := filepath.Join(w.root, "fresh.py")
	w.pending[b] = time.Now().Add(-2 * time.Hour)
	w.pending[a] = time.Now().Add(-2 * time.Hour)
	w.pending[fresh] = time.Now()

	w.processPending()

	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("callback paths = %v, want [%s %s]", got, a, b)
	}
	if _, ok := w.pending[fresh]; !ok {
		t.Error("fresh file should stay pending until debounce elapses")
	}
	if len(w.pending) != 1 {
		t.Errorf("pending = %d entries, want 1", len(w.pending))
	}
	if !bytes.Contains(out.Bytes(), []byte("File changed: a.py")) {
		t.Errorf("output should name the changed file relative to root, got %q", out.String())
	}
}

func TestProcessPendingWithoutCallback(t *testing.T) {
	w, _ := newTestWatcher(t, time.Nanosecond)
	w.pending[filepath.Join(w.root, "x.py")] = time.Now().Add(-time.Second)

	w.processPending()

	if len(w.pending) != 0 {
		t.Errorf("pending = %d entries, want 0", len(w.pending))
	}
}

func TestStartDetectsChanges(t *testing.T) {
	w, _ := newTestWatcher(t, 10*time.Millisecond)
	if err := os.Mkdir(filepath.Join(w.root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	changed := make(chan string, 16)
	w.SetCallback(func(path string) {
		select {
		case changed <- path:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	target := filepath.Join(w.root, "loop.py")
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	// Start registers directories asynchronously, so keep touching the file
	// until a change is observed.
	for {
		select {
		case path := <-changed:
			if path != target {
				t.Errorf("changed path = %q, want %q", path, target)
			}
			for _, dir := range w.WatchedDirs() {
				if filepath.Base(dir) == ".git" {
					t.Error(".git should not be watched")
				}
			}
			cancel()
			if err := <-done; err != context.Canceled {
				t.Errorf("Start() error = %v, want context.Canceled", err)
			}
			return
		case <-tick.C:
			if err := os.WriteFile(target, []byte("for i in range(n):\n    pass\n"), 0o644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			cancel()
			t.Fatal("timed out waiting for change callback")
		}
	}
}
