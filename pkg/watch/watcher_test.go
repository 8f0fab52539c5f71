package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/pysentry/pkg/config"
)

func TestNewWatcher(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()

	tests := []struct {
		name     string
		debounce time.Duration
		want     time.Duration
	}{
		{"default debounce", 0, DefaultDebounce},
		{"custom debounce", time.Second, time.Second},
		{"negative debounce defaults", -time.Second, DefaultDebounce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWatcher(tmpDir, cfg, WithDebounce(tt.debounce))
			if err != nil {
				t.Fatalf("NewWatcher() error = %v", err)
			}
			defer w.Stop()

			if w.config != cfg {
				t.Error("config should match")
			}
			if w.debounce != tt.want {
				t.Errorf("debounce = %v, want %v", w.debounce, tt.want)
			}
		})
	}
}

func TestNewWatcherNilConfig(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if w.config == nil {
		t.Fatal("config should default")
	}
}

func TestWatcher_handleEvent(t *testing.T) {
	tmpDir := t.TempDir()
	w, err := NewWatcher(tmpDir, config.DefaultConfig(), WithDebounce(time.Second))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	tests := []struct {
		name        string
		event       fsnotify.Event
		wantPending bool
	}{
		{"write python file", fsnotify.Event{Name: filepath.Join(tmpDir, "app.py"), Op: fsnotify.Write}, true},
		{"create stub file", fsnotify.Event{Name: filepath.Join(tmpDir, "types.pyi"), Op: fsnotify.Create}, true},
		{"remove ignored", fsnotify.Event{Name: filepath.Join(tmpDir, "gone.py"), Op: fsnotify.Remove}, false},
		{"chmod ignored", fsnotify.Event{Name: filepath.Join(tmpDir, "mode.py"), Op: fsnotify.Chmod}, false},
		{"non-python ignored", fsnotify.Event{Name: filepath.Join(tmpDir, "main.go"), Op: fsnotify.Write}, false},
		{"excluded dir ignored", fsnotify.Event{Name: filepath.Join(tmpDir, "__pycache__", "m.py"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.mu.Lock()
			w.pending = make(map[string]time.Time)
			w.mu.Unlock()

			w.handleEvent(tt.event)

			w.mu.Lock()
			_, found := w.pending[tt.event.Name]
			w.mu.Unlock()

			if found != tt.wantPending {
				t.Errorf("pending[%v] = %v, want %v", tt.event.Name, found, tt.wantPending)
			}
		})
	}
}

func TestWatcher_handleEvent_NewDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	w, err := NewWatcher(tmpDir, config.DefaultConfig())
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	sub := filepath.Join(tmpDir, "pkg")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	w.handleEvent(fsnotify.Event{Name: sub, Op: fsnotify.Create})

	if !slices.Contains(w.WatchedDirs(), sub) {
		t.Errorf("WatchedDirs() = %v, want %s included", w.WatchedDirs(), sub)
	}
}

func TestWatcher_takeReady(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), config.DefaultConfig(), WithDebounce(100*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	now := time.Now()
	w.pending["b.py"] = now.Add(-time.Second)
	w.pending["a.py"] = now.Add(-time.Second)
	w.pending["fresh.py"] = now

	ready := w.takeReady(now)
	if !slices.Equal(ready, []string{"a.py", "b.py"}) {
		t.Errorf("takeReady() = %v, want [a.py b.py]", ready)
	}
	if _, ok := w.pending["fresh.py"]; !ok {
		t.Error("fresh.py should remain pending")
	}
	if len(w.pending) != 1 {
		t.Errorf("pending has %d entries, want 1", len(w.pending))
	}
}

func TestWatcher_StartSkipsExcludedDirs(t *testing.T) {
	tmpDir := t.TempDir()
	for _, dir := range []string{"src", ".venv"} {
		if err := os.MkdirAll(filepath.Join(tmpDir, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	w, err := NewWatcher(tmpDir, config.DefaultConfig())
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	dirs := w.WatchedDirs()
	if !slices.Contains(dirs, filepath.Join(tmpDir, "src")) {
		t.Errorf("src should be watched, got %v", dirs)
	}
	if slices.Contains(dirs, filepath.Join(tmpDir, ".venv")) {
		t.Errorf(".venv should not be watched, got %v", dirs)
	}
}

func TestWatcher_StartReportsChanges(t *testing.T) {
	tmpDir := t.TempDir()
	w, err := NewWatcher(tmpDir, config.DefaultConfig(), WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	var mu sync.Mutex
	var got []string
	w.OnChange(func(_ context.Context, paths []string) {
		mu.Lock()
		got = append(got, paths...)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)
	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(tmpDir, "app.py")
	if err := os.WriteFile(target, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if !slices.Contains(got, target) {
		t.Errorf("changed paths = %v, want %s", got, target)
	}
	for _, p := range got {
		if filepath.Ext(p) != ".py" {
			t.Errorf("unexpected change reported: %s", p)
		}
	}
}
