package monitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pratik-mahalle/vigil/internal/bus"
	"github.com/pratik-mahalle/vigil/internal/domain/event"
	"github.com/pratik-mahalle/vigil/internal/domain/settings"
	"github.com/pratik-mahalle/vigil/internal/testutil"
)

func drainEvents(sub *bus.Subscription[*event.Event]) []*event.Event {
	var out []*event.Event
	for {
		select {
		case ev := <-sub.C():
			out = append(out, ev)
		case <-time.After(50 * time.Millisecond):
			return out
		}
	}
}

func TestInputMonitor_Poll(t *testing.T) {
	idle := 100.0
	b := bus.New[*event.Event]()
	sub := b.Subscribe()

	m := NewInputMonitor(b, 5*time.Second, func() float64 { return idle }, testutil.NewTestLogger())

	// Idle from the start: nothing published
	m.poll()
	if got := drainEvents(sub); len(got) != 0 {
		t.Fatalf("idle poll published %d events", len(got))
	}

	// Activity: input_detected per poll
	idle = 0.5
	m.poll()
	m.poll()
	got := drainEvents(sub)
	if len(got) != 2 {
		t.Fatalf("active polls published %d events, want 2", len(got))
	}
	for _, ev := range got {
		if ev.Action != event.ActionInputDetected {
			t.Errorf("action = %s, want %s", ev.Action, event.ActionInputDetected)
		}
		if ev.Source != event.SourceInputMonitor || ev.Category != event.CategoryUserInput {
			t.Errorf("event attribution wrong: %+v", ev)
		}
	}

	// Back to idle: exactly one idle_started on the transition
	idle = 100.0
	m.poll()
	m.poll()
	got = drainEvents(sub)
	if len(got) != 1 || got[0].Action != event.ActionIdleStarted {
		t.Fatalf("idle transition published %+v, want one idle_started", got)
	}
}

func TestInputMonitor_NilIdleFuncReportsIdle(t *testing.T) {
	b := bus.New[*event.Event]()
	sub := b.Subscribe()

	m := NewInputMonitor(b, time.Second, nil, testutil.NewTestLogger())
	m.poll()
	m.poll()

	if got := drainEvents(sub); len(got) != 0 {
		t.Fatalf("nil idle func published %d events", len(got))
	}
}

func TestFolderFor(t *testing.T) {
	m := &FolderMonitor{folders: []settings.MonitoredFolder{
		{ID: "flat", Path: "/watch/flat", Enabled: true},
		{ID: "deep", Path: "/watch/deep", Recursive: true, Enabled: true},
		{ID: "off", Path: "/watch/off", Enabled: false},
	}}

	tests := []struct {
		name   string
		path   string
		wantID string
		found  bool
	}{
		{"direct child of flat folder", "/watch/flat/a.txt", "flat", true},
		{"nested under non-recursive folder", "/watch/flat/sub/a.txt", "", false},
		{"direct child of recursive folder", "/watch/deep/a.txt", "deep", true},
		{"nested under recursive folder", "/watch/deep/x/y/a.txt", "deep", true},
		{"disabled folder", "/watch/off/a.txt", "", false},
		{"unrelated path", "/elsewhere/a.txt", "", false},
		{"sibling with shared prefix", "/watch/deepest/a.txt", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := m.folderFor(filepath.FromSlash(tt.path))
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if ok && f.ID != tt.wantID {
				t.Errorf("folder = %s, want %s", f.ID, tt.wantID)
			}
		})
	}
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if !isDir(dir) {
		t.Error("directory not recognized")
	}
	if isDir(file) {
		t.Error("regular file reported as directory; it would get its own watch")
	}
	if isDir(filepath.Join(dir, "gone")) {
		t.Error("missing path reported as directory")
	}
}

func TestFolderMonitor_CreateOnlyWatchesDirectories(t *testing.T) {
	root := t.TempDir()
	b := bus.New[*event.Event]()

	m := NewFolderMonitor(b, testutil.NewTestLogger())
	w, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()
	m.watcher = w
	m.SetFolders([]settings.MonitoredFolder{{
		ID: "root", Path: root, Recursive: true, Enabled: true, WatchCreates: true,
	}})

	// A created subdirectory gains its own watch, a created file does not
	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	file := filepath.Join(root, "a.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	m.handle(fsnotify.Event{Name: sub, Op: fsnotify.Create})
	m.handle(fsnotify.Event{Name: file, Op: fsnotify.Create})

	watched := make(map[string]bool)
	for _, p := range w.WatchList() {
		watched[p] = true
	}
	if !watched[sub] {
		t.Errorf("created subdirectory not watched: %v", w.WatchList())
	}
	if watched[file] {
		t.Errorf("created file received its own watch: %v", w.WatchList())
	}
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want string
	}{
		{fsnotify.Create, event.ActionFileCreated},
		{fsnotify.Write, event.ActionFileModified},
		{fsnotify.Remove, event.ActionFileDeleted},
		{fsnotify.Rename, event.ActionFileRenamed},
		{fsnotify.Chmod, ""},
	}
	for _, tt := range tests {
		if got := actionFor(tt.op); got != tt.want {
			t.Errorf("actionFor(%v) = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestWatchEnabled(t *testing.T) {
	f := settings.MonitoredFolder{
		WatchCreates:  true,
		WatchModifies: false,
		WatchDeletes:  true,
		WatchRenames:  false,
	}

	if !watchEnabled(f, event.ActionFileCreated) {
		t.Error("creates should be watched")
	}
	if watchEnabled(f, event.ActionFileModified) {
		t.Error("modifies should be suppressed")
	}
	if !watchEnabled(f, event.ActionFileDeleted) {
		t.Error("deletes should be watched")
	}
	if watchEnabled(f, event.ActionFileRenamed) {
		t.Error("renames should be suppressed")
	}
}
