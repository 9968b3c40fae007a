// Package monitor contains the boundary event producers: the filesystem
// watcher, the idle-input poller and the session watcher. Producers only
// observe and publish well-formed timeline events; all decision logic
// lives in the rule engine.
package monitor

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/pratik-mahalle/vigil/internal/bus"
	"github.com/pratik-mahalle/vigil/internal/domain/event"
	"github.com/pratik-mahalle/vigil/internal/domain/settings"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
	"github.com/pratik-mahalle/vigil/internal/pkg/metrics"
)

// FolderMonitor watches configured folders and publishes file mutation
// events. The watched set hot-reloads when folder config changes.
type FolderMonitor struct {
	bus    *bus.Bus[*event.Event]
	logger *logger.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	folders []settings.MonitoredFolder
}

// NewFolderMonitor creates a folder monitor publishing to the event bus.
func NewFolderMonitor(b *bus.Bus[*event.Event], log *logger.Logger) *FolderMonitor {
	return &FolderMonitor{bus: b, logger: log}
}

// Start begins watching and blocks until ctx is canceled. Run it in its
// own goroutine.
func (m *FolderMonitor) Start(ctx context.Context, folders []settings.MonitoredFolder) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.watcher = w
	m.mu.Unlock()
	m.SetFolders(folders)

	m.logger.Infof("Folder monitor started (%d folders)", len(folders))
	defer w.Close()

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			m.handle(ev)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			m.logger.ErrorWithErr(err, "Folder watcher error")
		case <-ctx.Done():
			m.logger.Info("Folder monitor stopped")
			return nil
		}
	}
}

// SetFolders replaces the watched folder set. Paths that fail to watch
// are logged and skipped so one bad entry cannot break the rest.
func (m *FolderMonitor) SetFolders(folders []settings.MonitoredFolder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watcher == nil {
		m.folders = folders
		return
	}

	for _, path := range m.watcher.WatchList() {
		_ = m.watcher.Remove(path)
	}
	m.folders = folders

	for _, f := range folders {
		if !f.Enabled {
			continue
		}
		if err := m.watcher.Add(f.Path); err != nil {
			m.logger.With("path", f.Path).ErrorWithErr(err, "Failed to watch folder")
			continue
		}
		if f.Recursive {
			m.watchSubdirs(f.Path)
		}
	}
}

func (m *FolderMonitor) watchSubdirs(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || path == root {
			return nil
		}
		if err := m.watcher.Add(path); err != nil {
			m.logger.With("path", path).ErrorWithErr(err, "Failed to watch subfolder")
		}
		return nil
	})
}

func (m *FolderMonitor) handle(fe fsnotify.Event) {
	m.mu.Lock()
	folder, ok := m.folderFor(fe.Name)
	m.mu.Unlock()
	if !ok {
		return
	}

	action := actionFor(fe.Op)
	if action == "" || !watchEnabled(folder, action) {
		return
	}

	ev := event.New(event.SourceFolderMonitor, event.CategoryFileSystem, action)
	ev.Target = fe.Name
	m.bus.Publish(ev)
	metrics.RecordEventPublished(ev.Source, ev.Action)

	// New directories under a recursive watch need their own watch.
	// Regular files must not get one: fsnotify already reports them via
	// their parent, and a per-file watch wastes a descriptor.
	if fe.Op.Has(fsnotify.Create) && folder.Recursive && isDir(fe.Name) {
		m.mu.Lock()
		if m.watcher != nil {
			_ = m.watcher.Add(fe.Name)
		}
		m.mu.Unlock()
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// folderFor finds the configured folder governing path. Must be called
// with the lock held.
func (m *FolderMonitor) folderFor(path string) (settings.MonitoredFolder, bool) {
	clean := filepath.Clean(path)
	for _, f := range m.folders {
		if !f.Enabled {
			continue
		}
		root := filepath.Clean(f.Path)
		if filepath.Dir(clean) == root {
			return f, true
		}
		if f.Recursive && (clean == root || withinDir(clean, root)) {
			return f, true
		}
	}
	return settings.MonitoredFolder{}, false
}

func withinDir(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func actionFor(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return event.ActionFileCreated
	case op.Has(fsnotify.Write):
		return event.ActionFileModified
	case op.Has(fsnotify.Remove):
		return event.ActionFileDeleted
	case op.Has(fsnotify.Rename):
		return event.ActionFileRenamed
	}
	return ""
}

func watchEnabled(f settings.MonitoredFolder, action string) bool {
	switch action {
	case event.ActionFileCreated:
		return f.WatchCreates
	case event.ActionFileModified:
		return f.WatchModifies
	case event.ActionFileDeleted:
		return f.WatchDeletes
	case event.ActionFileRenamed, event.ActionFileMoved:
		return f.WatchRenames
	}
	return true
}
