package files

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"geminios/internal/logging"
	"geminios/internal/mirror"
)

// Bridge mirrors the virtual filesystem document into a real workspace
// directory so local editors can be used. Document state is exported as
// plain files; local edits are watched and imported back as optimistic
// document writes. Only the top level of the directory is bridged.
type Bridge struct {
	m   *mirror.Mirror
	dir string

	watcher *fsnotify.Watcher

	mu       sync.Mutex
	suppress map[string]time.Time

	done chan struct{}
	wg   sync.WaitGroup
}

// suppressWindow covers the watcher echo of our own exports.
const suppressWindow = 500 * time.Millisecond

// NewBridge creates the workspace directory and its watcher.
func NewBridge(m *mirror.Mirror, dir string) (*Bridge, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Bridge{
		m:        m,
		dir:      dir,
		watcher:  watcher,
		suppress: make(map[string]time.Time),
		done:     make(chan struct{}),
	}, nil
}

// Dir returns the bridged workspace directory.
func (b *Bridge) Dir() string { return b.dir }

// Start exports the current document state and begins watching for local
// edits.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.Export(); err != nil {
		return err
	}
	if err := b.watcher.Add(b.dir); err != nil {
		return err
	}

	b.wg.Add(1)
	go b.watch(ctx)
	logging.Files("workspace bridge watching %s", b.dir)
	return nil
}

// Close stops the watcher. Safe to call once.
func (b *Bridge) Close() error {
	close(b.done)
	err := b.watcher.Close()
	b.wg.Wait()
	return err
}

// Export writes every document entry into the workspace directory.
// Exported names are suppressed so the watcher does not import the echo.
func (b *Bridge) Export() error {
	for _, f := range b.m.Files() {
		name := filepath.Base(f.Name)
		b.mu.Lock()
		b.suppress[name] = time.Now()
		b.mu.Unlock()
		if err := os.WriteFile(filepath.Join(b.dir, name), []byte(f.Content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bridge) watch(ctx context.Context) {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return
		case <-ctx.Done():
			return
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			logging.Files("watcher error: %v", err)
		case ev, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			b.importFile(ctx, ev.Name)
		}
	}
}

// importFile folds one local edit back into the document.
func (b *Bridge) importFile(ctx context.Context, path string) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return
	}

	b.mu.Lock()
	if t, ok := b.suppress[name]; ok && time.Since(t) < suppressWindow {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		// Transient during editor save dances (rename, truncate).
		return
	}

	updated := b.m.Files()
	found := false
	for i := range updated {
		if updated[i].Name == name {
			if updated[i].Content == string(content) {
				return
			}
			updated[i].Content = string(content)
			found = true
		}
	}
	if !found {
		updated = append(updated, mirror.FileEntry{
			ID:       uuid.NewString(),
			Name:     name,
			Content:  string(content),
			Language: languageFor(name),
		})
	}

	if err := b.m.SaveFiles(ctx, updated); err != nil {
		logging.StoreError("workspace import %s: %v", name, err)
		return
	}
	logging.Files("imported local edit of %s (%d bytes)", name, len(content))
}

func languageFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "json"
	case ".txt", ".md":
		return "plaintext"
	default:
		return "code"
	}
}
