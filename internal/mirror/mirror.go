// Package mirror keeps the three local containers (files, chat transcript,
// wallpaper) eventually consistent with the corresponding remote documents,
// scoped to the current identity. Remote change notifications always win:
// each one replaces the matching local container wholesale. Local writes are
// optimistic and are later echoed by the store's own change notification, so
// a local edit may be momentarily overwritten and then re-applied once the
// corresponding commit's notification arrives.
package mirror

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"geminios/internal/docstore"
	"geminios/internal/identity"
	"geminios/internal/logging"
)

// ErrAttached is returned when Attach is called on an attached mirror.
var ErrAttached = errors.New("mirror already attached")

type kindEvent struct {
	kind string
	ev   docstore.Event
}

// Mirror is the session state mirror. All container access goes through the
// mutex; remote events are applied by a single reconciler goroutine.
type Mirror struct {
	store docstore.Store

	mu        sync.RWMutex
	sess      *identity.Session
	files     []FileEntry
	chat      []ChatMessage
	wallpaper string

	cancels   []docstore.CancelFunc
	events    chan kindEvent
	stop      chan struct{}
	fwdWG     sync.WaitGroup
	recWG     sync.WaitGroup
	seeded    map[string]bool
	onReplace func(kind string)
}

// New creates a detached mirror over the given store.
func New(store docstore.Store) *Mirror {
	return &Mirror{store: store}
}

// OnReplace registers a callback invoked from the reconciler after a
// container has been replaced. Used by the TUI to refresh views.
func (m *Mirror) OnReplace(fn func(kind string)) {
	m.mu.Lock()
	m.onReplace = fn
	m.mu.Unlock()
}

// Attach subscribes to the identity's three documents and starts the
// reconciler. Documents that do not exist yet are seeded with their
// defaults (create-on-first-read): the filesystem starter set and the
// chat welcome message are written exactly once; settings seeds nothing.
func (m *Mirror) Attach(ctx context.Context, sess *identity.Session) error {
	if !sess.Valid() {
		return errors.New("invalid session")
	}

	m.mu.Lock()
	if m.sess != nil {
		m.mu.Unlock()
		return ErrAttached
	}
	m.sess = sess
	m.files = nil
	m.chat = nil
	m.wallpaper = ""
	m.seeded = make(map[string]bool)
	m.events = make(chan kindEvent, 16)
	m.stop = make(chan struct{})
	m.cancels = nil
	m.mu.Unlock()

	kinds := []string{KindFilesystem, KindChat, KindSettings}
	chans := make([]<-chan docstore.Event, len(kinds))
	cancels := make([]docstore.CancelFunc, len(kinds))

	var g errgroup.Group
	for i, kind := range kinds {
		g.Go(func() error {
			ch, cancel, err := m.store.Subscribe(ctx, sess.DocumentKey(kind))
			if err != nil {
				return err
			}
			chans[i] = ch
			cancels[i] = cancel
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, cancel := range cancels {
			if cancel != nil {
				cancel()
			}
		}
		m.mu.Lock()
		m.sess = nil
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.cancels = cancels
	m.mu.Unlock()

	for i, kind := range kinds {
		m.fwdWG.Add(1)
		go m.forward(kind, chans[i])
	}

	// Close the event stream once every subscription has drained.
	go func() {
		m.fwdWG.Wait()
		close(m.events)
	}()

	m.recWG.Add(1)
	go m.reconcile(ctx)

	logging.Session("mirror attached uid=%s", sess.Identity.UID)
	return nil
}

// Detach releases all three listeners exactly once and waits for the
// reconciler to finish. No event is applied after Detach returns, and all
// writes become no-ops until the next Attach.
func (m *Mirror) Detach() {
	m.mu.Lock()
	if m.sess == nil {
		m.mu.Unlock()
		return
	}
	uid := m.sess.Identity.UID
	m.sess = nil
	cancels := m.cancels
	m.cancels = nil
	stop := m.stop
	m.mu.Unlock()

	close(stop)
	for _, cancel := range cancels {
		cancel()
	}
	m.fwdWG.Wait()
	m.recWG.Wait()
	logging.Session("mirror detached uid=%s", uid)
}

// forward pumps one subscription into the merged event stream.
func (m *Mirror) forward(kind string, ch <-chan docstore.Event) {
	defer m.fwdWG.Done()
	for ev := range ch {
		select {
		case m.events <- kindEvent{kind: kind, ev: ev}:
		case <-m.stop:
			return
		}
	}
}

// reconcile is the single consumer of document-replaced events.
func (m *Mirror) reconcile(ctx context.Context) {
	defer m.recWG.Done()
	for ke := range m.events {
		if !ke.ev.Exists {
			m.seed(ctx, ke.kind)
			continue
		}
		m.apply(ke.kind, ke.ev.Doc)
	}
}

// seed applies the create-on-first-read policy for a missing document.
func (m *Mirror) seed(ctx context.Context, kind string) {
	m.mu.Lock()
	if m.seeded[kind] || m.sess == nil {
		m.mu.Unlock()
		return
	}
	m.seeded[kind] = true
	sess := m.sess

	switch kind {
	case KindFilesystem:
		m.files = StarterFiles()
		m.mu.Unlock()
		logging.Sync("seeding filesystem for uid=%s", sess.Identity.UID)
		if err := m.store.Set(ctx, sess.DocumentKey(kind), map[string]any{"files": StarterFiles()}); err != nil {
			logging.StoreError("filesystem seed failed: %v", err)
		}
	case KindChat:
		m.chat = []ChatMessage{WelcomeMessage()}
		m.mu.Unlock()
		logging.Sync("seeding chat for uid=%s", sess.Identity.UID)
		if err := m.store.Set(ctx, sess.DocumentKey(kind), map[string]any{"messages": []ChatMessage{WelcomeMessage()}}); err != nil {
			logging.StoreError("chat seed failed: %v", err)
		}
	default:
		// Settings has no default payload: wallpaper stays absent.
		m.mu.Unlock()
	}
	m.notifyReplace(kind)
}

// apply replaces the matching local container wholesale (last-writer-wins
// at document granularity; stale fields are never merged into fresher
// state).
func (m *Mirror) apply(kind string, doc docstore.Document) {
	m.mu.Lock()
	switch kind {
	case KindFilesystem:
		var files []FileEntry
		if _, err := doc.Decode("files", &files); err != nil {
			m.mu.Unlock()
			logging.StoreError("bad filesystem document: %v", err)
			return
		}
		m.files = files
	case KindChat:
		var messages []ChatMessage
		if _, err := doc.Decode("messages", &messages); err != nil {
			m.mu.Unlock()
			logging.StoreError("bad chat document: %v", err)
			return
		}
		m.chat = messages
	case KindSettings:
		var wallpaper string
		if _, err := doc.Decode("wallpaper", &wallpaper); err != nil {
			m.mu.Unlock()
			logging.StoreError("bad settings document: %v", err)
			return
		}
		m.wallpaper = wallpaper
	}
	m.mu.Unlock()
	logging.SyncDebug("applied %s rev=%d", kind, doc.Rev)
	m.notifyReplace(kind)
}

func (m *Mirror) notifyReplace(kind string) {
	m.mu.RLock()
	fn := m.onReplace
	m.mu.RUnlock()
	if fn != nil {
		fn(kind)
	}
}

// write applies an optimistic local mutation then issues the merge-write.
// When no identity is attached the whole operation is a silent no-op: it
// neither errors nor queues (callers gate UI on identity presence).
func (m *Mirror) write(ctx context.Context, kind string, local func(), fields map[string]any) error {
	m.mu.Lock()
	if !m.sess.Valid() {
		m.mu.Unlock()
		return nil
	}
	key := m.sess.DocumentKey(kind)
	local()
	m.mu.Unlock()

	return m.store.Set(ctx, key, fields)
}

// SaveFiles replaces the file collection.
func (m *Mirror) SaveFiles(ctx context.Context, files []FileEntry) error {
	snapshot := append([]FileEntry(nil), files...)
	return m.write(ctx, KindFilesystem,
		func() { m.files = snapshot },
		map[string]any{"files": snapshot})
}

// SaveChat replaces the chat transcript.
func (m *Mirror) SaveChat(ctx context.Context, messages []ChatMessage) error {
	snapshot := append([]ChatMessage(nil), messages...)
	return m.write(ctx, KindChat,
		func() { m.chat = snapshot },
		map[string]any{"messages": snapshot})
}

// SaveWallpaper replaces the wallpaper setting (last-write-wins).
func (m *Mirror) SaveWallpaper(ctx context.Context, ref string) error {
	return m.write(ctx, KindSettings,
		func() { m.wallpaper = ref },
		map[string]any{"wallpaper": ref})
}

// Files returns a copy of the current file collection.
func (m *Mirror) Files() []FileEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]FileEntry(nil), m.files...)
}

// Chat returns a copy of the current transcript.
func (m *Mirror) Chat() []ChatMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ChatMessage(nil), m.chat...)
}

// Wallpaper returns the current wallpaper reference ("" when unset).
func (m *Mirror) Wallpaper() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.wallpaper
}

// Attached reports whether an identity is currently attached.
func (m *Mirror) Attached() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess.Valid()
}
