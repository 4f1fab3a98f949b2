package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "subscription closed unexpectedly")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestMemoryGetMissing(t *testing.T) {
	s := newMemoryStore()
	t.Cleanup(func() { s.Close() })

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySetMergesTopLevelFields(t *testing.T) {
	s := newMemoryStore()
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", map[string]any{"files": []string{"a"}}))
	require.NoError(t, s.Set(ctx, "k", map[string]any{"wallpaper": "blue"}))

	doc, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Rev)

	var files []string
	ok, err := doc.Decode("files", &files)
	require.NoError(t, err)
	require.True(t, ok, "unnamed field must be preserved by a merge-write")
	assert.Equal(t, []string{"a"}, files)

	var wallpaper string
	ok, err = doc.Decode("wallpaper", &wallpaper)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "blue", wallpaper)
}

func TestMemorySetReplacesNamedFieldWholesale(t *testing.T) {
	s := newMemoryStore()
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", map[string]any{"files": []string{"a", "b"}}))
	require.NoError(t, s.Set(ctx, "k", map[string]any{"files": []string{"c"}}))

	doc, err := s.Get(ctx, "k")
	require.NoError(t, err)
	var files []string
	_, err = doc.Decode("files", &files)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, files, "named container must be replaced, not unioned")
}

func TestMemorySubscribeDeliversCurrentStateFirst(t *testing.T) {
	s := newMemoryStore()
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	ch, cancel, err := s.Subscribe(ctx, "k")
	require.NoError(t, err)
	t.Cleanup(cancel)

	first := recvEvent(t, ch)
	assert.False(t, first.Exists, "missing document must be observable")

	require.NoError(t, s.Set(ctx, "k", map[string]any{"v": 1}))
	second := recvEvent(t, ch)
	assert.True(t, second.Exists)
	assert.Equal(t, int64(1), second.Doc.Rev)
}

func TestMemorySubscribeExistingDocument(t *testing.T) {
	s := newMemoryStore()
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", map[string]any{"v": 1}))

	ch, cancel, err := s.Subscribe(ctx, "k")
	require.NoError(t, err)
	t.Cleanup(cancel)

	first := recvEvent(t, ch)
	assert.True(t, first.Exists)
	assert.Equal(t, int64(1), first.Doc.Rev)
}

func TestMemoryCancelStopsDelivery(t *testing.T) {
	s := newMemoryStore()
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	ch, cancel, err := s.Subscribe(ctx, "k")
	require.NoError(t, err)
	recvEvent(t, ch) // initial state

	cancel()
	cancel() // safe to call twice

	_, ok := <-ch
	assert.False(t, ok, "mailbox must be closed after cancel")

	// Writes after cancel must not panic or deliver anywhere.
	require.NoError(t, s.Set(ctx, "k", map[string]any{"v": 2}))
}

func TestMemorySubscribersAreIndependent(t *testing.T) {
	s := newMemoryStore()
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	chA, cancelA, err := s.Subscribe(ctx, "k")
	require.NoError(t, err)
	t.Cleanup(cancelA)
	chB, cancelB, err := s.Subscribe(ctx, "k")
	require.NoError(t, err)

	recvEvent(t, chA)
	recvEvent(t, chB)

	cancelB()
	require.NoError(t, s.Set(ctx, "k", map[string]any{"v": 1}))

	ev := recvEvent(t, chA)
	assert.True(t, ev.Exists, "remaining subscriber still receives events")
}

func TestMemoryMailboxDropsOldestWhenFull(t *testing.T) {
	s := newMemoryStore()
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	ch, cancel, err := s.Subscribe(ctx, "k")
	require.NoError(t, err)
	t.Cleanup(cancel)

	// Overflow the mailbox without draining it.
	for i := 0; i < mailboxSize*2; i++ {
		require.NoError(t, s.Set(ctx, "k", map[string]any{"v": i}))
	}

	// Drain everything currently queued; the last event must be the
	// newest write even though earlier ones were dropped.
	var last Event
	for {
		select {
		case ev := <-ch:
			last = ev
			continue
		default:
		}
		break
	}
	assert.Equal(t, int64(mailboxSize*2), last.Doc.Rev)
}

func TestMemoryClosedStoreRejectsOperations(t *testing.T) {
	s := newMemoryStore()
	require.NoError(t, s.Close())

	_, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Set(context.Background(), "k", map[string]any{"v": 1}), ErrClosed)
	_, _, err = s.Subscribe(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFactoryRejectsUnknownDriver(t *testing.T) {
	_, err := New(StoreType("cassandra"))
	assert.ErrorIs(t, err, ErrInvalidStoreType)
}

func TestDocumentDecodeMissingField(t *testing.T) {
	doc := Document{}
	var v string
	ok, err := doc.Decode("absent", &v)
	require.NoError(t, err)
	assert.False(t, ok)
}
