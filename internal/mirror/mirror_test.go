package mirror

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"geminios/internal/docstore"
	"geminios/internal/identity"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newAttached(t *testing.T) (*Mirror, docstore.Store, *identity.Session) {
	t.Helper()
	store, err := docstore.New(docstore.TypeMemory)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := New(store)
	sess, err := identity.SignIn("")
	require.NoError(t, err)
	require.NoError(t, m.Attach(context.Background(), sess))
	t.Cleanup(m.Detach)
	return m, store, sess
}

func waitSeeded(t *testing.T, m *Mirror) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(m.Files()) == 2 && len(m.Chat()) == 1
	}, time.Second, 5*time.Millisecond, "defaults were not seeded")
}

func TestAttachSeedsMissingDocuments(t *testing.T) {
	m, store, sess := newAttached(t)
	waitSeeded(t, m)

	assert.Equal(t, StarterFiles(), m.Files())
	assert.Equal(t, []ChatMessage{WelcomeMessage()}, m.Chat())
	assert.Empty(t, m.Wallpaper(), "settings must not be seeded")

	// The seed was written remotely, not just applied locally.
	doc, err := store.Get(context.Background(), sess.DocumentKey(KindFilesystem))
	require.NoError(t, err)
	var files []FileEntry
	ok, err := doc.Decode("files", &files)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StarterFiles(), files)

	_, err = store.Get(context.Background(), sess.DocumentKey(KindSettings))
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestSecondAttachDoesNotReseed(t *testing.T) {
	store, err := docstore.New(docstore.TypeMemory)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sess, err := identity.SignIn("fixed-token")
	require.NoError(t, err)

	first := New(store)
	require.NoError(t, first.Attach(context.Background(), sess))
	waitSeeded(t, first)

	// Overwrite the seeded chat so a re-seed would be detectable.
	custom := []ChatMessage{WelcomeMessage(), {Role: RoleUser, Text: "hello"}}
	require.NoError(t, first.SaveChat(context.Background(), custom))
	first.Detach()

	second := New(store)
	require.NoError(t, second.Attach(context.Background(), sess))
	t.Cleanup(second.Detach)

	require.Eventually(t, func() bool {
		return len(second.Chat()) == 2
	}, time.Second, 5*time.Millisecond, "existing document must be adopted, not re-seeded")
	assert.Equal(t, custom, second.Chat())
}

func TestRemoteNotificationLastWriteWins(t *testing.T) {
	m, store, sess := newAttached(t)
	waitSeeded(t, m)

	key := sess.DocumentKey(KindFilesystem)
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		files := []FileEntry{{ID: "x", Name: name, Content: "v", Language: "plaintext"}}
		require.NoError(t, store.Set(context.Background(), key, map[string]any{"files": files}))
	}

	require.Eventually(t, func() bool {
		files := m.Files()
		return len(files) == 1 && files[0].Name == "c.txt"
	}, time.Second, 5*time.Millisecond, "local container must equal the most recent notification")
}

func TestRemoteReplaceIsWholesale(t *testing.T) {
	m, store, sess := newAttached(t)
	waitSeeded(t, m)

	// A remote state with fewer files must not be merged with the old one.
	files := []FileEntry{{ID: "9", Name: "only.txt", Content: "", Language: "plaintext"}}
	require.NoError(t, store.Set(context.Background(), sess.DocumentKey(KindFilesystem), map[string]any{"files": files}))

	require.Eventually(t, func() bool {
		got := m.Files()
		return len(got) == 1 && got[0].Name == "only.txt"
	}, time.Second, 5*time.Millisecond)
}

func TestWritesAreNoOpsWhenDetached(t *testing.T) {
	store, err := docstore.New(docstore.TypeMemory)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := New(store)
	require.NoError(t, m.SaveFiles(context.Background(), []FileEntry{{ID: "1", Name: "x"}}))
	require.NoError(t, m.SaveChat(context.Background(), []ChatMessage{{Role: RoleUser, Text: "hi"}}))
	require.NoError(t, m.SaveWallpaper(context.Background(), "ref"))

	assert.Empty(t, m.Files())
	assert.Empty(t, m.Chat())
	assert.Empty(t, m.Wallpaper())
	assert.False(t, m.Attached())
}

func TestOptimisticWriteAppliesLocallyFirst(t *testing.T) {
	m, _, _ := newAttached(t)
	waitSeeded(t, m)

	msgs := append(m.Chat(), ChatMessage{Role: RoleUser, Text: "typed"})
	require.NoError(t, m.SaveChat(context.Background(), msgs))
	assert.Equal(t, msgs, m.Chat(), "local state must reflect the write before the echo arrives")
}

func TestDetachStopsDelivery(t *testing.T) {
	m, store, sess := newAttached(t)
	waitSeeded(t, m)
	m.Detach()

	files := []FileEntry{{ID: "z", Name: "after-detach.txt"}}
	require.NoError(t, store.Set(context.Background(), sess.DocumentKey(KindFilesystem), map[string]any{"files": files}))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StarterFiles(), m.Files(), "no event may be applied after detach")
	assert.False(t, m.Attached())

	// Idempotent.
	m.Detach()
}

func TestAttachTwiceFails(t *testing.T) {
	m, _, sess := newAttached(t)
	err := m.Attach(context.Background(), sess)
	assert.ErrorIs(t, err, ErrAttached)
}

func TestOnReplaceFires(t *testing.T) {
	store, err := docstore.New(docstore.TypeMemory)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := New(store)
	replaced := make(chan string, 16)
	m.OnReplace(func(kind string) { replaced <- kind })

	sess, err := identity.SignIn("")
	require.NoError(t, err)
	require.NoError(t, m.Attach(context.Background(), sess))
	t.Cleanup(m.Detach)

	seen := map[string]bool{}
	deadline := time.After(time.Second)
	for len(seen) < 2 {
		select {
		case kind := <-replaced:
			seen[kind] = true
		case <-deadline:
			t.Fatalf("only saw replacements for %v", seen)
		}
	}
	assert.True(t, seen[KindFilesystem])
	assert.True(t, seen[KindChat])
}
