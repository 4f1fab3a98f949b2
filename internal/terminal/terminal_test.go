package terminal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geminios/internal/device"
	"geminios/internal/docstore"
	"geminios/internal/gemini"
	"geminios/internal/identity"
	"geminios/internal/mirror"
)

type fakeLLM struct {
	reply   string
	err     error
	prompts []string
	systems []string
}

func (f *fakeLLM) GenerateText(ctx context.Context, prompt, system string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.systems = append(f.systems, system)
	return f.reply, f.err
}

func (f *fakeLLM) AnalyzeImage(ctx context.Context, prompt, mimeType string, image []byte) (string, error) {
	return "", gemini.ErrEmptyResponse
}

func (f *fakeLLM) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return nil, gemini.ErrEmptyResponse
}

func (f *fakeLLM) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return nil, gemini.ErrEmptyResponse
}

func attachedMirror(t *testing.T) *mirror.Mirror {
	t.Helper()
	store, err := docstore.New(docstore.TypeMemory)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := mirror.New(store)
	sess, err := identity.SignIn("")
	require.NoError(t, err)
	require.NoError(t, m.Attach(context.Background(), sess))
	t.Cleanup(m.Detach)

	require.Eventually(t, func() bool {
		return len(m.Files()) == 2
	}, time.Second, 5*time.Millisecond, "filesystem was not seeded")
	return m
}

func noopLauncher() *device.Launcher {
	return device.NewLauncherWithOpener(func(string) error { return nil })
}

func TestBannerIsFirstLine(t *testing.T) {
	term := New(&fakeLLM{}, mirror.New(nil), noopLauncher())
	history := term.History()
	require.Len(t, history, 1)
	assert.Equal(t, Banner, history[0].Content)
	assert.Equal(t, LineOutput, history[0].Type)
}

func TestLsEmptyFilesystem(t *testing.T) {
	llm := &fakeLLM{}
	term := New(llm, mirror.New(nil), noopLauncher())

	out := term.Run(context.Background(), "ls")
	assert.Equal(t, "(empty)", out)
	assert.Empty(t, llm.prompts, "built-in must not reach the model")
}

func TestLsListsFileNames(t *testing.T) {
	llm := &fakeLLM{}
	term := New(llm, attachedMirror(t), noopLauncher())

	out := term.Run(context.Background(), "ls")
	assert.Equal(t, "readme.txt  config.json", out)
	assert.Empty(t, llm.prompts)
}

func TestOpenAndLaunchShortCircuit(t *testing.T) {
	llm := &fakeLLM{}
	term := New(llm, mirror.New(nil), noopLauncher())

	out := term.Run(context.Background(), "open spotify")
	assert.Equal(t, "Launching spotify...", out)

	out = term.Run(context.Background(), "launch netscape")
	assert.Equal(t, "No protocol handler for netscape", out)
	assert.Empty(t, llm.prompts, "built-ins must not reach the model")
}

func TestUnknownCommandGoesToModel(t *testing.T) {
	llm := &fakeLLM{reply: "```\ntotal 0\n```"}
	term := New(llm, attachedMirror(t), noopLauncher())

	out := term.Run(context.Background(), "du -sh /")
	assert.Equal(t, "\ntotal 0\n", out, "code fences are stripped")

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], `Simulate terminal output for: "du -sh /"`)
	assert.Contains(t, llm.prompts[0], "readme.txt,config.json")
	assert.Equal(t, []string{"You are /bin/bash."}, llm.systems)
}

func TestModelFailureShowsSentinel(t *testing.T) {
	llm := &fakeLLM{err: errors.New("down")}
	term := New(llm, mirror.New(nil), noopLauncher())

	out := term.Run(context.Background(), "uptime")
	assert.Equal(t, "System Uplink Offline.", out)
}

func TestBlankInputIgnored(t *testing.T) {
	term := New(&fakeLLM{}, mirror.New(nil), noopLauncher())
	out := term.Run(context.Background(), "   ")
	assert.Empty(t, out)
	assert.Len(t, term.History(), 1, "blank input must not be echoed")
}

func TestScrollbackOrder(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	term := New(llm, mirror.New(nil), noopLauncher())

	term.Run(context.Background(), "ls")
	history := term.History()
	require.Len(t, history, 3)
	assert.Equal(t, Line{Type: LineInput, Content: "ls"}, history[1])
	assert.Equal(t, Line{Type: LineOutput, Content: "(empty)"}, history[2])
}
