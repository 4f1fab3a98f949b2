package assistant

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
	"geminios/internal/toolcall"
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

func newTestAssistant(t *testing.T, llm *fakeLLM) (*Assistant, *device.State, *mirror.Mirror) {
	t.Helper()

	store, err := docstore.New(docstore.TypeMemory)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := mirror.New(store)
	sess, err := identity.SignIn("")
	require.NoError(t, err)
	require.NoError(t, m.Attach(context.Background(), sess))
	t.Cleanup(m.Detach)

	// Wait for the chat seed so turns start from the welcome message.
	require.Eventually(t, func() bool {
		return len(m.Chat()) == 1
	}, time.Second, 5*time.Millisecond, "chat document was not seeded")

	state := device.NewState()
	launcher := device.NewLauncherWithOpener(func(string) error { return nil })
	notifs := device.NewNotificationCenter()
	dispatch := toolcall.NewDispatcher(state, launcher, notifs)
	return New(llm, m, dispatch, state, notifs), state, m
}

func TestSendAppendsUserAndAssistantTurns(t *testing.T) {
	llm := &fakeLLM{reply: "Hello back."}
	a, _, _ := newTestAssistant(t, llm)

	history, err := a.Send(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, mirror.RoleUser, history[1].Role)
	assert.Equal(t, "hello", history[1].Text)
	assert.Equal(t, mirror.RoleAssistant, history[2].Role)
	assert.Equal(t, "Hello back.", history[2].Text)
	assert.False(t, history[2].IsSystemAction)
}

func TestSendFailureKeepsUserMessage(t *testing.T) {
	llm := &fakeLLM{err: errors.New("transport down")}
	a, _, _ := newTestAssistant(t, llm)

	history, err := a.Send(context.Background(), "are you there?")
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, "are you there?", history[1].Text)
	assert.Equal(t, SentinelOffline, history[2].Text)
}

func TestSendDispatchesCommandAndLogsAction(t *testing.T) {
	llm := &fakeLLM{reply: "Sure. [[CMD:WIFI:]] Done."}
	a, state, _ := newTestAssistant(t, llm)

	history, err := a.Send(context.Background(), "toggle wifi")
	require.NoError(t, err)
	require.Len(t, history, 4)

	assert.Equal(t, "Sure.  Done.", history[2].Text)
	assert.Equal(t, ">> Toggling Uplink...", history[3].Text)
	assert.True(t, history[3].IsSystemAction)
	assert.False(t, state.Wifi(), "wifi flag should have flipped")
}

func TestSendEmptyInputIsIgnored(t *testing.T) {
	llm := &fakeLLM{reply: "should not be called"}
	a, _, _ := newTestAssistant(t, llm)

	history, err := a.Send(context.Background(), "   ")
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Empty(t, llm.prompts)
}

func TestSystemPromptCarriesDeviceState(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	a, state, _ := newTestAssistant(t, llm)
	state.SetBattery(42)
	a.notifs.Push(device.Notification{App: "Gmail", Content: "budget alert"})

	_, err := a.Send(context.Background(), "status?")
	require.NoError(t, err)
	require.Len(t, llm.systems, 1)

	assert.Contains(t, llm.systems[0], "You are the Gemini OS Kernel.")
	assert.Contains(t, llm.systems[0], "Wifi:true")
	assert.Contains(t, llm.systems[0], "Battery:42%")
	assert.Contains(t, llm.systems[0], "Files:2")
	assert.Contains(t, llm.systems[0], "[Gmail] budget alert")
	assert.Contains(t, llm.systems[0], "[[CMD:LAUNCH:app]]")
}

func TestTriageNotification(t *testing.T) {
	llm := &fakeLLM{reply: "```json\n{\"insight\": \"Dinner invite from Mom\", \"replies\": [\"On my way\", \"Running late\"]}\n```"}
	a, _, _ := newTestAssistant(t, llm)

	triage, err := a.TriageNotification(context.Background(), device.Notification{
		App: "WhatsApp", Title: "Mom", Content: "Are you coming for dinner tonight?",
	})
	require.NoError(t, err)

	assert.Equal(t, "Dinner invite from Mom", triage.Insight)
	assert.Equal(t, []string{"On my way", "Running late"}, triage.Replies)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "[WhatsApp] Mom: Are you coming for dinner tonight?")
}

func TestTriageNotificationMalformedPayload(t *testing.T) {
	llm := &fakeLLM{reply: "I cannot produce JSON right now."}
	a, _, _ := newTestAssistant(t, llm)

	_, err := a.TriageNotification(context.Background(), device.Notification{App: "Gmail"})
	assert.Error(t, err)
}

func TestVoiceModeSpeaksReply(t *testing.T) {
	llm := &fakeLLM{reply: "spoken reply"}
	a, _, _ := newTestAssistant(t, llm)

	var spoken []string
	a.SetVoiceMode(true, func(ctx context.Context, text string) {
		spoken = append(spoken, text)
	})

	_, err := a.Send(context.Background(), "say something")
	require.NoError(t, err)
	assert.Equal(t, []string{"spoken reply"}, spoken)
}
