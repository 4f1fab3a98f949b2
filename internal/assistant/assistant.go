// Package assistant implements the OS chat surface: it turns one user
// message into a kernel-prompted completion, applies any tool call the
// model emitted, and records the exchange in the synchronized transcript.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"geminios/internal/device"
	"geminios/internal/gemini"
	"geminios/internal/logging"
	"geminios/internal/mirror"
	"geminios/internal/toolcall"
)

// SentinelOffline is shown as the assistant turn when the text endpoint
// fails. It stands in for the reply; it never replaces the user's message.
const SentinelOffline = "System Uplink Offline."

const kernelPromptFormat = "You are the Gemini OS Kernel. State: %s. Notifs: %s. TOOLS: [[CMD:LAUNCH:app]], [[CMD:WIFI:toggle]], [[CMD:CLEAR]]. Concise."

// Speaker voices a reply. Wired to speech synthesis when voice mode is on.
type Speaker func(ctx context.Context, text string)

// Assistant binds the chat surface to its collaborators.
type Assistant struct {
	llm      gemini.Client
	mirror   *mirror.Mirror
	dispatch *toolcall.Dispatcher
	state    *device.State
	notifs   *device.NotificationCenter

	voiceMode bool
	speak     Speaker
}

// New wires an assistant. speak may be nil; it is only used in voice mode.
func New(llm gemini.Client, m *mirror.Mirror, d *toolcall.Dispatcher, state *device.State, notifs *device.NotificationCenter) *Assistant {
	return &Assistant{llm: llm, mirror: m, dispatch: d, state: state, notifs: notifs}
}

// SetVoiceMode enables or disables spoken replies.
func (a *Assistant) SetVoiceMode(on bool, speak Speaker) {
	a.voiceMode = on
	a.speak = speak
}

// systemPrompt renders the kernel prompt from live device state.
func (a *Assistant) systemPrompt() string {
	state := fmt.Sprintf("Wifi:%t, Battery:%d%%, Files:%d",
		a.state.Wifi(), a.state.Battery(), len(a.mirror.Files()))
	return fmt.Sprintf(kernelPromptFormat, state, a.notifs.Context())
}

// Send runs one chat turn and returns the updated transcript. The user's
// message is appended and persisted before the model call, so a failed
// call can never lose it; the failure is recorded as the sentinel
// assistant turn instead.
func (a *Assistant) Send(ctx context.Context, text string) ([]mirror.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return a.mirror.Chat(), nil
	}

	history := append(a.mirror.Chat(), mirror.ChatMessage{Role: mirror.RoleUser, Text: text})
	if err := a.mirror.SaveChat(ctx, history); err != nil {
		logging.StoreError("chat save (user turn): %v", err)
	}

	response, err := a.llm.GenerateText(ctx, text, a.systemPrompt())
	if err != nil {
		logging.Shell("chat turn failed: %v", err)
		response = SentinelOffline
	}

	display, actionLog := a.dispatch.Apply(response)

	history = append(history, mirror.ChatMessage{Role: mirror.RoleAssistant, Text: display})
	if actionLog != "" {
		history = append(history, mirror.ChatMessage{
			Role:           mirror.RoleAssistant,
			Text:           ">> " + actionLog,
			IsSystemAction: true,
		})
	}

	if err := a.mirror.SaveChat(ctx, history); err != nil {
		logging.StoreError("chat save (assistant turn): %v", err)
	}

	if a.voiceMode && a.speak != nil && display != "" {
		a.speak(ctx, display)
	}
	return history, nil
}

// Triage is the model's take on one notification.
type Triage struct {
	Insight string   `json:"insight"`
	Replies []string `json:"replies"`
}

// TriageNotification summarizes one notification and proposes smart
// replies. A malformed model payload is an error; the caller leaves the
// notification untouched in that case.
func (a *Assistant) TriageNotification(ctx context.Context, n device.Notification) (Triage, error) {
	prompt := fmt.Sprintf("Notification: [%s] %s: %s. JSON: {insight, replies[]}.", n.App, n.Title, n.Content)
	raw, err := a.llm.GenerateText(ctx, prompt, "Notification triage.")
	if err != nil {
		return Triage{}, err
	}

	raw = strings.TrimSpace(strings.NewReplacer("```json", "", "```", "").Replace(raw))
	var t Triage
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return Triage{}, fmt.Errorf("unusable triage payload: %w", err)
	}
	return t, nil
}
