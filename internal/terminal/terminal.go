// Package terminal is the tiny local shell layered in front of the text
// endpoint. Two built-ins (ls, open/launch) short-circuit locally; every
// other command is simulated by the model with the virtual file names as
// context.
package terminal

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"geminios/internal/device"
	"geminios/internal/gemini"
	"geminios/internal/logging"
	"geminios/internal/mirror"
)

// Banner is the fixed first line of a fresh terminal session.
const Banner = "Gemini Kernel v2.1 (Cloud-Linked)"

// LineType distinguishes echoed input from command output.
type LineType string

const (
	LineInput  LineType = "input"
	LineOutput LineType = "output"
)

// Line is one entry of the append-only scrollback.
type Line struct {
	Type    LineType
	Content string
}

// Terminal interprets commands against the synchronized filesystem.
type Terminal struct {
	llm      gemini.Client
	mirror   *mirror.Mirror
	launcher *device.Launcher

	mu      sync.Mutex
	history []Line
}

// New returns a terminal with the banner already in scrollback.
func New(llm gemini.Client, m *mirror.Mirror, launcher *device.Launcher) *Terminal {
	return &Terminal{
		llm:      llm,
		mirror:   m,
		launcher: launcher,
		history:  []Line{{Type: LineOutput, Content: Banner}},
	}
}

// History returns a copy of the scrollback.
func (t *Terminal) History() []Line {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Line(nil), t.history...)
}

func (t *Terminal) append(lines ...Line) {
	t.mu.Lock()
	t.history = append(t.history, lines...)
	t.mu.Unlock()
}

// Run interprets one command line, appends the echoed input and its
// output to scrollback, and returns the output text. Blank input is
// ignored entirely (no echo, no output).
func (t *Terminal) Run(ctx context.Context, cmd string) string {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return ""
	}
	t.append(Line{Type: LineInput, Content: cmd})

	output := t.eval(ctx, cmd)
	t.append(Line{Type: LineOutput, Content: output})
	return output
}

func (t *Terminal) eval(ctx context.Context, cmd string) string {
	args := strings.Split(cmd, " ")
	switch args[0] {
	case "ls":
		names := t.fileNames()
		if len(names) == 0 {
			return "(empty)"
		}
		return strings.Join(names, "  ")

	case "open", "launch":
		target := ""
		if len(args) > 1 {
			target = args[1]
		}
		res := t.launcher.Launch(target)
		logging.Terminal("%s %q ok=%t", args[0], target, res.OK)
		return res.Message
	}

	prompt := fmt.Sprintf("Simulate terminal output for: %q. Filesystem: %s",
		cmd, strings.Join(t.fileNames(), ","))
	response, err := t.llm.GenerateText(ctx, prompt, "You are /bin/bash.")
	if err != nil {
		logging.Terminal("simulation failed: %v", err)
		return assistantOffline
	}
	return strings.ReplaceAll(response, "```", "")
}

// assistantOffline mirrors the chat surface's failure sentinel so both
// surfaces degrade the same way.
const assistantOffline = "System Uplink Offline."

func (t *Terminal) fileNames() []string {
	files := t.mirror.Files()
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return names
}
