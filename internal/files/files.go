// Package files is the virtual file manager over the synchronized
// filesystem document: open/new/save with an AI lint gate, inline code
// completion, and whole-project scaffolding.
package files

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"geminios/internal/gemini"
	"geminios/internal/logging"
	"geminios/internal/mirror"
)

// ErrLint is wrapped around the model's lint rejection; the message is
// shown inline and the save is aborted.
var ErrLint = errors.New("lint rejected")

// ErrScaffold is returned when the scaffold response could not be parsed.
// No partial file set is ever applied.
var ErrScaffold = errors.New("scaffold failed")

var fenceBlock = regexp.MustCompile("(?s)```.*?\n")

// StripFences removes markdown code fencing from a model reply: fence
// opener lines (with any language tag) and stray backtick runs.
func StripFences(s string) string {
	s = fenceBlock.ReplaceAllString(s, "")
	return strings.ReplaceAll(s, "```", "")
}

// Manager mutates the file collection through the mirror.
type Manager struct {
	llm    gemini.Client
	mirror *mirror.Mirror
}

// NewManager wires the file manager.
func NewManager(llm gemini.Client, m *mirror.Mirror) *Manager {
	return &Manager{llm: llm, mirror: m}
}

// List returns the current file collection.
func (mg *Manager) List() []mirror.FileEntry {
	return mg.mirror.Files()
}

// Get returns the file with the given id.
func (mg *Manager) Get(id string) (mirror.FileEntry, bool) {
	for _, f := range mg.mirror.Files() {
		if f.ID == id {
			return f, true
		}
	}
	return mirror.FileEntry{}, false
}

// NewUntitled returns the blank editor state for a new file.
func (mg *Manager) NewUntitled() mirror.FileEntry {
	return mirror.FileEntry{Name: "untitled.txt", Language: "plaintext"}
}

// SmartSave runs the lint gate and persists the cleaned content. An
// empty fileID creates a new entry; otherwise the matching entry's
// content and name are replaced. On lint rejection the collection is
// untouched and the rejection text is carried in the error.
func (mg *Manager) SmartSave(ctx context.Context, fileID, name, content string) error {
	res, err := mg.llm.GenerateText(ctx, "Lint this code:\n"+content,
		"Return 'ERROR: <reason>' or the clean code.")
	if err != nil {
		return fmt.Errorf("lint call failed: %w", err)
	}
	if strings.HasPrefix(res, "ERROR") {
		logging.Files("lint rejected %s: %s", name, res)
		return fmt.Errorf("%w: %s", ErrLint, res)
	}

	clean := strings.TrimSpace(StripFences(res))
	updated := mg.mirror.Files()
	if fileID == "" {
		updated = append(updated, mirror.FileEntry{
			ID:       uuid.NewString(),
			Name:     name,
			Content:  clean,
			Language: "plaintext",
		})
	} else {
		for i := range updated {
			if updated[i].ID == fileID {
				updated[i].Content = clean
				updated[i].Name = name
			}
		}
	}

	logging.Files("smart save %s (%d bytes)", name, len(clean))
	return mg.mirror.SaveFiles(ctx, updated)
}

// Assist completes the editor buffer in place and returns the new
// content. Fences are stripped but surrounding whitespace is kept.
func (mg *Manager) Assist(ctx context.Context, content string) (string, error) {
	res, err := mg.llm.GenerateText(ctx, "Complete code:\n"+content,
		"Dev assistant. Return ONLY code.")
	if err != nil {
		return "", fmt.Errorf("code assist failed: %w", err)
	}
	return StripFences(res), nil
}

type scaffoldFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Scaffold asks the model for a whole project and prepends the generated
// files to the collection. A malformed response applies nothing.
func (mg *Manager) Scaffold(ctx context.Context, goal string) ([]mirror.FileEntry, error) {
	res, err := mg.llm.GenerateText(ctx,
		fmt.Sprintf("Scaffold project: %s. JSON array {name, content}.", goal),
		"Expert Dev.")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScaffold, err)
	}

	var parsed []scaffoldFile
	if err := json.Unmarshal([]byte(strings.TrimSpace(StripFences(res))), &parsed); err != nil {
		logging.Files("scaffold parse failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrScaffold, err)
	}

	generated := make([]mirror.FileEntry, 0, len(parsed))
	for _, f := range parsed {
		generated = append(generated, mirror.FileEntry{
			ID:       uuid.NewString(),
			Name:     f.Name,
			Content:  f.Content,
			Language: "code",
		})
	}

	updated := append(generated, mg.mirror.Files()...)
	if err := mg.mirror.SaveFiles(ctx, updated); err != nil {
		return nil, err
	}
	logging.Files("scaffolded %d files for %q", len(generated), goal)
	return generated, nil
}
