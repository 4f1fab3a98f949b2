package apps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"geminios/internal/gemini"
	"geminios/internal/logging"
)

// Track is one invented music track. CoverArt holds raw image bytes and
// may be nil when cover generation failed (the track still plays).
type Track struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Vibe     string `json:"vibe"`
	CoverArt []byte `json:"-"`
}

// Music invents tracks and cover art.
type Music struct {
	llm gemini.Client
}

// NewMusic wires the music panel.
func NewMusic(llm gemini.Client) *Music {
	return &Music{llm: llm}
}

// Generate asks the model to invent a track, then generates its cover.
// A cover failure is tolerated; a metadata failure is not.
func (m *Music) Generate(ctx context.Context) (*Track, error) {
	meta, err := m.llm.GenerateText(ctx, "Invent a song track (JSON: title, artist, vibe)", "Music DJ")
	if err != nil {
		return nil, fmt.Errorf("track generation failed: %w", err)
	}

	var track Track
	cleaned := strings.TrimSpace(stripJSONFences(meta))
	if err := json.Unmarshal([]byte(cleaned), &track); err != nil {
		return nil, fmt.Errorf("bad track metadata: %w", err)
	}

	art, err := m.llm.GenerateImage(ctx, fmt.Sprintf("Cover for %s %s", track.Title, track.Vibe))
	if err != nil {
		logging.Get(logging.CategoryApps).Warn("cover art failed for %q: %v", track.Title, err)
	} else {
		track.CoverArt = art
	}
	return &track, nil
}

func stripJSONFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	return strings.ReplaceAll(s, "```", "")
}
