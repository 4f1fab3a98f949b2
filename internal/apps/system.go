package apps

import (
	"context"
	"encoding/base64"
	"fmt"

	"geminios/internal/device"
	"geminios/internal/gemini"
	"geminios/internal/logging"
	"geminios/internal/mirror"
)

// wallpaperSuffix steers image generation toward usable backgrounds.
const wallpaperSuffix = ", phone wallpaper, abstract, 4k, high quality"

// System groups the shell-level helpers: wallpaper generation and the
// home-screen briefing.
type System struct {
	llm    gemini.Client
	mirror *mirror.Mirror
	state  *device.State
}

// NewSystem wires the system panel.
func NewSystem(llm gemini.Client, m *mirror.Mirror, state *device.State) *System {
	return &System{llm: llm, mirror: m, state: state}
}

// GenerateWallpaper generates an image for the prompt and persists it to
// the settings document. A blank prompt does nothing. Returns the image
// bytes for immediate display.
func (s *System) GenerateWallpaper(ctx context.Context, prompt string) ([]byte, error) {
	if prompt == "" {
		return nil, nil
	}

	img, err := s.llm.GenerateImage(ctx, prompt+wallpaperSuffix)
	if err != nil {
		return nil, fmt.Errorf("wallpaper generation failed: %w", err)
	}

	ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)
	if err := s.mirror.SaveWallpaper(ctx, ref); err != nil {
		logging.StoreError("wallpaper save: %v", err)
	}
	return img, nil
}

// Briefing generates the home-screen greeting from live system stats.
func (s *System) Briefing(ctx context.Context) (string, error) {
	return s.llm.GenerateText(ctx, fmt.Sprintf("Stats: Load %d%%", s.state.Load()), "Greeting.")
}
