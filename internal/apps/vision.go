// Package apps holds the small feature panels built on the generative
// gateway: vision, music, universal search, the dev console, wallpaper
// generation and the system briefing. Each panel is a thin prompt layer;
// none of them touch the synchronized documents except wallpaper.
package apps

import (
	"context"
	"errors"
	"fmt"

	"geminios/internal/gemini"
	"geminios/internal/logging"
)

// Vision failure sentinels. Failures surface inline, never as errors.
const (
	VisionMalfunction = "Visual Cortex Malfunction."
	VisionFailure     = "Vision Failure."
)

// Vision analyzes images and simulated screen state.
type Vision struct {
	llm gemini.Client
}

// NewVision wires the vision panel.
func NewVision(llm gemini.Client) *Vision {
	return &Vision{llm: llm}
}

// Analyze describes an uploaded image. Transport failure and an empty
// answer each map to their own sentinel string.
func (v *Vision) Analyze(ctx context.Context, mimeType string, image []byte) string {
	res, err := v.llm.AnalyzeImage(ctx, "Analyze this image.", mimeType, image)
	if err != nil {
		if errors.Is(err, gemini.ErrEmptyResponse) {
			return VisionFailure
		}
		logging.Get(logging.CategoryApps).Error("vision analyze: %v", err)
		return VisionMalfunction
	}
	if res == "" {
		return VisionFailure
	}
	return res
}

// ScanScreen describes the current shell state via the text endpoint
// (there is no screenshot; the model narrates from the state summary).
func (v *Vision) ScanScreen(ctx context.Context, activeTab string, notifCount int) (string, error) {
	prompt := fmt.Sprintf("Describe screen state: %s, Notifs: %d", activeTab, notifCount)
	return v.llm.GenerateText(ctx, prompt, "Screen Reader.")
}
