// Package gemini wraps the generative endpoints used by the OS shell:
// text, vision, image generation and speech synthesis. Every call is
// stateless; no conversation id exists, so each prompt must carry all the
// context it needs. Errors are returned as errors, and feature layers
// decide which sentinel (if any) stands in for a failed call.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"geminios/internal/config"
	"geminios/internal/logging"
)

// ErrEmptyResponse is returned when the service answered without usable
// content (no candidates, or no part of the requested modality).
var ErrEmptyResponse = errors.New("empty model response")

// Client is the gateway to the generative service.
type Client interface {
	// GenerateText runs a single-shot text completion with a system
	// instruction and returns the first candidate's text.
	GenerateText(ctx context.Context, prompt, system string) (string, error)

	// AnalyzeImage runs the vision endpoint over an inline image.
	AnalyzeImage(ctx context.Context, prompt, mimeType string, image []byte) (string, error)

	// GenerateImage returns raw image bytes for the prompt.
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)

	// Synthesize returns raw PCM audio (16-bit mono 24 kHz) for the text.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// GenAIClient implements Client on the official google.golang.org/genai SDK.
type GenAIClient struct {
	client     *genai.Client
	textModel  string
	imageModel string
	ttsModel   string
	ttsVoice   string
}

// New creates a gateway client from the LLM configuration.
func New(ctx context.Context, cfg config.LLMConfig) (*GenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c := &GenAIClient{
		client:     client,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		ttsModel:   cfg.TTSModel,
		ttsVoice:   cfg.TTSVoice,
	}
	if c.textModel == "" {
		c.textModel = "gemini-2.5-flash-preview-09-2025"
	}
	if c.imageModel == "" {
		c.imageModel = "gemini-2.5-flash-image-preview"
	}
	if c.ttsModel == "" {
		c.ttsModel = "gemini-2.5-flash-preview-tts"
	}
	if c.ttsVoice == "" {
		c.ttsVoice = "Kore"
	}
	return c, nil
}

// GenerateText implements Client.
func (c *GenAIClient) GenerateText(ctx context.Context, prompt, system string) (string, error) {
	timer := logging.StartTimer(logging.CategoryGateway, "generate_text")
	defer timer.Stop()

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.textModel, contents, cfg)
	if err != nil {
		logging.GatewayError("generate_text: %v", err)
		return "", fmt.Errorf("text generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// AnalyzeImage implements Client.
func (c *GenAIClient) AnalyzeImage(ctx context.Context, prompt, mimeType string, image []byte) (string, error) {
	timer := logging.StartTimer(logging.CategoryGateway, "analyze_image")
	defer timer.Stop()

	if mimeType == "" {
		mimeType = "image/png"
	}

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(image, mimeType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.textModel, contents, nil)
	if err != nil {
		logging.GatewayError("analyze_image: %v", err)
		return "", fmt.Errorf("vision analysis failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// GenerateImage implements Client.
func (c *GenAIClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	timer := logging.StartTimer(logging.CategoryGateway, "generate_image")
	defer timer.Stop()

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.imageModel, contents, cfg)
	if err != nil {
		logging.GatewayError("generate_image: %v", err)
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	if data := firstInlineData(resp); data != nil {
		return data, nil
	}
	return nil, ErrEmptyResponse
}

// Synthesize implements Client.
func (c *GenAIClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	timer := logging.StartTimer(logging.CategoryGateway, "synthesize")
	defer timer.Stop()

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: c.ttsVoice,
				},
			},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.ttsModel, contents, cfg)
	if err != nil {
		logging.GatewayError("synthesize: %v", err)
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}

	if data := firstInlineData(resp); data != nil {
		return data, nil
	}
	return nil, ErrEmptyResponse
}

// firstInlineData returns the first inline blob in the first candidate.
func firstInlineData(resp *genai.GenerateContentResponse) []byte {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	return nil
}
