package config

import "time"

// LLMConfig configures the Gemini gateway.
type LLMConfig struct {
	APIKey     string `yaml:"api_key"`
	TextModel  string `yaml:"text_model"`
	ImageModel string `yaml:"image_model"`
	TTSModel   string `yaml:"tts_model"`
	TTSVoice   string `yaml:"tts_voice"`
	Timeout    string `yaml:"timeout"`
}

func defaultLLM() LLMConfig {
	return LLMConfig{
		TextModel:  "gemini-2.5-flash-preview-09-2025",
		ImageModel: "gemini-2.5-flash-image-preview",
		TTSModel:   "gemini-2.5-flash-preview-tts",
		TTSVoice:   "Kore",
		Timeout:    "2m",
	}
}

// RequestTimeout parses the configured timeout, falling back to two minutes.
func (c LLMConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}
