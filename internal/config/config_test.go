package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.LLM.TextModel != "gemini-2.5-flash-preview-09-2025" {
		t.Errorf("text model = %q", cfg.LLM.TextModel)
	}
	if cfg.LLM.TTSVoice != "Kore" {
		t.Errorf("tts voice = %q", cfg.LLM.TTSVoice)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("store driver = %q", cfg.Store.Driver)
	}
	if cfg.UX.Theme != "dark" || cfg.UX.Player != "aplay" {
		t.Errorf("ux defaults = %+v", cfg.UX)
	}
	if cfg.Logging.DebugMode {
		t.Error("debug mode must default off")
	}
}

func TestBaseDirHonorsEnv(t *testing.T) {
	t.Setenv("GEMINIOS_HOME", "/tmp/gos-test")
	if got := BaseDir(); got != "/tmp/gos-test" {
		t.Errorf("BaseDir() = %q", got)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("GEMINIOS_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite defaults", cfg.Store.Driver)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("GEMINIOS_HOME", t.TempDir())

	cfg := Default()
	cfg.LLM.APIKey = "test-key"
	cfg.Store.Driver = "memory"
	cfg.UX.VoiceMode = true
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.LLM.APIKey != "test-key" {
		t.Errorf("api key = %q", loaded.LLM.APIKey)
	}
	if loaded.Store.Driver != "memory" {
		t.Errorf("driver = %q", loaded.Store.Driver)
	}
	if !loaded.UX.VoiceMode {
		t.Error("voice mode not persisted")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GEMINIOS_HOME", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("GEMINIOS_STORE", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("GEMINIOS_DEBUG", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("api key = %q", cfg.LLM.APIKey)
	}
	if cfg.Store.Driver != "redis" || cfg.Store.RedisAddr != "localhost:6379" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if !cfg.Logging.DebugMode {
		t.Error("GEMINIOS_DEBUG=1 must enable debug mode")
	}
}

func TestEnvOverridesBeatFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GEMINIOS_HOME", dir)

	cfg := Default()
	cfg.LLM.APIKey = "file-key"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Setenv("GEMINI_API_KEY", "env-key")
	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.LLM.APIKey != "env-key" {
		t.Errorf("api key = %q, env must override file", loaded.LLM.APIKey)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GEMINIOS_HOME", dir)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{not yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("malformed config must return an error")
	}
}

func TestRequestTimeout(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"", 2 * time.Minute},
		{"garbage", 2 * time.Minute},
		{"-5s", 2 * time.Minute},
	}
	for _, tt := range tests {
		c := LLMConfig{Timeout: tt.in}
		if got := c.RequestTimeout(); got != tt.want {
			t.Errorf("RequestTimeout(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolvedDatabasePath(t *testing.T) {
	t.Setenv("GEMINIOS_HOME", "/tmp/gos-home")

	c := StoreConfig{}
	if got := c.ResolvedDatabasePath(); got != filepath.Join("/tmp/gos-home", "documents.db") {
		t.Errorf("default path = %q", got)
	}

	c.DatabasePath = "/data/docs.db"
	if got := c.ResolvedDatabasePath(); got != "/data/docs.db" {
		t.Errorf("explicit path = %q", got)
	}
}

func TestResolvedPollInterval(t *testing.T) {
	c := StoreConfig{PollInterval: "500ms"}
	if got := c.ResolvedPollInterval(); got != 500*time.Millisecond {
		t.Errorf("interval = %v", got)
	}
	c.PollInterval = "bogus"
	if got := c.ResolvedPollInterval(); got != 3*time.Second {
		t.Errorf("fallback = %v", got)
	}
}
