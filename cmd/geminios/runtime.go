package main

import (
	"context"
	"fmt"

	"geminios/internal/apps"
	"geminios/internal/assistant"
	"geminios/internal/audio"
	"geminios/internal/config"
	"geminios/internal/device"
	"geminios/internal/docstore"
	"geminios/internal/gemini"
	"geminios/internal/identity"
	"geminios/internal/logging"
	"geminios/internal/mirror"
	"geminios/internal/terminal"
	"geminios/internal/toolcall"

	filemgr "geminios/internal/files"
)

// runtime is the assembled OS: config, store, identity, the state mirror
// and every feature surface wired on top of them.
type runtime struct {
	cfg    config.Config
	store  docstore.Store
	sess   *identity.Session
	mirror *mirror.Mirror

	llm      gemini.Client
	state    *device.State
	notifs   *device.NotificationCenter
	launcher *device.Launcher

	assistant *assistant.Assistant
	terminal  *terminal.Terminal
	files     *filemgr.Manager
	vision    *apps.Vision
	music     *apps.Music
	search    *apps.Search
	devops    *apps.DevOps
	system    *apps.System
}

// bootRuntime loads config, signs in, attaches the mirror and wires the
// feature surfaces. Flag values override config.
func bootRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if storeDriver != "" {
		cfg.Store.Driver = storeDriver
	}

	if err := logging.Initialize(config.BaseDir(), logging.Options{
		DebugMode:  cfg.Logging.DebugMode,
		Categories: cfg.Logging.Categories,
		Level:      cfg.Logging.Level,
		JSONFormat: cfg.Logging.JSONFormat,
	}); err != nil {
		return nil, err
	}
	logging.Boot("booting store=%s", cfg.Store.Driver)

	store, err := docstore.FromConfig(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}

	sess, err := identity.SignIn(authToken)
	if err != nil {
		store.Close()
		return nil, err
	}

	m := mirror.New(store)
	if err := m.Attach(ctx, sess); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to attach state mirror: %w", err)
	}

	llm, err := gemini.New(ctx, cfg.LLM)
	if err != nil {
		m.Detach()
		store.Close()
		return nil, err
	}

	state := device.NewState()
	notifs := device.NewNotificationCenter()
	launcher := device.NewLauncher()
	dispatch := toolcall.NewDispatcher(state, launcher, notifs)

	rt := &runtime{
		cfg:       cfg,
		store:     store,
		sess:      sess,
		mirror:    m,
		llm:       llm,
		state:     state,
		notifs:    notifs,
		launcher:  launcher,
		assistant: assistant.New(llm, m, dispatch, state, notifs),
		terminal:  terminal.New(llm, m, launcher),
		files:     filemgr.NewManager(llm, m),
		vision:    apps.NewVision(llm),
		music:     apps.NewMusic(llm),
		search:    apps.NewSearch(llm),
		devops:    apps.NewDevOps(llm),
		system:    apps.NewSystem(llm, m, state),
	}

	if cfg.UX.VoiceMode {
		rt.assistant.SetVoiceMode(true, rt.speak)
	}
	return rt, nil
}

// speak synthesizes and plays a reply; failures are logged, never fatal.
func (rt *runtime) speak(ctx context.Context, text string) {
	pcm, err := rt.llm.Synthesize(ctx, text)
	if err != nil {
		logging.Audio("synthesis failed: %v", err)
		return
	}
	if err := audio.Play(rt.cfg.UX.Player, pcm); err != nil {
		logging.Audio("playback failed: %v", err)
	}
}

// close tears down in reverse attach order.
func (rt *runtime) close() {
	rt.mirror.Detach()
	identity.SignOut(rt.sess)
	if err := rt.store.Close(); err != nil {
		logging.StoreError("store close: %v", err)
	}
	logging.Boot("shutdown complete")
}
