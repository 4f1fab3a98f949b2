package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"geminios/internal/audio"
)

// wallpaperCmd generates a wallpaper and stores it in settings.
var wallpaperCmd = &cobra.Command{
	Use:   "wallpaper [prompt...]",
	Short: "Generate a wallpaper and sync it to your settings",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWallpaper,
}

var wallpaperOut string

// speakCmd synthesizes speech to a WAV file or the configured player.
var speakCmd = &cobra.Command{
	Use:   "speak [text...]",
	Short: "Synthesize speech for the given text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSpeak,
}

var speakOut string

// visionCmd analyzes a local image.
var visionCmd = &cobra.Command{
	Use:   "vision [image-path]",
	Short: "Analyze an image with the visual cortex",
	Args:  cobra.ExactArgs(1),
	RunE:  runVision,
}

// notifyCmd simulates an incoming notification and summarizes it.
var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Simulate an incoming notification",
	RunE:  runNotify,
}

// statusCmd prints the device and sync state.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show device and sync status",
	RunE:  runStatus,
}

func init() {
	wallpaperCmd.Flags().StringVarP(&wallpaperOut, "out", "o", "", "Also write the image to this path")
	speakCmd.Flags().StringVarP(&speakOut, "out", "o", "", "Write a WAV file instead of playing")
}

func runWallpaper(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	prompt := strings.Join(args, " ")
	logger.Info("generating wallpaper", zap.String("prompt", prompt))

	img, err := rt.system.GenerateWallpaper(ctx, prompt)
	if err != nil {
		return err
	}

	if wallpaperOut != "" {
		if err := os.WriteFile(wallpaperOut, img, 0o644); err != nil {
			return err
		}
		fmt.Printf("wallpaper written to %s\n", wallpaperOut)
	} else {
		fmt.Printf("wallpaper synced to settings (%d bytes)\n", len(img))
	}
	return nil
}

func runSpeak(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	pcm, err := rt.llm.Synthesize(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if speakOut != "" {
		if err := audio.WriteWAV(speakOut, pcm); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", speakOut)
		return nil
	}
	return audio.Play(rt.cfg.UX.Player, pcm)
}

func runVision(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	image, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	mimeType := mime.TypeByExtension(filepath.Ext(args[0]))

	fmt.Println(rt.vision.Analyze(ctx, mimeType, image))
	return nil
}

func runNotify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	n := rt.notifs.Simulate()
	fmt.Printf("[%s] %s: %s\n", n.App, n.Title, n.Content)

	triage, err := rt.assistant.TriageNotification(ctx, n)
	if err != nil {
		logger.Warn("triage failed", zap.Error(err))
		return nil
	}
	rt.notifs.Resolve(n.ID, triage.Insight, triage.Replies)
	fmt.Printf("insight: %s\n", triage.Insight)
	for _, reply := range triage.Replies {
		fmt.Printf("  reply: %s\n", reply)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	fmt.Printf("identity:   %s (%s)\n", rt.sess.Identity.UID, rt.sess.Identity.Provider)
	fmt.Printf("store:      %s\n", rt.cfg.Store.Driver)
	fmt.Printf("wifi:       %t\n", rt.state.Wifi())
	fmt.Printf("battery:    %d%%\n", rt.state.Battery())
	fmt.Printf("files:      %d\n", len(rt.mirror.Files()))
	fmt.Printf("chat turns: %d\n", len(rt.mirror.Chat()))
	if rt.mirror.Wallpaper() != "" {
		fmt.Println("wallpaper:  set")
	} else {
		fmt.Println("wallpaper:  none")
	}
	return nil
}
