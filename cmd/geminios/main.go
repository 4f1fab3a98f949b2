package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"geminios/internal/config"
	"geminios/internal/logging"
)

var (
	// Global flags
	verbose     bool
	apiKey      string
	storeDriver string
	authToken   string
	timeout     time.Duration

	// Logger for non-interactive commands
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "geminios",
	Short: "Gemini OS - an AI-native phone shell in your terminal (Kernel v2.1)",
	Long: `Gemini OS is a simulated phone operating system driven by Gemini.

Your virtual filesystem, chat transcript and wallpaper are synchronized to a
remote document store and scoped to your identity; any surface (chat,
terminal, file manager) observes the same state.

Run without arguments to boot the interactive shell.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Interactive mode draws its own UI; keep stdout clean there.
		if cmd.Use == "geminios" && cmd.CalledAs() == "geminios" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: boot the interactive shell
		return runShell()
	},
}

// versionCmd prints the build identity
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the Gemini OS version",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Default()
		fmt.Printf("Gemini OS %s (Cloud-Linked)\n", cfg.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "Document store driver: memory, sqlite, redis, supabase")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "Auth token for a stable identity (default: anonymous)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Remote call timeout")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(termCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(musicCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(devopsCmd)
	rootCmd.AddCommand(wallpaperCmd)
	rootCmd.AddCommand(speakCmd)
	rootCmd.AddCommand(visionCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
