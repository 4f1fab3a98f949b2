package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	filemgr "geminios/internal/files"
)

// filesCmd groups file manager operations.
var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage the synchronized virtual filesystem",
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List virtual files",
	RunE:  runFilesList,
}

var filesCatCmd = &cobra.Command{
	Use:   "cat [name]",
	Short: "Print a virtual file's content",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilesCat,
}

var filesSaveCmd = &cobra.Command{
	Use:   "save [name] [local-path]",
	Short: "Lint a local file and save it into the virtual filesystem",
	Long: `Runs the AI lint gate over the local file's content. If the lint
passes, the cleaned content is saved under the given virtual name
(updating an existing entry of that name, or creating a new one).`,
	Args: cobra.ExactArgs(2),
	RunE: runFilesSave,
}

var filesScaffoldCmd = &cobra.Command{
	Use:   "scaffold [project idea...]",
	Short: "Generate a whole project into the virtual filesystem",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFilesScaffold,
}

var filesExportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Export virtual files to a local directory and watch for edits",
	Long: `Writes every virtual file into the directory and keeps watching it:
local edits are folded back into the synchronized filesystem until
interrupted. Defaults to the configured workspace directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFilesExport,
}

func init() {
	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesCatCmd)
	filesCmd.AddCommand(filesSaveCmd)
	filesCmd.AddCommand(filesScaffoldCmd)
	filesCmd.AddCommand(filesExportCmd)
}

// waitForSync gives the mirror a moment to adopt or seed the filesystem
// document after attach.
func waitForSync(rt *runtime) {
	deadline := time.Now().Add(3 * time.Second)
	for len(rt.mirror.Files()) == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
}

func runFilesList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	waitForSync(rt)

	for _, f := range rt.files.List() {
		fmt.Printf("%-24s %8d bytes  %s\n", f.Name, len(f.Content), f.Language)
	}
	return nil
}

func runFilesCat(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	waitForSync(rt)

	for _, f := range rt.files.List() {
		if f.Name == args[0] {
			fmt.Print(f.Content)
			if !strings.HasSuffix(f.Content, "\n") {
				fmt.Println()
			}
			return nil
		}
	}
	return fmt.Errorf("no such virtual file: %s", args[0])
}

func runFilesSave(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	waitForSync(rt)

	name, localPath := args[0], args[1]
	content, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}

	// Reuse an existing entry of the same name.
	fileID := ""
	for _, f := range rt.files.List() {
		if f.Name == name {
			fileID = f.ID
			break
		}
	}

	err = rt.files.SmartSave(ctx, fileID, name, string(content))
	if errors.Is(err, filemgr.ErrLint) {
		fmt.Println(err.Error())
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("saved %s\n", name)
	return nil
}

func runFilesScaffold(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	waitForSync(rt)

	generated, err := rt.files.Scaffold(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	for _, f := range generated {
		fmt.Printf("created %s (%d bytes)\n", f.Name, len(f.Content))
	}
	return nil
}

func runFilesExport(cmd *cobra.Command, args []string) error {
	// No timeout: the watch loop runs until interrupted.
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	waitForSync(rt)

	dir := rt.cfg.UX.WorkspaceDir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		dir = "geminios-workspace"
	}

	bridge, err := filemgr.NewBridge(rt.mirror, dir)
	if err != nil {
		return err
	}
	if err := bridge.Start(ctx); err != nil {
		bridge.Close()
		return err
	}
	defer bridge.Close()

	fmt.Printf("exported %d files to %s; watching for edits (ctrl-c to stop)\n",
		len(rt.files.List()), bridge.Dir())
	<-ctx.Done()
	return nil
}
