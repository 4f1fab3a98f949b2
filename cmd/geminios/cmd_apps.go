package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"geminios/internal/apps"
)

// musicCmd invents a track and optionally saves its cover art.
var musicCmd = &cobra.Command{
	Use:   "music",
	Short: "Have the DJ invent a track",
	RunE:  runMusic,
}

var musicCoverOut string

// searchCmd runs the universal search panel.
var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search across simulated files, contacts, mail and apps",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

// devopsCmd groups the dev console operations.
var devopsCmd = &cobra.Command{
	Use:   "devops",
	Short: "Dev console: repositories, analysis, PR drafts",
}

var devopsReposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List tracked repositories",
	RunE:  runDevopsRepos,
}

var devopsAnalyzeCmd = &cobra.Command{
	Use:   "analyze [repo]",
	Short: "Analyze a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runDevopsAnalyze,
}

var devopsPRCmd = &cobra.Command{
	Use:   "pr [repo] [feature...]",
	Short: "Draft a pull request for a feature",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runDevopsPR,
}

func init() {
	musicCmd.Flags().StringVarP(&musicCoverOut, "cover", "c", "", "Write the cover art to this path")
	devopsCmd.AddCommand(devopsReposCmd)
	devopsCmd.AddCommand(devopsAnalyzeCmd)
	devopsCmd.AddCommand(devopsPRCmd)
}

func runMusic(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	track, err := rt.music.Generate(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s - %s (%s)\n", track.Artist, track.Title, track.Vibe)
	if musicCoverOut != "" && len(track.CoverArt) > 0 {
		if err := os.WriteFile(musicCoverOut, track.CoverArt, 0o644); err != nil {
			return err
		}
		fmt.Printf("cover art written to %s\n", musicCoverOut)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	results, err := rt.search.Query(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%-8s %s\n", r.Type, r.Title)
		if r.Subtitle != "" {
			fmt.Printf("         %s\n", r.Subtitle)
		}
	}
	return nil
}

func runDevopsRepos(cmd *cobra.Command, args []string) error {
	for _, r := range apps.Repos() {
		fmt.Printf("%-24s %-12s %5d stars\n", r.Name, r.Language, r.Stars)
	}
	return nil
}

func runDevopsAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	analysis, err := rt.devops.AnalyzeRepo(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Println(analysis)
	return nil
}

func runDevopsPR(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	rt, err := bootRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	draft, err := rt.devops.DraftPR(ctx, strings.Join(args[1:], " "), args[0])
	if err != nil {
		return err
	}
	fmt.Println(draft)
	return nil
}
