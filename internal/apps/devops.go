package apps

import (
	"context"
	"fmt"

	"geminios/internal/gemini"
)

// Repo is one entry in the simulated dev console.
type Repo struct {
	Name     string
	Language string
	Stars    int
}

// Repos returns the fixed repository list shown in the dev console.
func Repos() []Repo {
	return []Repo{
		{Name: "hyper-os-kernel", Language: "Rust", Stars: 1240},
		{Name: "gemini-neural-bridge", Language: "Python", Stars: 856},
		{Name: "react-quantum-ui", Language: "TypeScript", Stars: 3402},
	}
}

// DevOps is the simulated dev console panel.
type DevOps struct {
	llm gemini.Client
}

// NewDevOps wires the dev console.
func NewDevOps(llm gemini.Client) *DevOps {
	return &DevOps{llm: llm}
}

// AnalyzeRepo produces a code review for the named repository.
func (d *DevOps) AnalyzeRepo(ctx context.Context, repo string) (string, error) {
	return d.llm.GenerateText(ctx, "Analyze "+repo, "Senior Engineer.")
}

// DraftPR drafts a pull request description for a feature in a repo.
func (d *DevOps) DraftPR(ctx context.Context, feature, repo string) (string, error) {
	return d.llm.GenerateText(ctx, fmt.Sprintf("PR for %s in %s", feature, repo), "Engineer.")
}
