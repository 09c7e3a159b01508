package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/relevance"
	"github.com/jonathan/resume-tailor/internal/types"
)

var selectProjectsCmd = &cobra.Command{
	Use:   "select-projects",
	Short: "Pick the library projects most relevant to a job",
	Long: "Score every project in a project library by how its tech stack and bullet skills " +
		"overlap the job's required and preferred skills, and keep the best ones. The library " +
		"is a JSON array of projects, or the projects of --resume.",
	RunE: runSelectProjects,
}

var (
	selectLibraryFile string
	selectResumeFile  string
	selectJobFile     string
	selectMax         int
	selectMinScore    float64
	selectOutputFile  string
)

func init() {
	selectProjectsCmd.Flags().StringVar(&selectLibraryFile, "library", "", "Path to a JSON array of projects")
	selectProjectsCmd.Flags().StringVarP(&selectResumeFile, "resume", "r", "", "Path to resume JSON file whose projects form the library")
	selectProjectsCmd.Flags().StringVarP(&selectJobFile, "job", "j", "", "Path to job skills JSON or YAML file (required)")
	selectProjectsCmd.Flags().IntVar(&selectMax, "max", relevance.DefaultMaxProjects, "Maximum number of projects to keep")
	selectProjectsCmd.Flags().Float64Var(&selectMinScore, "min-score", relevance.DefaultMinProjectScore, "Minimum relevance score in [0,1]")
	selectProjectsCmd.Flags().StringVarP(&selectOutputFile, "out", "o", "", "Path to output JSON file (default stdout)")

	_ = selectProjectsCmd.MarkFlagRequired("job")
	selectProjectsCmd.MarkFlagsMutuallyExclusive("library", "resume")
	selectProjectsCmd.MarkFlagsOneRequired("library", "resume")

	rootCmd.AddCommand(selectProjectsCmd)
}

func runSelectProjects(cmd *cobra.Command, _ []string) error {
	if selectMinScore < 0 || selectMinScore > 1 {
		return fmt.Errorf("--min-score must be between 0 and 1")
	}

	var library []types.ProjectItem
	if selectLibraryFile != "" {
		var err error
		if library, err = readProjects(selectLibraryFile); err != nil {
			return err
		}
	} else {
		resume, err := readResume(selectResumeFile)
		if err != nil {
			return err
		}
		library = resume.Projects
	}
	job, err := readJobSkills(selectJobFile)
	if err != nil {
		return err
	}

	selected := relevance.SelectProjects(library, job, relevance.SelectOptions{
		MaxProjects: selectMax,
		MinScore:    selectMinScore,
	})
	if selected == nil {
		selected = []relevance.ScoredProject{}
	}
	return writeOutput(cmd, selectOutputFile, selected)
}

// readProjects loads a JSON array of projects.
func readProjects(path string) ([]types.ProjectItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project library: %w", err)
	}
	var projects []types.ProjectItem
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("failed to parse project library JSON: %w", err)
	}
	return projects, nil
}
