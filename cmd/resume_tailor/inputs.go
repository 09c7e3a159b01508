package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
)

// readResume loads a resume JSON file.
func readResume(path string) (*types.Resume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume file: %w", err)
	}
	if err := schemas.Validate(schemas.Resume, data); err != nil {
		return nil, fmt.Errorf("invalid resume %s: %w", path, err)
	}
	var resume types.Resume
	if err := json.Unmarshal(data, &resume); err != nil {
		return nil, fmt.Errorf("failed to parse resume JSON: %w", err)
	}
	return &resume, nil
}

// readJobSkills loads job skills from JSON or YAML. Lists and comma-separated
// strings are both accepted for each category.
func readJobSkills(path string) (types.JobSkills, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.JobSkills{}, fmt.Errorf("failed to read job skills file: %w", err)
	}
	if isYAML(path) {
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return types.JobSkills{}, fmt.Errorf("failed to parse job skills YAML: %w", err)
		}
		return parsing.ParseJobSkills(raw)
	}
	return parsing.ParseJobSkills(json.RawMessage(data))
}

// readJobs loads a JSON array of stored jobs.
func readJobs(path string) ([]types.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs file: %w", err)
	}
	var jobs []types.Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse jobs JSON: %w", err)
	}
	return jobs, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// inputs is what most commands start from.
type inputs struct {
	resume   *types.Resume
	job      types.JobSkills
	registry *skills.Registry
}

// loadInputs reads the resume, the job skills and the registry concurrently.
// An empty resumePath skips the resume.
func loadInputs(ctx context.Context, s *session, resumePath, jobPath string) (*inputs, error) {
	var in inputs
	g, gctx := errgroup.WithContext(ctx)

	if resumePath != "" {
		g.Go(func() error {
			r, err := readResume(resumePath)
			if err != nil {
				return err
			}
			in.resume = r
			return nil
		})
	}
	g.Go(func() error {
		job, err := readJobSkills(jobPath)
		if err != nil {
			return err
		}
		in.job = job
		return nil
	})
	g.Go(func() error {
		reg, err := s.registry(gctx)
		if err != nil {
			return err
		}
		in.registry = reg
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &in, nil
}

// writeOutput encodes v as indented JSON to path, or to the command's
// stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		return writeAll(cmd.OutOrStdout(), data)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func writeAll(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
