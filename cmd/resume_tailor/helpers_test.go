package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

const testRegistryYAML = `verified:
  - name: Python
    category: Languages
  - name: Docker
    category: DevOps
`

func testResume() *types.Resume {
	return &types.Resume{
		Name: "Test Person",
		Experience: []types.ExperienceItem{{
			Organization: "Acme",
			Role:         "Engineer",
			Bullets:      []types.Bullet{types.NewBullet("Built data pipelines in Python", "Python")},
		}},
		Skills:  map[string][]string{"Languages": {"Python"}},
		Version: 1,
	}
}

// testEnv points the configuration at temp files: the fixture provider, a
// registry verifying Python and Docker, and a feedback file. No database.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	fixture := writeFile(t, dir, "fixture.yaml", "reasoning: {}\ncandidates: {}\n")
	registry := writeFile(t, dir, "registry.yaml", testRegistryYAML)

	t.Setenv("RESUME_TAILOR_PROVIDER", "fixture")
	t.Setenv("RESUME_TAILOR_FIXTURE_PATH", fixture)
	t.Setenv("RESUME_TAILOR_REGISTRY_PATH", registry)
	t.Setenv("RESUME_TAILOR_FEEDBACK_PATH", filepath.Join(dir, "feedback.json"))
	t.Setenv("RESUME_TAILOR_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return writeFile(t, dir, name, string(data))
}

// executeCommand runs the root command with args and returns its stdout.
// Flag values are reset first since the commands keep them in package
// variables.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
