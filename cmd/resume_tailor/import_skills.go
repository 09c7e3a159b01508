package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/skills"
)

var importSkillsCmd = &cobra.Command{
	Use:   "import-skills",
	Short: "Store the verified skills of a registry file in the database",
	Long: "Read a YAML skill registry and upsert every verified skill, with its aliases and " +
		"evidence, into the user skill table used by rewrite and serve.",
	RunE: runImportSkills,
}

var importRegistryFile string

func init() {
	importSkillsCmd.Flags().StringVar(&importRegistryFile, "registry", "", "Path to YAML registry file (required)")

	_ = importSkillsCmd.MarkFlagRequired("registry")

	rootCmd.AddCommand(importSkillsCmd)
}

func runImportSkills(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.requireDB("import-skills"); err != nil {
		return err
	}

	registry, err := skills.LoadRegistry(importRegistryFile)
	if err != nil {
		return err
	}
	entries := registry.Snapshot()
	if len(entries) == 0 {
		return fmt.Errorf("registry %s has no verified skills", importRegistryFile)
	}
	for _, entry := range entries {
		if err := s.store.SaveUserSkill(ctx, entry); err != nil {
			return err
		}
	}
	s.logger.Info("imported skills", zap.Int("count", len(entries)))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d verified skills\n", len(entries))
	return nil
}
