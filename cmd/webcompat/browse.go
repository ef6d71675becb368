package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"webcompat/internal/ui"
)

var browseCmd = &cobra.Command{
	Use:   "browse [paths...]",
	Short: "Run a check and browse the findings interactively",
	Long:  `Runs the same scan as 'check' and opens the findings in an interactive browser with per-capability support details.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, _, lookup, err := executeCheck(cmd, args)
		if err != nil {
			return err
		}

		if len(report.Findings) == 0 && len(report.Errors) == 0 {
			report.WriteText(cmd.OutOrStdout())
			return nil
		}

		model := ui.NewFindingsModel(report, ui.RecordLookup(lookup))
		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("failed to run findings browser: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().StringArrayVarP(&checkTargets, "target", "t", nil, `Target runtime constraint, e.g. "Chrome >= 60" (repeatable)`)
	browseCmd.Flags().StringVar(&checkDataset, "dataset", "", "Path to a dataset JSON artifact to check against")
}
