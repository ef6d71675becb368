package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"webcompat/internal/compat"
	"webcompat/internal/targets"
)

// defaultVersions pre-fills the wizard with a common baseline per runtime.
var defaultVersions = map[string]string{
	"chrome":  "90",
	"firefox": "88",
	"safari":  "14",
	"edge":    "90",
	"opera":   "76",
	"ie":      "11",
	"ios_saf": "14",
	"samsung": "14",
	"node":    "18",
	"deno":    "1.30",
}

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a webcompat.yaml config interactively",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing webcompat.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	const configPath = "webcompat.yaml"

	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	options := make([]string, 0, len(targets.Known()))
	for _, key := range targets.Known() {
		options = append(options, compat.DisplayName(key))
	}

	var selected []string
	if err := survey.AskOne(&survey.MultiSelect{
		Message: "Which runtimes must your code support?",
		Options: options,
		Default: []string{"Chrome", "Firefox", "Safari", "Edge"},
	}, &selected, survey.WithValidator(survey.MinItems(1))); err != nil {
		return err
	}

	var constraints []string
	for _, name := range selected {
		key, err := targets.Canonical(name)
		if err != nil {
			return err
		}
		version := defaultVersions[key]
		if err := survey.AskOne(&survey.Input{
			Message: fmt.Sprintf("Minimum %s version:", name),
			Default: version,
		}, &version); err != nil {
			return err
		}
		constraint := fmt.Sprintf("%s >= %s", name, strings.TrimSpace(version))
		if _, err := targets.ParseConstraint(constraint); err != nil {
			return err
		}
		constraints = append(constraints, constraint)
	}

	severity := "error"
	if err := survey.AskOne(&survey.Select{
		Message: "Severity of findings:",
		Options: []string{"error", "warning", "info"},
		Default: "error",
		Help:    "Only 'error' makes the check exit non-zero when findings exist",
	}, &severity); err != nil {
		return err
	}

	v := viper.New()
	v.Set("targets", constraints)
	v.Set("severity", severity)
	v.Set("dataset.store", "sqlite")
	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s with %d targets.\n", configPath, len(constraints))
	fmt.Fprintln(cmd.OutOrStdout(), "Run 'webcompat check' to scan the current directory.")
	return nil
}
