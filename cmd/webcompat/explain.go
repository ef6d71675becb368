package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"webcompat/internal/compat"
	"webcompat/internal/compatdb"
)

var explainDataset string

var explainCmd = &cobra.Command{
	Use:   "explain <capability>",
	Short: "Show support details for one capability",
	Long:  `Renders the capability database entry for a qualified name, e.g. 'webcompat explain AbortController' or 'webcompat explain navigator.clipboard'.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, closeSource, err := loadSource(explainDataset)
		if err != nil {
			return fmt.Errorf("failed to load capability database: %w", err)
		}
		defer closeSource()

		rec, err := source.Lookup(args[0])
		if errors.Is(err, compatdb.ErrNotFound) {
			return fmt.Errorf("no capability named %q in the database (try 'webcompat dataset status')", args[0])
		}
		if err != nil {
			return err
		}

		md := renderCapabilityMarkdown(rec)

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			// Fall back to raw markdown rather than failing the lookup.
			fmt.Fprintln(cmd.OutOrStdout(), md)
			return nil
		}
		out, err := renderer.Render(md)
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), md)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.Flags().StringVar(&explainDataset, "dataset", "", "Path to a dataset JSON artifact to read instead of the store")
}

func renderCapabilityMarkdown(rec compat.CapabilityRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", rec.Name)
	if rec.Notes != "" {
		fmt.Fprintf(&b, "%s\n\n", rec.Notes)
	}

	b.WriteString("| Runtime | Supported since |\n")
	b.WriteString("|---------|----------------|\n")
	runtimes := make([]string, 0, len(rec.Support))
	for r := range rec.Support {
		runtimes = append(runtimes, r)
	}
	sort.Strings(runtimes)
	for _, r := range runtimes {
		fmt.Fprintf(&b, "| %s | %s |\n", compat.DisplayName(r), rec.Support[r])
	}
	b.WriteString("\nRuntimes not listed do not support this capability at all.\n")

	if rec.MDN != "" {
		fmt.Fprintf(&b, "\nDocumentation: %s\n", rec.MDN)
	}
	return b.String()
}
