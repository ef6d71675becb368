package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"webcompat/internal/compat"
	"webcompat/internal/targets"
)

var (
	targetsFlags []string
	targetsJSON  bool
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Show the resolved target profile",
	Long:  `Resolves the target profile from --target flags or the 'targets' list in the config file and prints it. Fails if no profile is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := resolveProfile(targetsFlags)
		if err != nil {
			return err
		}

		if targetsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(profile)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RUNTIME\tMINIMUM VERSION")
		for _, t := range profile {
			fmt.Fprintf(w, "%s\t%s\n", compat.DisplayName(t.Runtime), t.Version)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
	targetsCmd.Flags().StringArrayVarP(&targetsFlags, "target", "t", nil, `Target runtime constraint, e.g. "Chrome >= 60" (repeatable)`)
	targetsCmd.Flags().BoolVar(&targetsJSON, "json", false, "Output as JSON")
}

// resolveProfile builds the target profile from flags, falling back to the
// config file. A missing profile is a hard configuration error, never a
// silent default.
func resolveProfile(flags []string) (compat.TargetProfile, error) {
	constraints := flags
	if len(constraints) == 0 {
		constraints = viper.GetStringSlice("targets")
	}
	return targets.Parse(constraints)
}
