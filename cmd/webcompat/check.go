package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"webcompat/internal/compat"
	"webcompat/internal/compatdb"
	"webcompat/internal/notify"
	"webcompat/internal/telemetry"
)

var (
	checkTargets  []string
	checkSeverity string
	checkJSON     bool
	checkJobs     int
	checkExts     []string
	checkDataset  string
	checkNotify   bool
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Check sources for capabilities unsupported by the target profile",
	Long: `Scans the given paths (defaulting to the current directory) for references
to runtime capabilities and reports each one that is not supported by every
runtime in the target profile. Matching is syntactic: feature-detected or
guarded usage is still reported.

The exit code is 0 unless severity is "error" and at least one finding (or
any per-file scan error) exists.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringArrayVarP(&checkTargets, "target", "t", nil, `Target runtime constraint, e.g. "Chrome >= 60" (repeatable; overrides config)`)
	checkCmd.Flags().StringVar(&checkSeverity, "severity", "", "Severity of findings: info, warning or error")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output results as JSON")
	checkCmd.Flags().IntVar(&checkJobs, "jobs", 0, "Number of concurrent workers (0 = GOMAXPROCS)")
	checkCmd.Flags().StringSliceVar(&checkExts, "ext", nil, "File extensions to scan (default .js,.mjs,.cjs,.jsx,.ts,.tsx)")
	checkCmd.Flags().StringVar(&checkDataset, "dataset", "", "Path to a dataset JSON artifact to check against")
	checkCmd.Flags().BoolVar(&checkNotify, "notify", false, "Send a notification when the check fails")
}

func runCheck(cmd *cobra.Command, args []string) error {
	report, severity, _, err := executeCheck(cmd, args)
	if err != nil {
		return err
	}

	if checkJSON {
		if err := report.WriteJSON(cmd.OutOrStdout(), severity); err != nil {
			return err
		}
	} else {
		report.WriteText(cmd.OutOrStdout())
	}

	// The exit contract holds regardless of output format.
	if !report.Passed(severity) {
		if checkNotify {
			sendFailureNotification(cmd, report)
		}
		return fmt.Errorf("found %d incompatibilities and %d unit errors", len(report.Findings), len(report.Errors))
	}
	return nil
}

// executeCheck resolves configuration, loads the capability database and
// runs the scan. Shared by `check` and `browse`.
func executeCheck(cmd *cobra.Command, args []string) (*compat.Report, compat.Severity, recordLookup, error) {
	profile, err := resolveProfile(checkTargets)
	if err != nil {
		return nil, 0, nil, err
	}

	severityName := checkSeverity
	if severityName == "" {
		severityName = viper.GetString("severity")
	}
	severity, err := compat.ParseSeverity(severityName)
	if err != nil {
		return nil, 0, nil, err
	}

	source, closeSource, err := loadSource(checkDataset)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to load capability database: %w", err)
	}
	defer closeSource()

	records, version, err := loadSnapshot(source)
	if err != nil {
		return nil, 0, nil, err
	}

	jobs := checkJobs
	if jobs == 0 {
		jobs = viper.GetInt("jobs")
	}
	opts := []compat.Option{compat.WithJobs(jobs)}
	if len(checkExts) > 0 {
		opts = append(opts, compat.WithExtensions(checkExts))
	}

	checker, err := compat.NewChecker(records, profile, opts...)
	if err != nil {
		return nil, 0, nil, err
	}

	slog.Debug("starting check", "targets", profile.String(), "dataset", version, "capabilities", len(records))

	start := time.Now()
	report, err := checker.CheckPaths(cmd.Context(), args)
	if err != nil {
		return nil, 0, nil, err
	}

	observeReport(report, time.Since(start))

	// Keep findings browsable against the same snapshot the scan used.
	byName := make(map[string]compat.CapabilityRecord, len(records))
	for _, rec := range records {
		byName[rec.Name] = rec
	}
	lookup := func(name string) (compat.CapabilityRecord, error) {
		rec, ok := byName[name]
		if !ok {
			return compat.CapabilityRecord{}, fmt.Errorf("unknown capability: %s", name)
		}
		return rec, nil
	}

	return report, severity, lookup, nil
}

type recordLookup func(name string) (compat.CapabilityRecord, error)

// loadSnapshot reads the full record set and revision of a capability
// database source.
func loadSnapshot(source compatdb.Source) ([]compat.CapabilityRecord, string, error) {
	records, err := source.All()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load capability database: %w", err)
	}
	version, err := source.Version()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load capability database: %w", err)
	}
	return records, version, nil
}

func observeReport(report *compat.Report, elapsed time.Duration) {
	byRuntime := make(map[string]int)
	for _, f := range report.Findings {
		for _, fr := range f.FailingRuntimes {
			byRuntime[fr.Runtime]++
		}
	}
	telemetry.GetMetrics().ObserveReport(report.FilesScanned, byRuntime, len(report.Errors), elapsed.Seconds())
}

func sendFailureNotification(cmd *cobra.Command, report *compat.Report) {
	notifier, err := notify.FromConfig()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		return
	}
	if notifier == nil {
		return
	}
	msg := fmt.Sprintf(":warning: webcompat check failed: %s", report.Summary())
	if err := notifier.Notify(cmd.Context(), msg); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to send notification: %v\n", err)
	}
}
