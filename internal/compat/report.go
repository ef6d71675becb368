package compat

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// Report aggregates one run's findings and unit errors.
type Report struct {
	Targets      TargetProfile `json:"targets"`
	Findings     []Finding     `json:"findings"`
	Errors       []UnitError   `json:"errors,omitempty"`
	FilesScanned int           `json:"filesScanned"`
}

// Sort orders findings by file, then line, then column, then capability
// name, so repeated runs render identically regardless of scan order.
func (r *Report) Sort() {
	sort.Slice(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Capability < b.Capability
	})
	sort.Slice(r.Errors, func(i, j int) bool {
		return r.Errors[i].File < r.Errors[j].File
	})
}

// Passed reports whether the run succeeds under the given severity. Findings
// only fail the run at SeverityError; unit errors always fail it, since a
// silently skipped file would fake a clean result.
func (r *Report) Passed(sev Severity) bool {
	if len(r.Errors) > 0 {
		return false
	}
	if sev >= SeverityError && len(r.Findings) > 0 {
		return false
	}
	return true
}

// jsonReport is the serialized shape; it adds the aggregate verdict.
type jsonReport struct {
	*Report
	Passed bool `json:"passed"`
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer, sev Severity) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{Report: r, Passed: r.Passed(sev)})
}

// WriteText writes a human-readable report. No findings is the expected
// common case and renders as a short success line, not silence.
func (r *Report) WriteText(w io.Writer) {
	if len(r.Findings) == 0 && len(r.Errors) == 0 {
		fmt.Fprintf(w, "Checked %d files against %s: no incompatibilities found.\n",
			r.FilesScanned, r.Targets)
		return
	}

	if len(r.Findings) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "LOCATION\tCAPABILITY\tUNSUPPORTED ON")
		fmt.Fprintln(tw, "--------\t----------\t--------------")
		for _, f := range r.Findings {
			fmt.Fprintf(tw, "%s:%d:%d\t%s\t%s\n",
				f.File, f.Line, f.Column, f.Capability, formatFailures(f.FailingRuntimes))
		}
		tw.Flush()
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "error: %s: %s\n", e.File, e.Err)
		}
	}

	fmt.Fprintf(w, "\n%d findings in %d files (profile: %s)\n",
		len(r.Findings), r.FilesScanned, r.Targets)
}

// Summary is a one-line digest used for logs and notifications.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d findings, %d unit errors across %d files (targets: %s)",
		len(r.Findings), len(r.Errors), r.FilesScanned, r.Targets)
}

func formatFailures(failures []RuntimeFailure) string {
	parts := make([]string, len(failures))
	for i, f := range failures {
		if f.MinimumSupported == "" {
			parts[i] = fmt.Sprintf("%s (unsupported)", DisplayName(f.Runtime))
		} else {
			parts[i] = fmt.Sprintf("%s (needs %s)", DisplayName(f.Runtime), f.MinimumSupported)
		}
	}
	return strings.Join(parts, ", ")
}
