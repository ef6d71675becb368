package compat

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFinding(file string, line, col int, capability string) Finding {
	return Finding{
		File:       file,
		Line:       line,
		Column:     col,
		Capability: capability,
		FailingRuntimes: []RuntimeFailure{
			{Runtime: "safari", Required: "11", MinimumSupported: "12.1"},
		},
	}
}

func TestReport_Sort(t *testing.T) {
	r := &Report{
		Findings: []Finding{
			sampleFinding("b.js", 1, 1, "fetch"),
			sampleFinding("a.js", 2, 5, "fetch"),
			sampleFinding("a.js", 2, 1, "fetch"),
			sampleFinding("a.js", 1, 1, "fetch"),
			sampleFinding("a.js", 1, 1, "AbortController"),
		},
		Errors: []UnitError{
			{File: "z.js", Err: "boom"},
			{File: "m.js", Err: "boom"},
		},
	}
	r.Sort()

	got := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		got[i] = f.File + "/" + f.Capability
	}
	assert.Equal(t, []string{
		"a.js/AbortController",
		"a.js/fetch",
		"a.js/fetch",
		"a.js/fetch",
		"b.js/fetch",
	}, got)
	// Both a.js/fetch entries on line 1 sort before line 2, and within line 2
	// the lower column comes first.
	assert.Equal(t, 1, r.Findings[1].Line)
	assert.Equal(t, 2, r.Findings[2].Line)
	assert.Equal(t, 1, r.Findings[2].Column)
	assert.Equal(t, 5, r.Findings[3].Column)

	assert.Equal(t, "m.js", r.Errors[0].File)
}

func TestReport_Passed(t *testing.T) {
	withFinding := &Report{Findings: []Finding{sampleFinding("a.js", 1, 1, "fetch")}}
	withError := &Report{Errors: []UnitError{{File: "a.js", Err: "unreadable"}}}
	clean := &Report{FilesScanned: 4}

	tests := []struct {
		name   string
		report *Report
		sev    Severity
		want   bool
	}{
		{name: "Clean Passes At Error", report: clean, sev: SeverityError, want: true},
		{name: "Clean Passes At Info", report: clean, sev: SeverityInfo, want: true},
		{name: "Findings Fail At Error", report: withFinding, sev: SeverityError, want: false},
		{name: "Findings Pass At Warning", report: withFinding, sev: SeverityWarning, want: true},
		{name: "Findings Pass At Info", report: withFinding, sev: SeverityInfo, want: true},
		{name: "Unit Errors Always Fail", report: withError, sev: SeverityInfo, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.report.Passed(tt.sev))
		})
	}
}

func TestReport_WriteJSON(t *testing.T) {
	r := &Report{
		Targets:      exampleProfile(),
		Findings:     []Finding{sampleFinding("a.js", 3, 7, "AbortController")},
		FilesScanned: 1,
	}

	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf, SeverityError))

	var decoded struct {
		Targets  []Target `json:"targets"`
		Findings []struct {
			File            string           `json:"file"`
			Line            int              `json:"line"`
			Column          int              `json:"column"`
			Capability      string           `json:"capability"`
			FailingRuntimes []RuntimeFailure `json:"failingRuntimes"`
		} `json:"findings"`
		FilesScanned int  `json:"filesScanned"`
		Passed       bool `json:"passed"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.False(t, decoded.Passed)
	assert.Equal(t, 1, decoded.FilesScanned)
	require.Len(t, decoded.Findings, 1)
	assert.Equal(t, "a.js", decoded.Findings[0].File)
	assert.Equal(t, 3, decoded.Findings[0].Line)
	assert.Equal(t, "AbortController", decoded.Findings[0].Capability)
	require.Len(t, decoded.Findings[0].FailingRuntimes, 1)
	assert.Equal(t, "12.1", decoded.Findings[0].FailingRuntimes[0].MinimumSupported)
	require.Len(t, decoded.Targets, 4)
	assert.Equal(t, "chrome", decoded.Targets[0].Runtime)
}

func TestReport_WriteText_Clean(t *testing.T) {
	r := &Report{Targets: exampleProfile(), FilesScanned: 12}

	var buf bytes.Buffer
	r.WriteText(&buf)

	out := buf.String()
	assert.Contains(t, out, "Checked 12 files")
	assert.Contains(t, out, "no incompatibilities found")
}

func TestReport_WriteText_Findings(t *testing.T) {
	r := &Report{
		Targets: exampleProfile(),
		Findings: []Finding{
			{
				File: "src/app.js", Line: 14, Column: 3,
				Capability: "showOpenFilePicker",
				FailingRuntimes: []RuntimeFailure{
					{Runtime: "safari", Required: "11"},
					{Runtime: "firefox", Required: "55", MinimumSupported: "111"},
				},
			},
		},
		Errors:       []UnitError{{File: "src/bad.js", Err: "not valid UTF-8 text"}},
		FilesScanned: 2,
	}

	var buf bytes.Buffer
	r.WriteText(&buf)

	out := buf.String()
	assert.Contains(t, out, "LOCATION")
	assert.Contains(t, out, "src/app.js:14:3")
	assert.Contains(t, out, "Safari (unsupported)")
	assert.Contains(t, out, "Firefox (needs 111)")
	assert.Contains(t, out, "error: src/bad.js: not valid UTF-8 text")
	assert.Contains(t, out, "1 findings in 2 files")
}

func TestReport_Summary(t *testing.T) {
	r := &Report{
		Targets:      TargetProfile{{Runtime: "chrome", Version: "60"}},
		Findings:     []Finding{sampleFinding("a.js", 1, 1, "fetch")},
		Errors:       []UnitError{{File: "b.js", Err: "unreadable"}},
		FilesScanned: 9,
	}
	assert.Equal(t, "1 findings, 1 unit errors across 9 files (targets: Chrome >= 60)", r.Summary())
}
