package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "Single Component", input: "60", want: []int{60}},
		{name: "Two Components", input: "12.1", want: []int{12, 1}},
		{name: "Three Components", input: "1.30.4", want: []int{1, 30, 4}},
		{name: "Whitespace", input: " 79 ", want: []int{79}},
		{name: "Empty", input: "", wantErr: true},
		{name: "Non Numeric", input: "12.x", wantErr: true},
		{name: "Negative", input: "-1", wantErr: true},
		{name: "Semver Prerelease", input: "1.0.0-rc1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{name: "Equal", a: "60", b: "60", want: 0},
		{name: "Less", a: "11", b: "12.1", want: -1},
		{name: "Greater", a: "79", b: "16", want: 1},
		{name: "Missing Trailing Is Zero", a: "12", b: "12.0", want: 0},
		{name: "Minor Decides", a: "12.1", b: "12.2", want: -1},
		{name: "Left To Right", a: "10.9", b: "11.0", want: -1},
		{name: "Numeric Not Lexical", a: "9", b: "10", want: -1},
		{name: "Long Versions", a: "15.0.0.1", b: "15", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareVersions(tt.a, tt.b))
			assert.Equal(t, -tt.want, CompareVersions(tt.b, tt.a))
		})
	}
}
