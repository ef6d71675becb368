package compatdb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcompat/internal/compat"
)

func sampleDataset() *Dataset {
	return &Dataset{
		Version: "2026.08.0",
		Updated: "2026-08-01",
		Capabilities: []compat.CapabilityRecord{
			{
				Name:     "AbortController",
				Kind:     "global",
				Patterns: []string{"AbortController"},
				Support:  map[string]string{"chrome": "66", "firefox": "57", "safari": "12.1", "edge": "16"},
				MDN:      "https://developer.mozilla.org/docs/Web/API/AbortController",
			},
			{
				Name:     "Array.prototype.includes",
				Kind:     "prototype",
				Patterns: []string{"*.includes"},
				Support:  map[string]string{"chrome": "47", "firefox": "43", "safari": "9", "edge": "14"},
			},
		},
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:  "Valid",
			input: `{"version":"1","capabilities":[{"name":"fetch","support":{"chrome":"42"}}]}`,
		},
		{
			name:    "Not JSON",
			input:   `{"version":`,
			wantErr: "decode dataset",
		},
		{
			name:    "No Version",
			input:   `{"capabilities":[{"name":"fetch","support":{"chrome":"42"}}]}`,
			wantErr: "no version",
		},
		{
			name:    "No Capabilities",
			input:   `{"version":"1","capabilities":[]}`,
			wantErr: "no capabilities",
		},
		{
			name:    "Unnamed Record",
			input:   `{"version":"1","capabilities":[{"support":{"chrome":"42"}}]}`,
			wantErr: "no name",
		},
		{
			name:    "Bad Support Version",
			input:   `{"version":"1","capabilities":[{"name":"fetch","support":{"chrome":"n/a"}}]}`,
			wantErr: "runtime chrome",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Decode(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "1", ds.Version)
		})
	}
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource(sampleDataset())

	version, err := src.Version()
	require.NoError(t, err)
	assert.Equal(t, "2026.08.0", version)

	rec, err := src.Lookup("AbortController")
	require.NoError(t, err)
	assert.Equal(t, "12.1", rec.Support["safari"])

	_, err = src.Lookup("NoSuchThing")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := src.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestEmbedded(t *testing.T) {
	src, err := Embedded()
	require.NoError(t, err)

	version, err := src.Version()
	require.NoError(t, err)
	assert.NotEmpty(t, version)

	all, err := src.All()
	require.NoError(t, err)
	assert.NotEmpty(t, all)

	// The bundled snapshot carries the reference entries the documentation
	// examples rely on. Check the individual minima so dataset enrichment
	// (extra runtimes) does not break the test.
	abort, err := src.Lookup("AbortController")
	require.NoError(t, err)
	assert.Equal(t, "66", abort.Support["chrome"])
	assert.Equal(t, "57", abort.Support["firefox"])
	assert.Equal(t, "12.1", abort.Support["safari"])
	assert.Equal(t, "16", abort.Support["edge"])

	includes, err := src.Lookup("Array.prototype.includes")
	require.NoError(t, err)
	assert.Contains(t, includes.Patterns, "*.includes")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("/no/such/dataset.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read dataset")
}
