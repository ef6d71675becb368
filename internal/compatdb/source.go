// Package compatdb provides the capability database: the reference dataset
// mapping capabilities to their minimum supported versions per runtime. The
// database is an injected, versioned artifact, loaded once and read-only for
// the duration of a checking run. It sits behind a pluggable Source so
// real-world data and deterministic test fixtures are interchangeable.
package compatdb

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"webcompat/internal/compat"
)

// ErrNotFound is returned by Lookup for unknown capability names.
var ErrNotFound = errors.New("capability not found")

// Source is a read-only view of one capability database snapshot.
type Source interface {
	// Lookup returns the record for a qualified name, or ErrNotFound.
	Lookup(name string) (compat.CapabilityRecord, error)
	// All returns every record in the snapshot, in dataset order.
	All() ([]compat.CapabilityRecord, error)
	// Version identifies the dataset revision.
	Version() (string, error)
}

// Store is a Source that can be refreshed from a newer dataset.
type Store interface {
	Source
	Replace(ds *Dataset) error
	Close() error
}

// Dataset is the on-the-wire and on-disk dataset artifact.
type Dataset struct {
	Version      string                    `json:"version"`
	Updated      string                    `json:"updated,omitempty"`
	Capabilities []compat.CapabilityRecord `json:"capabilities"`
}

// StaticSource serves a dataset from memory.
type StaticSource struct {
	version string
	records []compat.CapabilityRecord
	byName  map[string]compat.CapabilityRecord
}

// NewStaticSource builds an in-memory source from a dataset.
func NewStaticSource(ds *Dataset) *StaticSource {
	s := &StaticSource{
		version: ds.Version,
		records: ds.Capabilities,
		byName:  make(map[string]compat.CapabilityRecord, len(ds.Capabilities)),
	}
	for _, rec := range ds.Capabilities {
		s.byName[rec.Name] = rec
	}
	return s
}

func (s *StaticSource) Lookup(name string) (compat.CapabilityRecord, error) {
	rec, ok := s.byName[name]
	if !ok {
		return compat.CapabilityRecord{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return rec, nil
}

func (s *StaticSource) All() ([]compat.CapabilityRecord, error) {
	return s.records, nil
}

func (s *StaticSource) Version() (string, error) {
	return s.version, nil
}

// Decode reads a dataset JSON artifact.
func Decode(r io.Reader) (*Dataset, error) {
	var ds Dataset
	dec := json.NewDecoder(r)
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if err := validate(&ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// LoadFile reads a dataset artifact from disk.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

func validate(ds *Dataset) error {
	if ds.Version == "" {
		return fmt.Errorf("dataset has no version")
	}
	if len(ds.Capabilities) == 0 {
		return fmt.Errorf("dataset %s contains no capabilities", ds.Version)
	}
	for _, rec := range ds.Capabilities {
		if rec.Name == "" {
			return fmt.Errorf("dataset %s contains a record with no name", ds.Version)
		}
		for runtime, min := range rec.Support {
			if _, err := compat.ParseVersion(min); err != nil {
				return fmt.Errorf("record %s, runtime %s: %w", rec.Name, runtime, err)
			}
		}
	}
	return nil
}

//go:embed dataset.json
var embeddedDataset []byte

// Embedded returns the dataset bundled with the binary, so checks work
// offline out of the box. `webcompat dataset update` supersedes it with a
// fresher snapshot in the configured store.
func Embedded() (*StaticSource, error) {
	ds, err := Decode(bytes.NewReader(embeddedDataset))
	if err != nil {
		return nil, fmt.Errorf("embedded dataset: %w", err)
	}
	return NewStaticSource(ds), nil
}
