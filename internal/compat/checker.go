package compat

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// DefaultExtensions are the source file extensions scanned when the caller
// does not override them.
var DefaultExtensions = []string{".js", ".mjs", ".cjs", ".jsx", ".ts", ".tsx"}

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
}

// Checker runs the capability compatibility check. The database snapshot and
// target profile it holds are immutable for the checker's lifetime, so one
// Checker may scan many units concurrently.
type Checker struct {
	matcher *Matcher
	profile TargetProfile
	exts    map[string]bool
	jobs    int
}

// Option configures a Checker.
type Option func(*Checker)

// WithExtensions overrides the scanned file extensions.
func WithExtensions(exts []string) Option {
	return func(c *Checker) {
		c.exts = make(map[string]bool, len(exts))
		for _, e := range exts {
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			c.exts[strings.ToLower(e)] = true
		}
	}
}

// WithJobs sets the number of concurrent workers. Values below 1 fall back
// to GOMAXPROCS.
func WithJobs(n int) Option {
	return func(c *Checker) {
		c.jobs = n
	}
}

// NewChecker builds a checker from a capability database snapshot and a
// target profile. An empty or malformed profile is rejected here, before any
// file is opened.
func NewChecker(records []CapabilityRecord, profile TargetProfile, opts ...Option) (*Checker, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("capability database is empty")
	}
	c := &Checker{
		matcher: NewMatcher(records),
		profile: profile,
	}
	WithExtensions(DefaultExtensions)(c)
	for _, opt := range opts {
		opt(c)
	}
	if c.jobs < 1 {
		c.jobs = runtime.GOMAXPROCS(0)
	}
	return c, nil
}

// Profile returns the target profile the checker was built with.
func (c *Checker) Profile() TargetProfile {
	return c.profile
}

// CheckSource scans one in-memory source unit. Findings are self-contained;
// nothing is retained between calls.
func (c *Checker) CheckSource(name string, src []byte) ([]Finding, error) {
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%s: not valid UTF-8 text", name)
	}
	var findings []Finding
	for _, m := range c.matcher.Scan(src) {
		failing := Evaluate(m.Record, c.profile)
		if len(failing) == 0 {
			continue
		}
		findings = append(findings, Finding{
			File:            name,
			Line:            m.Line,
			Column:          m.Column,
			Capability:      m.Record.Name,
			FailingRuntimes: failing,
		})
	}
	return findings, nil
}

// CheckFile scans one file on disk.
func (c *Checker) CheckFile(path string) ([]Finding, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return c.CheckSource(path, src)
}

// CheckPaths walks the given paths, scans every matching source unit and
// returns the aggregated report. Units are independent and processed by a
// bounded worker pool; a failed unit is recorded as a UnitError and does not
// abort the others. Cancelling ctx abandons the remaining units.
func (c *Checker) CheckPaths(ctx context.Context, paths []string) (*Report, error) {
	files, err := c.collectFiles(paths)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Targets:      c.profile,
		FilesScanned: len(files),
	}

	jobs := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < c.jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				findings, err := c.CheckFile(path)
				mu.Lock()
				if err != nil {
					report.Errors = append(report.Errors, UnitError{File: path, Err: err.Error()})
				} else {
					report.Findings = append(report.Findings, findings...)
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, f := range files {
		select {
		case jobs <- f:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Sort()
	return report, nil
}

// collectFiles expands paths into the list of scannable files. Explicitly
// named files are always included regardless of extension.
func (c *Checker) collectFiles(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			name := d.Name()
			if d.IsDir() {
				if path != p && (skipDirs[name] || strings.HasPrefix(name, ".")) {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasPrefix(name, ".") {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(name))
			if !c.exts[ext] {
				return nil
			}
			// Minified bundles produce useless positions and huge chains.
			if strings.HasSuffix(name, ".min.js") {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}
