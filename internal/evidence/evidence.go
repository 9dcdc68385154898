// Package evidence defines the read-only repository snapshot the prompt
// builder and bonus rules consume. Producing a snapshot (walking a hosted
// repository tree) is the job of an external collaborator; this package
// only fixes the shape and provides a fixture fetcher for tests.
package evidence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrSubjectAccess reports that a subject's repository could not be
// accessed at all. The aggregator converts it into a synthetic ERROR
// evaluation; it never aborts a batch run.
var ErrSubjectAccess = errors.New("subject repository inaccessible")

// FileMeta carries per-file facts from the hosting API.
type FileMeta struct {
	Size int64
	URL  string
}

// Snapshot is the factual summary of one repository's contents.
type Snapshot struct {
	Name        string
	Description string

	Directories []string
	Files       map[string]FileMeta

	ReadmePresent       bool
	RequirementsPresent bool
	GitignorePresent    bool
}

// Fetcher produces a Snapshot for a repository reference. Implementations
// live outside the core (hosting-API clients); tests and demos use Static.
type Fetcher interface {
	Fetch(ctx context.Context, repoRef string) (*Snapshot, error)
}

// Static is a Fetcher returning fixed snapshots keyed by repository
// reference. Unknown references fail with ErrSubjectAccess.
type Static map[string]*Snapshot

func (s Static) Fetch(_ context.Context, repoRef string) (*Snapshot, error) {
	snap, ok := s[repoRef]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSubjectAccess, repoRef)
	}
	return snap, nil
}

// SortedDirectories returns the directory names in lexical order.
func (s *Snapshot) SortedDirectories() []string {
	out := make([]string, len(s.Directories))
	copy(out, s.Directories)
	sort.Strings(out)
	return out
}

// SortedFiles returns the file paths in lexical order.
func (s *Snapshot) SortedFiles() []string {
	out := make([]string, 0, len(s.Files))
	for p := range s.Files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// HasPathContaining reports whether any file path contains any of the
// given lowercase fragments.
func (s *Snapshot) HasPathContaining(fragments ...string) bool {
	for p := range s.Files {
		lower := strings.ToLower(p)
		for _, f := range fragments {
			if strings.Contains(lower, f) {
				return true
			}
		}
	}
	return false
}

// HasDirectory reports whether a directory with the given name exists at
// any level.
func (s *Snapshot) HasDirectory(name string) bool {
	for _, d := range s.Directories {
		if d == name || strings.HasSuffix(d, "/"+name) {
			return true
		}
	}
	return false
}

// CountFilesUnder counts files whose path sits under the given prefix.
func (s *Snapshot) CountFilesUnder(prefix string) int {
	n := 0
	for p := range s.Files {
		if strings.HasPrefix(p, prefix) {
			n++
		}
	}
	return n
}
