package batch

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vmonsalve/rubrica/internal/evaluator"
)

// rosterFile is the on-disk roster format: a list of subjects under a
// top-level key.
type rosterFile struct {
	Subjects []evaluator.Subject `yaml:"subjects"`
}

// LoadRoster reads a YAML roster of subjects. Missing IDs are derived
// from the subject name; name and repository are mandatory.
func LoadRoster(path string) ([]evaluator.Subject, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var f rosterFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if len(f.Subjects) == 0 {
		return nil, fmt.Errorf("roster %s contains no subjects", path)
	}

	for i := range f.Subjects {
		s := &f.Subjects[i]
		if s.Name == "" {
			return nil, fmt.Errorf("roster entry %d has no name", i)
		}
		if s.Repository == "" {
			return nil, fmt.Errorf("roster entry %q has no repository", s.Name)
		}
		if s.ID == "" {
			s.ID = slugify(s.Name)
		}
	}
	return f.Subjects, nil
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(slug, " ", "-")
}
