// Package manifest parses and validates monkey.yml, the package manifest
// backing the `import` builtin's dependency resolution (SPEC_FULL.md §2.2).
package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the parsed contents of monkey.yml.
type Manifest struct {
	Name         string                 `yaml:"name"`
	Dependencies map[string]*Dependency `yaml:"dependencies"`
}

// Dependency describes where to find one named dependency's script, either
// a git source plus the entry script within it, or a local path taken
// relative to the manifest's own directory when Git is unset.
type Dependency struct {
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
	Path   string `yaml:"path"`
}

// ValidationError aggregates every manifest problem found, so a malformed
// monkey.yml is reported in full rather than one issue at a time.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("manifest validation failed:\n- %s", strings.Join(e.Issues, "\n- "))
}

// Load reads and validates monkey.yml at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("manifest: parsing %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	errs := &ValidationError{}
	for name, dep := range m.Dependencies {
		if dep.Git == "" && dep.Path == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependency %q: must specify git or path", name))
		}
		refs := 0
		for _, r := range []string{dep.Rev, dep.Tag, dep.Branch} {
			if r != "" {
				refs++
			}
		}
		if refs > 1 {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependency %q: specify at most one of rev, tag, branch", name))
		}
	}
	if len(errs.Issues) > 0 {
		return errs
	}
	return nil
}
