package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadSetFromBytes parses and validates one set from YAML.
//
// Precondition: data must be a YAML document describing a single set.
// Postcondition: Returns a validated Set with child set ids filled in, or an error.
func LoadSetFromBytes(data []byte) (Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Set{}, fmt.Errorf("parsing set yaml: %w", err)
	}
	s.normalize()
	if err := s.Validate(); err != nil {
		return Set{}, err
	}
	return s, nil
}

// LoadSetFromFile reads and parses one set file.
func LoadSetFromFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("reading %q: %w", path, err)
	}
	s, err := LoadSetFromBytes(data)
	if err != nil {
		return Set{}, fmt.Errorf("loading %q: %w", path, err)
	}
	return s, nil
}

// LoadSets loads every *.yaml and *.yml file in dir, sorted by file name.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all sets in dir or the first error encountered.
func LoadSets(dir string) ([]Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading set dir %q: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var sets []Set
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		s, err := LoadSetFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, nil
}
