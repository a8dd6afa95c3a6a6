package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Tinuva88/TCGFun/internal/catalog"
)

// Source loads card sets from a format-specific directory.
//
// Precondition: dir must exist and contain files of the source's format.
// Postcondition: returns every validated set found, or a non-nil error.
type Source interface {
	Load(dir string) ([]catalog.Set, error)
}

// DirSource reads one set per file with any of its extensions. JSON files use
// the same keys as the YAML content files, so both decode through the YAML
// loader.
type DirSource struct {
	Extensions []string
}

// NewYAMLSource reads *.yaml and *.yml set files.
func NewYAMLSource() *DirSource {
	return &DirSource{Extensions: []string{".yaml", ".yml"}}
}

// NewJSONSource reads *.json set exports.
func NewJSONSource() *DirSource {
	return &DirSource{Extensions: []string{".json"}}
}

// Load implements Source. Files are read in name order.
func (s *DirSource) Load(dir string) ([]catalog.Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading source dir %q: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var sets []catalog.Set
	for _, entry := range entries {
		if entry.IsDir() || !s.matches(entry.Name()) {
			continue
		}
		set, err := catalog.LoadSetFromFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("no %s set files in %q", strings.Join(s.Extensions, "/"), dir)
	}
	return sets, nil
}

func (s *DirSource) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range s.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}
