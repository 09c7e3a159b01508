package skills

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RegistryFile is the on-disk layout of a skill registry.
type RegistryFile struct {
	Ontology []Entry `yaml:"ontology"`
	Verified []Entry `yaml:"verified"`
}

// LoadRegistry reads a YAML registry file. When the file declares no
// ontology, the built-in ontology is used.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file %s: %w", path, err)
	}
	return ParseRegistry(data)
}

// ParseRegistry decodes a YAML registry document.
func ParseRegistry(data []byte) (*Registry, error) {
	var file RegistryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registry YAML: %w", err)
	}
	ontology := file.Ontology
	if len(ontology) == 0 {
		ontology = DefaultOntology()
	}
	return NewRegistry(ontology, file.Verified), nil
}

// Snapshot returns the verified entries in insertion order, for persistence.
func (r *Registry) Snapshot() []Entry {
	if r == nil {
		return nil
	}
	out := make([]Entry, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.verified[key])
	}
	return out
}
