// Package skills provides the canonical skill ontology, the per-user verified
// skill registry and helpers to normalize and categorize skill names.
package skills

import (
	"sort"
	"strings"
)

// EvidenceSource identifies where a verified skill was demonstrated.
type EvidenceSource string

// Evidence sources
const (
	SourceExperience    EvidenceSource = "experience"
	SourceProject       EvidenceSource = "project"
	SourceCoursework    EvidenceSource = "coursework"
	SourceCertification EvidenceSource = "certification"
)

// Evidence ties a skill to a concrete experience, project, course or certificate.
type Evidence struct {
	Source    EvidenceSource `json:"source" yaml:"source"`
	Reference string         `json:"reference,omitempty" yaml:"reference,omitempty"`
}

// Entry is a single skill in the ontology or the user registry.
type Entry struct {
	Name     string     `json:"name" yaml:"name"`
	Category string     `json:"category,omitempty" yaml:"category,omitempty"`
	Aliases  []string   `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Evidence []Evidence `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// Registry answers lookups against the canonical ontology and the skills a
// user has verified. It is read-only after construction.
type Registry struct {
	ontology map[string]Entry
	aliases  map[string]string
	verified map[string]Entry
	order    []string
}

// NewRegistry builds a registry from ontology entries and user-verified entries.
func NewRegistry(ontology, verified []Entry) *Registry {
	r := &Registry{
		ontology: make(map[string]Entry, len(ontology)),
		aliases:  make(map[string]string),
		verified: make(map[string]Entry, len(verified)),
	}
	for _, e := range ontology {
		key := Key(e.Name)
		if key == "" {
			continue
		}
		r.ontology[key] = e
		for _, alias := range e.Aliases {
			if a := Key(alias); a != "" && a != key {
				r.aliases[a] = key
			}
		}
	}
	for _, e := range verified {
		key := Key(e.Name)
		if key == "" {
			continue
		}
		if existing, dup := r.verified[key]; dup {
			existing.Evidence = append(existing.Evidence, e.Evidence...)
			r.verified[key] = existing
			continue
		}
		r.order = append(r.order, key)
		if e.Category == "" {
			if canonical, ok := r.ontology[r.canonicalKey(key)]; ok {
				e.Category = canonical.Category
			}
		}
		r.verified[key] = e
	}
	return r
}

// Key is the lookup form of a skill name: trimmed and lowercased.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *Registry) canonicalKey(key string) string {
	if canonical, ok := r.aliases[key]; ok {
		return canonical
	}
	return key
}

// Resolve maps a skill name or alias to its canonical lowercase name.
func (r *Registry) Resolve(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	key := Key(name)
	if _, ok := r.ontology[key]; ok {
		return key, true
	}
	if canonical, ok := r.aliases[key]; ok {
		return canonical, true
	}
	return "", false
}

// Known reports whether the skill has any entry, canonical or verified.
func (r *Registry) Known(name string) bool {
	if r == nil {
		return false
	}
	if _, ok := r.Resolve(name); ok {
		return true
	}
	_, ok := r.verified[Key(name)]
	return ok
}

// Lookup returns the entry for a skill, preferring the user's verified entry.
func (r *Registry) Lookup(name string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	key := Key(name)
	if e, ok := r.verified[key]; ok {
		return e, true
	}
	if canonical, ok := r.Resolve(name); ok {
		return r.ontology[canonical], true
	}
	return Entry{}, false
}

// Aliases returns the ontology aliases of the skill's canonical form.
func (r *Registry) Aliases(name string) []string {
	canonical, ok := r.Resolve(name)
	if !ok {
		return nil
	}
	return r.ontology[canonical].Aliases
}

// IsVerified reports whether the user has verified the skill, either by its
// own name or through its canonical form.
func (r *Registry) IsVerified(name string) bool {
	if r == nil {
		return false
	}
	key := Key(name)
	if _, ok := r.verified[key]; ok {
		return true
	}
	canonical, ok := r.Resolve(name)
	if !ok {
		return false
	}
	for vk := range r.verified {
		if r.canonicalKey(vk) == canonical {
			return true
		}
	}
	return false
}

// HasVerified reports whether the user registry holds any skill.
func (r *Registry) HasVerified() bool {
	return r != nil && len(r.verified) > 0
}

// Verified returns the user's verified skill names in insertion order.
func (r *Registry) Verified() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.verified[key].Name)
	}
	return out
}

// Canonical returns every ontology skill name, sorted.
func (r *Registry) Canonical() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.ontology))
	for _, e := range r.ontology {
		out = append(out, e.Name)
	}
	sort.Strings(out)
	return out
}

// KnownNames returns the skill vocabulary used to spot skill mentions in free
// text: the user's verified skills, or the ontology when none are verified.
func (r *Registry) KnownNames() []string {
	if r.HasVerified() {
		return r.Verified()
	}
	return r.Canonical()
}

// ForProject returns the verified skills with project evidence naming project.
func (r *Registry) ForProject(project string) []string {
	if r == nil {
		return nil
	}
	want := Key(project)
	var out []string
	for _, key := range r.order {
		e := r.verified[key]
		for _, ev := range e.Evidence {
			if ev.Source == SourceProject && Key(ev.Reference) == want {
				out = append(out, e.Name)
				break
			}
		}
	}
	return out
}
