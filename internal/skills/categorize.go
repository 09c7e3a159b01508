package skills

import (
	"context"
	"slices"
	"sort"
	"strings"
)

// Classifier assigns categories to skill names. Implementations may call
// external services; Categorize falls back to the keyword table on error.
type Classifier interface {
	Classify(ctx context.Context, skills []string) (map[string]string, error)
}

// compoundKeep lists slash-separated names that are a single skill.
var compoundKeep = map[string]bool{
	"ci/cd": true, "ai/ml": true, "ssl/tls": true, "tcp/ip": true, "tensorflow/keras": true,
}

// CategoryFor returns the heuristic category of a skill, or CategoryOther.
func CategoryFor(skill string) string {
	lower := Key(skill)
	if lower == "" {
		return CategoryOther
	}
	words := strings.Fields(lower)
	separated := strings.Fields(strings.NewReplacer("-", " ", "/", " ", "_", " ").Replace(lower))
	compact := strings.NewReplacer("-", "", "/", "", "_", "").Replace(lower)

	for _, category := range CategoryOrder {
		for _, kw := range categoryKeywords[category] {
			switch {
			case kw == lower:
				return category
			case slices.Contains(words, kw) || slices.Contains(separated, kw):
				return category
			case len(kw) > 3 && strings.Contains(compact, kw):
				return category
			}
		}
	}
	if canonical, ok := defaultRegistry.Resolve(lower); ok {
		if e, found := defaultRegistry.ontology[canonical]; found && e.Category != "" {
			return e.Category
		}
	}
	return CategoryOther
}

var defaultRegistry = NewRegistry(DefaultOntology(), nil)

// Categorize groups skills into resume categories. Skills matching any job
// skill are listed first within their category; each group is sorted
// alphabetically. A nil classifier, or a classifier error, uses the keyword
// table only. Every skill lands in some category.
func Categorize(ctx context.Context, names []string, jobSkills []string, classifier Classifier) map[string][]string {
	var expanded []string
	for _, n := range names {
		if strings.Contains(n, "/") && !compoundKeep[Key(n)] {
			for _, part := range strings.Split(n, "/") {
				expanded = append(expanded, part)
			}
			continue
		}
		expanded = append(expanded, n)
	}
	unique := Dedupe(expanded)
	if len(unique) == 0 {
		return map[string][]string{}
	}

	var assigned map[string]string
	if classifier != nil {
		if got, err := classifier.Classify(ctx, unique); err == nil {
			assigned = make(map[string]string, len(got))
			for k, v := range got {
				assigned[Key(k)] = v
			}
		}
	}

	result := make(map[string][]string)
	for _, skill := range unique {
		category := assigned[Key(skill)]
		if !validCategory(category) {
			category = CategoryFor(skill)
		}
		result[category] = append(result[category], skill)
	}

	for category, list := range result {
		result[category] = orderByRelevance(list, jobSkills)
	}
	return result
}

func validCategory(c string) bool {
	return c == CategoryOther || slices.Contains(CategoryOrder, c)
}

func orderByRelevance(list []string, jobSkills []string) []string {
	var relevant, rest []string
	for _, s := range list {
		if OverlapsAny(s, jobSkills) {
			relevant = append(relevant, s)
		} else {
			rest = append(rest, s)
		}
	}
	byName := func(xs []string) {
		sort.SliceStable(xs, func(i, j int) bool { return Key(xs[i]) < Key(xs[j]) })
	}
	byName(relevant)
	byName(rest)
	return append(relevant, rest...)
}

// OrderedCategories returns the categories present in m in display order,
// with any unknown categories appended alphabetically.
func OrderedCategories(m map[string][]string) []string {
	var out []string
	for _, c := range CategoryOrder {
		if len(m[c]) > 0 {
			out = append(out, c)
		}
	}
	var extra []string
	for c, list := range m {
		if len(list) > 0 && !slices.Contains(CategoryOrder, c) {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
