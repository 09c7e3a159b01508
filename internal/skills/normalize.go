package skills

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// specialCases maps lowercase skill spellings to their conventional casing.
var specialCases = map[string]string{
	"c++":              "C++",
	"c#":               "C#",
	"f#":               "F#",
	"r":                "R",
	"go":               "Go",
	"golang":           "Go",
	"go lang":          "Go",
	"javascript":       "JavaScript",
	"js":               "JavaScript",
	"typescript":       "TypeScript",
	"ts":               "TypeScript",
	"ai/ml":            "AI/ML",
	"api":              "API",
	"rest":             "REST",
	"graphql":          "GraphQL",
	"grpc":             "gRPC",
	"jwt":              "JWT",
	"oauth":            "OAuth",
	"saml":             "SAML",
	"ssl/tls":          "SSL/TLS",
	"ci/cd":            "CI/CD",
	"sql":              "SQL",
	"nosql":            "NoSQL",
	"http":             "HTTP",
	"dns":              "DNS",
	"aws":              "AWS",
	"gcp":              "GCP",
	"nlp":              "NLP",
	"llm":              "LLM",
	"html":             "HTML",
	"css":              "CSS",
	"k8s":              "Kubernetes",
	"gpu":              "GPU",
	"trpc":             "tRPC",
	"node.js":          "Node.js",
	"nodejs":           "Node.js",
	"next.js":          "Next.js",
	"react.js":         "React",
	"reactjs":          "React",
	"vue.js":           "Vue",
	"vuejs":            "Vue",
	"react native":     "React Native",
	"react-native":     "React Native",
	"scikit-learn":     "Scikit-learn",
	"scikit":           "Scikit-learn",
	"tensorflow":       "TensorFlow",
	"pytorch":          "PyTorch",
	"numpy":            "NumPy",
	"postgresql":       "PostgreSQL",
	"mysql":            "MySQL",
	"mongodb":          "MongoDB",
	"dynamodb":         "DynamoDB",
	"fastapi":          "FastAPI",
	"github actions":   "GitHub Actions",
	"gitlab ci":        "GitLab CI",
	"circleci":         "CircleCI",
	"macos":            "macOS",
	"rhel":             "RHEL",
	"vscode":           "VS Code",
	"power bi":         "Power BI",
	"matlab":           "MATLAB",
	"php":              "PHP",
	"cpp":              "C++",
	"tensorflow/keras": "TensorFlow",
}

var smallWords = map[string]bool{
	"and": true, "or": true, "of": true, "the": true, "a": true, "an": true,
	"in": true, "on": true, "at": true, "to": true, "for": true,
}

// DisplayName returns the conventional spelling of a skill name. Formatting
// artifacts such as stray braces or \textbf{ wrappers are stripped first.
func DisplayName(skill string) string {
	skill = cleanArtifacts(skill)
	if skill == "" {
		return ""
	}

	lower := strings.ToLower(skill)
	if v, ok := specialCases[lower]; ok {
		return v
	}
	if v, ok := specialCases[strings.NewReplacer("_", " ").Replace(lower)]; ok {
		return v
	}

	words := strings.Fields(skill)
	for i, word := range words {
		wl := strings.ToLower(word)
		switch {
		case specialCases[wl] != "":
			words[i] = specialCases[wl]
		case len(word) > 1 && word == strings.ToUpper(word):
			// acronym
		case i > 0 && smallWords[wl]:
			words[i] = wl
		case word != wl:
			// already mixed case
		default:
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

func cleanArtifacts(skill string) string {
	skill = strings.TrimSpace(skill)
	skill = strings.TrimPrefix(skill, `\textbf{`)
	skill = strings.ReplaceAll(skill, "{", "")
	skill = strings.ReplaceAll(skill, "}", "")
	return strings.TrimSpace(skill)
}

// Dedupe normalizes every name with DisplayName and drops case-insensitive
// duplicates, keeping first-seen order.
func Dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		d := DisplayName(n)
		key := Key(d)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}

// KeySet returns the lowercase, trimmed set of names.
func KeySet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		if k := Key(n); k != "" {
			set[k] = true
		}
	}
	return set
}

// Keys returns the lowercase, trimmed names deduplicated in first-seen order.
func Keys(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		k := Key(n)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// Overlaps reports whether a and b are equal or one contains the other,
// ignoring case and surrounding whitespace.
func Overlaps(a, b string) bool {
	a, b = Key(a), Key(b)
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// OverlapsAny reports whether name overlaps any entry of list.
func OverlapsAny(name string, list []string) bool {
	for _, s := range list {
		if Overlaps(name, s) {
			return true
		}
	}
	return false
}

// MentionsTerm reports whether text contains term as a whole word or phrase,
// ignoring case. A match must not be flanked by a letter or digit, so "led"
// is found in "Led the migration" but not in "scaled".
func MentionsTerm(text, term string) bool {
	text = strings.ToLower(text)
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	for offset := 0; offset <= len(text); {
		idx := strings.Index(text[offset:], term)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
