package skills

// Category names in display order.
const (
	CategoryLanguages = "Languages"
	CategoryMLAI      = "ML/AI"
	CategoryWeb       = "Mobile/Web"
	CategoryBackend   = "Backend/DB"
	CategoryDevOps    = "DevOps"
	CategoryOS        = "Operating Systems"
	CategorySecurity  = "Security"
	CategoryTools     = "Tools"
	CategoryOther     = "Other"
)

// CategoryOrder is the order categories appear in a resume skills section.
var CategoryOrder = []string{
	CategoryLanguages,
	CategoryMLAI,
	CategoryWeb,
	CategoryBackend,
	CategoryDevOps,
	CategoryOS,
	CategorySecurity,
	CategoryTools,
}

// categoryKeywords is the heuristic table used when no classifier is available.
var categoryKeywords = map[string][]string{
	CategoryLanguages: {"python", "java", "c++", "c#", "javascript", "typescript", "go", "golang", "rust", "ruby", "php", "r", "matlab", "swift", "kotlin", "scala", "clojure", "c", "cpp", "perl", "bash", "shell", "powershell", "sql"},
	CategoryMLAI:      {"tensorflow", "pytorch", "keras", "scikit-learn", "numpy", "pandas", "matplotlib", "seaborn", "jupyter", "machine learning", "deep learning", "neural networks", "nlp", "computer vision", "llm", "scikit"},
	CategoryWeb:       {"react", "react native", "react-native", "expo", "react navigation", "vue", "angular", "next.js", "nuxt", "svelte", "tailwind", "nativewind", "bootstrap", "html", "css"},
	CategoryBackend:   {"node.js", "nodejs", "express", "fastapi", "django", "flask", "spring", "rails", "laravel", "postgresql", "mysql", "mongodb", "redis", "cassandra", "dynamodb", "elasticsearch", "nosql", "database", "drizzle", "orm", "graphql", "grpc", "kafka"},
	CategoryDevOps:    {"docker", "kubernetes", "terraform", "ansible", "jenkins", "gitlab ci", "github actions", "circleci", "ci/cd", "devops", "railway", "aws", "azure", "gcp", "cloud"},
	CategoryOS:        {"linux", "ubuntu", "debian", "centos", "rhel", "windows", "unix", "macos"},
	CategorySecurity:  {"security", "cybersecurity", "authentication", "authorization", "encryption", "ssl/tls", "oauth", "jwt", "saml"},
	CategoryTools:     {"git", "jira", "confluence", "slack", "vscode", "vim", "excel", "tableau", "power bi", "splunk", "grafana", "prometheus", "datadog"},
}

// defaultAliases maps common variants to canonical ontology names.
var defaultAliases = map[string][]string{
	"Go":               {"golang", "go lang"},
	"JavaScript":       {"js"},
	"TypeScript":       {"ts"},
	"Kubernetes":       {"k8s"},
	"React":            {"react.js", "reactjs"},
	"Vue":              {"vue.js", "vuejs"},
	"Node.js":          {"nodejs", "node"},
	"PostgreSQL":       {"postgres", "psql"},
	"Scikit-learn":     {"scikit", "sklearn"},
	"C++":              {"cpp"},
	"React Native":     {"react-native"},
	"AWS":              {"amazon web services"},
	"GCP":              {"google cloud", "google cloud platform"},
	"CI/CD":            {"cicd"},
	"Machine Learning": {"ml"},
}

// DefaultOntology returns the built-in canonical skill list.
func DefaultOntology() []Entry {
	aliasOf := make(map[string]bool)
	for _, aliases := range defaultAliases {
		for _, a := range aliases {
			aliasOf[a] = true
		}
	}

	seen := make(map[string]bool)
	var out []Entry
	for _, category := range CategoryOrder {
		for _, kw := range categoryKeywords[category] {
			if aliasOf[kw] {
				continue
			}
			name := DisplayName(kw)
			key := Key(name)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Entry{Name: name, Category: category, Aliases: defaultAliases[name]})
		}
	}
	return out
}
