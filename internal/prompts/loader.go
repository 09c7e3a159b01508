// Package prompts provides a loader for the LLM prompt templates used by the
// rewrite, categorization and job-parsing steps. Templates are JSON files
// embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var placeholderRe = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// catalog holds every embedded prompt file, decoded once on first use.
var catalog = sync.OnceValues(func() (map[string]map[string]string, error) {
	names, err := fs.Glob(promptFiles, "*.json")
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[string]string, len(names))
	for _, name := range names {
		data, err := promptFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
		}
		var prompts map[string]string
		if err := json.Unmarshal(data, &prompts); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
		}
		out[name] = prompts
	}
	return out, nil
})

func file(filename string) (map[string]string, error) {
	all, err := catalog()
	if err != nil {
		return nil, err
	}
	prompts, ok := all[filename]
	if !ok {
		return nil, fmt.Errorf("prompt file %s not found", filename)
	}
	return prompts, nil
}

// Get retrieves a prompt by filename and key, e.g. Get("rewriting.json", "reasoning").
func Get(filename, key string) (string, error) {
	prompts, err := file(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet retrieves a prompt, panicking if it is missing. Prompt files are
// embedded, so a miss is a programming error.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Render loads a prompt and substitutes its {{.Key}} placeholders.
func Render(filename, key string, data map[string]string) (string, error) {
	template, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	return Format(template, data), nil
}

// Format replaces {{.Key}} placeholders with values from data. Unknown
// placeholders are left in place.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		if v, ok := data[placeholderRe.FindStringSubmatch(m)[1]]; ok {
			return v
		}
		return m
	})
}

// Placeholders returns the distinct placeholder names in template, sorted.
func Placeholders(template string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	sort.Strings(out)
	return out
}

// List returns the prompt keys in a file, sorted.
func List(filename string) ([]string, error) {
	prompts, err := file(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(prompts))
	for key := range prompts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Files returns the embedded prompt file names, sorted.
func Files() []string {
	all, err := catalog()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
