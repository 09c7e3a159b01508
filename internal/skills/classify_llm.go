package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
)

// LLMClassifier categorizes skills with a language model.
type LLMClassifier struct {
	client llm.Client
}

// NewLLMClassifier creates a classifier backed by client.
func NewLLMClassifier(client llm.Client) *LLMClassifier {
	return &LLMClassifier{client: client}
}

type classification struct {
	Skill    string `json:"skill"`
	Category string `json:"category"`
}

// Classify asks the model for one category per skill. Categories outside the
// known set are dropped so the caller's heuristic fills them in.
func (c *LLMClassifier) Classify(ctx context.Context, names []string) (map[string]string, error) {
	if len(names) == 0 {
		return map[string]string{}, nil
	}

	namesJSON, _ := json.Marshal(names)
	prompt := prompts.Format(prompts.MustGet("skills.json", "categorize"), map[string]string{
		"Categories": strings.Join(append(append([]string{}, CategoryOrder...), CategoryOther), ", "),
		"Skills":     string(namesJSON),
	})

	response, err := c.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}

	var parsed struct {
		Skills []classification `json:"skills"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(response)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	out := make(map[string]string, len(parsed.Skills))
	for _, item := range parsed.Skills {
		if validCategory(item.Category) {
			out[Key(item.Skill)] = item.Category
		}
	}
	return out, nil
}
