package parsing

import (
	"context"
	"strings"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/validation"
)

// maxPostingRunes bounds the posting text sent to the model.
const maxPostingRunes = 20000

// ExtractJobSkills asks the model for the skills a posting requires. The
// posting may be HTML or plain text. Phrases addressed to the model are
// redacted and the posting is quoted before it is sent.
func ExtractJobSkills(ctx context.Context, client llm.Client, posting string) (types.JobSkills, error) {
	if client == nil {
		return types.JobSkills{}, &Error{Kind: KindModel, Message: "LLM client is required"}
	}

	text, err := CleanJobText(posting)
	if err != nil {
		return types.JobSkills{}, err
	}
	if strings.TrimSpace(text) == "" {
		return types.JobSkills{}, &Error{Kind: KindEmpty, Field: "posting", Message: "job posting is empty"}
	}
	if runes := []rune(text); len(runes) > maxPostingRunes {
		text = string(runes[:maxPostingRunes])
	}

	prompt, err := prompts.Render("parsing.json", "extract-job-skills", map[string]string{
		"JobText": validation.QuoteExternalContent("job posting", validation.StripInjectionAttempts(text)),
	})
	if err != nil {
		return types.JobSkills{}, err
	}

	// Lite tier: extraction, not reasoning
	response, err := client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return types.JobSkills{}, &Error{Kind: KindModel, Message: "failed to extract job skills", Cause: err}
	}

	skills, err := ParseJobSkills(llm.CleanJSONBlock(response))
	if err != nil {
		return types.JobSkills{}, err
	}
	if len(skills.RequiredSkills)+len(skills.PreferredSkills)+len(skills.SoftSkills) == 0 {
		return types.JobSkills{}, &Error{Kind: KindEmpty, Field: "skills", Message: "no skills found in posting"}
	}
	return skills, nil
}
