package types

// ReasoningRequest asks a proposer to analyze one bullet before rewriting it.
// System and Prompt hold the rendered model prompt; the structured fields
// let deterministic proposers answer without parsing it.
type ReasoningRequest struct {
	BulletKey       string   `json:"bullet_key"`
	BulletText      string   `json:"bullet_text"`
	BulletSkills    []string `json:"bullet_skills,omitempty"`
	ProjectContext  []string `json:"project_context,omitempty"`
	RequiredMissing []string `json:"required_missing,omitempty"`
	MissingSkills   []string `json:"missing_skills,omitempty"`
	MatchingSkills  []string `json:"matching_skills,omitempty"`
	AllowedSkills   []string `json:"allowed_skills,omitempty"`

	System string `json:"-"`
	Prompt string `json:"-"`
}

// CandidateRequest asks a proposer for rewrite candidates, given the
// reasoning produced for the same bullet.
type CandidateRequest struct {
	ReasoningRequest
	Reasoning      Reasoning     `json:"reasoning"`
	Intent         RewriteIntent `json:"intent"`
	MaxCandidates  int           `json:"max_candidates"`
	PreferenceNote string        `json:"preference_note,omitempty"`
}
