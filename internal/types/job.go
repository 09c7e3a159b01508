// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// JobSkills is the skill profile extracted from a job posting.
type JobSkills struct {
	RequiredSkills      []string `json:"required_skills" mapstructure:"required_skills"`
	PreferredSkills     []string `json:"preferred_skills" mapstructure:"preferred_skills"`
	SoftSkills          []string `json:"soft_skills" mapstructure:"soft_skills"`
	SeniorityIndicators []string `json:"seniority_indicators,omitempty" mapstructure:"seniority_indicators"`
}

// Targeted returns required followed by preferred skills.
func (j JobSkills) Targeted() []string {
	out := make([]string, 0, len(j.RequiredSkills)+len(j.PreferredSkills))
	out = append(out, j.RequiredSkills...)
	return append(out, j.PreferredSkills...)
}

// Job is a stored job posting together with its extracted skills.
type Job struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Skills    JobSkills `json:"skills"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// SkillGaps buckets unmatched job skills by importance.
type SkillGaps struct {
	RequiredMissing  []string `json:"required_missing"`
	PreferredMissing []string `json:"preferred_missing"`
	SoftMissing      []string `json:"soft_missing"`
}

// JobMatch is the outcome of comparing a resume against a job.
type JobMatch struct {
	FitScore        float64   `json:"fit_score" validate:"gte=0,lte=1"`
	SkillGaps       SkillGaps `json:"skill_gaps"`
	MissingSkills   []string  `json:"missing_skills"`
	MatchingSkills  []string  `json:"matching_skills"`
	Recommendations []string  `json:"recommendations"`
}

// NewJobMatch builds a JobMatch, rejecting a fit score outside [0,1].
func NewJobMatch(fit float64, gaps SkillGaps, missing, matching, recommendations []string) (*JobMatch, error) {
	m := &JobMatch{
		FitScore:        fit,
		SkillGaps:       gaps,
		MissingSkills:   missing,
		MatchingSkills:  matching,
		Recommendations: recommendations,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the JobMatch invariants.
func (m *JobMatch) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("invalid job match (fit_score=%v): %w", m.FitScore, err)
	}
	return nil
}

// Validate checks the reasoning confidence range.
func (r *Reasoning) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid reasoning: %w", err)
	}
	return nil
}

// Validate checks the bullet length invariant.
func (b *Bullet) Validate() error {
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("invalid bullet: %w", err)
	}
	return nil
}

// Validate checks a history entry before it is appended.
func (h *BulletHistory) Validate() error {
	if err := validate.Struct(h); err != nil {
		return fmt.Errorf("invalid bullet history: %w", err)
	}
	return nil
}
