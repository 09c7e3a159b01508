// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
	"time"
)

// MaxBulletLength is the hard ceiling on bullet text length, in characters.
const MaxBulletLength = 150

// Resume is a candidate's resume. Pipeline stages never mutate a shared
// Resume; they work on a copy obtained from Clone.
type Resume struct {
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	LinkedIn    string `json:"linkedin,omitempty"`
	GitHub      string `json:"github,omitempty"`
	Location    string `json:"location,omitempty"`
	Citizenship string `json:"citizenship,omitempty"`

	Experience []ExperienceItem    `json:"experience"`
	Education  []EducationItem     `json:"education,omitempty"`
	Skills     map[string][]string `json:"skills"`
	Projects   []ProjectItem       `json:"projects,omitempty"`
	Hobbies    []string            `json:"hobbies,omitempty"`
	Courses    []string            `json:"courses,omitempty"`

	Version     int       `json:"version"`
	DateCreated time.Time `json:"date_created,omitzero"`
	DateUpdated time.Time `json:"date_updated,omitzero"`
}

// ExperienceItem is a single position held by the candidate.
type ExperienceItem struct {
	Organization string   `json:"organization"`
	Role         string   `json:"role"`
	Location     string   `json:"location,omitempty"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	Bullets      []Bullet `json:"bullets"`
}

// ProjectItem is a side or academic project with its declared tech stack.
type ProjectItem struct {
	Name      string   `json:"name"`
	TechStack []string `json:"tech_stack"`
	StartDate string   `json:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty"`
	Bullets   []Bullet `json:"bullets"`
}

// EducationItem is a degree or program entry.
type EducationItem struct {
	Institution string   `json:"institution"`
	Degree      string   `json:"degree"`
	Location    string   `json:"location,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Details     []string `json:"details,omitempty"`
}

// Bullet is one accomplishment line. History is append-only.
type Bullet struct {
	Text     string          `json:"text" validate:"max=150"`
	Skills   []string        `json:"skills"`
	Evidence string          `json:"evidence,omitempty"`
	History  []BulletHistory `json:"history,omitempty"`
}

// NewBullet builds a bullet with its skill list deduplicated case-insensitively.
func NewBullet(text string, skills ...string) Bullet {
	return Bullet{Text: text, Skills: DedupeSkills(skills)}
}

// AppendHistory records an accepted change. Existing entries are never touched.
func (b *Bullet) AppendHistory(entry BulletHistory) {
	b.History = append(b.History[:len(b.History):len(b.History)], entry)
}

// BulletHistory is an immutable record of one accepted change to a bullet.
type BulletHistory struct {
	ID              string        `json:"id"`
	OriginalText    string        `json:"original_text"`
	NewText         string        `json:"new_text" validate:"max=150"`
	Justification   Justification `json:"justification"`
	Reasoning       *Reasoning    `json:"reasoning,omitempty"`
	ApprovedByHuman bool          `json:"approved_by_human"`
	Timestamp       time.Time     `json:"timestamp"`
	SelectedIndex   int           `json:"selected_variation_index" validate:"gte=0,lte=3"`
}

// Justification explains why a change was made.
type Justification struct {
	Trigger          string   `json:"trigger"`
	SkillsAdded      []string `json:"skills_added"`
	ATSKeywordsAdded []string `json:"ats_keywords_added"`
}

// Reasoning is the structured chain produced before candidates are requested.
type Reasoning struct {
	ProblemIdentification  string   `json:"problem_identification"`
	Analysis               string   `json:"analysis"`
	SolutionApproach       string   `json:"solution_approach"`
	Evaluation             string   `json:"evaluation"`
	AlternativesConsidered []string `json:"alternatives_considered"`
	ConfidenceScore        float64  `json:"confidence_score" validate:"gte=0,lte=1"`
}

// Clone returns a deep copy of the resume.
func (r *Resume) Clone() *Resume {
	if r == nil {
		return nil
	}
	out := *r
	out.Experience = make([]ExperienceItem, len(r.Experience))
	for i, exp := range r.Experience {
		exp.Bullets = cloneBullets(exp.Bullets)
		out.Experience[i] = exp
	}
	out.Projects = make([]ProjectItem, len(r.Projects))
	for i, proj := range r.Projects {
		proj.TechStack = cloneStrings(proj.TechStack)
		proj.Bullets = cloneBullets(proj.Bullets)
		out.Projects[i] = proj
	}
	out.Education = make([]EducationItem, len(r.Education))
	for i, edu := range r.Education {
		edu.Details = cloneStrings(edu.Details)
		out.Education[i] = edu
	}
	if r.Skills != nil {
		out.Skills = make(map[string][]string, len(r.Skills))
		for category, names := range r.Skills {
			out.Skills[category] = cloneStrings(names)
		}
	}
	out.Hobbies = cloneStrings(r.Hobbies)
	out.Courses = cloneStrings(r.Courses)
	return &out
}

// BulletRef addresses a bullet inside a resume.
type BulletRef struct {
	Key     string
	Project bool
	Item    int
	Index   int
}

// BulletRefs enumerates every bullet in document order. Experience keys take
// the form exp_<organization>_<n> and project keys proj_<name>_<n>, with n
// counting across each section.
func (r *Resume) BulletRefs() []BulletRef {
	var refs []BulletRef
	n := 0
	for i, exp := range r.Experience {
		for j := range exp.Bullets {
			refs = append(refs, BulletRef{
				Key:   fmt.Sprintf("exp_%s_%d", keyPart(exp.Organization), n),
				Item:  i,
				Index: j,
			})
			n++
		}
	}
	n = 0
	for i, proj := range r.Projects {
		for j := range proj.Bullets {
			refs = append(refs, BulletRef{
				Key:     fmt.Sprintf("proj_%s_%d", keyPart(proj.Name), n),
				Project: true,
				Item:    i,
				Index:   j,
			})
			n++
		}
	}
	return refs
}

// Bullet returns a pointer to the referenced bullet, or nil if out of range.
func (r *Resume) Bullet(ref BulletRef) *Bullet {
	if ref.Project {
		if ref.Item < 0 || ref.Item >= len(r.Projects) {
			return nil
		}
		bullets := r.Projects[ref.Item].Bullets
		if ref.Index < 0 || ref.Index >= len(bullets) {
			return nil
		}
		return &r.Projects[ref.Item].Bullets[ref.Index]
	}
	if ref.Item < 0 || ref.Item >= len(r.Experience) {
		return nil
	}
	bullets := r.Experience[ref.Item].Bullets
	if ref.Index < 0 || ref.Index >= len(bullets) {
		return nil
	}
	return &r.Experience[ref.Item].Bullets[ref.Index]
}

// LookupBullet finds a bullet by key.
func (r *Resume) LookupBullet(key string) (BulletRef, *Bullet, bool) {
	for _, ref := range r.BulletRefs() {
		if ref.Key == key {
			return ref, r.Bullet(ref), true
		}
	}
	return BulletRef{}, nil, false
}

// DedupeSkills trims skill names and drops case-insensitive duplicates,
// keeping the first spelling seen.
func DedupeSkills(skills []string) []string {
	if len(skills) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func keyPart(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
}

func cloneBullets(in []Bullet) []Bullet {
	if in == nil {
		return nil
	}
	out := make([]Bullet, len(in))
	for i, b := range in {
		b.Skills = cloneStrings(b.Skills)
		if b.History != nil {
			history := make([]BulletHistory, len(b.History))
			for k, h := range b.History {
				h.Justification.SkillsAdded = cloneStrings(h.Justification.SkillsAdded)
				h.Justification.ATSKeywordsAdded = cloneStrings(h.Justification.ATSKeywordsAdded)
				if h.Reasoning != nil {
					r := *h.Reasoning
					r.AlternativesConsidered = cloneStrings(r.AlternativesConsidered)
					h.Reasoning = &r
				}
				history[k] = h
			}
			b.History = history
		}
		out[i] = b
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
