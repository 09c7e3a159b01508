// Package analytics aggregates the skills a resume is missing across many
// stored jobs, so the gaps that keep coming up can be closed first.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/resume-tailor/internal/matching"
	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Priority points per job that lists the skill in a bucket.
const (
	requiredPoints  = 3.0
	preferredPoints = 2.0
	generalPoints   = 1.0
)

// Resume coverage of a missing skill.
const (
	CoverageVerified = "verified" // the user has the skill, the resume doesn't show it
	CoverageNone     = "none"
)

// Order selects how gaps are ranked.
type Order string

// Orders
const (
	ByPriority  Order = "priority"
	ByFrequency Order = "frequency"
)

// ParseOrder accepts "priority" or "frequency"; empty means priority.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case "", ByPriority:
		return ByPriority, nil
	case ByFrequency:
		return o, nil
	default:
		return "", fmt.Errorf("unknown ranking %q (want priority or frequency)", s)
	}
}

// SkillGap is one skill missing from the resume, totalled over jobs.
type SkillGap struct {
	SkillName      string  `json:"skill_name"`
	PriorityScore  float64 `json:"priority_score"`
	FrequencyCount int     `json:"frequency_count"`
	RequiredCount  int     `json:"required_count"`
	PreferredCount int     `json:"preferred_count"`
	GeneralCount   int     `json:"general_count"`
	ResumeCoverage string  `json:"resume_coverage"`
	IsGeneric      bool    `json:"is_generic"`
}

// Aggregator matches a resume against every job and totals the gaps.
type Aggregator struct {
	registry *skills.Registry
	matcher  *matching.SkillMatcher
}

// NewAggregator builds an aggregator over registry.
func NewAggregator(registry *skills.Registry) *Aggregator {
	return &Aggregator{registry: registry, matcher: matching.NewSkillMatcher(registry)}
}

// SkillGaps returns every skill missing from resume in at least one job,
// ranked by priority. Aliases of one canonical skill are counted together
// and a skill counts once per job for frequency.
func (a *Aggregator) SkillGaps(resume *types.Resume, jobs []types.Job) ([]SkillGap, error) {
	if resume == nil {
		return nil, fmt.Errorf("resume is required")
	}

	byKey := make(map[string]*SkillGap)
	var order []string
	for _, job := range jobs {
		match, err := a.matcher.MatchJob(resume, job.Skills)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", job.ID, err)
		}

		seen := make(map[string]bool)
		tally := func(names []string, count func(*SkillGap)) {
			for _, name := range names {
				key := a.key(name)
				if key == "" {
					continue
				}
				gap, ok := byKey[key]
				if !ok {
					gap = a.newGap(name)
					byKey[key] = gap
					order = append(order, key)
				}
				count(gap)
				if !seen[key] {
					seen[key] = true
					gap.FrequencyCount++
				}
			}
		}
		tally(match.SkillGaps.RequiredMissing, func(g *SkillGap) {
			g.RequiredCount++
			g.PriorityScore += requiredPoints
		})
		tally(match.SkillGaps.PreferredMissing, func(g *SkillGap) {
			g.PreferredCount++
			g.PriorityScore += preferredPoints
		})
		tally(match.SkillGaps.SoftMissing, func(g *SkillGap) {
			g.GeneralCount++
			g.PriorityScore += generalPoints
		})
	}

	gaps := make([]SkillGap, 0, len(order))
	for _, key := range order {
		gaps = append(gaps, *byKey[key])
	}
	return Rank(gaps, ByPriority, 0), nil
}

func (a *Aggregator) key(name string) string {
	if canonical, ok := a.registry.Resolve(name); ok {
		return canonical
	}
	return skills.Key(name)
}

func (a *Aggregator) newGap(name string) *SkillGap {
	gap := &SkillGap{
		SkillName:      strings.TrimSpace(name),
		ResumeCoverage: CoverageNone,
		IsGeneric:      !a.registry.Known(name),
	}
	if a.registry.IsVerified(name) {
		gap.ResumeCoverage = CoverageVerified
	}
	return gap
}

// Rank returns a sorted copy of gaps, cut to limit when limit > 0. Ties fall
// back to the other measure, then to the skill name.
func Rank(gaps []SkillGap, by Order, limit int) []SkillGap {
	out := append([]SkillGap(nil), gaps...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if by == ByFrequency {
			if a.FrequencyCount != b.FrequencyCount {
				return a.FrequencyCount > b.FrequencyCount
			}
			if a.PriorityScore != b.PriorityScore {
				return a.PriorityScore > b.PriorityScore
			}
		} else {
			if a.PriorityScore != b.PriorityScore {
				return a.PriorityScore > b.PriorityScore
			}
			if a.FrequencyCount != b.FrequencyCount {
				return a.FrequencyCount > b.FrequencyCount
			}
		}
		return strings.ToLower(a.SkillName) < strings.ToLower(b.SkillName)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ByCategory groups the gap skills into resume categories. A nil classifier
// uses the keyword table.
func ByCategory(ctx context.Context, gaps []SkillGap, classifier skills.Classifier) map[string][]string {
	names := make([]string, 0, len(gaps))
	for _, g := range gaps {
		names = append(names, g.SkillName)
	}
	return skills.Categorize(ctx, names, nil, classifier)
}
