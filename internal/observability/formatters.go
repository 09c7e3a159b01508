// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/resume-tailor/internal/highlight"
	"github.com/jonathan/resume-tailor/internal/matching"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to n runes with a trailing ellipsis.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// writeList writes up to limit items as bullets followed by an overflow line.
func writeList(sb *strings.Builder, label string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(label + ":\n")
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
}

// PrintJobSkills outputs the extracted skill profile of a posting.
func (p *Printer) PrintJobSkills(js *types.JobSkills) {
	if js == nil {
		return
	}

	var sb strings.Builder
	writeList(&sb, "Required", js.RequiredSkills, maxItemsToShow)
	writeList(&sb, "Preferred", js.PreferredSkills, 3)
	writeList(&sb, "Soft skills", js.SoftSkills, 3)
	writeList(&sb, "Seniority", js.SeniorityIndicators, 3)
	if sb.Len() == 0 {
		sb.WriteString("No skills extracted")
	}

	p.printBox("JOB SKILLS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobMatch outputs the fit score and the skill gaps.
func (p *Printer) PrintJobMatch(match *types.JobMatch) {
	if match == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Fit score: %.1f%%\n\n", match.FitScore*100))
	writeList(&sb, "Missing (required)", match.SkillGaps.RequiredMissing, maxItemsToShow)
	writeList(&sb, "Missing (preferred)", match.SkillGaps.PreferredMissing, 3)
	writeList(&sb, "Missing (soft)", match.SkillGaps.SoftMissing, 3)
	writeList(&sb, "Matching", match.MatchingSkills, maxItemsToShow)
	writeList(&sb, "Recommendations", match.Recommendations, 3)

	p.printBox("JOB MATCH", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSimilarJobs outputs stored jobs ordered by similarity.
func (p *Printer) PrintSimilarJobs(similar []matching.SimilarJob) {
	if len(similar) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(similar), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := similar[i]
		sb.WriteString(fmt.Sprintf("#%d  %s at %s\n", i+1, s.Job.Title, s.Job.Company))
		sb.WriteString(fmt.Sprintf("    Similarity: %.2f\n", s.Similarity))
	}
	if len(similar) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more jobs\n", len(similar)-maxItemsToShow))
	}

	p.printBox("SIMILAR JOBS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReuse outputs the outcome of a reuse search. A nil reuse means no
// stored resume qualified.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) PrintReuse(reuse *matching.Reuse) {
	if reuse == nil {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO REUSABLE RESUME FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Resume:     %s\n", reuse.ResumeID))
	sb.WriteString(fmt.Sprintf("Job:        %s\n", reuse.JobID))
	sb.WriteString(fmt.Sprintf("Fit score:  %.2f\n", reuse.FitScore))
	sb.WriteString(fmt.Sprintf("Similarity: %.2f", reuse.Similarity))

	p.printBox("REUSABLE RESUME", sb.String())
}

// PrintRewriteResult outputs the top candidate of each bullet, in key order.
func (p *Printer) PrintRewriteResult(result types.RewriteResult) {
	if len(result) == 0 {
		return
	}

	keys := make([]string, 0, len(result))
	for k := range result {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Rewritten %d bullets:\n\n", len(keys)))
	for i, key := range keys {
		v := result[key]
		sb.WriteString(key + "\n")
		sb.WriteString(fmt.Sprintf("  - %s\n", v.Original))
		if len(v.Candidates) > 0 {
			top := v.Candidates[0]
			sb.WriteString(fmt.Sprintf("  + %s\n", top.Text))
			tags := []string{fmt.Sprintf("score %.2f", top.CompositeScore), "risk " + string(top.RiskLevel)}
			if v.Fallback {
				tags = append(tags, "fallback")
			}
			if len(v.Candidates) > 1 {
				tags = append(tags, fmt.Sprintf("%d more", len(v.Candidates)-1))
			}
			sb.WriteString(fmt.Sprintf("  [%s]\n", strings.Join(tags, ", ")))
		}
		if i < len(keys)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("REWRITE CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHighlights outputs the skills to bold and unbold per bullet.
func (p *Printer) PrintHighlights(decisions map[string]highlight.Decision) {
	keys := make([]string, 0, len(decisions))
	for k, d := range decisions {
		if len(d.Bold) > 0 || len(d.Unbold) > 0 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		d := decisions[key]
		sb.WriteString(key + "\n")
		if len(d.Bold) > 0 {
			sb.WriteString(fmt.Sprintf("  bold:   %s\n", strings.Join(d.Bold, ", ")))
		}
		if len(d.Unbold) > 0 {
			sb.WriteString(fmt.Sprintf("  unbold: %s\n", strings.Join(d.Unbold, ", ")))
		}
	}

	p.printBox("KEYWORD HIGHLIGHTS", strings.TrimSuffix(sb.String(), "\n"))
}
