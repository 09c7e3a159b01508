// Package highlight decides which skill keywords in rewritten bullets should
// be emphasized in the rendered resume.
package highlight

import (
	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Changes is the skill-level diff between an original and a new bullet.
// Entries are lowercase.
type Changes struct {
	Added     []string `json:"added"`
	Removed   []string `json:"removed"`
	Unchanged []string `json:"unchanged"`
}

// Decision lists the skills to emphasize and to de-emphasize, in the
// spelling used by the bullet they come from.
type Decision struct {
	Bold   []string `json:"bold"`
	Unbold []string `json:"unbold"`
}

// Tracker compares rewritten bullets against an original resume snapshot.
type Tracker struct {
	original  map[string]types.Bullet
	jobSkills []string
}

// NewTracker snapshots the bullets of original. Job relevance is judged
// against the job's required and preferred skills.
func NewTracker(original *types.Resume, job types.JobSkills) *Tracker {
	t := &Tracker{
		original:  make(map[string]types.Bullet),
		jobSkills: skills.Keys(job.Targeted()),
	}
	if original == nil {
		return t
	}
	for _, ref := range original.BulletRefs() {
		b := original.Bullet(ref)
		t.original[ref.Key] = types.Bullet{Text: b.Text, Skills: append([]string(nil), b.Skills...)}
	}
	return t
}

// Changes diffs the skills of bullet against the original bullet at key. A
// key absent from the snapshot treats every skill as added.
func (t *Tracker) Changes(key string, bullet types.Bullet) Changes {
	newSkills := skills.Keys(bullet.Skills)
	orig, ok := t.original[key]
	if !ok {
		return Changes{Added: newSkills, Removed: []string{}, Unchanged: []string{}}
	}
	origSkills := skills.Keys(orig.Skills)
	origSet := skills.KeySet(origSkills)
	newSet := skills.KeySet(newSkills)

	c := Changes{Added: []string{}, Removed: []string{}, Unchanged: []string{}}
	for _, s := range newSkills {
		if origSet[s] {
			c.Unchanged = append(c.Unchanged, s)
		} else {
			c.Added = append(c.Added, s)
		}
	}
	for _, s := range origSkills {
		if !newSet[s] {
			c.Removed = append(c.Removed, s)
		}
	}
	return c
}

// IsJobRelevant reports whether skill equals or partially overlaps a job skill.
func (t *Tracker) IsJobRelevant(skill string) bool {
	return skills.OverlapsAny(skill, t.jobSkills)
}

// Decide returns the highlight decision for bullet at key. Job-relevant
// skills that were added or kept are bolded; original skills that were
// removed or are not job-relevant are unbolded.
func (t *Tracker) Decide(key string, bullet types.Bullet) Decision {
	changes := t.Changes(key, bullet)
	added := skills.KeySet(changes.Added)
	unchanged := skills.KeySet(changes.Unchanged)
	removed := skills.KeySet(changes.Removed)

	d := Decision{Bold: []string{}, Unbold: []string{}}
	for _, s := range types.DedupeSkills(bullet.Skills) {
		k := skills.Key(s)
		if t.IsJobRelevant(s) && (added[k] || unchanged[k]) {
			d.Bold = append(d.Bold, s)
		}
	}
	if orig, ok := t.original[key]; ok {
		for _, s := range types.DedupeSkills(orig.Skills) {
			if removed[skills.Key(s)] || !t.IsJobRelevant(s) {
				d.Unbold = append(d.Unbold, s)
			}
		}
	}
	return d
}

// DecideAll computes decisions for every bullet of rewritten, keyed like
// types.Resume.BulletRefs.
func (t *Tracker) DecideAll(rewritten *types.Resume) map[string]Decision {
	out := make(map[string]Decision)
	if rewritten == nil {
		return out
	}
	for _, ref := range rewritten.BulletRefs() {
		out[ref.Key] = t.Decide(ref.Key, *rewritten.Bullet(ref))
	}
	return out
}
