package highlight

import (
	"testing"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
)

func sampleResume() *types.Resume {
	return &types.Resume{
		Experience: []types.ExperienceItem{{
			Organization: "Acme",
			Bullets: []types.Bullet{
				types.NewBullet("Built APIs in Go", "Go", "PHP"),
				types.NewBullet("Ran Postgres", "PostgreSQL"),
			},
		}},
		Projects: []types.ProjectItem{{
			Name:    "Bot",
			Bullets: []types.Bullet{types.NewBullet("Chat bot", "Python")},
		}},
	}
}

var job = types.JobSkills{
	RequiredSkills:  []string{"Go", "Docker"},
	PreferredSkills: []string{"PostgreSQL"},
	SoftSkills:      []string{"PHP"},
}

func TestChanges(t *testing.T) {
	tr := NewTracker(sampleResume(), job)

	c := tr.Changes("exp_Acme_0", types.NewBullet("x", "go", "Docker"))
	assert.Equal(t, []string{"docker"}, c.Added)
	assert.Equal(t, []string{"php"}, c.Removed)
	assert.Equal(t, []string{"go"}, c.Unchanged)

	c = tr.Changes("exp_Unknown_9", types.NewBullet("x", "Rust"))
	assert.Equal(t, []string{"rust"}, c.Added)
	assert.Empty(t, c.Removed)
	assert.Empty(t, c.Unchanged)
}

func TestIsJobRelevant(t *testing.T) {
	tr := NewTracker(nil, job)
	assert.True(t, tr.IsJobRelevant("docker"))
	assert.True(t, tr.IsJobRelevant("Docker Compose"))
	assert.True(t, tr.IsJobRelevant("postgres"), "postgres is contained in postgresql")
	assert.False(t, tr.IsJobRelevant("PHP"), "soft skills are not highlight targets")
	assert.False(t, tr.IsJobRelevant(""))
}

func TestDecide(t *testing.T) {
	tr := NewTracker(sampleResume(), job)

	d := tr.Decide("exp_Acme_0", types.NewBullet("Shipped Go APIs on Docker", "Go", "Docker", "Kafka"))
	assert.Equal(t, []string{"Go", "Docker"}, d.Bold)
	assert.Equal(t, []string{"PHP"}, d.Unbold, "PHP was removed and is not job relevant")

	d = tr.Decide("proj_Bot_0", types.NewBullet("Chat bot", "Python"))
	assert.Empty(t, d.Bold)
	assert.Equal(t, []string{"Python"}, d.Unbold, "kept but not job relevant")

	d = tr.Decide("exp_Acme_1", types.NewBullet("Tuned queries", "Redis"))
	assert.Empty(t, d.Bold)
	assert.Equal(t, []string{"PostgreSQL"}, d.Unbold)
}

func TestDecideAll(t *testing.T) {
	original := sampleResume()
	rewritten := original.Clone()
	rewritten.Experience[0].Bullets[1] = types.NewBullet("Ran PostgreSQL with Docker", "PostgreSQL", "Docker")

	got := NewTracker(original, job).DecideAll(rewritten)

	assert.Len(t, got, 3)
	assert.Equal(t, []string{"PostgreSQL", "Docker"}, got["exp_Acme_1"].Bold)
	assert.Empty(t, got["exp_Acme_1"].Unbold)
	assert.Empty(t, NewTracker(original, job).DecideAll(nil))
}
