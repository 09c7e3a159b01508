package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema_DefinesTables(t *testing.T) {
	schema := Schema()
	for _, table := range []string{"jobs", "resumes", "job_matches", "bullet_changes", "user_skills"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (", "missing table %s", table)
	}
}

func TestSchema_FitScoreConstrained(t *testing.T) {
	assert.Contains(t, Schema(), "CHECK (fit_score >= 0 AND fit_score <= 1)")
}

func TestSchema_ResumesOrderedIndex(t *testing.T) {
	assert.True(t, strings.Contains(Schema(), "resumes(job_id, created_at DESC)"))
}

func TestNonNil(t *testing.T) {
	assert.Equal(t, []string{}, nonNil(nil))
	assert.Equal(t, []string{"a"}, nonNil([]string{"a"}))
}

func TestClose_NilPool(t *testing.T) {
	db := &DB{}
	assert.NotPanics(t, db.Close)
}
