package db

import (
	"time"

	"github.com/jonathan/resume-tailor/internal/types"
)

// JobInput is a job posting to store.
type JobInput struct {
	ID          string
	Title       string
	Company     string
	Description string
	SourceURL   string
	Skills      types.JobSkills
}

// JobMatchRecord is a stored match of a resume against a job.
type JobMatchRecord struct {
	ID                     string         `json:"id"`
	JobID                  string         `json:"job_id"`
	ResumeID               string         `json:"resume_id"`
	Match                  types.JobMatch `json:"match"`
	ResumeCustomizedForJob bool           `json:"resume_customized_for_job"`
	CreatedAt              time.Time      `json:"created_at"`
}

// BulletChange is an accepted bullet rewrite.
type BulletChange struct {
	ResumeID  string              `json:"resume_id"`
	BulletKey string              `json:"bullet_key"`
	History   types.BulletHistory `json:"history"`
	CreatedAt time.Time           `json:"created_at"`
}
