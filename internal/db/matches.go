package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/types"
)

// SaveJobMatch records the outcome of matching a resume against a job.
func (db *DB) SaveJobMatch(ctx context.Context, jobID, resumeID string, match *types.JobMatch, customized bool) (string, error) {
	if match == nil {
		return "", fmt.Errorf("match is required")
	}
	if err := match.Validate(); err != nil {
		return "", err
	}
	details, err := json.Marshal(match)
	if err != nil {
		return "", fmt.Errorf("failed to marshal match: %w", err)
	}

	id := uuid.NewString()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO job_matches (id, job_id, resume_id, fit_score, details, resume_customized_for_job)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, jobID, resumeID, match.FitScore, details, customized,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save job match: %w", err)
	}
	return id, nil
}

// ListJobMatches returns the matches recorded for a job, best fit first.
func (db *DB) ListJobMatches(ctx context.Context, jobID string) ([]JobMatchRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, job_id, resume_id, details, resume_customized_for_job, created_at
		 FROM job_matches WHERE job_id = $1
		 ORDER BY fit_score DESC, created_at DESC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job matches: %w", err)
	}
	defer rows.Close()

	var out []JobMatchRecord
	for rows.Next() {
		var rec JobMatchRecord
		var details []byte
		if err := rows.Scan(&rec.ID, &rec.JobID, &rec.ResumeID, &details, &rec.ResumeCustomizedForJob, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job match: %w", err)
		}
		if err := json.Unmarshal(details, &rec.Match); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job match: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job matches: %w", err)
	}
	return out, nil
}
