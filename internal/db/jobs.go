package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/types"
)

// SaveJob inserts a job or updates the stored one with the same ID. An empty
// ID is assigned a new UUID. Returns the job ID.
func (db *DB) SaveJob(ctx context.Context, in JobInput) (string, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	skillsJSON, err := json.Marshal(in.Skills)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job skills: %w", err)
	}

	var sourceURL *string
	if in.SourceURL != "" {
		sourceURL = &in.SourceURL
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO jobs (id, title, company, description, source_url, skills)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		    title = EXCLUDED.title,
		    company = EXCLUDED.company,
		    description = EXCLUDED.description,
		    source_url = EXCLUDED.source_url,
		    skills = EXCLUDED.skills`,
		in.ID, in.Title, in.Company, in.Description, sourceURL, skillsJSON,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save job: %w", err)
	}
	return in.ID, nil
}

// GetJob retrieves a job by ID. Returns nil, nil when it does not exist.
func (db *DB) GetJob(ctx context.Context, id string) (*types.Job, error) {
	var job types.Job
	var skillsJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, company, skills, created_at FROM jobs WHERE id = $1`,
		id,
	).Scan(&job.ID, &job.Title, &job.Company, &skillsJSON, &job.CreatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if err := json.Unmarshal(skillsJSON, &job.Skills); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job skills: %w", err)
	}
	return &job, nil
}

// ListJobs returns every stored job, newest first.
func (db *DB) ListJobs(ctx context.Context) ([]types.Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, title, company, skills, created_at FROM jobs ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.Job
	for rows.Next() {
		var job types.Job
		var skillsJSON []byte
		if err := rows.Scan(&job.ID, &job.Title, &job.Company, &skillsJSON, &job.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		if err := json.Unmarshal(skillsJSON, &job.Skills); err != nil {
			return nil, fmt.Errorf("failed to unmarshal skills for job %s: %w", job.ID, err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}
