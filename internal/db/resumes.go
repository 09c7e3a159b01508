package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/matching"
	"github.com/jonathan/resume-tailor/internal/types"
)

var _ matching.JobRepository = (*DB)(nil)

// SaveResume stores a resume, optionally tied to the job it was tailored for.
// Every call creates a new row. Returns the resume ID.
func (db *DB) SaveResume(ctx context.Context, resume *types.Resume, jobID string) (string, error) {
	return insertResume(ctx, db.pool, resume, jobID)
}

// SaveApproval stores an approved resume together with the bullet changes
// that produced it. Either everything is written or nothing is.
func (db *DB) SaveApproval(ctx context.Context, resume *types.Resume, jobID string, changes map[string]types.BulletHistory) (string, error) {
	var resumeID string
	err := db.inTx(ctx, func(q querier) error {
		id, err := insertResume(ctx, q, resume, jobID)
		if err != nil {
			return err
		}
		for key, entry := range changes {
			if err := insertBulletChange(ctx, q, id, key, entry); err != nil {
				return fmt.Errorf("bullet %s: %w", key, err)
			}
		}
		resumeID = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return resumeID, nil
}

func insertResume(ctx context.Context, q querier, resume *types.Resume, jobID string) (string, error) {
	if resume == nil {
		return "", fmt.Errorf("resume is required")
	}
	content, err := json.Marshal(resume)
	if err != nil {
		return "", fmt.Errorf("failed to marshal resume: %w", err)
	}

	var job *string
	if jobID != "" {
		job = &jobID
	}

	id := uuid.NewString()
	_, err = q.Exec(ctx,
		`INSERT INTO resumes (id, job_id, version, content) VALUES ($1, $2, $3, $4)`,
		id, job, resume.Version, content,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save resume: %w", err)
	}
	return id, nil
}

// GetResume retrieves a resume by ID. Returns nil, nil when it does not exist.
func (db *DB) GetResume(ctx context.Context, id string) (*types.Resume, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM resumes WHERE id = $1`, id,
	).Scan(&content)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}

	var resume types.Resume
	if err := json.Unmarshal(content, &resume); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resume: %w", err)
	}
	return &resume, nil
}

// ResumesForJob returns the resumes tailored for jobID, most recent first.
func (db *DB) ResumesForJob(ctx context.Context, jobID string) ([]matching.StoredResume, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, content FROM resumes WHERE job_id = $1 ORDER BY created_at DESC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes for job: %w", err)
	}
	defer rows.Close()

	var out []matching.StoredResume
	for rows.Next() {
		var id string
		var content []byte
		if err := rows.Scan(&id, &content); err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		var resume types.Resume
		if err := json.Unmarshal(content, &resume); err != nil {
			return nil, fmt.Errorf("failed to unmarshal resume %s: %w", id, err)
		}
		out = append(out, matching.StoredResume{ID: id, JobID: jobID, Resume: &resume})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resumes: %w", err)
	}
	return out, nil
}
