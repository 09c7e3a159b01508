package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/resume-tailor/internal/types"
)

// RecordBulletChange stores an accepted change. The history entry's ID is
// used as the row ID, so recording the same entry twice fails.
func (db *DB) RecordBulletChange(ctx context.Context, resumeID, bulletKey string, entry types.BulletHistory) error {
	return insertBulletChange(ctx, db.pool, resumeID, bulletKey, entry)
}

func insertBulletChange(ctx context.Context, q querier, resumeID, bulletKey string, entry types.BulletHistory) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	justification, err := json.Marshal(entry.Justification)
	if err != nil {
		return fmt.Errorf("failed to marshal justification: %w", err)
	}
	var reasoning []byte
	if entry.Reasoning != nil {
		if reasoning, err = json.Marshal(entry.Reasoning); err != nil {
			return fmt.Errorf("failed to marshal reasoning: %w", err)
		}
	}

	_, err = q.Exec(ctx,
		`INSERT INTO bullet_changes
		    (id, resume_id, bullet_key, original_text, new_text, justification, reasoning,
		     selected_variation_index, approved_by_human, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID, resumeID, bulletKey, entry.OriginalText, entry.NewText, justification, reasoning,
		entry.SelectedIndex, entry.ApprovedByHuman, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to record bullet change: %w", err)
	}
	return nil
}

// ListBulletChanges returns the changes recorded for a resume in the order
// they were made.
func (db *DB) ListBulletChanges(ctx context.Context, resumeID string) ([]BulletChange, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, bullet_key, original_text, new_text, justification, reasoning,
		        selected_variation_index, approved_by_human, created_at
		 FROM bullet_changes WHERE resume_id = $1
		 ORDER BY created_at ASC`,
		resumeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bullet changes: %w", err)
	}
	defer rows.Close()

	var out []BulletChange
	for rows.Next() {
		change := BulletChange{ResumeID: resumeID}
		var justification, reasoning []byte
		h := &change.History
		if err := rows.Scan(&h.ID, &change.BulletKey, &h.OriginalText, &h.NewText,
			&justification, &reasoning, &h.SelectedIndex, &h.ApprovedByHuman, &change.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bullet change: %w", err)
		}
		h.Timestamp = change.CreatedAt
		if err := json.Unmarshal(justification, &h.Justification); err != nil {
			return nil, fmt.Errorf("failed to unmarshal justification: %w", err)
		}
		if len(reasoning) > 0 {
			h.Reasoning = &types.Reasoning{}
			if err := json.Unmarshal(reasoning, h.Reasoning); err != nil {
				return nil, fmt.Errorf("failed to unmarshal reasoning: %w", err)
			}
		}
		out = append(out, change)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bullet changes: %w", err)
	}
	return out, nil
}
