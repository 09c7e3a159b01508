package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/resume-tailor/internal/skills"
)

// SaveUserSkill adds or replaces a verified skill, keyed by its normalized name.
func (db *DB) SaveUserSkill(ctx context.Context, entry skills.Entry) error {
	key := skills.Key(entry.Name)
	if key == "" {
		return fmt.Errorf("skill name is required")
	}
	aliases, err := json.Marshal(nonNil(entry.Aliases))
	if err != nil {
		return fmt.Errorf("failed to marshal aliases: %w", err)
	}
	evidence := entry.Evidence
	if evidence == nil {
		evidence = []skills.Evidence{}
	}
	evidenceJSON, err := json.Marshal(evidence)
	if err != nil {
		return fmt.Errorf("failed to marshal evidence: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO user_skills (name_normalized, name, category, aliases, evidence)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (name_normalized) DO UPDATE SET
		    name = EXCLUDED.name,
		    category = EXCLUDED.category,
		    aliases = EXCLUDED.aliases,
		    evidence = EXCLUDED.evidence`,
		key, entry.Name, entry.Category, aliases, evidenceJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save user skill: %w", err)
	}
	return nil
}

// ListUserSkills returns every verified skill ordered by name.
func (db *DB) ListUserSkills(ctx context.Context) ([]skills.Entry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT name, category, aliases, evidence FROM user_skills ORDER BY name_normalized`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user skills: %w", err)
	}
	defer rows.Close()

	var out []skills.Entry
	for rows.Next() {
		var e skills.Entry
		var aliases, evidence []byte
		if err := rows.Scan(&e.Name, &e.Category, &aliases, &evidence); err != nil {
			return nil, fmt.Errorf("failed to scan user skill: %w", err)
		}
		if err := json.Unmarshal(aliases, &e.Aliases); err != nil {
			return nil, fmt.Errorf("failed to unmarshal aliases: %w", err)
		}
		if err := json.Unmarshal(evidence, &e.Evidence); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evidence: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user skills: %w", err)
	}
	return out, nil
}

// LoadRegistry builds a registry from the default ontology and the stored
// verified skills.
func (db *DB) LoadRegistry(ctx context.Context) (*skills.Registry, error) {
	verified, err := db.ListUserSkills(ctx)
	if err != nil {
		return nil, err
	}
	return skills.NewRegistry(skills.DefaultOntology(), verified), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
