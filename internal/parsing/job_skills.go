// Package parsing normalizes job postings into types.JobSkills: it decodes
// loosely-typed skill maps and JSON, strips HTML from posting text and
// extracts skills from free text with a language model.
package parsing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// legacyKeys maps alternative bucket names to the canonical ones.
var legacyKeys = map[string]string{
	"required":          "required_skills",
	"requirements":      "required_skills",
	"must_have":         "required_skills",
	"preferred":         "preferred_skills",
	"nice_to_have":      "preferred_skills",
	"nice_to_haves":     "preferred_skills",
	"soft":              "soft_skills",
	"seniority":         "seniority_indicators",
	"experience_levels": "seniority_indicators",
}

// ParseJobSkills converts job skills in any supported shape into a
// normalized types.JobSkills. Accepted inputs are types.JobSkills (or a
// pointer to one), a map decoded from JSON or YAML, raw JSON as []byte,
// json.RawMessage or string. Map values may be lists or comma-separated
// strings.
func ParseJobSkills(input any) (types.JobSkills, error) {
	switch v := input.(type) {
	case types.JobSkills:
		return NormalizeJobSkills(v), nil
	case *types.JobSkills:
		if v == nil {
			return types.JobSkills{}, formatError("job skills are nil", nil)
		}
		return NormalizeJobSkills(*v), nil
	case map[string]any:
		return decodeMap(v)
	case map[string][]string:
		m := make(map[string]any, len(v))
		for k, list := range v {
			m[k] = list
		}
		return decodeMap(m)
	case json.RawMessage:
		return decodeJSON(v)
	case []byte:
		return decodeJSON(v)
	case string:
		return decodeJSON([]byte(v))
	case nil:
		return types.JobSkills{}, formatError("job skills are nil", nil)
	default:
		return types.JobSkills{}, formatError(fmt.Sprintf("unsupported job skills type %T", input), nil)
	}
}

func decodeJSON(data []byte) (types.JobSkills, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.JobSkills{}, formatError("job skills are not a JSON object", err)
	}
	return decodeMap(raw)
}

func decodeMap(raw map[string]any) (types.JobSkills, error) {
	normalized := make(map[string]any, len(raw))
	for key, value := range raw {
		k := strings.ToLower(strings.TrimSpace(key))
		if canonical, ok := legacyKeys[k]; ok {
			k = canonical
		}
		if s, ok := value.(string); ok {
			value = splitList(s)
		}
		normalized[k] = value
	}

	doc, err := json.Marshal(normalized)
	if err != nil {
		return types.JobSkills{}, formatError("failed to re-encode job skills", err)
	}
	if err := schemas.Validate(schemas.JobSkills, doc); err != nil {
		return types.JobSkills{}, formatError("job skills do not match schema", err)
	}

	var out types.JobSkills
	if err := mapstructure.Decode(normalized, &out); err != nil {
		return types.JobSkills{}, formatError("failed to decode job skills", err)
	}
	return NormalizeJobSkills(out), nil
}
