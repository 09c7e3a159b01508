// Package schemas validates JSON documents against the embedded JSON Schemas
// for resumes, job skills and proposer output.
package schemas

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed defs/*.json
var defsFS embed.FS

// Embedded schema names
const (
	Reasoning  = "reasoning"
	Candidates = "candidates"
	Candidate  = "candidate"
	JobSkills  = "job_skills"
	Resume     = "resume"
)

// ValidationError lists every schema violation in a document.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError is one violation at a JSON field path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	parts := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("document does not match %s schema: %s", ve.Schema, strings.Join(parts, "; "))
}

// SchemaLoadError reports an unknown or broken schema, or a document that
// is not JSON at all.
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// compiled holds every embedded schema, compiled on first use. A broken
// schema fails every call rather than only the ones that name it.
var compiled = sync.OnceValues(func() (map[string]*gojsonschema.Schema, error) {
	files, err := fs.Glob(defsFS, "defs/*.json")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*gojsonschema.Schema, len(files))
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".json")
		raw, err := defsFS.ReadFile(f)
		if err != nil {
			return nil, &SchemaLoadError{Path: name, Message: "unreadable", Cause: err}
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, &SchemaLoadError{Path: name, Message: "invalid schema", Cause: err}
		}
		out[name] = s
	}
	return out, nil
})

// Raw returns the source of an embedded schema.
func Raw(name string) (string, error) {
	data, err := defsFS.ReadFile("defs/" + name + ".json")
	if err != nil {
		return "", &SchemaLoadError{Path: name, Message: "unknown schema", Cause: err}
	}
	return string(data), nil
}

func schemaFor(name string) (*gojsonschema.Schema, error) {
	all, err := compiled()
	if err != nil {
		return nil, err
	}
	s, ok := all[name]
	if !ok {
		return nil, &SchemaLoadError{Path: name, Message: "unknown schema"}
	}
	return s, nil
}

// Validate checks a JSON document against the named embedded schema. A
// document that is not valid JSON yields a *SchemaLoadError; a document
// that violates the schema yields a *ValidationError.
func Validate(name string, document []byte) error {
	s, err := schemaFor(name)
	if err != nil {
		return err
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return &SchemaLoadError{Path: name, Message: "document could not be parsed", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Schema: name, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}

// ValidateValue encodes v as JSON and validates it against the named schema.
func ValidateValue(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &SchemaLoadError{Path: name, Message: "value could not be encoded", Cause: err}
	}
	return Validate(name, data)
}
