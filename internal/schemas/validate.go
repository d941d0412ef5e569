// Package schemas validates candidate drafts and other JSON documents
// against JSON Schemas.
package schemas

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/jonathan/ats-autofill/internal/types"
	"github.com/xeipuuv/gojsonschema"
)

// DraftSchemaName identifies the embedded candidate draft schema in errors.
const DraftSchemaName = "candidate_draft.schema.json"

//go:embed candidate_draft.schema.json
var candidateDraftSchema []byte

var compiledDraftSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return compile(DraftSchemaName, gojsonschema.NewBytesLoader(candidateDraftSchema))
})

// CandidateDraftSchema returns a copy of the embedded candidate draft schema.
func CandidateDraftSchema() []byte {
	return append([]byte(nil), candidateDraftSchema...)
}

// FieldError is one schema violation.
type FieldError struct {
	Field   string // dotted path, "(root)" for the document itself
	Rule    string // gojsonschema error type, e.g. "required", "pattern"
	Message string
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.String()
	}
	return fmt.Sprintf("document does not match %s: %s", e.Schema, strings.Join(parts, "; "))
}

// SchemaLoadError means the schema itself could not be read or compiled.
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateDraft checks a normalized draft against the embedded schema.
func ValidateDraft(draft *types.CandidateDraft) error {
	if draft == nil {
		return errors.New("draft is nil")
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	return ValidateDraftJSON(data)
}

// ValidateDraftJSON checks raw draft JSON against the embedded schema.
func ValidateDraftJSON(data []byte) error {
	schema, err := compiledDraftSchema()
	if err != nil {
		return err
	}
	return check(DraftSchemaName, schema, gojsonschema.NewBytesLoader(data))
}

// ValidateJSON validates the JSON file at jsonPath against the schema file at schemaPath.
func ValidateJSON(schemaPath, jsonPath string) error {
	schemaData, err := readFile("schema", schemaPath)
	if err != nil {
		return err
	}
	doc, err := readFile("JSON", jsonPath)
	if err != nil {
		return err
	}

	schema, err := compile(schemaPath, gojsonschema.NewBytesLoader(schemaData))
	if err != nil {
		return err
	}
	return check(schemaPath, schema, gojsonschema.NewBytesLoader(doc))
}

// ValidateJSONString validates jsonContent against schemaContent.
func ValidateJSONString(schemaContent, jsonContent string) error {
	const name = "(string schema)"
	schema, err := compile(name, gojsonschema.NewStringLoader(schemaContent))
	if err != nil {
		return err
	}
	return check(name, schema, gojsonschema.NewStringLoader(jsonContent))
}

func readFile(kind, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s file not found: %s", kind, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", kind, err)
	}
	return data, nil
}

func compile(name string, loader gojsonschema.JSONLoader) (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "invalid schema", Cause: err}
	}
	return schema, nil
}

func check(name string, schema *gojsonschema.Schema, doc gojsonschema.JSONLoader) error {
	result, err := schema.Validate(doc)
	if err != nil {
		return fmt.Errorf("failed to load document for %s: %w", name, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Schema: name}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{
			Field:   field,
			Rule:    desc.Type(),
			Message: desc.Description(),
		})
	}
	return verr
}
