// Package validation checks JSON documents against JSON Schema and maps the
// reported errors back onto tree paths.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/jsonedit/internal/jsontree"
	"github.com/nibzard/jsonedit/internal/utils"
)

// schemaURL names the in-memory resource each compiler loads.
const schemaURL = "schema.json"

// ErrSchema matches every *SchemaError.
var ErrSchema = errors.New("invalid schema")

// SchemaError reports a schema that could not be compiled.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid schema: %v", e.Err)
}

// Unwrap returns the underlying compiler error.
func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// Error is a single validation failure located in the document.
type Error struct {
	Path       jsontree.Path
	Message    string
	Keyword    string
	SchemaPath string
}

func (e Error) String() string {
	return fmt.Sprintf("%s: %s (%s)", e.Path, e.Message, e.Keyword)
}

// Schema is a compiled schema. It is safe for concurrent use.
type Schema struct {
	compiled *jsonschema.Schema
	source   jsontree.Value
}

// Compile compiles schema for validation. Formats are asserted, and
// documents without $schema are treated as draft 2020-12.
func Compile(schema jsontree.Value) (*Schema, error) {
	data, err := schema.MarshalJSON()
	if err != nil {
		return nil, &SchemaError{Err: fmt.Errorf("marshal schema: %w", err)}
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	if err := compiler.AddResource(schemaURL, bytes.NewReader(data)); err != nil {
		return nil, &SchemaError{Err: err}
	}
	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, &SchemaError{Err: err}
	}
	return &Schema{compiled: compiled, source: schema}, nil
}

// Source returns the schema document the Schema was compiled from.
func (s *Schema) Source() jsontree.Value {
	return s.source
}

// Validate validates v and returns every failure, ordered by document path
// and then schema path. A valid document yields an empty slice.
func (s *Schema) Validate(v jsontree.Value) []Error {
	err := s.compiled.Validate(v.Any())
	if err == nil {
		return []Error{}
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Error{{Path: jsontree.Path{}, Message: err.Error()}}
	}

	var out []Error
	collectSchemaErrors(ve, v, &out)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Path.Pointer(), out[j].Path.Pointer()
		if pi != pj {
			return pi < pj
		}
		return out[i].SchemaPath < out[j].SchemaPath
	})
	return out
}

// Validate compiles schema and validates v against it. It does not cache;
// callers validating repeatedly should Compile once.
func Validate(v, schema jsontree.Value) ([]Error, error) {
	compiled, err := Compile(schema)
	if err != nil {
		return nil, err
	}
	return compiled.Validate(v), nil
}

// collectSchemaErrors flattens the cause tree into its leaves.
func collectSchemaErrors(err *jsonschema.ValidationError, doc jsontree.Value, out *[]Error) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		*out = append(*out, Error{
			Path:       jsontree.ResolvePointer(doc, err.InstanceLocation),
			Message:    err.Message,
			Keyword:    utils.LastJSONPointerToken(err.KeywordLocation),
			SchemaPath: "#" + err.KeywordLocation,
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, doc, out)
	}
}
