package storage

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON Schema used to reject persisted values that parse
// as JSON but have the wrong shape.
type Schema struct {
	schema *gojsonschema.Schema
}

// CompileSchema compiles a JSON Schema document.
func CompileSchema(src string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// MustCompileSchema is like CompileSchema but panics on error. Intended for
// package-level schema variables.
func MustCompileSchema(src string) *Schema {
	s, err := CompileSchema(src)
	if err != nil {
		panic(err)
	}
	return s
}

// Check validates data, returning an error for malformed JSON or a schema
// violation.
func (s *Schema) Check(data []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("decoding: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema violation: %s", strings.Join(msgs, "; "))
}
