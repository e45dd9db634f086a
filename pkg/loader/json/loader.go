// Package json implements the JSON format loader.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/paramflow/paramflow/errors"
	"github.com/paramflow/paramflow/pkg/convert"
)

// errWrap is the error wrapping format string.
const errWrap = "%w: %w"

// Loader parses JSON documents into the common representation.
type Loader struct{}

// New creates a new JSON loader.
func New() *Loader {
	return &Loader{}
}

// Name returns the loader name.
func (l *Loader) Name() string {
	return "JSON"
}

// Extensions returns the supported file extensions.
func (l *Loader) Extensions() []string {
	return []string{".json"}
}

// Load parses JSON data and returns the result.
// Empty input yields nil.
func (l *Loader) Load(data []byte) (any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var result any

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // Preserve number precision.

	if err := decoder.Decode(&result); err != nil {
		return nil, fmt.Errorf(errWrap, errors.ErrParseFailed, err)
	}

	// Valid JSON files contain exactly one value.
	if decoder.More() {
		return nil, fmt.Errorf("%w: unexpected content after JSON value", errors.ErrParseFailed)
	}

	return convert.Normalize(result), nil
}
