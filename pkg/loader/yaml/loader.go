// Package yaml implements the YAML format loader.
package yaml

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/paramflow/paramflow/errors"
	"github.com/paramflow/paramflow/pkg/convert"
)

// errWrap is the error wrapping format string.
const errWrap = "%w: %w"

// Loader parses YAML documents into the common representation.
type Loader struct{}

// New creates a new YAML loader.
func New() *Loader {
	return &Loader{}
}

// Name returns the loader name.
func (l *Loader) Name() string {
	return "YAML"
}

// Extensions returns the supported file extensions.
func (l *Loader) Extensions() []string {
	return []string{".yaml", ".yml"}
}

// Load parses YAML data and returns the result.
// Empty input yields nil.
func (l *Loader) Load(data []byte) (any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var result any
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf(errWrap, errors.ErrParseFailed, err)
	}

	return convert.Normalize(result), nil
}

// Encode converts data back to YAML.
func (l *Loader) Encode(data any) ([]byte, error) {
	out, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode YAML: %w", errors.ErrParseFailed, err)
	}
	return out, nil
}
