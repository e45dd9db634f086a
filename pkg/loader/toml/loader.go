// Package toml implements the TOML format loader.
package toml

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/paramflow/paramflow/errors"
	"github.com/paramflow/paramflow/pkg/convert"
)

// errWrap is the error wrapping format string.
const errWrap = "%w: %w"

// Loader parses TOML documents into the common representation.
type Loader struct{}

// New creates a new TOML loader.
func New() *Loader {
	return &Loader{}
}

// Name returns the loader name.
func (l *Loader) Name() string {
	return "TOML"
}

// Extensions returns the supported file extensions.
func (l *Loader) Extensions() []string {
	return []string{".toml"}
}

// Load parses TOML data and returns the result.
// Empty input yields nil. A TOML document is always a table at the top level.
func (l *Loader) Load(data []byte) (any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var result map[string]any
	if err := toml.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf(errWrap, errors.ErrParseFailed, err)
	}

	return convert.Normalize(result), nil
}
