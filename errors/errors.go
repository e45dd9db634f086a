// Package errors defines the sentinel errors shared across paramflow packages.
//
// Sentinels are plain errors.New values. Callers wrap them with
// fmt.Errorf("%w: %w", sentinel, cause) or fmt.Errorf("%w: detail", sentinel)
// so that errors.Is works across package boundaries while the message keeps
// the human-readable context.
package errors

import "errors"

var (
	// ErrLookup is returned when a dotted-path segment cannot be resolved
	// against a node tree or a raw nested structure.
	ErrLookup = errors.New("lookup failed")

	// ErrMergeConflict is returned when a merge without overwrite hits a key
	// that already exists on the receiver.
	ErrMergeConflict = errors.New("merge conflict")

	// ErrMerge is returned when a raw map merge fails.
	ErrMerge = errors.New("merge failed")

	// ErrNodeType signals an unsupported value type while building a node
	// tree. This is a contract violation by the data producer.
	ErrNodeType = errors.New("unsupported node type")

	// ErrParseFailed is returned by loaders on malformed content.
	ErrParseFailed = errors.New("failed to parse content")

	// ErrUnknownFormat is returned when no loader is registered for a file
	// extension.
	ErrUnknownFormat = errors.New("unknown file format")

	// ErrBadParamFile wraps a loader parse failure for a parameters file.
	ErrBadParamFile = errors.New("unable to read parameters file")

	// ErrMissingParamsFile is returned when a parameters file does not exist.
	ErrMissingParamsFile = errors.New("parameters file does not exist")

	// ErrParamsIsADirectory is returned when a parameters path points at a
	// directory instead of a file.
	ErrParamsIsADirectory = errors.New("parameters path is a directory")

	// ErrMissingParams is returned by hash computation when one or more
	// requested parameter names are absent from the file. The message lists
	// every missing name at once.
	ErrMissingParams = errors.New("parameters are missing")

	// ErrDoesNotExist is returned by save when the dependency target is gone.
	ErrDoesNotExist = errors.New("path does not exist")

	// ErrNotFileOrDir is returned by save when the dependency target is
	// neither a regular file nor a directory.
	ErrNotFileOrDir = errors.New("path is neither a file nor a directory")

	// ErrInvalidDefinition is returned by the resolver on a malformed
	// pipeline definition.
	ErrInvalidDefinition = errors.New("invalid pipeline definition")
)

// Is reports whether any error in err's tree matches target.
// Re-exported so callers don't need to import both this package and stdlib errors.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
