// Package filetype resolves file formats from file extensions.
package filetype

import (
	"path/filepath"
	"strings"
)

// GetFileExtension returns the lowercase file extension including the dot.
// Hidden files without a real extension (".env", ".gitignore") return "".
func GetFileExtension(filename string) string {
	if filename == "" || filename == "." {
		return ""
	}

	ext := filepath.Ext(filename)

	// The extension is the whole filename: a hidden file, not an extension.
	if ext == filename {
		return ""
	}

	if ext == "." {
		return ""
	}

	return strings.ToLower(ext)
}

// ExtractFilenameFromPath extracts the actual filename from a path or URL,
// dropping query strings and fragments.
func ExtractFilenameFromPath(path string) string {
	if idx := strings.Index(path, "#"); idx != -1 {
		path = path[:idx]
	}
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}
	return filepath.Base(path)
}
