// Package manifest reads the auxiliary text file embedded in the system info document.
package manifest

import (
	"fmt"
	"os"
)

// DefaultPath is where the image build drops its manifest.
const DefaultPath = "/etc/manifest.xml"

// LoadError represents a manifest that could not be read
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("manifest %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("manifest %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Load reads the whole file at path as text.
func Load(path string) (string, error) {
	if path == "" {
		return "", &LoadError{Path: path, Message: "path is empty"}
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", &LoadError{Path: path, Message: "failed to stat file", Cause: err}
	}
	if info.IsDir() {
		return "", &LoadError{Path: path, Message: "path is a directory"}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", &LoadError{Path: path, Message: "failed to read file", Cause: err}
	}

	return string(content), nil
}
