package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator checks the file locations given on the command line: the
// preference database, the configuration file and the debug log.
type PathValidator struct {
	// AllowedBaseDirs restricts paths to these directories. Empty allows all.
	AllowedBaseDirs []string
	MaxPathLength   int
}

func NewPathValidator() *PathValidator {
	return &PathValidator{MaxPathLength: 4096}
}

// Clean expands a leading "~/", rejects null bytes, control characters and
// ".." components, and returns the cleaned absolute path.
func (v *PathValidator) Clean(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if v.MaxPathLength > 0 && len(path) > v.MaxPathLength {
		return "", fmt.Errorf("path too long (max %d characters)", v.MaxPathLength)
	}
	for _, r := range path {
		if r == 0 {
			return "", fmt.Errorf("path contains null bytes")
		}
		if r < 32 && r != '\t' {
			return "", fmt.Errorf("path contains control characters")
		}
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return "", fmt.Errorf("directory traversal not allowed: %s", path)
		}
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	} else if strings.HasPrefix(path, "~") {
		return "", fmt.Errorf("unsupported tilde form: %s", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot make path absolute: %w", err)
	}
	if err := v.checkBaseDirs(abs); err != nil {
		return "", err
	}
	return abs, nil
}

func (v *PathValidator) checkBaseDirs(abs string) error {
	if len(v.AllowedBaseDirs) == 0 {
		return nil
	}
	for _, base := range v.AllowedBaseDirs {
		absBase, err := filepath.Abs(base)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absBase, abs)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("path not within allowed directories: %v", v.AllowedBaseDirs)
}

// File validates a path that is read or written as a regular file. The file
// itself does not have to exist yet.
func (v *PathValidator) File(path string) (string, error) {
	clean, err := v.Clean(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(clean); err == nil && info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", clean)
	}
	return clean, nil
}

// EnsureDir validates path and creates the directory when it is missing.
func (v *PathValidator) EnsureDir(path string) (string, error) {
	clean, err := v.Clean(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(clean)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(clean, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("checking directory: %w", err)
	case !info.IsDir():
		return "", fmt.Errorf("path exists but is not a directory: %s", clean)
	}
	return clean, nil
}
