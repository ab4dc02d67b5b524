package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const tildeSymbolConstant = "~"

var tildePrefixes = []string{
	tildeSymbolConstant + "/",
	tildeSymbolConstant + string(os.PathSeparator),
}

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// ScanPathSanitizer normalizes user-supplied scan paths: it trims whitespace,
// expands a leading tilde to the user's home directory, and substitutes a
// fallback when the candidate is empty.
type ScanPathSanitizer struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewScanPathSanitizer constructs a sanitizer using the operating system home lookup.
func NewScanPathSanitizer() *ScanPathSanitizer {
	return NewScanPathSanitizerWithProvider(os.UserHomeDir)
}

// NewScanPathSanitizerWithProvider constructs a sanitizer with a custom home directory provider.
func NewScanPathSanitizerWithProvider(provider HomeDirectoryProvider) *ScanPathSanitizer {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &ScanPathSanitizer{homeDirectoryProvider: provider}
}

// Sanitize normalizes candidatePath, returning fallbackPath when the
// candidate trims to nothing.
func (sanitizer *ScanPathSanitizer) Sanitize(candidatePath string, fallbackPath string) string {
	trimmedCandidate := strings.TrimSpace(candidatePath)
	if len(trimmedCandidate) == 0 {
		return fallbackPath
	}
	return sanitizer.expandHome(trimmedCandidate)
}

func (sanitizer *ScanPathSanitizer) expandHome(candidatePath string) string {
	if sanitizer == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	resolvedHomeDirectory := sanitizer.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return candidatePath
	}

	if candidatePath == tildeSymbolConstant {
		return resolvedHomeDirectory
	}

	for _, tildePrefix := range tildePrefixes {
		if strings.HasPrefix(candidatePath, tildePrefix) {
			return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildePrefix))
		}
	}

	return candidatePath
}

func (sanitizer *ScanPathSanitizer) resolveHomeDirectory() string {
	sanitizer.initializationGuard.Do(func() {
		sanitizer.homeDirectory, sanitizer.homeDirectoryError = sanitizer.homeDirectoryProvider()
	})
	if sanitizer.homeDirectoryError != nil {
		return ""
	}
	return sanitizer.homeDirectory
}
