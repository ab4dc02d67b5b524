package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const (
	ignoreFileReadErrorTemplateConstant = "unable to read exclude file %s: %w"
	ignoreCommentPrefixConstant         = "#"
	ignoreLineSeparatorConstant         = "\n"
)

// IgnorePatternMatcher excludes walk entries matching gitignore-syntax patterns.
type IgnorePatternMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnorePatternMatcher builds a matcher from raw pattern lines. Blank lines
// and comments are skipped per gitignore syntax.
func NewIgnorePatternMatcher(patternLines []string) *IgnorePatternMatcher {
	var parsedPatterns []gitignore.Pattern
	for _, patternLine := range patternLines {
		trimmedLine := strings.TrimSpace(patternLine)
		if len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, ignoreCommentPrefixConstant) {
			continue
		}
		parsedPatterns = append(parsedPatterns, gitignore.ParsePattern(trimmedLine, nil))
	}
	return &IgnorePatternMatcher{matcher: gitignore.NewMatcher(parsedPatterns)}
}

// LoadIgnorePatternFile reads a newline-delimited pattern file into a matcher.
// An unreadable file is a configuration error for the caller.
func LoadIgnorePatternFile(patternFilePath string) (*IgnorePatternMatcher, error) {
	patternFileContent, readError := os.ReadFile(patternFilePath)
	if readError != nil {
		return nil, fmt.Errorf(ignoreFileReadErrorTemplateConstant, patternFilePath, readError)
	}
	return NewIgnorePatternMatcher(strings.Split(string(patternFileContent), ignoreLineSeparatorConstant)), nil
}

// Excluded reports whether the relative path matches a configured pattern.
func (ignoreMatcher *IgnorePatternMatcher) Excluded(relativePath string, isDirectory bool) bool {
	if ignoreMatcher == nil || ignoreMatcher.matcher == nil {
		return false
	}
	pathSegments := strings.Split(filepath.ToSlash(relativePath), "/")
	return ignoreMatcher.matcher.Match(pathSegments, isDirectory)
}
