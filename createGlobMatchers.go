package main

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

type GlobMatcher struct {
	globPattern                        glob.Glob
	inputString                        string
	shouldMatchAnyFileOrDirWithPattern bool
	patternRoot                        string
}

// CreateGlobMatchers compiles exclusion patterns relative to patternsRoot.
// A plain name (no `/`, no `*`) matches a file or directory with that name at
// any depth. A pattern with a trailing `/` matches that directory only at the
// root, so `_meta/` excludes `<root>/_meta` but not `<root>/sub/_meta`; use
// `**/_meta/**` for any depth.
func CreateGlobMatchers(patterns []string, patternsRoot string) ([]GlobMatcher, error) {
	globMatchers := []GlobMatcher{}
	patternRootNorm := NormalizePathForInternal(patternsRoot)
	if patternRootNorm != "" && !strings.HasSuffix(patternRootNorm, "/") {
		patternRootNorm = patternRootNorm + "/"
	}

	for _, excludePattern := range patterns {
		shouldMatchAnyFileOrDirWithPattern := !strings.Contains(excludePattern, "/") && !strings.Contains(excludePattern, "*")

		if strings.HasSuffix(excludePattern, "/") && !strings.Contains(excludePattern, "*") {
			excludePattern = excludePattern + "**"
		}

		patternNorm := NormalizeGlobPattern(excludePattern)
		compiled, err := glob.Compile(patternNorm)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern '%s': %w", excludePattern, err)
		}

		globMatchers = append(globMatchers, GlobMatcher{
			globPattern:                        compiled,
			inputString:                        patternNorm,
			patternRoot:                        patternRootNorm,
			shouldMatchAnyFileOrDirWithPattern: shouldMatchAnyFileOrDirWithPattern,
		})
		// gobwas/glob does not let `**/` match zero directories, so `**/*.map`
		// would miss `app.map` at the root. Add the root-level variant.
		if strings.HasPrefix(patternNorm, "**/") {
			additionalPattern := strings.Replace(patternNorm, "**/", "", 1)
			additional, err := glob.Compile(additionalPattern)
			if err != nil {
				return nil, fmt.Errorf("invalid exclude pattern '%s': %w", excludePattern, err)
			}
			globMatchers = append(globMatchers, GlobMatcher{
				globPattern: additional,
				inputString: additionalPattern,
				patternRoot: patternRootNorm,
			})
		}
	}
	return globMatchers, nil
}

func MatchesAnyGlobMatcher(filePath string, matchers []GlobMatcher) bool {
	fileInternal := NormalizePathForInternal(filePath)
	for _, matcher := range matchers {
		fileWithoutPrefix := strings.TrimPrefix(fileInternal, matcher.patternRoot)
		if matcher.globPattern.Match(fileWithoutPrefix) {
			return true
		}
		if !matcher.shouldMatchAnyFileOrDirWithPattern {
			continue
		}
		// file or directory named exactly like the pattern
		if fileWithoutPrefix == matcher.inputString ||
			strings.HasSuffix(fileWithoutPrefix, "/"+matcher.inputString) ||
			strings.Contains(fileWithoutPrefix, "/"+matcher.inputString+"/") ||
			strings.HasPrefix(fileWithoutPrefix, matcher.inputString+"/") {
			return true
		}
	}
	return false
}
