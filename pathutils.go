package main

import (
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizePathForInternal converts any OS path into a canonical internal
// representation using forward slashes and cleaned path components.
// Examples:
// - "C:\\project\\build\\index.js" -> "C:/project/build/index.js"
// - "./a/../b/" -> "b"
func NormalizePathForInternal(p string) string {
	if runtime.GOOS != "windows" {
		return p
	}
	if p == "" {
		return ""
	}
	cleaned := filepath.Clean(p)
	s := filepath.ToSlash(cleaned)
	// Trim trailing slash except when path is root like "/" or "C:/"
	if len(s) > 1 && strings.HasSuffix(s, "/") {
		s = strings.TrimRight(s, "/")
	}
	return s
}

// NormalizeGlobPattern normalizes glob pattern separators to forward slashes.
func NormalizeGlobPattern(pattern string) string {
	if runtime.GOOS != "windows" {
		return pattern
	}
	return strings.ReplaceAll(pattern, "\\", "/")
}

// removeLeadingSlash removes every `/` and `\` from the beginning of p.
func removeLeadingSlash(p string) string {
	return strings.TrimLeft(p, `/\`)
}

// isRemoteModule reports whether a specifier points outside the build.
func isRemoteModule(specifier string) bool {
	return strings.HasPrefix(specifier, "//") ||
		strings.HasPrefix(specifier, "http://") ||
		strings.HasPrefix(specifier, "https://")
}

// manifestURL converts an absolute path inside buildDir into a build-relative
// URL: forward slashes, no leading separator.
func manifestURL(buildDir string, file string) string {
	rel, err := filepath.Rel(buildDir, file)
	if err != nil {
		rel = file
	}
	rel = strings.ReplaceAll(filepath.ToSlash(rel), `\`, "/")
	return removeLeadingSlash(rel)
}

// rootURL converts an absolute path inside buildDir into a root-absolute URL
// (`/dist/index.js`) as used in HTML.
func rootURL(buildDir string, file string) string {
	return "/" + manifestURL(buildDir, file)
}
