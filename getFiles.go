package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var jsExts = map[string]struct{}{
	".js":  {},
	".mjs": {},
}

func isJSFile(name string) bool {
	_, ok := jsExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ScanBuildFiles lists every file under buildDir except the build metadata
// directory and files matching the exclude patterns. Paths are absolute and
// sorted.
func ScanBuildFiles(buildDir string, metaDir string, exclude []string) ([]string, error) {
	info, err := os.Stat(buildDir)
	if err != nil {
		return nil, fmt.Errorf("build directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("build directory: %s is not a directory", buildDir)
	}

	patterns := make([]string, 0, len(exclude)+1)
	if metaDir != "" {
		patterns = append(patterns, strings.TrimSuffix(filepath.ToSlash(removeLeadingSlash(metaDir)), "/")+"/")
	}
	patterns = append(patterns, exclude...)

	matchers, err := CreateGlobMatchers(patterns, buildDir)
	if err != nil {
		return nil, err
	}

	files := GetFiles(buildDir, []string{}, matchers)
	slices.Sort(files)
	return files, nil
}

func GetFiles(directory string, existingFiles []string, globMatchers []GlobMatcher) []string {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return existingFiles
	}

	for _, entry := range entries {
		entryName := entry.Name()
		entryFilePath := filepath.Join(directory, entryName)

		if entry.IsDir() {
			if !MatchesAnyGlobMatcher(entryFilePath+string(os.PathSeparator), globMatchers) {
				existingFiles = GetFiles(entryFilePath, existingFiles, globMatchers)
			}
			continue
		}

		if !entry.Type().IsRegular() {
			continue
		}

		if !MatchesAnyGlobMatcher(entryFilePath, globMatchers) {
			existingFiles = append(existingFiles, entryFilePath)
		}
	}

	return existingFiles
}
