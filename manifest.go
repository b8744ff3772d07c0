package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

const manifestFileName = "manifest.json"

// FileOptimizationResult lists the stylesheets and proxy modules one JS file
// imported through CSS proxies. Paths are absolute.
type FileOptimizationResult struct {
	CSS   map[string]struct{}
	Proxy map[string]struct{}
}

func (r FileOptimizationResult) IsEmpty() bool {
	return len(r.CSS) == 0 && len(r.Proxy) == 0
}

type ManifestCSSEntry struct {
	CSS   []string `json:"css"`
	Proxy []string `json:"proxy"`
}

// Manifest is the build-wide record written to <metaDir>/manifest.json.
// encoding/json emits map keys in sorted order, lists are sorted on build.
type Manifest struct {
	CSS map[string]ManifestCSSEntry `json:"css"`
}

// BuildManifest converts per-file results keyed by absolute JS path into a
// manifest of build-relative URLs. Files with empty results are left out.
func BuildManifest(buildDir string, results map[string]FileOptimizationResult) Manifest {
	manifest := Manifest{CSS: make(map[string]ManifestCSSEntry, len(results))}
	for file, result := range results {
		if result.IsEmpty() {
			continue
		}
		manifest.CSS[manifestURL(buildDir, file)] = ManifestCSSEntry{
			CSS:   sortedURLs(buildDir, result.CSS),
			Proxy: sortedURLs(buildDir, result.Proxy),
		}
	}
	return manifest
}

func sortedURLs(buildDir string, paths map[string]struct{}) []string {
	urls := make([]string, 0, len(paths))
	for p := range paths {
		urls = append(urls, manifestURL(buildDir, p))
	}
	slices.Sort(urls)
	return slices.Compact(urls)
}

// Marshal serializes the manifest as indented JSON. Equal manifests always
// produce identical bytes.
func (m Manifest) Marshal() ([]byte, error) {
	if m.CSS == nil {
		m.CSS = map[string]ManifestCSSEntry{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteManifest writes the manifest to <buildDir>/<metaDir>/manifest.json and
// returns the written path.
func WriteManifest(buildDir string, metaDir string, manifest Manifest) (string, error) {
	data, err := manifest.Marshal()
	if err != nil {
		return "", fmt.Errorf("encoding manifest: %w", err)
	}
	dir := filepath.Join(buildDir, filepath.FromSlash(removeLeadingSlash(metaDir)))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating metadata directory: %w", err)
	}
	path := filepath.Join(dir, manifestFileName)
	if err := writeFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	return path, nil
}
