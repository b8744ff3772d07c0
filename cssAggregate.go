package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"go.uber.org/multierr"
)

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ConcatAndMinifyCSS joins every distinct stylesheet referenced by results,
// each exactly once in first-seen order (files sorted, then their stylesheets
// sorted), and minifies the concatenation.
func ConcatAndMinifyCSS(results map[string]FileOptimizationResult, read FileReader, minifier Minifier) (string, error) {
	var css strings.Builder
	imported := map[string]struct{}{}

	for _, file := range sortedKeys(results) {
		for _, cssFile := range sortedKeys(results[file].CSS) {
			if _, seen := imported[cssFile]; seen {
				continue
			}
			imported[cssFile] = struct{}{}

			content, err := read(cssFile)
			if err != nil {
				return "", fmt.Errorf("reading imported stylesheet: %w", err)
			}
			css.WriteByte('\n')
			css.Write(content)
		}
	}

	minified, err := minifier.MinifyCSS(css.String())
	if err != nil {
		return "", fmt.Errorf("minifying combined stylesheet: %w", err)
	}
	return minified, nil
}

// RemoveCSSProxyFiles deletes every distinct proxy module referenced by
// results, except those in keep. Files that are already gone are skipped. It
// returns the number of deleted files.
func RemoveCSSProxyFiles(results map[string]FileOptimizationResult, keep map[string]struct{}) (int, error) {
	removed := 0
	seen := make(map[string]struct{}, len(keep))
	for proxy := range keep {
		seen[proxy] = struct{}{}
	}
	var errs error

	for _, file := range sortedKeys(results) {
		for _, proxy := range sortedKeys(results[file].Proxy) {
			if _, ok := seen[proxy]; ok {
				continue
			}
			seen[proxy] = struct{}{}

			if err := os.Remove(proxy); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				errs = multierr.Append(errs, fmt.Errorf("removing proxy module: %w", err))
				continue
			}
			removed++
		}
	}
	return removed, errs
}
