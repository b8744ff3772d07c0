package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/tidwall/jsonc"
	"go.uber.org/multierr"
)

// Options configures one optimization run. JSON names match the config file.
type Options struct {
	ConfigVersion   string   `json:"configVersion,omitempty"`
	MinifyJS        bool     `json:"minifyJS"`
	MinifyHTML      bool     `json:"minifyHTML"`
	MinifyCSS       bool     `json:"minifyCSS"`
	PreloadModules  bool     `json:"preloadModules"`
	CombinedCSSName string   `json:"combinedCSSName"`
	Target          string   `json:"target,omitempty"`
	Exclude         []string `json:"exclude,omitempty"`
	Workers         int      `json:"workers,omitempty"` // 0 means one per CPU
	MetaDir         string   `json:"metaDir"`
}

const (
	defaultCombinedCSSName = "/imported-styles.css"
	defaultMetaDir         = "_meta"

	supportedConfigVersions = "^1.0"
)

var configFileNames = []string{
	"site-optimize.config.json",
	"site-optimize.config.jsonc",
	".site-optimize.config.json",
	".site-optimize.config.jsonc",
}

func DefaultOptions() Options {
	return Options{
		MinifyJS:        true,
		MinifyHTML:      true,
		MinifyCSS:       true,
		PreloadModules:  false,
		CombinedCSSName: defaultCombinedCSSName,
		MetaDir:         defaultMetaDir,
	}
}

// FindConfigFile looks for a config file in dir. It returns an empty path when
// there is none, and an error when more than one is present.
func FindConfigFile(dir string) (string, error) {
	found := []string{}
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			found = append(found, name)
		}
	}
	switch len(found) {
	case 0:
		return "", nil
	case 1:
		return filepath.Join(dir, found[0]), nil
	}
	return "", fmt.Errorf("multiple config files found in %s: %s", dir, strings.Join(found, ", "))
}

// LoadConfig reads a JSON or JSONC config file on top of DefaultOptions.
// configPath can be a file or a directory containing one of the config files.
// Keys missing from the file keep their defaults.
func LoadConfig(configPath string) (Options, error) {
	opts := DefaultOptions()

	fileInfo, err := os.Stat(configPath)
	if err != nil {
		return opts, err
	}

	actualPath := configPath
	if fileInfo.IsDir() {
		actualPath, err = FindConfigFile(configPath)
		if err != nil {
			return opts, err
		}
		if actualPath == "" {
			return opts, fmt.Errorf("no config file found in %s", configPath)
		}
	}

	content, err := os.ReadFile(actualPath)
	if err != nil {
		return opts, err
	}

	if err := json.Unmarshal(jsonc.ToJSON(content), &opts); err != nil {
		return opts, fmt.Errorf("failed to parse config %s: %w", actualPath, err)
	}

	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("config %s: %w", actualPath, err)
	}
	return opts, nil
}

// Validate checks option values that would otherwise fail in the middle of a run.
func (o Options) Validate() error {
	var errs []error

	if o.ConfigVersion != "" {
		if err := checkConfigVersion(o.ConfigVersion); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := parseTarget(o.Target); err != nil {
		errs = append(errs, fmt.Errorf("target: %w", err))
	}
	if o.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers: must not be negative, got %d", o.Workers))
	}
	if strings.TrimSpace(removeLeadingSlash(o.CombinedCSSName)) == "" {
		errs = append(errs, errors.New("combinedCSSName: must not be empty"))
	}
	if strings.TrimSpace(removeLeadingSlash(o.MetaDir)) == "" {
		errs = append(errs, errors.New("metaDir: must not be empty"))
	}
	for i, p := range o.Exclude {
		if err := validatePattern(p); err != nil {
			errs = append(errs, fmt.Errorf("exclude[%d]: %w", i, err))
		}
	}
	if _, err := CreateGlobMatchers(o.Exclude, ""); err != nil {
		errs = append(errs, err)
	}

	return multierr.Combine(errs...)
}

func checkConfigVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("configVersion: %w", err)
	}
	constraint, err := semver.NewConstraint(supportedConfigVersions)
	if err != nil {
		return err
	}
	if !constraint.Check(v) {
		return fmt.Errorf("configVersion %s is not supported (expected %s)", version, supportedConfigVersions)
	}
	return nil
}

func validatePattern(pattern string) error {
	if len(pattern) >= 2 && pattern[0] == '.' && (pattern[1] == '/' || pattern[1] == '\\') {
		return fmt.Errorf("pattern '%s' starts with './' or '.\\', which is not allowed. Use paths relative to the build directory", pattern)
	}
	if len(pattern) >= 3 && pattern[0] == '.' && pattern[1] == '.' && (pattern[2] == '/' || pattern[2] == '\\') {
		return fmt.Errorf("pattern '%s' starts with '../' or '..\\', which is not allowed. Use paths relative to the build directory", pattern)
	}
	return nil
}
