package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type FileFailure struct {
	File string
	Err  error
}

// Report summarizes a finished optimization run.
type Report struct {
	Manifest        Manifest
	ManifestPath    string
	CombinedCSSPath string // empty when no stylesheet was combined
	Processed       int
	RemovedProxies  int
	Failures        []FileFailure
}

// Err combines all per-file failures into one error, nil when there were none.
func (r *Report) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, fmt.Errorf("%s: %w", f.File, f.Err))
	}
	return err
}

type Optimizer struct {
	opts     Options
	minifier Minifier
	logger   *zap.Logger
	read     FileReader
	proxies  *proxyJSONCache
}

type OptimizerOption func(*Optimizer)

// WithMinifier replaces the default esbuild/tdewolff minifier.
func WithMinifier(m Minifier) OptimizerOption {
	return func(o *Optimizer) { o.minifier = m }
}

// WithFileReader replaces os.ReadFile for every read the optimizer makes.
func WithFileReader(read FileReader) OptimizerOption {
	return func(o *Optimizer) { o.read = read }
}

func NewOptimizer(opts Options, logger *zap.Logger, options ...OptimizerOption) (*Optimizer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Optimizer{
		opts:   opts,
		logger: logger,
		read:   os.ReadFile,
	}
	for _, apply := range options {
		apply(o)
	}
	if o.minifier == nil {
		o.minifier = NewAssetMinifier()
	}
	proxies, err := newProxyJSONCache(defaultProxyCacheSize, o.read)
	if err != nil {
		return nil, err
	}
	o.proxies = proxies
	return o, nil
}

// Optimize runs the whole pass over buildDir:
//  1. scan the build output
//  2. decide once whether any JS file imports CSS through proxies
//  3. optimize every file on the worker pool and wait for all of them
//  4. write the combined stylesheet and delete consumed proxies
//  5. write the manifest
//
// Per-file failures end up in Report.Failures. Errors of steps 1, 4 and 5
// abort the run and are returned.
func (o *Optimizer) Optimize(ctx context.Context, buildDir string) (*Report, error) {
	buildDir, err := filepath.Abs(buildDir)
	if err != nil {
		return nil, err
	}

	files, err := ScanBuildFiles(buildDir, o.opts.MetaDir, o.opts.Exclude)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("Scanned build directory", zap.String("dir", buildDir), zap.Int("files", len(files)))

	jsFiles := slices.DeleteFunc(slices.Clone(files), func(f string) bool { return !isJSFile(f) })
	env := taskEnv{
		rootDir:  buildDir,
		embedCSS: AnyFileImportsCss(jsFiles, o.read),
	}
	o.logger.Debug("CSS proxy detection finished", zap.Bool("embed", env.embedCSS))

	outcomes := runTasks(ctx, o.opts.Workers, files, func(file string) (FileOptimizationResult, error) {
		return o.optimizeFile(file, env)
	})

	report := &Report{}
	results := map[string]FileOptimizationResult{}
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			o.logger.Warn("Unable to optimize file", zap.String("file", outcome.File), zap.Error(outcome.Err))
			report.Failures = append(report.Failures, FileFailure{File: outcome.File, Err: outcome.Err})
			continue
		}
		report.Processed++
		if !outcome.Result.IsEmpty() {
			results[outcome.File] = outcome.Result
		}
	}
	slices.SortFunc(report.Failures, func(a, b FileFailure) int {
		if a.File < b.File {
			return -1
		} else if a.File > b.File {
			return 1
		}
		return 0
	})

	if env.embedCSS && len(results) > 0 {
		if err := o.writeCombinedCSS(buildDir, results, report); err != nil {
			return report, err
		}
	}

	report.Manifest = BuildManifest(buildDir, results)
	report.ManifestPath, err = WriteManifest(buildDir, o.opts.MetaDir, report.Manifest)
	if err != nil {
		return report, err
	}
	o.logger.Debug("Manifest written", zap.String("path", report.ManifestPath), zap.Int("entries", len(report.Manifest.CSS)))

	return report, nil
}

func (o *Optimizer) writeCombinedCSS(buildDir string, results map[string]FileOptimizationResult, report *Report) error {
	css, err := ConcatAndMinifyCSS(results, o.read, o.minifier)
	if err != nil {
		return err
	}
	path := filepath.Join(buildDir, filepath.FromSlash(removeLeadingSlash(o.opts.CombinedCSSName)))
	if err := writeFileAtomic(path, []byte(css)); err != nil {
		return fmt.Errorf("writing combined stylesheet: %w", err)
	}
	report.CombinedCSSPath = path
	o.logger.Debug("Combined stylesheet written", zap.String("path", path), zap.Int("bytes", len(css)))

	// Files that failed keep their proxy imports, so those proxies must stay.
	failedJS := make([]string, 0, len(report.Failures))
	for _, f := range report.Failures {
		if isJSFile(f.File) {
			failedJS = append(failedJS, f.File)
		}
	}
	keep := referencedProxies(failedJS, buildDir, o.read)

	removed, err := RemoveCSSProxyFiles(results, keep)
	report.RemovedProxies = removed
	if err != nil {
		return err
	}
	o.logger.Debug("Removed CSS proxy modules", zap.Int("count", removed), zap.Int("kept", len(keep)))
	return nil
}
