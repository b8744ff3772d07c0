package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var Version = "0.1.0"

// ---------------- flags ----------------

var (
	configPath      string
	logLevel        string
	minifyJS        bool
	minifyCSS       bool
	minifyHTML      bool
	preloadModules  bool
	combinedCSSName string
	target          string
	exclude         []string
	workers         int
	metaDir         string
)

var rootCmd = &cobra.Command{
	Use:   "site-optimize [build-dir]",
	Short: "Optimize a static site build directory",
	Long: `Post-build optimizer for bundler output.
Rewrites CSS proxy imports out of JavaScript, minifies JS, CSS and HTML,
combines imported stylesheets and writes a manifest of which stylesheets
each JavaScript file needs.`,
	Example: "site-optimize build --exclude '**/*.map' --target es2019",
	Args:    cobra.MaximumNArgs(1),
	Version: Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		buildDir := "build"
		if len(args) == 1 {
			buildDir = args[0]
		}

		opts, err := resolveOptions(cmd, buildDir)
		if err != nil {
			return err
		}

		logger, err := NewLogger(logLevel)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		optimizer, err := NewOptimizer(opts, logger)
		if err != nil {
			return err
		}

		report, err := optimizer.Optimize(context.Background(), buildDir)
		if err != nil {
			return err
		}

		printSummary(report)
		return nil
	},
}

var docsCmd = &cobra.Command{
	Use:    "doc-gen",
	Short:  "Generate CLI documentation",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := doc.GenMarkdownTree(rootCmd, "./docs")
		if err != nil {
			log.Fatal(err)
		}
		return nil
	},
}

// resolveOptions layers defaults, the config file and explicitly set flags.
// Without --config the config file is looked up in the working directory.
func resolveOptions(cmd *cobra.Command, buildDir string) (Options, error) {
	opts := DefaultOptions()

	path := configPath
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return opts, err
		}
		path, err = FindConfigFile(cwd)
		if err != nil {
			return opts, err
		}
	}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("minify-js") {
		opts.MinifyJS = minifyJS
	}
	if flags.Changed("minify-css") {
		opts.MinifyCSS = minifyCSS
	}
	if flags.Changed("minify-html") {
		opts.MinifyHTML = minifyHTML
	}
	if flags.Changed("preload-modules") {
		opts.PreloadModules = preloadModules
	}
	if flags.Changed("combined-css-name") {
		opts.CombinedCSSName = combinedCSSName
	}
	if flags.Changed("target") {
		opts.Target = target
	}
	if flags.Changed("exclude") {
		opts.Exclude = append(opts.Exclude, exclude...)
	}
	if flags.Changed("workers") {
		opts.Workers = workers
	}
	if flags.Changed("meta-dir") {
		opts.MetaDir = metaDir
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	if _, err := os.Stat(filepath.Clean(buildDir)); err != nil {
		return opts, fmt.Errorf("build directory: %w", err)
	}
	return opts, nil
}

func printSummary(report *Report) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Printf("%s optimized %d files", dim("[site-optimize]"), report.Processed)
	if n := len(report.Manifest.CSS); n > 0 {
		fmt.Printf(", embedded CSS in %d modules, removed %d proxy modules", n, report.RemovedProxies)
	}
	fmt.Println()
	if report.CombinedCSSPath != "" {
		fmt.Printf("%s combined stylesheet: %s\n", dim("[site-optimize]"), report.CombinedCSSPath)
	}
	if len(report.Failures) > 0 {
		color.New(color.FgYellow).Printf("%s %d files could not be optimized\n", dim("[site-optimize]"), len(report.Failures))
	}
}

func addOptimizeFlags(cmd *cobra.Command) {
	defaults := DefaultOptions()
	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "",
		"Path to a config file or a directory containing one (default: site-optimize.config.json[c] in the working directory)")
	flags.StringVar(&logLevel, "log-level", LogLevelNormal, "Console logging: none, normal or debug")
	flags.BoolVar(&minifyJS, "minify-js", defaults.MinifyJS, "Minify JavaScript files")
	flags.BoolVar(&minifyCSS, "minify-css", defaults.MinifyCSS, "Minify CSS files")
	flags.BoolVar(&minifyHTML, "minify-html", defaults.MinifyHTML, "Minify HTML files")
	flags.BoolVar(&preloadModules, "preload-modules", defaults.PreloadModules, "Inject modulepreload hints into HTML files")
	flags.StringVar(&combinedCSSName, "combined-css-name", defaults.CombinedCSSName, "Build-root URL of the combined stylesheet")
	flags.StringVar(&target, "target", defaults.Target, "JavaScript language target for minification (e.g. es2019, esnext)")
	flags.StringSliceVarP(&exclude, "exclude", "e", []string{}, "Glob patterns of files to skip")
	flags.IntVarP(&workers, "workers", "w", defaults.Workers, "Number of files optimized concurrently (default: number of CPUs)")
	flags.StringVar(&metaDir, "meta-dir", defaults.MetaDir, "Build metadata directory, relative to the build directory")
}

func init() {
	addOptimizeFlags(rootCmd)
	rootCmd.AddCommand(docsCmd)
}

func main() {
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
