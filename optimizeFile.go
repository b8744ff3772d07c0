package main

import (
	"fmt"
	"path/filepath"
	"strings"
)

// taskEnv is computed once before scheduling and passed by value to every task.
type taskEnv struct {
	rootDir  string
	embedCSS bool // some JS file imports CSS through a proxy module
}

// optimizeFile applies the extension specific step to one file. Unknown
// extensions are left as they are.
func (o *Optimizer) optimizeFile(file string, env taskEnv) (FileOptimizationResult, error) {
	result := FileOptimizationResult{}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".css":
		if !o.opts.MinifyCSS {
			break
		}
		code, err := o.read(file)
		if err != nil {
			return result, err
		}
		minified, err := o.minifier.MinifyCSS(string(code))
		if err != nil {
			return result, err
		}
		if err := writeFileAtomic(file, []byte(minified)); err != nil {
			return result, err
		}

	case ".js", ".mjs":
		return o.optimizeJS(file, env)

	case ".html":
		if !o.opts.MinifyHTML && !o.opts.PreloadModules {
			break
		}
		content, err := o.read(file)
		if err != nil {
			return result, err
		}
		code := string(content)
		if o.opts.PreloadModules {
			cssName := ""
			if env.embedCSS {
				cssName = o.opts.CombinedCSSName
			}
			code, err = preloadJSAndCSS(preloadRequest{
				code:    code,
				rootDir: env.rootDir,
				file:    file,
				cssName: cssName,
				read:    o.read,
			})
			if err != nil {
				return result, fmt.Errorf("preload: %w", err)
			}
		}
		if o.opts.MinifyHTML {
			code, err = o.minifier.MinifyHTML(code)
			if err != nil {
				return result, err
			}
		}
		if err := writeFileAtomic(file, []byte(code)); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (o *Optimizer) optimizeJS(file string, env taskEnv) (FileOptimizationResult, error) {
	result := FileOptimizationResult{}
	// Proxy modules are read by the embedder of other files and deleted
	// afterwards; minifying them would rename their `let json`.
	isProxy := env.embedCSS && isCssProxyFile(file)
	minify := o.opts.MinifyJS && !isProxy
	if !env.embedCSS && !minify {
		return result, nil
	}

	content, err := o.read(file)
	if err != nil {
		return result, err
	}
	code := string(content)
	modified := false

	if env.embedCSS && !isProxy {
		embedder := CSSEmbedder{RootDir: env.rootDir, Proxies: o.proxies}
		embedded, err := embedder.EmbedStaticCss(file, code)
		if err != nil {
			return result, err
		}
		if embedded.Code != code {
			code = embedded.Code
			modified = true
		}
		result.CSS = embedded.CSSImports
		result.Proxy = embedded.ProxyImports
	}

	if minify {
		code, err = o.minifier.MinifyJS(code, o.opts.Target)
		if err != nil {
			return FileOptimizationResult{}, err
		}
		modified = true
	}

	if modified {
		if err := writeFileAtomic(file, []byte(code)); err != nil {
			return FileOptimizationResult{}, err
		}
	}
	return result, nil
}
