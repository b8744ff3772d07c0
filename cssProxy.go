package main

import (
	"bytes"
	"path/filepath"
	"strings"
)

const (
	cssProxySuffix  = ".css.proxy.js"
	proxySuffix     = ".proxy.js"
	cssModuleSuffix = ".module.css"
)

// FileReader reads a whole file. Optimizer code reads through it so tests can
// observe and fail reads.
type FileReader func(path string) ([]byte, error)

// IsCssProxySpecifier reports whether an import specifier points at a
// generated CSS proxy module (`x.css.proxy.js`).
func IsCssProxySpecifier(specifier string) bool {
	return strings.HasSuffix(specifier, cssProxySuffix)
}

func isCssProxyFile(path string) bool {
	return strings.HasSuffix(path, cssProxySuffix)
}

// AnyFileImportsCss reports whether any of the given JS files statically
// imports a CSS proxy module. Files are read in order and scanning stops at the
// first match. Unreadable files are skipped.
func AnyFileImportsCss(files []string, read FileReader) bool {
	marker := []byte(cssProxySuffix)
	for _, file := range files {
		code, err := read(file)
		if err != nil {
			continue
		}
		if !bytes.Contains(code, marker) {
			continue
		}
		for _, imp := range StaticImports(code) {
			if IsCssProxySpecifier(imp.Request) {
				return true
			}
		}
	}
	return false
}

// referencedProxies returns the absolute paths of the CSS proxy modules that
// files still import statically. Unreadable files are skipped.
func referencedProxies(files []string, rootDir string, read FileReader) map[string]struct{} {
	resolver := CSSEmbedder{RootDir: rootDir}
	proxies := map[string]struct{}{}
	for _, file := range files {
		code, err := read(file)
		if err != nil || !bytes.Contains(code, []byte(cssProxySuffix)) {
			continue
		}
		for _, imp := range StaticImports(code) {
			if IsCssProxySpecifier(imp.Request) {
				proxies[resolver.resolveSpecifier(filepath.Dir(file), imp.Request)] = struct{}{}
			}
		}
	}
	return proxies
}
