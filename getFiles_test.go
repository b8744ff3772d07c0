package main

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		assert.NilError(t, os.MkdirAll(filepath.Dir(path), 0755))
		assert.NilError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestScanBuildFiles(t *testing.T) {
	buildDir := t.TempDir()
	writeTree(t, buildDir, map[string]string{
		"index.html":                  "<html></html>",
		"_dist_/index.js":             "",
		"_dist_/index.js.map":         "{}",
		"_dist_/app.css":              "",
		"_meta/manifest.json":         "{}",
		"_meta/nested/info.json":      "{}",
		"web_modules/vendor/react.js": "",
		"web_modules/preact.js":       "",
		"logo.png":                    "",
	})

	files, err := ScanBuildFiles(buildDir, "_meta", []string{"**/*.map", "vendor"})
	assert.NilError(t, err)

	expected := []string{
		filepath.Join(buildDir, "_dist_", "app.css"),
		filepath.Join(buildDir, "_dist_", "index.js"),
		filepath.Join(buildDir, "index.html"),
		filepath.Join(buildDir, "logo.png"),
		filepath.Join(buildDir, "web_modules", "preact.js"),
	}
	assert.DeepEqual(t, files, expected)
}

func TestScanBuildFilesMetaDirWithSlashes(t *testing.T) {
	buildDir := t.TempDir()
	writeTree(t, buildDir, map[string]string{
		"a.js":                 "",
		"build-meta/info.json": "{}",
	})

	files, err := ScanBuildFiles(buildDir, "/build-meta/", nil)
	assert.NilError(t, err)
	assert.DeepEqual(t, files, []string{filepath.Join(buildDir, "a.js")})
}

func TestScanBuildFilesErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ScanBuildFiles(filepath.Join(dir, "missing"), "_meta", nil)
	assert.ErrorContains(t, err, "build directory")

	file := filepath.Join(dir, "file.txt")
	assert.NilError(t, os.WriteFile(file, nil, 0644))
	_, err = ScanBuildFiles(file, "_meta", nil)
	assert.ErrorContains(t, err, "is not a directory")
}

func TestIsJSFile(t *testing.T) {
	assert.Assert(t, isJSFile("/b/index.js"))
	assert.Assert(t, isJSFile("/b/worker.MJS"))
	assert.Assert(t, !isJSFile("/b/index.js.map"))
	assert.Assert(t, !isJSFile("/b/style.css"))
}
