package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// staticProxies serves CSS module mappings keyed by proxy path.
type staticProxies map[string]string

func (p staticProxies) CSSModuleJSON(proxyPath string) (string, bool, error) {
	json, ok := p[proxyPath]
	return json, ok, nil
}

var testBuildDir = filepath.Join(string(filepath.Separator), "build")

func testPath(parts ...string) string {
	return filepath.Join(append([]string{testBuildDir}, parts...)...)
}

func keysOf(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func TestEmbedStaticCss(t *testing.T) {
	file := testPath("src", "index.js")
	moduleJSON := `{"foo":"a_foo","bar":"a_bar"}`
	proxies := staticProxies{
		testPath("src", "a.module.css.proxy.js"):          moduleJSON,
		testPath("src", "styles", "b.module.css.proxy.js"): `{"title":"b_title"}`,
	}

	tests := []struct {
		name          string
		code          string
		expected      string
		expectedCSS   []string
		expectedProxy []string
	}{
		{
			name:     "No CSS imports",
			code:     "import a from './a.js';\nconsole.log(a);\n",
			expected: "import a from './a.js';\nconsole.log(a);\n",
		},
		{
			name:          "Side-effect import is removed",
			code:          "import 'a.css.proxy.js';\nconsole.log(1);",
			expected:      "console.log(1);",
			expectedCSS:   []string{testPath("src", "a.css")},
			expectedProxy: []string{testPath("src", "a.css.proxy.js")},
		},
		{
			name:          "Side-effect import with CRLF and no semicolon",
			code:          "import \"./a.css.proxy.js\"\r\nrun();\r\n",
			expected:      "run();\r\n",
			expectedCSS:   []string{testPath("src", "a.css")},
			expectedProxy: []string{testPath("src", "a.css.proxy.js")},
		},
		{
			name:          "Default import becomes the stylesheet path",
			code:          "import href from 'a.css.proxy.js';",
			expected:      "const href = '" + testPath("src", "a.css") + "';",
			expectedCSS:   []string{testPath("src", "a.css")},
			expectedProxy: []string{testPath("src", "a.css.proxy.js")},
		},
		{
			name:          "Namespace import of plain CSS",
			code:          "import * as sheet from '../global.css.proxy.js'\nuse(sheet);\n",
			expected:      "const sheet = '" + testPath("global.css") + "';\nuse(sheet);\n",
			expectedCSS:   []string{testPath("global.css")},
			expectedProxy: []string{testPath("global.css.proxy.js")},
		},
		{
			name:          "CSS module import keeps destructuring",
			code:          "import {foo, bar} from './a.module.css.proxy.js';\nrender(foo, bar);\n",
			expected:      "const {foo, bar} = " + moduleJSON + ";\nrender(foo, bar);\n",
			expectedCSS:   []string{testPath("src", "a.module.css")},
			expectedProxy: []string{testPath("src", "a.module.css.proxy.js")},
		},
		{
			name:          "CSS module namespace import",
			code:          "import * as styles from './styles/b.module.css.proxy.js';\nh(styles.title);\n",
			expected:      "const styles = {\"title\":\"b_title\"};\nh(styles.title);\n",
			expectedCSS:   []string{testPath("src", "styles", "b.module.css")},
			expectedProxy: []string{testPath("src", "styles", "b.module.css.proxy.js")},
		},
		{
			name:          "Renamed CSS module bindings become an object pattern",
			code:          "import {foo as f, bar} from './a.module.css.proxy.js';\nuse(f, bar);\n",
			expected:      "const {foo: f, bar} = " + moduleJSON + ";\nuse(f, bar);\n",
			expectedCSS:   []string{testPath("src", "a.module.css")},
			expectedProxy: []string{testPath("src", "a.module.css.proxy.js")},
		},
		{
			name:          "Default and namespace bindings of plain CSS",
			code:          "import s, * as ns from './b.css.proxy.js';\nuse(s, ns);\n",
			expected:      "const s = '" + testPath("src", "b.css") + "', ns = s;\nuse(s, ns);\n",
			expectedCSS:   []string{testPath("src", "b.css")},
			expectedProxy: []string{testPath("src", "b.css.proxy.js")},
		},
		{
			name:          "Default and named bindings of a CSS module",
			code:          "import d, {foo} from './a.module.css.proxy.js';\nuse(d, foo);\n",
			expected:      "const d = " + moduleJSON + ", {foo} = d;\nuse(d, foo);\n",
			expectedCSS:   []string{testPath("src", "a.module.css")},
			expectedProxy: []string{testPath("src", "a.module.css.proxy.js")},
		},
		{
			name:     "CSS module without JSON is left untouched",
			code:     "import styles from './missing.module.css.proxy.js';\nh(styles);\n",
			expected: "import styles from './missing.module.css.proxy.js';\nh(styles);\n",
		},
		{
			name:          "Root-absolute specifier resolves against the build root",
			code:          "import '/_dist_/global.css.proxy.js';\n",
			expected:      "",
			expectedCSS:   []string{testPath("_dist_", "global.css")},
			expectedProxy: []string{testPath("_dist_", "global.css.proxy.js")},
		},
		{
			name:     "Dynamic imports and strings are not rewritten",
			code:     "const s = \"import './a.css.proxy.js'\";\nimport('./a.css.proxy.js');\n",
			expected: "const s = \"import './a.css.proxy.js'\";\nimport('./a.css.proxy.js');\n",
		},
		{
			name:          "Same proxy imported twice",
			code:          "import './a.css.proxy.js';\nimport href from './a.css.proxy.js';\nlog(href);\n",
			expected:      "const href = '" + testPath("src", "a.css") + "';\nlog(href);\n",
			expectedCSS:   []string{testPath("src", "a.css")},
			expectedProxy: []string{testPath("src", "a.css.proxy.js")},
		},
		{
			name: "Unrelated code and order are preserved",
			code: "import a from './a.js';\nimport './x.css.proxy.js';\nimport b from './b.js';\n" +
				"import {foo} from './a.module.css.proxy.js';\nmain(a, b, foo);\n",
			expected: "import a from './a.js';\nimport b from './b.js';\n" +
				"const {foo} = " + moduleJSON + ";\nmain(a, b, foo);\n",
			expectedCSS:   []string{testPath("src", "a.module.css"), testPath("src", "x.css")},
			expectedProxy: []string{testPath("src", "a.module.css.proxy.js"), testPath("src", "x.css.proxy.js")},
		},
		{
			name:          "Minified imports",
			code:          `import"./x.css.proxy.js";import h from"./y.css.proxy.js";go(h);`,
			expected:      "const h = '" + testPath("src", "y.css") + "';go(h);",
			expectedCSS:   []string{testPath("src", "x.css"), testPath("src", "y.css")},
			expectedProxy: []string{testPath("src", "x.css.proxy.js"), testPath("src", "y.css.proxy.js")},
		},
	}

	embedder := CSSEmbedder{RootDir: testBuildDir, Proxies: proxies}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := embedder.EmbedStaticCss(file, tt.code)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Code != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result.Code)
			}
			if css := keysOf(result.CSSImports); !slices.Equal(css, tt.expectedCSS) && !(len(css) == 0 && len(tt.expectedCSS) == 0) {
				t.Errorf("CSS imports = %v, want %v", css, tt.expectedCSS)
			}
			if proxy := keysOf(result.ProxyImports); !slices.Equal(proxy, tt.expectedProxy) && !(len(proxy) == 0 && len(tt.expectedProxy) == 0) {
				t.Errorf("proxy imports = %v, want %v", proxy, tt.expectedProxy)
			}
		})
	}
}

func TestEmbedStaticCssIsIdempotent(t *testing.T) {
	file := testPath("index.js")
	embedder := CSSEmbedder{
		RootDir: testBuildDir,
		Proxies: staticProxies{testPath("app.module.css.proxy.js"): `{"app":"x_app"}`},
	}
	code := "import './global.css.proxy.js';\nimport logo from './logo.css.proxy.js';\n" +
		"import * as app from './app.module.css.proxy.js';\nstart(app, logo);\n"

	first, err := embedder.EmbedStaticCss(file, code)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(first.Code, cssProxySuffix) {
		t.Fatalf("proxy specifier left after rewrite: %q", first.Code)
	}

	second, err := embedder.EmbedStaticCss(file, first.Code)
	if err != nil {
		t.Fatal(err)
	}
	if second.Code != first.Code {
		t.Errorf("second pass changed code: %q -> %q", first.Code, second.Code)
	}
	if len(second.CSSImports) != 0 || len(second.ProxyImports) != 0 {
		t.Errorf("second pass reported imports: %v %v", second.CSSImports, second.ProxyImports)
	}
}

func TestEmbedStaticCssEscapesPath(t *testing.T) {
	dir := filepath.Join(testBuildDir, "it's")
	embedder := CSSEmbedder{Proxies: staticProxies{}}

	result, err := embedder.EmbedStaticCss(filepath.Join(dir, "index.js"), "import u from './a.css.proxy.js';")
	if err != nil {
		t.Fatal(err)
	}
	want := "const u = '" + strings.ReplaceAll(strings.ReplaceAll(filepath.Join(dir, "a.css"), `\`, `\\`), "'", `\'`) + "';"
	if result.Code != want {
		t.Errorf("Expected %q, got %q", want, result.Code)
	}
}

func TestEmbedStaticCssReadError(t *testing.T) {
	dir := t.TempDir()
	cache, err := newProxyJSONCache(0, os.ReadFile)
	if err != nil {
		t.Fatal(err)
	}
	embedder := CSSEmbedder{RootDir: dir, Proxies: cache}

	_, err = embedder.EmbedStaticCss(filepath.Join(dir, "index.js"), "import {a} from './gone.module.css.proxy.js';")
	if err == nil {
		t.Fatal("expected an error for a missing CSS module proxy")
	}
	if !strings.Contains(err.Error(), "gone.module.css.proxy.js") {
		t.Errorf("error should name the proxy file: %v", err)
	}
}

func TestImportBindings(t *testing.T) {
	tests := []struct {
		clause   string
		expected []string
	}{
		{"", nil},
		{"  ", nil},
		{" href ", []string{"href"}},
		{"{foo, bar}", []string{"{foo, bar}"}},
		{"{ from }", []string{"{ from }"}},
		{"* as styles", []string{"styles"}},
		{"*as styles", []string{"styles"}},
		{" *  as\tx ", []string{"x"}},
		{"{ a as b }", []string{"{ a: b }"}},
		{"{foo as f, bar,\n  default as d}", []string{"{foo: f, bar,\n  default: d}"}},
		{"def, {a}", []string{"def", "{a}"}},
		{"def , * as ns", []string{"def", "ns"}},
		{"def,{a as b}", []string{"def", "{a: b}"}},
	}
	for _, tt := range tests {
		if got := importBindings(tt.clause); !slices.Equal(got, tt.expected) {
			t.Errorf("importBindings(%q) = %q, want %q", tt.clause, got, tt.expected)
		}
	}
}

func TestConstDeclaration(t *testing.T) {
	tests := []struct {
		targets  []string
		value    string
		expected string
	}{
		{[]string{"href"}, "'/a.css'", "const href = '/a.css';"},
		{[]string{"s", "ns"}, "'/b.css'", "const s = '/b.css', ns = s;"},
		{[]string{"d", "{foo: f}"}, `{"foo":"x"}`, `const d = {"foo":"x"}, {foo: f} = d;`},
	}
	for _, tt := range tests {
		if got := constDeclaration(tt.targets, tt.value); got != tt.expected {
			t.Errorf("constDeclaration(%q) = %q, want %q", tt.targets, got, tt.expected)
		}
	}
}

func TestEmbedStaticCssOutputParses(t *testing.T) {
	file := testPath("src", "index.js")
	embedder := CSSEmbedder{
		RootDir: testBuildDir,
		Proxies: staticProxies{testPath("src", "a.module.css.proxy.js"): `{"foo":"a_foo","bar":"a_bar"}`},
	}
	minifier := NewAssetMinifier()

	clauses := []string{
		"import {foo as f} from './a.module.css.proxy.js';\nuse(f);\n",
		"import {default as d, bar} from './a.module.css.proxy.js';\nuse(d, bar);\n",
		"import s, * as ns from './b.css.proxy.js';\nuse(s, ns);\n",
		"import d, {foo} from './a.module.css.proxy.js';\nuse(d, foo);\n",
		"import d, * as all from './a.module.css.proxy.js';\nuse(d, all);\n",
		"import href, {x as y} from './b.css.proxy.js';\nuse(href, y);\n",
	}
	for _, code := range clauses {
		result, err := embedder.EmbedStaticCss(file, code)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(result.Code, "import") {
			t.Errorf("import left in %q", result.Code)
		}
		if _, err := minifier.MinifyJS(result.Code, ""); err != nil {
			t.Errorf("rewritten code %q does not parse: %v", result.Code, err)
		}
	}
}
