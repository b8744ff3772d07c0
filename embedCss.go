package main

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var namespaceImportPattern = regexp.MustCompile(`\*\s*as\s+`)

var singleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)

// ProxySource provides the class-name mapping embedded in CSS module proxies.
type ProxySource interface {
	// CSSModuleJSON returns the JSON object literal assigned in the proxy at
	// proxyPath. found is false when the proxy has no such assignment.
	CSSModuleJSON(proxyPath string) (json string, found bool, err error)
}

// EmbedResult is the outcome of rewriting one module.
type EmbedResult struct {
	CSSImports   map[string]struct{}
	ProxyImports map[string]struct{}
	Code         string
}

// CSSEmbedder rewrites CSS proxy imports into plain bindings.
//
//	import 'global.css.proxy.js'                       -> (removed, served by the combined stylesheet)
//	import url from 'global.css.proxy.js'              -> const url = '/abs/global.css';
//	import {foo, bar} from 'local.module.css.proxy.js' -> const {foo, bar} = {"foo":"...","bar":"..."};
//	import d, {foo as f} from 'local.module.css.proxy.js' -> const d = {...}, {foo: f} = d;
type CSSEmbedder struct {
	// RootDir resolves root-absolute specifiers such as `/_dist_/a.css.proxy.js`.
	// When empty they are resolved like relative ones.
	RootDir string
	Proxies ProxySource
}

// EmbedStaticCss rewrites every static CSS proxy import of file. code is the
// file's current source. Imports of CSS modules whose proxy carries no JSON
// mapping are left as they are and are not reported.
func (e *CSSEmbedder) EmbedStaticCss(file string, code string) (EmbedResult, error) {
	result := EmbedResult{
		CSSImports:   map[string]struct{}{},
		ProxyImports: map[string]struct{}{},
		Code:         code,
	}
	if !strings.Contains(code, cssProxySuffix) {
		return result, nil
	}

	fileDir := filepath.Dir(file)
	changes := make([]Change, 0, 4)

	for _, imp := range StaticImports([]byte(code)) {
		if !IsCssProxySpecifier(imp.Request) {
			continue
		}
		proxyPath := e.resolveSpecifier(fileDir, imp.Request)
		cssPath := strings.TrimSuffix(proxyPath, proxySuffix)
		targets := importBindings(code[imp.ClauseStart:imp.ClauseEnd])

		var change Change
		switch {
		case len(targets) == 0:
			end := skipTrailingLineBreak(code, skipOptionalSemicolon(code, imp.StatementEnd))
			change = Change{Start: imp.StatementStart, End: end}
		case strings.HasSuffix(cssPath, cssModuleSuffix):
			json, found, err := e.Proxies.CSSModuleJSON(proxyPath)
			if err != nil {
				return result, fmt.Errorf("reading CSS module proxy %s: %w", proxyPath, err)
			}
			if !found {
				continue
			}
			change = Change{
				Start: imp.StatementStart,
				End:   skipOptionalSemicolon(code, imp.StatementEnd),
				Text:  constDeclaration(targets, json),
			}
		default:
			change = Change{
				Start: imp.StatementStart,
				End:   skipOptionalSemicolon(code, imp.StatementEnd),
				Text:  constDeclaration(targets, "'"+singleQuoteEscaper.Replace(cssPath)+"'"),
			}
		}

		changes = append(changes, change)
		result.CSSImports[cssPath] = struct{}{}
		result.ProxyImports[proxyPath] = struct{}{}
	}

	result.Code = applyChangesToContent(code, changes)
	return result, nil
}

func (e *CSSEmbedder) resolveSpecifier(fileDir string, specifier string) string {
	if e.RootDir != "" && strings.HasPrefix(specifier, "/") {
		return filepath.Join(e.RootDir, filepath.FromSlash(specifier))
	}
	return filepath.Join(fileDir, filepath.FromSlash(specifier))
}

// importBindings turns an import clause into the binding targets of a const
// declaration, default binding first:
//
//	x              -> x
//	* as ns        -> ns
//	{a, b as c}    -> {a, b: c}
//	x, * as ns     -> x, ns
//	x, {a}         -> x, {a}
//
// A side-effect import has no targets.
func importBindings(clause string) []string {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return nil
	}

	targets := make([]string, 0, 2)
	if !strings.HasPrefix(clause, "{") && !strings.HasPrefix(clause, "*") {
		name, rest, _ := strings.Cut(clause, ",")
		targets = append(targets, strings.TrimSpace(name))
		clause = strings.TrimSpace(rest)
	}

	switch {
	case strings.HasPrefix(clause, "*"):
		targets = append(targets, strings.TrimSpace(namespaceImportPattern.ReplaceAllString(clause, "")))
	case strings.HasPrefix(clause, "{"):
		targets = append(targets, destructuringPattern(clause))
	}
	return targets
}

// destructuringPattern rewrites named import specifiers `{a as b}` into an
// object pattern `{a: b}`. Whitespace around each specifier is kept.
func destructuringPattern(named string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(named, "{"), "}")
	specifiers := strings.Split(inner, ",")
	for i, spec := range specifiers {
		fields := strings.Fields(spec)
		if len(fields) != 3 || fields[1] != "as" {
			continue
		}
		trimmed := strings.TrimSpace(spec)
		lead := spec[:strings.Index(spec, trimmed)]
		trail := spec[len(lead)+len(trimmed):]
		specifiers[i] = lead + fields[0] + ": " + fields[2] + trail
	}
	return "{" + strings.Join(specifiers, ",") + "}"
}

// constDeclaration binds the first target to value and every further target
// to the first one: `const d = value, {a} = d;`.
func constDeclaration(targets []string, value string) string {
	declarators := make([]string, len(targets))
	declarators[0] = targets[0] + " = " + value
	for i, target := range targets[1:] {
		declarators[i+1] = target + " = " + targets[0]
	}
	return "const " + strings.Join(declarators, ", ") + ";"
}
