package main

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

// Minifier is the contract the optimizer needs from asset minifiers:
// source in, minified source out.
type Minifier interface {
	MinifyJS(code string, target string) (string, error)
	MinifyCSS(code string) (string, error)
	MinifyHTML(code string) (string, error)
}

var esbuildTargets = map[string]api.Target{
	"":       api.DefaultTarget,
	"esnext": api.ESNext,
	"es5":    api.ES5,
	"es6":    api.ES2015,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
}

func parseTarget(target string) (api.Target, error) {
	t, ok := esbuildTargets[strings.ToLower(strings.TrimSpace(target))]
	if !ok {
		return api.DefaultTarget, fmt.Errorf("unsupported target '%s'", target)
	}
	return t, nil
}

// assetMinifier minifies JS and CSS with esbuild and HTML with tdewolff/minify.
type assetMinifier struct {
	html *minify.M
}

func NewAssetMinifier() Minifier {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("text/javascript", js.Minify)
	return &assetMinifier{html: m}
}

func (m *assetMinifier) MinifyJS(code string, target string) (string, error) {
	t, err := parseTarget(target)
	if err != nil {
		return "", err
	}
	result := api.Transform(code, api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            t,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		LogLevel:          api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", esbuildError(result.Errors)
	}
	return string(result.Code), nil
}

func (m *assetMinifier) MinifyCSS(code string) (string, error) {
	result := api.Transform(code, api.TransformOptions{
		Loader:           api.LoaderCSS,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		LogLevel:         api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", esbuildError(result.Errors)
	}
	return string(result.Code), nil
}

func (m *assetMinifier) MinifyHTML(code string) (string, error) {
	return m.html.String("text/html", code)
}

func esbuildError(messages []api.Message) error {
	first := messages[0]
	msg := first.Text
	if first.Location != nil {
		msg = fmt.Sprintf("%d:%d: %s", first.Location.Line, first.Location.Column, first.Text)
	}
	if len(messages) > 1 {
		msg = fmt.Sprintf("%s (and %d more errors)", msg, len(messages)-1)
	}
	return fmt.Errorf("minify: %s", msg)
}
