package main

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type preloadRequest struct {
	code    string
	rootDir string
	file    string
	cssName string // combined stylesheet URL, empty when CSS is not embedded
	read    FileReader
}

// preloadJSAndCSS adds `<link rel="modulepreload">` hints for every module
// script of an HTML page and for the static imports those scripts pull in.
// When cssName is set a stylesheet link to it is added as well.
func preloadJSAndCSS(req preloadRequest) (string, error) {
	doc, err := html.Parse(strings.NewReader(req.code))
	if err != nil {
		return "", err
	}

	var head *html.Node
	var entries []string
	existingPreloads := map[string]struct{}{}
	hasStylesheet := false

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Head:
				if head == nil {
					head = n
				}
			case atom.Script:
				if strings.EqualFold(attr(n, "type"), "module") {
					if src := attr(n, "src"); src != "" && !isRemoteModule(src) {
						entries = append(entries, src)
					}
				}
			case atom.Link:
				rel := strings.ToLower(attr(n, "rel"))
				href := attr(n, "href")
				if rel == "modulepreload" {
					existingPreloads[href] = struct{}{}
				}
				if rel == "stylesheet" && req.cssName != "" && href == req.cssName {
					hasStylesheet = true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if head == nil {
		return req.code, nil
	}

	modules := collectModuleGraph(req, entries)
	hints := make([]string, 0, len(modules))
	for _, url := range modules {
		if _, ok := existingPreloads[url]; !ok {
			hints = append(hints, url)
		}
	}

	if len(hints) == 0 && (req.cssName == "" || hasStylesheet) {
		return req.code, nil
	}

	if req.cssName != "" && !hasStylesheet {
		head.AppendChild(linkNode("stylesheet", req.cssName))
	}
	for _, url := range hints {
		head.AppendChild(linkNode("modulepreload", url))
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// collectModuleGraph walks static imports starting from the entry script
// URLs and returns the root-absolute URLs of every module reached, sorted.
// Modules that cannot be read are still listed but not walked.
func collectModuleGraph(req preloadRequest, entries []string) []string {
	htmlDir := filepath.Dir(req.file)
	seen := map[string]struct{}{}
	queue := make([]string, 0, len(entries))

	resolve := func(fromDir string, specifier string) (string, bool) {
		if isRemoteModule(specifier) || IsCssProxySpecifier(specifier) {
			return "", false
		}
		specifier, _, _ = strings.Cut(specifier, "?")
		switch {
		case strings.HasPrefix(specifier, "/"):
			return filepath.Join(req.rootDir, filepath.FromSlash(specifier)), true
		case strings.HasPrefix(specifier, "./"), strings.HasPrefix(specifier, "../"):
			return filepath.Join(fromDir, filepath.FromSlash(specifier)), true
		}
		// bare specifiers are resolved by an import map, not by us
		return "", false
	}

	enqueue := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		queue = append(queue, path)
	}

	for _, entry := range entries {
		entry, _, _ = strings.Cut(entry, "?")
		if strings.HasPrefix(entry, "/") {
			enqueue(filepath.Join(req.rootDir, filepath.FromSlash(entry)))
		} else {
			enqueue(filepath.Join(htmlDir, filepath.FromSlash(entry)))
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		code, err := req.read(current)
		if err != nil {
			continue
		}
		for _, imp := range StaticImports(code) {
			if path, ok := resolve(filepath.Dir(current), imp.Request); ok {
				enqueue(path)
			}
		}
	}

	urls := make([]string, 0, len(seen))
	for path := range seen {
		urls = append(urls, rootURL(req.rootDir, path))
	}
	slices.Sort(urls)
	return urls
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func linkNode(rel string, href string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "link",
		DataAtom: atom.Link,
		Attr: []html.Attribute{
			{Key: "rel", Val: rel},
			{Key: "href", Val: href},
		},
	}
}
