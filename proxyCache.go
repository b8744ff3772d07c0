package main

import (
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultProxyCacheSize = 1024

// Proxies of `x.module.css` assign their class-name map as `let json = {...}`.
var cssModuleJSONPattern = regexp.MustCompile(`(?m)^let json\s*=\s*(\{[^}]+\})`)

type cssModuleJSON struct {
	literal string
	found   bool
}

// proxyJSONCache extracts and memoizes CSS module mappings. A proxy imported by
// many modules is read once per run. Safe for concurrent use.
type proxyJSONCache struct {
	read  FileReader
	cache *lru.Cache[string, cssModuleJSON]
}

func newProxyJSONCache(size int, read FileReader) (*proxyJSONCache, error) {
	if size <= 0 {
		size = defaultProxyCacheSize
	}
	cache, err := lru.New[string, cssModuleJSON](size)
	if err != nil {
		return nil, err
	}
	return &proxyJSONCache{read: read, cache: cache}, nil
}

func (c *proxyJSONCache) CSSModuleJSON(proxyPath string) (string, bool, error) {
	if entry, ok := c.cache.Get(proxyPath); ok {
		return entry.literal, entry.found, nil
	}
	code, err := c.read(proxyPath)
	if err != nil {
		return "", false, err
	}
	entry := cssModuleJSON{}
	if matches := cssModuleJSONPattern.FindSubmatch(code); matches != nil {
		entry = cssModuleJSON{literal: string(matches[1]), found: true}
	}
	c.cache.Add(proxyPath, entry)
	return entry.literal, entry.found, nil
}
