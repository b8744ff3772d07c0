package main

import "strings"

type ImportKind uint8

const (
	StaticImport ImportKind = iota
	DynamicImport
	ImportMeta
)

func (k ImportKind) String() string {
	switch k {
	case StaticImport:
		return "static"
	case DynamicImport:
		return "dynamic"
	case ImportMeta:
		return "import.meta"
	}
	return "unknown"
}

// ImportRecord describes one import found in module source.
// All offsets are byte offsets into the scanned code.
type ImportRecord struct {
	Request        string     // Specifier text without quotes; empty for import.meta
	Kind           ImportKind
	StatementStart int        // Position of the `import` keyword
	StatementEnd   int        // Position right after the closing quote of the specifier (`;` not included)
	RequestStart   int        // First byte inside the quotes
	RequestEnd     int        // Position of the closing quote
	ClauseStart    int        // Right after `import`; equals ClauseEnd for side-effect imports
	ClauseEnd      int        // Position of `from`
}

func isWhiteSpace(char byte) bool {
	return (char == ' ' || char == '\t' || char == '\n' || char == '\r')
}

// skipSpaces skips spaces, tabs, and newlines, returns new index
func skipSpaces(code []byte, i int) int {
	for i < len(code) && isWhiteSpace(code[i]) {
		i++
	}
	return i
}

func isByteIdentifierChar(char byte) bool {
	// 0-9 || A-Z || a-z || _ || $ || non-ascii
	return (char >= '0' && char <= '9') || (char >= 'A' && char <= 'Z') || (char >= 'a' && char <= 'z') || char == '_' || char == '$' || char >= 0x80
}

func hasPrefixAt(code []byte, i int, s string) bool {
	if i < 0 || i+len(s) > len(code) {
		return false
	}
	for j := 0; j < len(s); j++ {
		if code[i+j] != s[j] {
			return false
		}
	}
	return true
}

// hasWordAt reports whether s starts at i and is not part of a longer identifier.
func hasWordAt(code []byte, i int, s string) bool {
	if !hasPrefixAt(code, i, s) {
		return false
	}
	if i > 0 && (isByteIdentifierChar(code[i-1]) || code[i-1] == '.') {
		return false
	}
	end := i + len(s)
	return end >= len(code) || !isByteIdentifierChar(code[end])
}

// parseStringLiteral extracts the string literal at position i (' or ").
// Returns the value, the position after the closing quote and the value bounds.
func parseStringLiteral(code []byte, i int) (string, int, int, int) {
	quote := code[i]
	i++
	start := i
	for i < len(code) && code[i] != quote && code[i] != '\n' {
		if code[i] == '\\' && i+1 < len(code) {
			i += 2
			continue
		}
		i++
	}
	if i >= len(code) || code[i] != quote {
		return "", i, 0, 0
	}
	return string(code[start:i]), i + 1, start, i
}

// skipToStringEnd skips to the end of a string literal
func skipToStringEnd(code []byte, start int, quote byte) int {
	i := start + 1
	for i < len(code) {
		if code[i] == quote {
			return i
		}
		if code[i] == '\\' && i+1 < len(code) {
			i += 2
		} else {
			i++
		}
	}
	return i
}

// Keywords after which a `/` starts a regular expression, not a division.
var regexPrecedingKeywords = map[string]struct{}{
	"return": {}, "typeof": {}, "instanceof": {}, "in": {}, "of": {}, "new": {},
	"delete": {}, "void": {}, "throw": {}, "case": {}, "do": {}, "else": {},
	"yield": {}, "await": {},
}

// regexAllowedAt guesses whether the `/` at i opens a regular expression
// literal by looking at the previous significant byte: an operator, an opening
// bracket or one of a few keywords. `)`, `]`, `}` and identifiers mean division.
func regexAllowedAt(code []byte, i int) bool {
	j := i - 1
	for j >= 0 && isWhiteSpace(code[j]) {
		j--
	}
	if j < 0 {
		return true
	}
	prev := code[j]
	if strings.IndexByte("(,=:[!&|?{;+-*%<>~^", prev) >= 0 {
		return true
	}
	if !isByteIdentifierChar(prev) {
		return false
	}
	end := j + 1
	for j >= 0 && isByteIdentifierChar(code[j]) {
		j--
	}
	_, ok := regexPrecedingKeywords[string(code[j+1:end])]
	return ok
}

// skipRegexLiteral returns the position after the closing `/` of the regular
// expression starting at start. Quotes and `/` inside a character class do
// not end it. ok is false when the line ends first.
func skipRegexLiteral(code []byte, start int) (int, bool) {
	inClass := false
	for i := start + 1; i < len(code); i++ {
		switch code[i] {
		case '\\':
			i++
		case '\n', '\r':
			return start, false
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				return i + 1, true
			}
		}
	}
	return start, false
}

// skipLineComment skips to the end of a line comment
func skipLineComment(code []byte, start int) int {
	i := start + 2
	for i < len(code) && code[i] != '\n' {
		i++
	}
	return i
}

// skipBlockComment skips to the end of a block comment
func skipBlockComment(code []byte, start int) int {
	i := start + 2
	for i+1 < len(code) && !(code[i] == '*' && code[i+1] == '/') {
		i++
	}
	if i+1 < len(code) {
		i += 2
	} else {
		i = len(code)
	}
	return i
}

// skipSpacesAndComments skips whitespace, line comments, and block comments
func skipSpacesAndComments(code []byte, i int) int {
	n := len(code)
	for i < n {
		i = skipSpaces(code, i)
		if i+1 < n && code[i] == '/' && code[i+1] == '/' {
			i = skipLineComment(code, i)
			continue
		}
		if i+1 < n && code[i] == '/' && code[i+1] == '*' {
			i = skipBlockComment(code, i)
			continue
		}
		break
	}
	return i
}

type parseState struct {
	code    []byte
	n       int
	imports []ImportRecord
}

// parseImportKeyword handles every construct starting with the `import` keyword at i.
// It returns the position to continue scanning from and whether the keyword was consumed.
func (s *parseState) parseImportKeyword(i int, topLevel bool) (int, bool) {
	if !hasWordAt(s.code, i, "import") {
		return i, false
	}
	start := i
	i += len("import")
	j := skipSpacesAndComments(s.code, i)
	if j >= s.n {
		return j, true
	}

	switch s.code[j] {
	case '.':
		k := skipSpacesAndComments(s.code, j+1)
		if hasPrefixAt(s.code, k, "meta") {
			s.imports = append(s.imports, ImportRecord{
				Kind:           ImportMeta,
				StatementStart: start,
				StatementEnd:   k + len("meta"),
				ClauseStart:    i,
				ClauseEnd:      i,
			})
			return k + len("meta"), true
		}
		return j, true
	case '(':
		return s.parseDynamicImport(start, j), true
	}

	if !topLevel {
		return i, true
	}

	// Side-effect import: `import "mod"`
	if s.code[j] == '"' || s.code[j] == '\'' {
		request, next, reqStart, reqEnd := parseStringLiteral(s.code, j)
		if request != "" {
			s.imports = append(s.imports, ImportRecord{
				Request:        request,
				Kind:           StaticImport,
				StatementStart: start,
				StatementEnd:   next,
				RequestStart:   reqStart,
				RequestEnd:     reqEnd,
				ClauseStart:    i,
				ClauseEnd:      i,
			})
		}
		return next, true
	}

	if i < s.n && !(isWhiteSpace(s.code[i]) || s.code[i] == '{' || s.code[i] == '*' || s.code[i] == '/') {
		return i, true
	}

	fromAt, ok := s.findFromKeyword(j)
	if !ok {
		return j, true
	}
	k := skipSpacesAndComments(s.code, fromAt+len("from"))
	if k >= s.n || (s.code[k] != '"' && s.code[k] != '\'') {
		return k, true
	}
	request, next, reqStart, reqEnd := parseStringLiteral(s.code, k)
	if request != "" {
		s.imports = append(s.imports, ImportRecord{
			Request:        request,
			Kind:           StaticImport,
			StatementStart: start,
			StatementEnd:   next,
			RequestStart:   reqStart,
			RequestEnd:     reqEnd,
			ClauseStart:    i,
			ClauseEnd:      fromAt,
		})
	}
	return next, true
}

// findFromKeyword scans an import clause for the `from` keyword.
// A `from` that is the first token of the clause is a binding name (`import from from "x"`).
func (s *parseState) findFromKeyword(i int) (int, bool) {
	clauseStart := i
	braces := 0
	for i < s.n {
		switch c := s.code[i]; {
		case c == ';':
			return i, false
		case c == '{':
			braces++
		case c == '}':
			braces--
		case c == '"' || c == '\'':
			i = skipToStringEnd(s.code, i, c) + 1
			continue
		case c == '/' && i+1 < s.n && s.code[i+1] == '/':
			i = skipLineComment(s.code, i)
			continue
		case c == '/' && i+1 < s.n && s.code[i+1] == '*':
			i = skipBlockComment(s.code, i)
			continue
		}
		if braces == 0 && i > clauseStart && hasWordAt(s.code, i, "from") {
			return i, true
		}
		i++
	}
	return i, false
}

// parseDynamicImport records `import("literal")`. Non-literal arguments are skipped.
func (s *parseState) parseDynamicImport(start int, paren int) int {
	i := skipSpacesAndComments(s.code, paren+1)
	if i >= s.n || (s.code[i] != '"' && s.code[i] != '\'') {
		return paren + 1
	}
	request, next, reqStart, reqEnd := parseStringLiteral(s.code, i)
	if request == "" {
		return next
	}
	s.imports = append(s.imports, ImportRecord{
		Request:        request,
		Kind:           DynamicImport,
		StatementStart: start,
		StatementEnd:   next,
		RequestStart:   reqStart,
		RequestEnd:     reqEnd,
		ClauseStart:    paren,
		ClauseEnd:      paren,
	})
	return next
}

// ParseImports scans JS module code and returns its imports in source order.
// Static imports are only recognized at brace depth 0.
func ParseImports(code []byte) []ImportRecord {
	state := parseState{
		code:    code,
		n:       len(code),
		imports: make([]ImportRecord, 0, 16),
	}
	i := 0
	n := state.n
	depth := 0

	for i < n {
		b := code[i]
		switch {
		case b == '\'' || b == '"' || b == '`':
			i = skipToStringEnd(code, i, b)
			if i < n {
				i++ // advance past closing quote
			}
			continue
		case b == '/' && i+1 < n && code[i+1] == '/':
			i = skipLineComment(code, i)
			continue
		case b == '/' && i+1 < n && code[i+1] == '*':
			i = skipBlockComment(code, i)
			continue
		case b == '/' && regexAllowedAt(code, i):
			if end, ok := skipRegexLiteral(code, i); ok {
				i = end
				continue
			}
		case b == '{':
			depth++
		case b == '}':
			if depth > 0 {
				depth--
			}
		case b == 'i':
			if next, ok := state.parseImportKeyword(i, depth == 0); ok {
				i = next
				continue
			}
		}
		i++
	}

	return state.imports
}

// StaticImports returns only the static import records of code.
func StaticImports(code []byte) []ImportRecord {
	all := ParseImports(code)
	static := all[:0]
	for _, imp := range all {
		if imp.Kind == StaticImport {
			static = append(static, imp)
		}
	}
	return static
}
